package format

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/junhaiqi/TopoRepeat/artifact"
	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// FmtDuration formats a duration as "Xm Ys", "Y.ZZs" or "-" when zero.
func FmtDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d >= time.Minute {
		s := int(d.Seconds())
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// relPath shows p relative to root when it lives below it.
func relPath(root, p string) string {
	if p == "" {
		return "-"
	}
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

func artifactList(root string, as []artifact.Artifact) string {
	if len(as) == 0 {
		return "-"
	}
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = relPath(root, a.Path)
	}
	return strings.Join(parts, "\n")
}

// ManifestTable renders every stage result of m. Artifact and log paths are
// shown relative to the output root.
func ManifestTable(m *pipeline.Manifest, mode Mode) string {
	tb := NewTable(mode)
	tb.Header("#", "Stage", "Status", "Elapsed", "Exit", "Artifacts", "Log")
	tb.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 4, Align: AlignRight},
		ColumnConfig{Number: 5, Align: AlignRight},
	)
	var total time.Duration
	for i, r := range m.Stages {
		exit := "-"
		if r.Status == pipeline.StatusFailed {
			exit = fmt.Sprint(r.ExitCode)
		}
		arts := artifactList(m.OutputDir, r.Artifacts)
		if mode == Markdown {
			arts = strings.ReplaceAll(arts, "\n", "<br>")
		}
		tb.Row(i+1, string(r.Stage), string(r.Status), FmtDuration(r.Elapsed), exit, arts, relPath(m.OutputDir, r.LogPath))
		total += r.Elapsed
	}
	tb.Footer("", "", string(m.Status), FmtDuration(total), "", "", "")
	return tb.String()
}

// Summary returns the one-paragraph run header printed above the table.
func Summary(m *pipeline.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run:      %s\n", m.RunID)
	fmt.Fprintf(&b, "input:    %s\n", m.Input)
	fmt.Fprintf(&b, "output:   %s\n", m.OutputDir)
	fmt.Fprintf(&b, "status:   %s\n", m.Status)
	fmt.Fprintf(&b, "started:  %s\n", m.StartedAt.Format(time.RFC3339))
	if m.FinishedAt != nil {
		fmt.Fprintf(&b, "finished: %s\n", m.FinishedAt.Format(time.RFC3339))
	}
	if m.Terminal != "" {
		fmt.Fprintf(&b, "result:   %s\n", m.Terminal)
	}
	return b.String()
}

// PlanTable renders the resolved outputs of every stage together with
// whether a run would skip it.
func PlanTable(cfg *types.RunConfig, plans []pipeline.StagePlan, mode Mode) string {
	tb := NewTable(mode)
	tb.Header("#", "Stage", "Program", "Cached", "Outputs")
	tb.Columns(ColumnConfig{Number: 1, Align: AlignRight})
	for i, p := range plans {
		cached, _ := pipeline.Cached(p.Stage.Name(), p.Outputs)
		outs := artifactList(cfg.OutDir(), p.Outputs)
		if mode == Markdown {
			outs = strings.ReplaceAll(outs, "\n", "<br>")
		}
		prog := cfg.Program(p.Stage.Name())
		if prog == "" {
			prog = "(in-process)"
		}
		tb.Row(i+1, string(p.Stage.Name()), prog, mark(cached), outs)
	}
	return tb.String()
}

func mark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
