package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/junhaiqi/TopoRepeat/pipeline"
)

// StageLine renders one progress line for a pipeline event.
func StageLine(styles *StyleSet, e pipeline.Event) string {
	counter := styles.DimTxt.Render(fmt.Sprintf("[%d/%d]", e.Index+1, e.Total))
	name := styles.StageName.Render(string(e.Stage))
	switch e.Type {
	case pipeline.EventStarted:
		return fmt.Sprintf("  %s %s %s", counter, styles.BadgeActive.Render("run"), name)
	case pipeline.EventSkipped:
		return fmt.Sprintf("  %s %s %s %s", counter, styles.BadgeSkipped.Render("skip"), name,
			styles.DimTxt.Render("outputs present"))
	case pipeline.EventFinished:
		return fmt.Sprintf("  %s %s %s %s", counter, styles.BadgeRan.Render(" ok "), name,
			styles.SecondaryTxt.Render(elapsed(e.Result)))
	case pipeline.EventFailed:
		line := fmt.Sprintf("  %s %s %s %s", counter, styles.BadgeFailed.Render("fail"), name,
			styles.SecondaryTxt.Render(elapsed(e.Result)))
		if e.Result != nil && e.Result.LogPath != "" {
			line += "\n         " + styles.ErrorTxt.Render("log: "+e.Result.LogPath)
		}
		return line
	default:
		return ""
	}
}

func elapsed(r *pipeline.StageResult) string {
	if r == nil {
		return ""
	}
	return r.Elapsed.Round(10 * time.Millisecond).String()
}

// LinePrinter is a pipeline.Observer that prints one line per event. It is
// used when the live view is off.
type LinePrinter struct {
	mu     sync.Mutex
	w      io.Writer
	styles *StyleSet
}

// NewLinePrinter creates a LinePrinter writing to w.
func NewLinePrinter(w io.Writer, theme TermTheme) *LinePrinter {
	return &LinePrinter{w: w, styles: NewStyleSet(theme)}
}

func (p *LinePrinter) OnEvent(e pipeline.Event) {
	line := StageLine(p.styles, e)
	if line == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line) //nolint:errcheck
}
