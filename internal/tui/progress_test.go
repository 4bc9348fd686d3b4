package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

var testStages = []types.StageName{types.StageSample, types.StageSelfAlign, types.StageInferUnits}

func TestStageLine(t *testing.T) {
	styles := NewStyleSet(DarkTheme)
	failed := &pipeline.StageResult{Stage: types.StageCluster, Status: pipeline.StatusFailed, LogPath: "/out/04_cluster/cluster.log"}
	tests := []struct {
		event pipeline.Event
		want  []string
	}{
		{pipeline.Event{Type: pipeline.EventStarted, Stage: types.StageSample, Index: 0, Total: 8}, []string{"[1/8]", "run", "sample"}},
		{pipeline.Event{Type: pipeline.EventSkipped, Stage: types.StageRemap, Index: 5, Total: 8}, []string{"[6/8]", "skip", "remap", "outputs present"}},
		{pipeline.Event{Type: pipeline.EventFinished, Stage: types.StageExtend, Index: 4, Total: 8,
			Result: &pipeline.StageResult{Elapsed: 1500 * time.Millisecond}}, []string{"ok", "extend", "1.5s"}},
		{pipeline.Event{Type: pipeline.EventFailed, Stage: types.StageCluster, Index: 3, Total: 8, Result: failed},
			[]string{"fail", "cluster", "log: /out/04_cluster/cluster.log"}},
	}
	for _, tt := range tests {
		got := StageLine(styles, tt.event)
		for _, want := range tt.want {
			if !strings.Contains(got, want) {
				t.Errorf("StageLine(%s %s) = %q, missing %q", tt.event.Type, tt.event.Stage, got, want)
			}
		}
	}
}

func TestLinePrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewLinePrinter(&buf, LightTheme)
	p.OnEvent(pipeline.Event{Type: pipeline.EventStarted, Stage: types.StageSample, Total: 8})
	p.OnEvent(pipeline.Event{Type: "bogus", Stage: types.StageSample})
	if lines := strings.Count(buf.String(), "\n"); lines != 1 {
		t.Errorf("printed %d lines, want 1:\n%s", lines, buf.String())
	}
}

func TestProgressModel_TracksEvents(t *testing.T) {
	m := NewProgressModel(DarkTheme, "header", testStages, nil)
	var model tea.Model = m

	send := func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		model, cmd = model.Update(msg)
		return cmd
	}
	send(StageEventMsg{Event: pipeline.Event{Type: pipeline.EventSkipped, Stage: types.StageSample}})
	send(StageEventMsg{Event: pipeline.Event{Type: pipeline.EventStarted, Stage: types.StageSelfAlign}})
	send(StageEventMsg{Event: pipeline.Event{Type: pipeline.EventFailed, Stage: types.StageSelfAlign,
		Result: &pipeline.StageResult{LogPath: "/out/02_selfalign/self-align.log"}}})

	view := model.View()
	for _, want := range []string{"header", "cached", "✗", "log: /out/02_selfalign/self-align.log", "infer-units"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	runErr := errors.New("boom")
	if cmd := send(RunDoneMsg{Err: runErr}); cmd == nil {
		t.Fatal("RunDoneMsg should quit")
	}
	if _, err := model.(ProgressModel).Result(); !errors.Is(err, runErr) {
		t.Errorf("Result() error = %v", err)
	}
}

func TestProgressModel_CtrlCCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewProgressModel(DarkTheme, "", testStages, cancel)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if ctx.Err() == nil {
		t.Error("ctrl+c did not cancel the run")
	}
}

func TestProgressModel_InterruptedStage(t *testing.T) {
	var model tea.Model = NewProgressModel(DarkTheme, "", testStages, nil)
	model, _ = model.Update(StageEventMsg{Event: pipeline.Event{Type: pipeline.EventStarted, Stage: types.StageSample}})
	model, _ = model.Update(RunDoneMsg{Err: context.Canceled})
	if !strings.Contains(model.View(), "interrupted") {
		t.Errorf("View() = %q, want interrupted marker", model.View())
	}
}
