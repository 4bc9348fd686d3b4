package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/junhaiqi/TopoRepeat/pipeline"
	"github.com/junhaiqi/TopoRepeat/types"
)

// StageEventMsg carries a pipeline event into the progress model.
type StageEventMsg struct {
	Event pipeline.Event
}

// RunDoneMsg signals that the pipeline has returned.
type RunDoneMsg struct {
	Manifest *pipeline.Manifest
	Err      error
}

type stageState int

const (
	statePending stageState = iota
	stateRunning
	stateRan
	stateSkipped
	stateFailed
)

type stageRow struct {
	name   types.StageName
	state  stageState
	result *pipeline.StageResult
}

// ProgressModel is the bubbletea model of the live run view.
type ProgressModel struct {
	styles  *StyleSet
	header  string
	rows    []stageRow
	spinner spinner.Model
	cancel  context.CancelFunc
	width   int

	done     bool
	manifest *pipeline.Manifest
	err      error
}

// NewProgressModel creates the live view for stages. cancel is called when
// the user interrupts with ctrl+c.
func NewProgressModel(theme TermTheme, header string, stages []types.StageName, cancel context.CancelFunc) ProgressModel {
	styles := NewStyleSet(theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	rows := make([]stageRow, len(stages))
	for i, s := range stages {
		rows[i] = stageRow{name: s}
	}
	return ProgressModel{
		styles:  styles,
		header:  header,
		rows:    rows,
		spinner: sp,
		cancel:  cancel,
		width:   80,
	}
}

// Init starts the spinner.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageEventMsg:
		m.apply(msg.Event)
		return m, nil

	case RunDoneMsg:
		m.done = true
		m.manifest = msg.Manifest
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *ProgressModel) apply(e pipeline.Event) {
	for i := range m.rows {
		if m.rows[i].name != e.Stage {
			continue
		}
		switch e.Type {
		case pipeline.EventStarted:
			m.rows[i].state = stateRunning
		case pipeline.EventSkipped:
			m.rows[i].state = stateSkipped
		case pipeline.EventFinished:
			m.rows[i].state = stateRan
		case pipeline.EventFailed:
			m.rows[i].state = stateFailed
		}
		m.rows[i].result = e.Result
		return
	}
}

// View renders the stage list.
func (m ProgressModel) View() string {
	out := "\n" + m.header + "\n"
	for i, r := range m.rows {
		var icon, note string
		switch r.state {
		case statePending:
			icon = m.styles.DimTxt.Render("·")
		case stateRunning:
			icon = m.spinner.View()
			if m.done {
				icon = m.styles.WarningTxt.Render("■")
				note = m.styles.WarningTxt.Render("interrupted")
			}
		case stateRan:
			icon = m.styles.SuccessTxt.Render("✓")
			note = m.styles.SecondaryTxt.Render(elapsed(r.result))
		case stateSkipped:
			icon = m.styles.DimTxt.Render("↷")
			note = m.styles.DimTxt.Render("cached")
		case stateFailed:
			icon = m.styles.ErrorTxt.Render("✗")
			if r.result != nil && r.result.LogPath != "" {
				note = m.styles.ErrorTxt.Render("log: " + r.result.LogPath)
			}
		}
		counter := m.styles.DimTxt.Render(fmt.Sprintf("%d.", i+1))
		out += fmt.Sprintf("  %s %s %s %s\n", counter, icon, m.styles.StageName.Render(string(r.name)), note)
	}
	return out
}

// Result returns the manifest and error the run finished with.
func (m ProgressModel) Result() (*pipeline.Manifest, error) {
	return m.manifest, m.err
}

// RunWithProgress runs fn under the live view. fn receives an observer that
// forwards pipeline events to the view; ctrl+c cancels ctx.
func RunWithProgress(ctx context.Context, out io.Writer, theme TermTheme, header string, stages []types.StageName,
	fn func(ctx context.Context, obs pipeline.Observer) (*pipeline.Manifest, error)) (*pipeline.Manifest, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewProgressModel(theme, header, stages, cancel)
	prog := tea.NewProgram(model, tea.WithOutput(out), tea.WithoutSignalHandler())

	var (
		manifest *pipeline.Manifest
		runErr   error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		manifest, runErr = fn(ctx, pipeline.ObserverFunc(func(e pipeline.Event) {
			prog.Send(StageEventMsg{Event: e})
		}))
		prog.Send(RunDoneMsg{Manifest: manifest, Err: runErr})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-finished
		return manifest, fmt.Errorf("live view: %w", err)
	}
	<-finished
	return manifest, runErr
}
