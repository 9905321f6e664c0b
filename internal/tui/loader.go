package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/uxradar/internal/model"
)

// ErrCancelled is returned by RunLoader when the user presses ctrl+c.
var ErrCancelled = errors.New("cancelled")

// RunFunc performs one pipeline run. Usually wraps (*pipeline.Runner).Run.
type RunFunc func(ctx context.Context) (model.PipelineOutcome, error)

type runDoneMsg struct {
	outcome model.PipelineOutcome
	err     error
}

type loaderModel struct {
	label   string
	run     RunFunc
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	outcome model.PipelineOutcome
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, run RunFunc) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33"))),
	)
	return loaderModel{label: label, run: run, ctx: ctx, cancel: cancel, spinner: sp}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.spinner.Tick)
}

func (m loaderModel) doRun() tea.Cmd {
	run, ctx := m.run, m.ctx
	return func() tea.Msg {
		outcome, err := run(ctx)
		return runDoneMsg{outcome: outcome, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.outcome = msg.outcome
		if m.err == nil {
			m.err = msg.err
		}
		m.done = true
		m.cancel()
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			m.cancel()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while run executes. It renders inline (no alt screen).
func RunLoader(ctx context.Context, label string, run RunFunc) (model.PipelineOutcome, error) {
	m := newLoaderModel(ctx, label, run)
	defer m.cancel()

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.PipelineOutcome{}, err
	}
	final := result.(loaderModel)
	return final.outcome, final.err
}
