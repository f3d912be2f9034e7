// Package tui implements the live progress view for suite runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mealmax/mealprobe/internal/smoke"
	"github.com/mealmax/mealprobe/internal/tui/components"
	"github.com/mealmax/mealprobe/internal/tui/theme"
)

// stepMsg carries one finished step into the model.
type stepMsg smoke.StepResult

// doneMsg carries the final run result.
type doneMsg struct {
	res *smoke.RunResult
}

type progressModel struct {
	spinner     spinner.Model
	steps       []smoke.Step
	results     []smoke.StepResult
	res         *smoke.RunResult
	done        bool
	interrupted bool
}

func newProgressModel(steps []smoke.Step) progressModel {
	return progressModel{
		spinner: components.ProbeSpinner(),
		steps:   steps,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.interrupted = true
			return m, tea.Quit
		}
	case stepMsg:
		m.results = append(m.results, smoke.StepResult(msg))
		return m, nil
	case doneMsg:
		m.res = msg.res
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	t := theme.Current
	passStyle := lipgloss.NewStyle().Foreground(t.Green).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.Overlay0)

	var b strings.Builder
	for _, sr := range m.results {
		badge := passStyle.Render("PASS")
		if sr.Status == smoke.StepFailed {
			badge = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&b, "  %s  %-28s %8s\n", badge, sr.Name, sr.Duration.Round(time.Millisecond))
	}

	switch {
	case m.done:
		// Final summary is printed by the caller after the program exits.
	case len(m.results) < len(m.steps):
		next := m.steps[len(m.results)]
		b.WriteString("  " + components.SpinnerWithLabel(m.spinner, next.Name) + "\n")
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("step %d of %d", len(m.results)+1, len(m.steps))))
	}

	return b.String()
}

// RunWithProgress executes the runner under a live progress UI and returns
// the run result. Quitting the UI cancels the in-flight step.
func RunWithProgress(ctx context.Context, runner *smoke.Runner) (*smoke.RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(runner.Steps()), tea.WithContext(ctx))
	runner.SetSink(func(sr smoke.StepResult) {
		p.Send(stepMsg(sr))
	})

	resCh := make(chan *smoke.RunResult, 1)
	go func() {
		res := runner.Run(ctx)
		resCh <- res
		p.Send(doneMsg{res: res})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-resCh
		return nil, fmt.Errorf("progress ui: %w", err)
	}

	if fm, ok := final.(progressModel); ok && fm.interrupted {
		cancel()
	}

	return <-resCh, nil
}
