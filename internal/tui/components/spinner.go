// Package components provides shared terminal UI building blocks.
package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/mealmax/mealprobe/internal/tui/theme"
)

// SpinnerStyle selects the spinner animation.
type SpinnerStyle int

const (
	SpinnerStyleDots SpinnerStyle = iota
	SpinnerStyleLine
	SpinnerStylePulse
)

// NewSpinner creates a spinner with the given style and theme color.
func NewSpinner(style SpinnerStyle) spinner.Model {
	s := spinner.New()

	switch style {
	case SpinnerStyleLine:
		s.Spinner = spinner.Line
	case SpinnerStylePulse:
		s.Spinner = spinner.Pulse
	default:
		s.Spinner = spinner.Dot
	}

	t := theme.Current
	s.Style = lipgloss.NewStyle().Foreground(t.Mauve)
	return s
}

// ProbeSpinner is the spinner shown while a step's request is in flight.
func ProbeSpinner() spinner.Model {
	s := NewSpinner(SpinnerStyleDots)
	t := theme.Current
	s.Style = lipgloss.NewStyle().Foreground(t.Blue)
	return s
}

// SpinnerWithLabel renders a spinner next to a label.
func SpinnerWithLabel(s spinner.Model, label string) string {
	t := theme.Current
	labelStyle := lipgloss.NewStyle().Foreground(t.Text)
	return s.View() + " " + labelStyle.Render(label)
}
