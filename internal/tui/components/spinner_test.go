package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestNewSpinnerStyles(t *testing.T) {
	tests := []struct {
		name  string
		style SpinnerStyle
		want  spinner.Spinner
	}{
		{"dots", SpinnerStyleDots, spinner.Dot},
		{"line", SpinnerStyleLine, spinner.Line},
		{"pulse", SpinnerStylePulse, spinner.Pulse},
		{"unknown falls back to dots", SpinnerStyle(99), spinner.Dot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpinner(tt.style)
			if len(s.Spinner.Frames) != len(tt.want.Frames) {
				t.Errorf("unexpected spinner frames for style %v", tt.style)
			}
		})
	}
}

func TestSpinnerWithLabel(t *testing.T) {
	s := ProbeSpinner()
	out := SpinnerWithLabel(s, "waiting for /api/health")
	if !strings.Contains(out, "waiting for /api/health") {
		t.Errorf("label missing: %q", out)
	}
}
