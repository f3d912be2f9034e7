package smoke

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mealmax/mealprobe/internal/tui/theme"
)

// RenderText renders a run result for humans. When styled is false the
// output is plain text suitable for pipes and logs.
func RenderText(res *RunResult, styled bool) string {
	var b strings.Builder

	passBadge := "PASS"
	failBadge := "FAIL"
	header := fmt.Sprintf("smoke run %s against %s", shortID(res.ID), res.BaseURL)

	if styled {
		t := theme.Current
		passBadge = lipgloss.NewStyle().Foreground(t.Green).Bold(true).Render(passBadge)
		failBadge = lipgloss.NewStyle().Foreground(t.Red).Bold(true).Render(failBadge)
		header = lipgloss.NewStyle().Foreground(t.Blue).Bold(true).Render(header)
	}

	b.WriteString(header)
	b.WriteString("\n\n")

	for _, sr := range res.Steps {
		badge := passBadge
		if sr.Status == StepFailed {
			badge = failBadge
		}
		fmt.Fprintf(&b, "  %s  %-28s %-40s %8s\n",
			badge, sr.Name, sr.Endpoint, sr.Duration.Round(time.Millisecond))
		if sr.Status == StepFailed && sr.Detail != "" {
			fmt.Fprintf(&b, "        %s\n", sr.Detail)
		}
	}

	b.WriteString("\n")
	if res.Failed {
		fmt.Fprintf(&b, "%s: %d/%d steps passed, failed at %q (%s)\n",
			failBadge, res.StepsPassed, res.StepsTotal, res.FailureStep,
			res.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(&b, "%s: %d/%d steps passed (%s)\n",
			passBadge, res.StepsPassed, res.StepsTotal,
			res.Duration.Round(time.Millisecond))
	}

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
