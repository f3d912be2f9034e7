// Package smoke implements the sequential smoke suite: an ordered list of
// request/assert steps run strictly one after another, aborting on the
// first failure.
package smoke

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mealmax/mealprobe/internal/api"
)

// Step is one request/assert operation. Call issues exactly one blocking
// HTTP request; Expect lists literal substrings the raw response body must
// contain for the step to pass.
type Step struct {
	Name     string
	Endpoint string
	Call     func(ctx context.Context) (*api.Result, error)
	Expect   []string
}

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	StepPassed StepStatus = "passed"
	StepFailed StepStatus = "failed"
)

// StepResult records one executed step.
type StepResult struct {
	Seq      int           `json:"seq"`
	Name     string        `json:"name"`
	Endpoint string        `json:"endpoint"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Detail   string        `json:"detail,omitempty"`
	Body     []byte        `json:"-"`
}

// run executes the step and checks its expectations.
func (s Step) run(ctx context.Context, seq int) StepResult {
	start := time.Now()
	res := StepResult{Seq: seq, Name: s.Name, Endpoint: s.Endpoint, Status: StepPassed}

	out, err := s.Call(ctx)
	res.Duration = time.Since(start)

	if err != nil {
		res.Status = StepFailed
		res.Detail = err.Error()
		return res
	}

	res.Body = out.Body

	var missing []string
	for _, want := range s.Expect {
		if !out.Contains(want) {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		res.Status = StepFailed
		res.Detail = fmt.Sprintf("response missing %s (status %d): %s",
			quoteAll(missing), out.StatusCode, truncate(string(out.Body), 200))
	}
	return res
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
