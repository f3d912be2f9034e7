package smoke_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mealmax/mealprobe/internal/smoke"
)

func sampleResult(failed bool) *smoke.RunResult {
	res := &smoke.RunResult{
		ID:         "0a1b2c3d-4e5f-6789-abcd-ef0123456789",
		Suite:      "default",
		BaseURL:    "http://localhost:5000",
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
		Duration:   time.Second,
		StepsTotal: 2,
		Steps: []smoke.StepResult{
			{Seq: 1, Name: "health", Endpoint: "GET /api/health", Status: smoke.StepPassed, Duration: 12 * time.Millisecond},
		},
	}
	if failed {
		res.Failed = true
		res.FailureStep = "db-check"
		res.FailureDetail = `response missing "\"database_status\": \"healthy\"" (status 404)`
		res.Steps = append(res.Steps, smoke.StepResult{
			Seq: 2, Name: "db-check", Endpoint: "GET /api/db-check",
			Status: smoke.StepFailed, Detail: res.FailureDetail,
		})
		res.StepsPassed = 1
	} else {
		res.Steps = append(res.Steps, smoke.StepResult{
			Seq: 2, Name: "db-check", Endpoint: "GET /api/db-check", Status: smoke.StepPassed,
		})
		res.StepsPassed = 2
	}
	return res
}

func TestRenderTextPassed(t *testing.T) {
	out := smoke.RenderText(sampleResult(false), false)

	if !strings.Contains(out, "PASS: 2/2 steps passed") {
		t.Errorf("missing pass summary:\n%s", out)
	}
	if !strings.Contains(out, "0a1b2c3d") {
		t.Errorf("missing short run ID:\n%s", out)
	}
	if !strings.Contains(out, "GET /api/health") {
		t.Errorf("missing endpoint:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output should have no ANSI escapes:\n%q", out)
	}
}

func TestRenderTextFailed(t *testing.T) {
	out := smoke.RenderText(sampleResult(true), false)

	if !strings.Contains(out, `FAIL: 1/2 steps passed, failed at "db-check"`) {
		t.Errorf("missing fail summary:\n%s", out)
	}
	if !strings.Contains(out, "database_status") {
		t.Errorf("missing failure detail:\n%s", out)
	}
}
