package smoke_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/smoke"
	"github.com/mealmax/mealprobe/internal/testutil"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newSuiteRunner(t *testing.T) (*smoke.Runner, *testutil.MealServer) {
	t.Helper()
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	client := api.New(srv.URL(), api.WithTimeout(2*time.Second))
	steps := smoke.DefaultSuite(client, smoke.SuiteOptions{})
	runner := smoke.NewRunner("default", srv.URL(), steps, smoke.WithLogger(quietLogger()))
	return runner, srv
}

func TestDefaultSuitePasses(t *testing.T) {
	runner, _ := newSuiteRunner(t)

	res := runner.Run(context.Background())
	if res.Failed {
		t.Fatalf("suite failed at %q: %s", res.FailureStep, res.FailureDetail)
	}
	if res.StepsPassed != res.StepsTotal {
		t.Errorf("expected %d passed steps, got %d", res.StepsTotal, res.StepsPassed)
	}
	if res.ID == "" {
		t.Error("run should have an ID")
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Error("finished before started")
	}
}

func TestSuiteStepOrder(t *testing.T) {
	runner, _ := newSuiteRunner(t)

	res := runner.Run(context.Background())
	wantFirst := []string{"health", "db-check", "clear-meals"}
	for i, name := range wantFirst {
		if res.Steps[i].Name != name {
			t.Errorf("step %d: got %q, want %q", i, res.Steps[i].Name, name)
		}
	}
	last := res.Steps[len(res.Steps)-1]
	if last.Name != "leaderboard-win-pct" {
		t.Errorf("last step: got %q, want leaderboard-win-pct", last.Name)
	}
	for i, sr := range res.Steps {
		if sr.Seq != i+1 {
			t.Errorf("step %q has seq %d, want %d", sr.Name, sr.Seq, i+1)
		}
	}
}

func TestSuiteFailsFastOnUnhealthyDB(t *testing.T) {
	runner, srv := newSuiteRunner(t)
	srv.SetDBHealthy(false)

	res := runner.Run(context.Background())
	if !res.Failed {
		t.Fatal("expected run to fail")
	}
	if res.FailureStep != "db-check" {
		t.Errorf("expected failure at db-check, got %q", res.FailureStep)
	}
	// health passed, db-check failed, nothing after was attempted.
	if len(res.Steps) != 2 {
		t.Errorf("expected 2 executed steps, got %d", len(res.Steps))
	}
	if res.StepsPassed != 1 {
		t.Errorf("expected 1 passed step, got %d", res.StepsPassed)
	}
	if srv.MealCount() != 0 {
		t.Errorf("steps after the failure ran: %d meals created", srv.MealCount())
	}
}

func TestFailureDetailNamesMissingSubstring(t *testing.T) {
	runner, srv := newSuiteRunner(t)
	srv.SetHealthy(false)

	res := runner.Run(context.Background())
	if !res.Failed {
		t.Fatal("expected run to fail")
	}
	if res.FailureStep != "health" {
		t.Errorf("expected failure at health, got %q", res.FailureStep)
	}
	if !strings.Contains(res.FailureDetail, `"status": "healthy"`) {
		t.Errorf("detail should name the missing substring: %s", res.FailureDetail)
	}
	if !strings.Contains(res.FailureDetail, "503") {
		t.Errorf("detail should include the status code: %s", res.FailureDetail)
	}
}

func TestSuiteFailsOnTransportError(t *testing.T) {
	srv := testutil.NewMealServer()
	base := srv.URL()
	srv.Close()

	client := api.New(base, api.WithTimeout(500*time.Millisecond))
	steps := smoke.DefaultSuite(client, smoke.SuiteOptions{})
	runner := smoke.NewRunner("default", base, steps, smoke.WithLogger(quietLogger()))

	res := runner.Run(context.Background())
	if !res.Failed {
		t.Fatal("expected run against a dead server to fail")
	}
	if res.FailureStep != "health" {
		t.Errorf("expected failure at the first step, got %q", res.FailureStep)
	}
	if res.StepsPassed != 0 {
		t.Errorf("expected no passed steps, got %d", res.StepsPassed)
	}
}

func TestSuiteStopsOnCancellation(t *testing.T) {
	runner, _ := newSuiteRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runner.Run(ctx)
	if !res.Failed {
		t.Fatal("expected cancelled run to fail")
	}
	if len(res.Steps) != 1 {
		t.Errorf("expected exactly one attempted step, got %d", len(res.Steps))
	}
}

func TestRunnerSinkSeesEveryStep(t *testing.T) {
	runner, _ := newSuiteRunner(t)

	var seen []string
	runner.SetSink(func(sr smoke.StepResult) {
		seen = append(seen, sr.Name)
	})

	res := runner.Run(context.Background())
	if len(seen) != len(res.Steps) {
		t.Errorf("sink saw %d steps, run recorded %d", len(seen), len(res.Steps))
	}
}

func TestSuiteOptionsValidate(t *testing.T) {
	if err := (smoke.SuiteOptions{}).Validate(); err != nil {
		t.Errorf("empty options should validate: %v", err)
	}
	if err := (smoke.SuiteOptions{IncludeRandom: true}).Validate(); err == nil {
		t.Error("random without client should be rejected")
	}
}

func TestStepWithoutExpectationsPassesOnAnyResponse(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	client := api.New(srv.URL())

	steps := []smoke.Step{{
		Name:     "no-expect",
		Endpoint: "GET /api/health",
		Call:     client.Health,
	}}
	runner := smoke.NewRunner("custom", srv.URL(), steps, smoke.WithLogger(quietLogger()))

	res := runner.Run(context.Background())
	if res.Failed {
		t.Fatalf("step without expectations failed: %s", res.FailureDetail)
	}
}
