package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mealmax/mealprobe/internal/history"
	"github.com/mealmax/mealprobe/internal/testutil"
)

func TestRunCommandPasses(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := executeCommand(t, "run", "--base-url", srv.URL(), "--db", dbPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "PASS") {
		t.Errorf("expected PASS summary:\n%s", out)
	}

	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Status != history.RunPassed {
		t.Errorf("recorded status = %s", runs[0].Status)
	}
}

func TestRunCommandFailsNonZero(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	srv.SetDBHealthy(false)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := executeCommand(t, "run", "--base-url", srv.URL(), "--db", dbPath)
	if err == nil {
		t.Fatalf("expected error for failing suite:\n%s", out)
	}
	if !strings.Contains(err.Error(), "db-check") {
		t.Errorf("error should name the failed step: %v", err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL summary:\n%s", out)
	}

	// Failed runs are recorded too.
	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer db.Close()

	runs, _ := db.ListRuns(10)
	if len(runs) != 1 || runs[0].Status != history.RunFailed {
		t.Errorf("failed run not recorded: %+v", runs)
	}
}

func TestRunCommandNoHistory(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	if _, err := executeCommand(t, "run", "--base-url", srv.URL(), "--db", dbPath, "--no-history"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	defer db.Close()

	stats, _ := db.GetStats()
	if stats.RunCount != 0 {
		t.Errorf("run recorded despite --no-history: %d", stats.RunCount)
	}
}

func TestRunCommandJSONOutput(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := executeCommand(t, "run", "-o", "json", "--base-url", srv.URL(), "--db", dbPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	var res struct {
		RunID       string `json:"run_id"`
		Failed      bool   `json:"failed"`
		StepsPassed int    `json:"steps_passed"`
		StepsTotal  int    `json:"steps_total"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Failed || res.StepsPassed != res.StepsTotal || res.RunID == "" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunCommandFiresFailureHook(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	srv.SetHealthy(false)

	marker := filepath.Join(t.TempDir(), "hook-fired")
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, err := executeCommand(t, "run",
		"--base-url", srv.URL(), "--db", dbPath,
		"--on-failure", "touch "+marker)
	if err == nil {
		t.Fatal("expected failing run")
	}

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("failure hook did not run: %v", err)
	}
}
