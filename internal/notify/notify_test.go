package notify

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestEmptyCommandIsDisabled(t *testing.T) {
	for _, command := range []string{"", "   "} {
		h := NewHook(command, quietLogger())
		if h.Enabled() {
			t.Errorf("hook %q should be disabled", command)
		}
		if err := h.Fire(context.Background(), FailureInfo{}); err != nil {
			t.Errorf("disabled hook should be a no-op, got %v", err)
		}
	}
}

func TestFirePassesEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook test uses sh")
	}

	outFile := filepath.Join(t.TempDir(), "hook.env")
	h := NewHook("sh -c 'env > "+outFile+"'", quietLogger())

	info := FailureInfo{
		RunID:       "run-42",
		Suite:       "default",
		BaseURL:     "http://localhost:5000",
		FailedStep:  "battle",
		Detail:      "response missing winner",
		StepsPassed: 12,
		StepsTotal:  16,
	}
	if err := h.Fire(context.Background(), info); err != nil {
		t.Fatalf("Fire failed: %v", err)
	}

	raw, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("hook did not write output: %v", err)
	}
	env := string(raw)

	for _, want := range []string{
		"MEALPROBE_RUN_ID=run-42",
		"MEALPROBE_SUITE=default",
		"MEALPROBE_BASE_URL=http://localhost:5000",
		"MEALPROBE_FAILED_STEP=battle",
		"MEALPROBE_FAILURE_DETAIL=response missing winner",
		"MEALPROBE_STEPS_PASSED=12",
		"MEALPROBE_STEPS_TOTAL=16",
	} {
		if !strings.Contains(env, want) {
			t.Errorf("hook environment missing %q", want)
		}
	}
}

func TestFireReportsCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook test uses sh")
	}

	h := NewHook("sh -c 'echo broken >&2; exit 3'", quietLogger())
	err := h.Fire(context.Background(), FailureInfo{RunID: "r"})
	if err == nil {
		t.Fatal("expected error for failing hook")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should include hook output: %v", err)
	}
}

func TestFireRejectsUnparseableCommand(t *testing.T) {
	h := NewHook(`sh -c 'unterminated`, quietLogger())
	if err := h.Fire(context.Background(), FailureInfo{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFireMissingBinary(t *testing.T) {
	h := NewHook("definitely-not-a-real-binary-mealprobe", quietLogger())
	if err := h.Fire(context.Background(), FailureInfo{}); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
