// Package notify fires the configured on-failure hook after a failed run.
package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	shellwords "github.com/mattn/go-shellwords"
)

// HookTimeout is the maximum time the hook command may run.
const HookTimeout = 10 * time.Second

// FailureInfo describes the failed run for the hook's environment.
type FailureInfo struct {
	RunID       string
	Suite       string
	BaseURL     string
	FailedStep  string
	Detail      string
	StepsPassed int
	StepsTotal  int
}

// Hook executes a user-configured command when a run fails.
type Hook struct {
	command string
	timeout time.Duration
	logger  *log.Logger
}

// NewHook builds a hook for the given command line. An empty command yields
// a no-op hook.
func NewHook(command string, logger *log.Logger) *Hook {
	if logger == nil {
		logger = log.Default()
	}
	return &Hook{
		command: strings.TrimSpace(command),
		timeout: HookTimeout,
		logger:  logger,
	}
}

// Enabled reports whether a command is configured.
func (h *Hook) Enabled() bool {
	return h.command != ""
}

// Fire parses and runs the hook command. Run metadata is passed through
// MEALPROBE_* environment variables so hooks can be plain shell one-liners.
func (h *Hook) Fire(ctx context.Context, info FailureInfo) error {
	if !h.Enabled() {
		return nil
	}

	args, err := shellwords.Parse(h.command)
	if err != nil {
		return fmt.Errorf("parsing hook command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(),
		"MEALPROBE_RUN_ID="+info.RunID,
		"MEALPROBE_SUITE="+info.Suite,
		"MEALPROBE_BASE_URL="+info.BaseURL,
		"MEALPROBE_FAILED_STEP="+info.FailedStep,
		"MEALPROBE_FAILURE_DETAIL="+info.Detail,
		fmt.Sprintf("MEALPROBE_STEPS_PASSED=%d", info.StepsPassed),
		fmt.Sprintf("MEALPROBE_STEPS_TOTAL=%d", info.StepsTotal),
	)

	h.logger.Info("firing failure hook", "command", args[0], "run_id", info.RunID)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("hook command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
