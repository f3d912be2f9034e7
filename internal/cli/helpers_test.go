package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mealmax/mealprobe/internal/config"
)

// resetFlags restores package-level flag state between tests. Cobra keeps
// flag values across Execute calls because the command tree is a singleton.
func resetFlags() {
	flagConfig = ""
	flagBaseURL = ""
	flagDB = ""
	flagOutput = "text"
	flagJSON = false
	flagVerbose = false

	flagRunEchoJSON = false
	flagRunTUI = false
	flagRunNoHistory = false
	flagRunWithRandom = false
	flagRunWaitReady = 0
	flagRunHook = ""

	flagCheckWaitReady = 0

	flagMealCuisine = ""
	flagMealPrice = 0
	flagMealDifficulty = "MED"
	flagMealByName = false

	flagLeaderboardSort = "wins"

	flagHistoryLimit = 20
	flagHistoryRun = ""

	flagInitForce = false

	flagWatchDebounce = 500 * time.Millisecond
}

// executeCommand runs the root command with args and captures stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	done := make(chan string, 1)
	go func() {
		raw, _ := io.ReadAll(r)
		done <- string(raw)
	}()

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = oldStdout
	out := <-done

	return out, execErr
}

// writeConfigWithRandom writes a config file pointing the random.org probe
// at a stub URL.
func writeConfigWithRandom(t *testing.T, randomURL string) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Random.Enabled = true
	cfg.Random.URL = randomURL

	path := filepath.Join(t.TempDir(), "mealprobe.toml")
	if err := config.Write(path, cfg); err != nil {
		t.Fatal(err)
	}
	return path
}
