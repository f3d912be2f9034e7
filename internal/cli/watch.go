package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/config"
	"github.com/mealmax/mealprobe/internal/output"
	"github.com/mealmax/mealprobe/internal/smoke"
)

var flagWatchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&flagWatchDebounce, "debounce", 500*time.Millisecond, "quiet period after a config change before re-running")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the suite whenever the config file changes",
	Long: `Run the smoke suite once, then watch the config file and re-run the
suite after every change. Useful while tuning base_url or timeouts
against a service that is being brought up.

Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath := flagConfig
		if cfgPath == "" {
			cfgPath = config.DefaultFileName
		}
		if _, err := os.Stat(cfgPath); err != nil {
			return fmt.Errorf("watch needs a config file: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory, not the file: editors replace files on
		// save, which drops a file-level watch.
		dir := filepath.Dir(cfgPath)
		if dir == "" {
			dir = "."
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		logger := newLogger()
		runOnce := func() {
			cfg, err := loadConfigFrom(cfgPath)
			if err != nil {
				logger.Error("config reload failed", "error", err)
				return
			}
			res := executeWatchedRun(ctx, cfg)
			if res == nil {
				return
			}
			fmt.Print(smoke.RenderText(res, output.IsTerminal(os.Stdout)))
			if cfg.History.Enabled {
				if err := recordRun(cfg.History.DBPath, res); err != nil {
					logger.Warn("recording run history failed", "error", err)
				}
			}
			fmt.Fprintf(os.Stderr, "\nWatching %s for changes...\n", cfgPath)
		}

		runOnce()
		return watchLoop(ctx, watcher, cfgPath, flagWatchDebounce, runOnce, logger)
	},
}

// watchLoop blocks until ctx is cancelled or the watcher closes, invoking
// runOnce after each debounced change to cfgPath. Events for other files in
// the watched directory and events other than writes and creates are
// ignored. Rapid successive changes collapse into one re-run.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, cfgPath string, debounceAfter time.Duration, runOnce func(), logger *log.Logger) error {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			runOnce()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(cfgPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceAfter, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// loadConfigFrom reloads config from an explicit path with flag overrides.
func loadConfigFrom(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.Service.BaseURL = flagBaseURL
	}
	if flagDB != "" {
		cfg.History.DBPath = flagDB
	}
	return cfg, nil
}

// executeWatchedRun runs one suite pass. Returns nil when the context was
// cancelled before the run could produce a result.
func executeWatchedRun(ctx context.Context, cfg *config.Config) *smoke.RunResult {
	if ctx.Err() != nil {
		return nil
	}
	logger := newLogger()
	client := newClient(cfg, logger)

	opts := smoke.SuiteOptions{IncludeRandom: cfg.Random.Enabled}
	if opts.IncludeRandom {
		opts.Random = newRandomClient(cfg, logger)
	}
	if err := opts.Validate(); err != nil {
		logger.Error("invalid suite options", "error", err)
		return nil
	}

	steps := smoke.DefaultSuite(client, opts)
	runner := smoke.NewRunner("default", cfg.Service.BaseURL, steps, smoke.WithLogger(logger))
	return runner.Run(ctx)
}
