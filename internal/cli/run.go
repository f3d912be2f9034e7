package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/history"
	"github.com/mealmax/mealprobe/internal/notify"
	"github.com/mealmax/mealprobe/internal/output"
	"github.com/mealmax/mealprobe/internal/smoke"
	"github.com/mealmax/mealprobe/internal/tui"
)

var (
	flagRunEchoJSON   bool
	flagRunTUI        bool
	flagRunNoHistory  bool
	flagRunWithRandom bool
	flagRunWaitReady  time.Duration
	flagRunHook       string
)

func init() {
	runCmd.Flags().BoolVar(&flagRunEchoJSON, "echo-json", false, "pretty-print every response body")
	runCmd.Flags().BoolVar(&flagRunTUI, "tui", false, "show live progress UI (TTY only)")
	runCmd.Flags().BoolVar(&flagRunNoHistory, "no-history", false, "skip recording the run locally")
	runCmd.Flags().BoolVar(&flagRunWithRandom, "with-random", false, "include the random.org dependency probe")
	runCmd.Flags().DurationVar(&flagRunWaitReady, "wait-ready", 0, "wait up to this long for the service to become healthy before the run")
	runCmd.Flags().StringVar(&flagRunHook, "on-failure", "", "command to execute when the run fails (overrides config)")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full smoke suite",
	Long: `Run the smoke suite against the configured service.

Steps execute strictly in order; each one issues a single HTTP request and
asserts literal substrings of the raw JSON response. The first failure
aborts the run and the command exits non-zero.

Examples:
  mealprobe run
  mealprobe run --base-url http://localhost:5000 --echo-json
  mealprobe run --wait-ready 30s --on-failure 'notify-send mealprobe-failed'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := newClient(cfg, logger)

		suiteOpts := smoke.SuiteOptions{
			IncludeRandom: flagRunWithRandom || cfg.Random.Enabled,
		}
		if suiteOpts.IncludeRandom {
			suiteOpts.Random = newRandomClient(cfg, logger)
		}
		if err := suiteOpts.Validate(); err != nil {
			return err
		}

		waitReady := flagRunWaitReady
		if waitReady == 0 && cfg.Run.WaitReadySecs > 0 {
			waitReady = time.Duration(cfg.Run.WaitReadySecs) * time.Second
		}
		if waitReady > 0 {
			if err := client.WaitReady(ctx, waitReady); err != nil {
				return err
			}
		}

		steps := smoke.DefaultSuite(client, suiteOpts)
		runner := smoke.NewRunner("default", cfg.Service.BaseURL, steps, smoke.WithLogger(logger))

		var res *smoke.RunResult
		useTUI := flagRunTUI && GetOutput() != "json" && output.IsTerminal(os.Stdout)
		if useTUI {
			res, err = tui.RunWithProgress(ctx, runner)
			if err != nil {
				return err
			}
		} else {
			if flagRunEchoJSON || cfg.Run.EchoJSON {
				runner.SetSink(func(sr smoke.StepResult) {
					if len(sr.Body) > 0 {
						fmt.Fprintf(os.Stderr, "--- %s\n%s\n", sr.Name, output.PrettyJSON(sr.Body))
					}
				})
			}
			res = runner.Run(ctx)
		}

		if !flagRunNoHistory && cfg.History.Enabled {
			if err := recordRun(cfg.History.DBPath, res); err != nil {
				logger.Warn("recording run history failed", "error", err)
			}
		}

		if res.Failed {
			hookCmd := flagRunHook
			if hookCmd == "" {
				hookCmd = cfg.Run.OnFailureHook
			}
			hook := notify.NewHook(hookCmd, logger)
			if hook.Enabled() {
				if err := hook.Fire(ctx, notify.FailureInfo{
					RunID:       res.ID,
					Suite:       res.Suite,
					BaseURL:     res.BaseURL,
					FailedStep:  res.FailureStep,
					Detail:      res.FailureDetail,
					StepsPassed: res.StepsPassed,
					StepsTotal:  res.StepsTotal,
				}); err != nil {
					logger.Warn("failure hook error", "error", err)
				}
			}
		}

		out := output.New(output.Format(GetOutput()))
		if GetOutput() == "json" {
			if err := out.Write(res); err != nil {
				return err
			}
		} else {
			styled := output.IsTerminal(os.Stdout)
			fmt.Print(smoke.RenderText(res, styled))
		}

		if res.Failed {
			return fmt.Errorf("smoke run failed at step %q: %s", res.FailureStep, res.FailureDetail)
		}
		return nil
	},
}

// recordRun stores the run in the local history database.
func recordRun(dbPath string, res *smoke.RunResult) error {
	db, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()
	return db.SaveRun(res)
}
