// Package cli implements the mealprobe command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/config"
	"github.com/mealmax/mealprobe/internal/randomorg"
)

var (
	flagConfig  string
	flagBaseURL string
	flagDB      string
	flagOutput  string
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mealprobe",
	Short: "Smoke-test harness for the meal battle service",
	Long: `mealprobe exercises a meal battle service end to end: health and
database checks, meal CRUD, and a battle with a leaderboard.

Each operation is one blocking HTTP request whose raw JSON response is
checked for literal success markers. The first unexpected response aborts
the run with a non-zero exit code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./mealprobe.toml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "history database path (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "shorthand for -o json")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetOutput returns the effective output format.
func GetOutput() string {
	if flagJSON {
		return "json"
	}
	return flagOutput
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
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

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// machine-parseable.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// newClient builds the API client from config plus flags.
func newClient(cfg *config.Config, logger *log.Logger) *api.Client {
	opts := []api.Option{
		api.WithTimeout(time.Duration(cfg.Service.TimeoutSecs) * time.Second),
		api.WithLogger(logger),
	}
	if flagVerbose {
		opts = append(opts, api.WithDebugLogging())
	}
	return api.New(cfg.Service.BaseURL, opts...)
}

// newRandomClient builds the random.org probe client from config.
func newRandomClient(cfg *config.Config, logger *log.Logger) *randomorg.Client {
	opts := []randomorg.Option{randomorg.WithLogger(logger)}
	if cfg.Random.URL != "" {
		opts = append(opts, randomorg.WithURL(cfg.Random.URL))
	}
	return randomorg.New(opts...)
}
