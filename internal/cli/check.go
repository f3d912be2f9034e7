package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/output"
)

var flagCheckWaitReady time.Duration

func init() {
	checkCmd.PersistentFlags().DurationVar(&flagCheckWaitReady, "wait-ready", 0, "wait up to this long for the service to become healthy first")

	checkCmd.AddCommand(checkHealthCmd)
	checkCmd.AddCommand(checkDBCmd)
	checkCmd.AddCommand(checkRandomCmd)
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single probe",
}

type checkResult struct {
	Check    string `json:"check"`
	Healthy  bool   `json:"healthy"`
	Status   int    `json:"status_code,omitempty"`
	Response string `json:"response,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

var checkHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe GET /api/health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServiceCheck("health", `"status": "healthy"`, func(ctx context.Context, client *api.Client) (*api.Result, error) {
			if flagCheckWaitReady > 0 {
				if err := client.WaitReady(ctx, flagCheckWaitReady); err != nil {
					return nil, err
				}
			}
			return client.Health(ctx)
		})
	},
}

var checkDBCmd = &cobra.Command{
	Use:   "db",
	Short: "Probe GET /api/db-check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServiceCheck("db", `"database_status": "healthy"`, func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.DBCheck(ctx)
		})
	},
}

var checkRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Probe the random.org dependency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		n, raw, err := newRandomClient(cfg, logger).GetRandom(ctx)
		result := checkResult{Check: "random", Response: raw}
		if err != nil {
			result.Detail = err.Error()
			writeCheck(result)
			return fmt.Errorf("random.org check failed: %w", err)
		}
		result.Healthy = true
		result.Response = fmt.Sprintf("%.2f", n)
		writeCheck(result)
		return nil
	},
}

// runServiceCheck issues one probe and asserts the success marker, in the
// same single-request fail-fast shape as a suite step.
func runServiceCheck(name, marker string, call func(ctx context.Context, client *api.Client) (*api.Result, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	client := newClient(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := call(ctx, client)
	if err != nil {
		writeCheck(checkResult{Check: name, Detail: err.Error()})
		return fmt.Errorf("%s check failed: %w", name, err)
	}

	result := checkResult{Check: name, Status: res.StatusCode, Response: string(res.Body)}
	if res.StatusCode != http.StatusOK || !strings.Contains(string(res.Body), marker) {
		result.Detail = fmt.Sprintf("expected status 200 with %s", marker)
		writeCheck(result)
		return fmt.Errorf("%s check failed: status %d, marker %s not found", name, res.StatusCode, marker)
	}

	result.Healthy = true
	writeCheck(result)
	return nil
}

func writeCheck(result checkResult) {
	if GetOutput() == "json" {
		_ = output.New(output.FormatJSON).Write(result)
		return
	}
	if result.Healthy {
		fmt.Printf("%s: ok\n", result.Check)
	} else {
		fmt.Printf("%s: FAILED (%s)\n", result.Check, result.Detail)
	}
}
