package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/history"
	"github.com/mealmax/mealprobe/internal/output"
	"github.com/mealmax/mealprobe/internal/tui/components"
)

var (
	flagHistoryLimit int
	flagHistoryRun   string
)

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().StringVar(&flagHistoryRun, "run", "", "show step outcomes for one run ID")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past smoke runs",
	Long: `Browse smoke runs recorded in the local history database.

Without flags the most recent runs are listed. With --run <id>, the
per-step outcomes of that run are shown instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer db.Close()

		if flagHistoryRun != "" {
			return showRun(db, flagHistoryRun)
		}
		return listRuns(db, flagHistoryLimit)
	},
}

func listRuns(db *history.DB, limit int) error {
	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}

	if GetOutput() == "json" {
		return output.New(output.FormatJSON).Write(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	table := components.Table{
		Columns: []components.Column{
			{Header: "RUN", Width: 8},
			{Header: "WHEN", Width: 19},
			{Header: "SUITE", Width: 10},
			{Header: "BASE URL", Width: 28, MaxWidth: 28},
			{Header: "STEPS", Width: 7, Align: lipgloss.Right},
			{Header: "STATUS", Width: 6},
			{Header: "FAILED AT", Width: 18, MaxWidth: 18},
		},
		ShowHeader: true,
		Striped:    true,
		Styled:     output.IsTerminal(os.Stdout),
	}
	for _, run := range runs {
		table.AddRow(
			shortRunID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Suite,
			run.BaseURL,
			fmt.Sprintf("%d/%d", run.StepsPassed, run.StepsTotal),
			string(run.Status),
			run.FailureStep,
		)
	}
	fmt.Println(table.Render())
	return nil
}

func showRun(db *history.DB, runID string) error {
	run, err := db.GetRun(runID)
	if err != nil {
		return err
	}
	steps, err := db.ListStepResults(runID)
	if err != nil {
		return err
	}

	if GetOutput() == "json" {
		return output.New(output.FormatJSON).Write(struct {
			Run   *history.Run          `json:"run"`
			Steps []*history.StepRecord `json:"steps"`
		}{run, steps})
	}

	fmt.Printf("Run %s (%s) against %s: %s, %d/%d steps\n",
		shortRunID(run.ID), run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.BaseURL, run.Status, run.StepsPassed, run.StepsTotal)
	if run.FailureStep != "" {
		fmt.Printf("Failed at %s: %s\n", run.FailureStep, run.FailureDetail)
	}
	fmt.Println()

	table := components.Table{
		Columns: []components.Column{
			{Header: "#", Width: 3, Align: lipgloss.Right},
			{Header: "STEP", Width: 22},
			{Header: "ENDPOINT", Width: 32, MaxWidth: 32},
			{Header: "STATUS", Width: 6},
			{Header: "TIME", Width: 8, Align: lipgloss.Right},
			{Header: "DETAIL", Width: 30, MaxWidth: 30},
		},
		ShowHeader: true,
		Striped:    true,
		Styled:     output.IsTerminal(os.Stdout),
	}
	for _, sr := range steps {
		table.AddRow(
			fmt.Sprintf("%d", sr.Seq),
			sr.Name,
			sr.Endpoint,
			sr.Status,
			(time.Duration(sr.DurationMs) * time.Millisecond).String(),
			sr.Detail,
		)
	}
	fmt.Println(table.Render())
	return nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
