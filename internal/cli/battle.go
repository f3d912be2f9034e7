package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/output"
	"github.com/mealmax/mealprobe/internal/tui/components"
)

var flagLeaderboardSort string

func init() {
	battleLeaderboardCmd.Flags().StringVar(&flagLeaderboardSort, "sort", "wins", "sort order (wins|win_pct)")

	battleCmd.AddCommand(battlePrepCmd)
	battleCmd.AddCommand(battleFightCmd)
	battleCmd.AddCommand(battleCombatantsCmd)
	battleCmd.AddCommand(battleClearCmd)
	battleCmd.AddCommand(battleLeaderboardCmd)
	rootCmd.AddCommand(battleCmd)
}

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Battle ring operations",
}

var battlePrepCmd = &cobra.Command{
	Use:   "prep <meal-name>",
	Short: "Enter a meal into the ring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.PrepCombatant(ctx, args[0])
		})
	},
}

var battleFightCmd = &cobra.Command{
	Use:   "fight",
	Short: "Run a battle between the two prepped combatants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.Battle(ctx)
		})
	},
}

var battleCombatantsCmd = &cobra.Command{
	Use:   "combatants",
	Short: "List the meals currently in the ring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.GetCombatants(ctx)
		})
	},
}

var battleClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all combatants from the ring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.ClearCombatants(ctx)
		})
	},
}

var battleLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the battle leaderboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagLeaderboardSort != "wins" && flagLeaderboardSort != "win_pct" {
			return fmt.Errorf("invalid sort %q (use wins or win_pct)", flagLeaderboardSort)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()
		client := newClient(cfg, logger)

		ctx := cmd.Context()
		res, err := client.Leaderboard(ctx, flagLeaderboardSort)
		if err != nil {
			return err
		}

		entries, err := api.DecodeLeaderboard(res)
		if err != nil {
			return fmt.Errorf("unexpected leaderboard response: %w", err)
		}

		if GetOutput() == "json" {
			return output.New(output.FormatJSON).Write(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No battles recorded yet.")
			return nil
		}

		table := components.Table{
			Columns: []components.Column{
				{Header: "ID", Width: 4, Align: lipgloss.Right},
				{Header: "MEAL", Width: 20},
				{Header: "CUISINE", Width: 12},
				{Header: "BATTLES", Width: 8, Align: lipgloss.Right},
				{Header: "WINS", Width: 6, Align: lipgloss.Right},
				{Header: "WIN %", Width: 7, Align: lipgloss.Right},
			},
			ShowHeader: true,
			Styled:     output.IsTerminal(os.Stdout),
		}
		for _, e := range entries {
			table.AddRow(
				fmt.Sprintf("%d", e.ID),
				e.Name,
				e.Cuisine,
				fmt.Sprintf("%d", e.Battles),
				fmt.Sprintf("%d", e.Wins),
				fmt.Sprintf("%.1f", e.WinPct),
			)
		}
		fmt.Println(table.Render())
		return nil
	},
}
