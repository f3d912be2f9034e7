package cli

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/output"
)

var (
	flagMealCuisine    string
	flagMealPrice      float64
	flagMealDifficulty string
	flagMealByName     bool
)

func init() {
	mealCreateCmd.Flags().StringVar(&flagMealCuisine, "cuisine", "", "meal cuisine (required)")
	mealCreateCmd.Flags().Float64Var(&flagMealPrice, "price", 0, "meal price (required)")
	mealCreateCmd.Flags().StringVar(&flagMealDifficulty, "difficulty", "MED", "preparation difficulty (LOW|MED|HIGH)")
	_ = mealCreateCmd.MarkFlagRequired("cuisine")
	_ = mealCreateCmd.MarkFlagRequired("price")

	mealGetCmd.Flags().BoolVar(&flagMealByName, "by-name", false, "treat the argument as a meal name instead of an ID")

	mealCmd.AddCommand(mealCreateCmd)
	mealCmd.AddCommand(mealGetCmd)
	mealCmd.AddCommand(mealDeleteCmd)
	mealCmd.AddCommand(mealClearCmd)
	rootCmd.AddCommand(mealCmd)
}

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "One-off meal catalog calls",
}

var mealCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.CreateMeal(ctx, api.CreateMealRequest{
				Name:       args[0],
				Cuisine:    flagMealCuisine,
				Price:      flagMealPrice,
				Difficulty: flagMealDifficulty,
			})
		})
	},
}

var mealGetCmd = &cobra.Command{
	Use:   "get <id|name>",
	Short: "Fetch a meal by ID, or by name with --by-name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			if flagMealByName {
				return client.GetMealByName(ctx, args[0])
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid meal ID %q (use --by-name to look up by name)", args[0])
			}
			return client.GetMealByID(ctx, id)
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid meal ID %q", args[0])
		}
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.DeleteMeal(ctx, id)
		})
	},
}

var mealClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every meal in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *api.Client) (*api.Result, error) {
			return client.ClearMeals(ctx)
		})
	},
}

// withClient runs one API call and prints the raw JSON response. Non-2xx
// responses become errors so the exit code reflects the service's answer.
func withClient(call func(ctx context.Context, client *api.Client) (*api.Result, error)) error {
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
		return err
	}

	fmt.Println(output.PrettyJSON(res.Body))
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("service returned status %d", res.StatusCode)
	}
	return nil
}
