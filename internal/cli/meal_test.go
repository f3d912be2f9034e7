package cli

import (
	"strings"
	"testing"

	"github.com/mealmax/mealprobe/internal/testutil"
)

func TestMealCreateAndGet(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	out, err := executeCommand(t, "meal", "create", "Pizza",
		"--cuisine", "Italian", "--price", "15.99", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("meal create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"status": "success"`) {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = executeCommand(t, "meal", "get", "1", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("meal get failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"meal": "Pizza"`) {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = executeCommand(t, "meal", "get", "Pizza", "--by-name", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("meal get --by-name failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"cuisine": "Italian"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestMealGetRejectsNonNumericID(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	if _, err := executeCommand(t, "meal", "get", "Pizza", "--base-url", srv.URL()); err == nil {
		t.Fatal("expected error for non-numeric ID without --by-name")
	}
}

func TestMealDeleteAndClear(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	if _, err := executeCommand(t, "meal", "create", "Tacos",
		"--cuisine", "Mexican", "--price", "12.99", "--difficulty", "LOW",
		"--base-url", srv.URL()); err != nil {
		t.Fatalf("meal create failed: %v", err)
	}

	if _, err := executeCommand(t, "meal", "delete", "1", "--base-url", srv.URL()); err != nil {
		t.Fatalf("meal delete failed: %v", err)
	}

	// Deleting an unknown meal surfaces the service's 404 as an error.
	if _, err := executeCommand(t, "meal", "delete", "42", "--base-url", srv.URL()); err == nil {
		t.Fatal("expected error for unknown meal")
	}

	if _, err := executeCommand(t, "meal", "clear", "--base-url", srv.URL()); err != nil {
		t.Fatalf("meal clear failed: %v", err)
	}
}

func TestBattleCommands(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	srv.SetRandom(func() float64 { return 0.0 })

	seed := [][]string{
		{"meal", "create", "Tacos", "--cuisine", "Mexican", "--price", "12.99", "--difficulty", "LOW"},
		{"meal", "create", "Sushi", "--cuisine", "Japanese", "--price", "20.99", "--difficulty", "HIGH"},
		{"battle", "prep", "Tacos"},
		{"battle", "prep", "Sushi"},
	}
	for _, args := range seed {
		if _, err := executeCommand(t, append(args, "--base-url", srv.URL())...); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}

	out, err := executeCommand(t, "battle", "combatants", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("battle combatants failed: %v", err)
	}
	if !strings.Contains(out, `"meal": "Tacos"`) || !strings.Contains(out, `"meal": "Sushi"`) {
		t.Errorf("combatants missing:\n%s", out)
	}

	out, err = executeCommand(t, "battle", "fight", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("battle fight failed: %v", err)
	}
	if !strings.Contains(out, `"winner": "Tacos"`) {
		t.Errorf("unexpected battle output:\n%s", out)
	}

	out, err = executeCommand(t, "battle", "leaderboard", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("battle leaderboard failed: %v", err)
	}
	if !strings.Contains(out, "Tacos") {
		t.Errorf("leaderboard missing winner:\n%s", out)
	}

	if _, err := executeCommand(t, "battle", "clear", "--base-url", srv.URL()); err != nil {
		t.Fatalf("battle clear failed: %v", err)
	}
}

func TestBattleLeaderboardRejectsBadSort(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	if _, err := executeCommand(t, "battle", "leaderboard", "--sort", "bogus", "--base-url", srv.URL()); err == nil {
		t.Fatal("expected error for invalid sort")
	}
}

func TestBattleFightWithoutCombatants(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	if _, err := executeCommand(t, "battle", "fight", "--base-url", srv.URL()); err == nil {
		t.Fatal("expected error with no prepped combatants")
	}
}
