package api

import (
	"context"
	"fmt"
	"net/http"
)

type prepCombatantRequest struct {
	Meal string `json:"meal"`
}

// PrepCombatant calls POST /api/prep-combatant, entering the named meal
// into the next battle. The ring holds at most two combatants.
func (c *Client) PrepCombatant(ctx context.Context, mealName string) (*Result, error) {
	return c.do(ctx, http.MethodPost, "/api/prep-combatant", prepCombatantRequest{Meal: mealName})
}

// GetCombatants calls GET /api/get-combatants.
func (c *Client) GetCombatants(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/api/get-combatants", nil)
}

// ClearCombatants calls POST /api/clear-combatants.
func (c *Client) ClearCombatants(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodPost, "/api/clear-combatants", nil)
}

// Battle calls GET /api/battle, running the two prepped combatants against
// each other. The winner stays in the ring; the loser is removed.
func (c *Client) Battle(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/api/battle", nil)
}

// Leaderboard calls GET /api/leaderboard. sort must be "wins" or "win_pct";
// empty defaults to "wins" server-side.
func (c *Client) Leaderboard(ctx context.Context, sort string) (*Result, error) {
	path := "/api/leaderboard"
	if sort != "" {
		path += "?sort=" + sort
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// DecodeCombatants extracts the combatant list from a get-combatants response.
func DecodeCombatants(res *Result) ([]Meal, error) {
	var env combatantsEnvelope
	if err := res.Decode(&env); err != nil {
		return nil, err
	}
	return env.Combatants, nil
}

// DecodeWinner extracts the winning meal name from a battle response.
func DecodeWinner(res *Result) (string, error) {
	var env battleEnvelope
	if err := res.Decode(&env); err != nil {
		return "", err
	}
	if env.Winner == "" {
		return "", fmt.Errorf("battle response has no winner (status %q)", env.Status)
	}
	return env.Winner, nil
}

// DecodeLeaderboard extracts leaderboard entries from a leaderboard response.
func DecodeLeaderboard(res *Result) ([]LeaderboardEntry, error) {
	var env leaderboardEnvelope
	if err := res.Decode(&env); err != nil {
		return nil, err
	}
	return env.Leaderboard, nil
}
