package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Meal mirrors the service's meal object.
type Meal struct {
	ID         int     `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

// LeaderboardEntry is one row of the battle leaderboard.
type LeaderboardEntry struct {
	ID         int     `json:"id"`
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	WinPct     float64 `json:"win_pct"`
}

// CreateMealRequest is the payload for POST /api/create-meal.
type CreateMealRequest struct {
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

// Result is the outcome of a single API call. The raw body is retained
// because the smoke suite asserts on literal substrings of the response
// text rather than on decoded fields.
type Result struct {
	StatusCode int
	Body       []byte
}

// Contains reports whether the raw response body contains the literal substring.
func (r *Result) Contains(substr string) bool {
	return bytes.Contains(r.Body, []byte(substr))
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Response envelopes as returned by the service.

type mealEnvelope struct {
	Status string `json:"status"`
	Meal   *Meal  `json:"meal"`
}

type combatantsEnvelope struct {
	Status     string `json:"status"`
	Combatants []Meal `json:"combatants"`
}

type battleEnvelope struct {
	Status string `json:"status"`
	Winner string `json:"winner"`
}

type leaderboardEnvelope struct {
	Status      string             `json:"status"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
