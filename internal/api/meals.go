package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateMeal calls POST /api/create-meal.
func (c *Client) CreateMeal(ctx context.Context, req CreateMealRequest) (*Result, error) {
	return c.do(ctx, http.MethodPost, "/api/create-meal", req)
}

// ClearMeals calls DELETE /api/clear-meals, removing every meal from the catalog.
func (c *Client) ClearMeals(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodDelete, "/api/clear-meals", nil)
}

// DeleteMeal calls DELETE /api/delete-meal/{id}.
func (c *Client) DeleteMeal(ctx context.Context, id int) (*Result, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/delete-meal/%d", id), nil)
}

// GetMealByID calls GET /api/get-meal-by-id/{id}.
func (c *Client) GetMealByID(ctx context.Context, id int) (*Result, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/get-meal-by-id/%d", id), nil)
}

// GetMealByName calls GET /api/get-meal-by-name/{name}.
func (c *Client) GetMealByName(ctx context.Context, name string) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/api/get-meal-by-name/"+url.PathEscape(name), nil)
}

// DecodeMeal extracts the meal object from a get-meal response.
func DecodeMeal(res *Result) (*Meal, error) {
	var env mealEnvelope
	if err := res.Decode(&env); err != nil {
		return nil, err
	}
	if env.Meal == nil {
		return nil, fmt.Errorf("response has no meal object (status %q)", env.Status)
	}
	return env.Meal, nil
}
