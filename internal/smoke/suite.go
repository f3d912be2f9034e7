package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/randomorg"
)

// RunResult is the outcome of a whole suite run.
type RunResult struct {
	ID            string        `json:"run_id"`
	Suite         string        `json:"suite"`
	BaseURL       string        `json:"base_url"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Steps         []StepResult  `json:"steps"`
	StepsTotal    int           `json:"steps_total"`
	StepsPassed   int           `json:"steps_passed"`
	Failed        bool          `json:"failed"`
	FailureStep   string        `json:"failure_step,omitempty"`
	FailureDetail string        `json:"failure_detail,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

// Runner executes a suite of steps in order, stopping at the first failure.
type Runner struct {
	steps   []Step
	suite   string
	baseURL string
	logger  *log.Logger
	sink    func(StepResult)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithSink registers a callback invoked after every executed step. Used by
// the progress UI; must not block.
func WithSink(fn func(StepResult)) RunnerOption {
	return func(r *Runner) { r.sink = fn }
}

// NewRunner builds a runner over the given steps.
func NewRunner(suite, baseURL string, steps []Step, opts ...RunnerOption) *Runner {
	r := &Runner{
		steps:   steps,
		suite:   suite,
		baseURL: baseURL,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Steps returns the ordered step list.
func (r *Runner) Steps() []Step {
	return r.steps
}

// SetSink replaces the per-step callback. Must be called before Run.
func (r *Runner) SetSink(fn func(StepResult)) {
	r.sink = fn
}

// Run executes the steps sequentially. The first failing step aborts the
// run; remaining steps are not attempted. Context cancellation fails the
// in-flight step.
func (r *Runner) Run(ctx context.Context) *RunResult {
	res := &RunResult{
		ID:         uuid.New().String(),
		Suite:      r.suite,
		BaseURL:    r.baseURL,
		StartedAt:  time.Now().UTC(),
		StepsTotal: len(r.steps),
	}

	r.logger.Info("starting smoke run", "run_id", res.ID, "base_url", r.baseURL, "steps", len(r.steps))

	for i, step := range r.steps {
		sr := step.run(ctx, i+1)
		res.Steps = append(res.Steps, sr)

		if r.sink != nil {
			r.sink(sr)
		}

		if sr.Status == StepFailed {
			res.Failed = true
			res.FailureStep = sr.Name
			res.FailureDetail = sr.Detail
			r.logger.Error("step failed", "step", sr.Name, "endpoint", sr.Endpoint, "detail", sr.Detail)
			break
		}

		res.StepsPassed++
		r.logger.Info("step passed", "step", sr.Name, "duration", sr.Duration.Round(time.Millisecond))
	}

	res.FinishedAt = time.Now().UTC()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	return res
}

// SuiteOptions selects optional parts of the default suite.
type SuiteOptions struct {
	// IncludeRandom adds the random.org dependency probe.
	IncludeRandom bool
	// Random is the probe client; required when IncludeRandom is set.
	Random *randomorg.Client
}

// sampleMeals are the fixtures the default suite creates. The first one is
// deleted again to exercise delete-meal; the middle two fight.
var sampleMeals = []api.CreateMealRequest{
	{Name: "Pizza", Cuisine: "Italian", Price: 15.99, Difficulty: "MED"},
	{Name: "Tacos", Cuisine: "Mexican", Price: 12.99, Difficulty: "LOW"},
	{Name: "Sushi", Cuisine: "Japanese", Price: 20.99, Difficulty: "HIGH"},
	{Name: "Poutine", Cuisine: "Canadian", Price: 9.49, Difficulty: "LOW"},
}

// DefaultSuite returns the fixed end-to-end step order: health and database
// checks, catalog reset, meal CRUD, then a battle and both leaderboard
// sorts.
func DefaultSuite(c *api.Client, opts SuiteOptions) []Step {
	steps := []Step{
		{
			Name:     "health",
			Endpoint: "GET /api/health",
			Call:     c.Health,
			Expect:   []string{`"status": "healthy"`},
		},
		{
			Name:     "db-check",
			Endpoint: "GET /api/db-check",
			Call:     c.DBCheck,
			Expect:   []string{`"database_status": "healthy"`},
		},
	}

	if opts.IncludeRandom {
		steps = append(steps, Step{
			Name:     "random-org",
			Endpoint: "GET random.org decimal-fractions",
			Call: func(ctx context.Context) (*api.Result, error) {
				_, text, err := opts.Random.GetRandom(ctx)
				if err != nil {
					return nil, err
				}
				return &api.Result{StatusCode: 200, Body: []byte(text)}, nil
			},
		})
	}

	steps = append(steps, Step{
		Name:     "clear-meals",
		Endpoint: "DELETE /api/clear-meals",
		Call:     c.ClearMeals,
		Expect:   []string{`"status": "success"`},
	})

	for _, m := range sampleMeals {
		m := m
		steps = append(steps, Step{
			Name:     "create-meal " + m.Name,
			Endpoint: "POST /api/create-meal",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.CreateMeal(ctx, m)
			},
			Expect: []string{`"status": "success"`},
		})
	}

	steps = append(steps,
		Step{
			Name:     "delete-meal",
			Endpoint: "DELETE /api/delete-meal/1",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.DeleteMeal(ctx, 1)
			},
			Expect: []string{`"status": "success"`},
		},
		Step{
			Name:     "get-meal-by-id",
			Endpoint: "GET /api/get-meal-by-id/2",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.GetMealByID(ctx, 2)
			},
			Expect: []string{`"status": "success"`, `"meal": "Tacos"`},
		},
		Step{
			Name:     "get-meal-by-name",
			Endpoint: "GET /api/get-meal-by-name/Sushi",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.GetMealByName(ctx, "Sushi")
			},
			Expect: []string{`"status": "success"`, `"meal": "Sushi"`},
		},
		Step{
			Name:     "clear-combatants",
			Endpoint: "POST /api/clear-combatants",
			Call:     c.ClearCombatants,
			Expect:   []string{`"status": "success"`},
		},
		Step{
			Name:     "prep-combatant Tacos",
			Endpoint: "POST /api/prep-combatant",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.PrepCombatant(ctx, "Tacos")
			},
			Expect: []string{`"status": "success"`},
		},
		Step{
			Name:     "prep-combatant Sushi",
			Endpoint: "POST /api/prep-combatant",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.PrepCombatant(ctx, "Sushi")
			},
			Expect: []string{`"status": "success"`},
		},
		Step{
			Name:     "get-combatants",
			Endpoint: "GET /api/get-combatants",
			Call:     c.GetCombatants,
			Expect:   []string{`"status": "success"`, `"meal": "Tacos"`, `"meal": "Sushi"`},
		},
		Step{
			Name:     "battle",
			Endpoint: "GET /api/battle",
			Call:     c.Battle,
			Expect:   []string{`"status": "battle complete"`, `"winner"`},
		},
		Step{
			Name:     "leaderboard-wins",
			Endpoint: "GET /api/leaderboard?sort=wins",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.Leaderboard(ctx, "wins")
			},
			Expect: []string{`"status": "success"`, `"leaderboard"`},
		},
		Step{
			Name:     "leaderboard-win-pct",
			Endpoint: "GET /api/leaderboard?sort=win_pct",
			Call: func(ctx context.Context) (*api.Result, error) {
				return c.Leaderboard(ctx, "win_pct")
			},
			Expect: []string{`"status": "success"`, `"leaderboard"`},
		},
	)

	return steps
}

// Validate rejects suite options that cannot run.
func (o SuiteOptions) Validate() error {
	if o.IncludeRandom && o.Random == nil {
		return fmt.Errorf("random probe enabled but no random.org client configured")
	}
	return nil
}
