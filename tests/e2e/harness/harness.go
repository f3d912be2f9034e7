// Package harness provides the environment for end-to-end scenario tests:
// a stub meal service, a real history database, and a configured API
// client, wired together the way the CLI wires them.
package harness

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealmax/mealprobe/internal/api"
	"github.com/mealmax/mealprobe/internal/config"
	"github.com/mealmax/mealprobe/internal/history"
	"github.com/mealmax/mealprobe/internal/smoke"
	"github.com/mealmax/mealprobe/internal/testutil"
)

// Environment is a complete scenario-test setup. Everything is torn down
// via t.Cleanup.
type Environment struct {
	T *testing.T

	// Dir is the scenario's temp directory.
	Dir string

	// Server is the stub meal service.
	Server *testutil.MealServer

	// DB is the open history store.
	DB *history.DB

	// Client talks to the stub service.
	Client *api.Client

	// Config mirrors what the CLI would load.
	Config config.Config

	// Logger discards output unless the test runs with -v.
	Logger *log.Logger

	stepCount int
}

// New creates a scenario environment.
func New(t *testing.T) *Environment {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("opening history db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.DefaultConfig()
	cfg.Service.BaseURL = srv.URL()
	cfg.Service.TimeoutSecs = 2
	cfg.History.DBPath = dbPath

	logger := log.New(io.Discard)
	if testing.Verbose() {
		logger = log.Default()
	}

	client := api.New(srv.URL(),
		api.WithTimeout(time.Duration(cfg.Service.TimeoutSecs)*time.Second),
		api.WithLogger(logger),
	)

	return &Environment{
		T:      t,
		Dir:    dir,
		Server: srv,
		DB:     db,
		Client: client,
		Config: cfg,
		Logger: logger,
	}
}

// Step logs a numbered scenario step when running verbose.
func (e *Environment) Step(format string, args ...any) {
	e.T.Helper()
	e.stepCount++
	if testing.Verbose() {
		e.T.Logf("step %d: %s", e.stepCount, fmt.Sprintf(format, args...))
	}
}

// NewRunner builds a suite runner against the stub service.
func (e *Environment) NewRunner(opts smoke.SuiteOptions) *smoke.Runner {
	e.T.Helper()
	if err := opts.Validate(); err != nil {
		e.T.Fatalf("invalid suite options: %v", err)
	}
	steps := smoke.DefaultSuite(e.Client, opts)
	return smoke.NewRunner("default", e.Server.URL(), steps, smoke.WithLogger(e.Logger))
}

// SaveAndReload persists a run and reads it back from the store.
func (e *Environment) SaveAndReload(res *smoke.RunResult) *history.Run {
	e.T.Helper()
	if err := e.DB.SaveRun(res); err != nil {
		e.T.Fatalf("saving run: %v", err)
	}
	run, err := e.DB.GetRun(res.ID)
	if err != nil {
		e.T.Fatalf("reloading run %s: %v", res.ID, err)
	}
	return run
}
