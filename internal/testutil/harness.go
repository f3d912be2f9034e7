package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mealmax/mealprobe/internal/config"
	"github.com/mealmax/mealprobe/internal/history"
)

// Harness bundles the per-test environment: a temp directory, a migrated
// history database, a stub meal service, and a config pointing at both.
// Everything is cleaned up via t.Cleanup.
type Harness struct {
	T *testing.T

	// Dir is the temp working directory.
	Dir string

	// DBPath is the history database file.
	DBPath string

	// DB is the open, migrated history store.
	DB *history.DB

	// Server is the stub meal service.
	Server *MealServer

	// Config points at the stub service and the temp database.
	Config *config.Config
}

// NewHarness creates an isolated test environment.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	db, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("harness: opening history db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	srv := NewMealServer()
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Service.BaseURL = srv.URL()
	cfg.Service.TimeoutSecs = 2
	cfg.History.DBPath = dbPath

	return &Harness{
		T:      t,
		Dir:    dir,
		DBPath: dbPath,
		DB:     db,
		Server: srv,
		Config: &cfg,
	}
}
