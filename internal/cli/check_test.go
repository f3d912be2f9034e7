package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mealmax/mealprobe/internal/testutil"
)

func TestCheckHealth(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	out, err := executeCommand(t, "check", "health", "--base-url", srv.URL())
	if err != nil {
		t.Fatalf("check health failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "health: ok") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestCheckHealthUnhealthy(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)
	srv.SetHealthy(false)

	out, err := executeCommand(t, "check", "health", "--base-url", srv.URL())
	if err == nil {
		t.Fatalf("expected error for unhealthy service:\n%s", out)
	}
	if !strings.Contains(out, "FAILED") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestCheckDB(t *testing.T) {
	srv := testutil.NewMealServer()
	t.Cleanup(srv.Close)

	if _, err := executeCommand(t, "check", "db", "--base-url", srv.URL()); err != nil {
		t.Fatalf("check db failed: %v", err)
	}

	srv.SetDBHealthy(false)
	if _, err := executeCommand(t, "check", "db", "--base-url", srv.URL()); err == nil {
		t.Fatal("expected error when the database is down")
	}
}

func TestCheckRandom(t *testing.T) {
	random := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0.73\n"))
	}))
	t.Cleanup(random.Close)

	cfgPath := writeConfigWithRandom(t, random.URL)
	out, err := executeCommand(t, "check", "random", "--config", cfgPath)
	if err != nil {
		t.Fatalf("check random failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "random: ok") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestCheckRandomBadValue(t *testing.T) {
	random := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-a-number"))
	}))
	t.Cleanup(random.Close)

	cfgPath := writeConfigWithRandom(t, random.URL)
	if _, err := executeCommand(t, "check", "random", "--config", cfgPath); err == nil {
		t.Fatal("expected error for invalid random.org response")
	}
}
