package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mealmax/mealprobe/internal/smoke"
)

// ErrRunNotFound indicates no run exists with the given ID.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the recorded outcome of a run.
type RunStatus string

const (
	RunPassed RunStatus = "passed"
	RunFailed RunStatus = "failed"
)

// Run is one recorded suite invocation.
type Run struct {
	ID            string    `json:"run_id"`
	Suite         string    `json:"suite"`
	BaseURL       string    `json:"base_url"`
	Status        RunStatus `json:"status"`
	StepsTotal    int       `json:"steps_total"`
	StepsPassed   int       `json:"steps_passed"`
	FailureStep   string    `json:"failure_step,omitempty"`
	FailureDetail string    `json:"failure_detail,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// StepRecord is one recorded step outcome.
type StepRecord struct {
	RunID      string `json:"run_id"`
	Seq        int    `json:"seq"`
	Name       string `json:"name"`
	Endpoint   string `json:"endpoint"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Detail     string `json:"detail,omitempty"`
}

// SaveRun records a completed suite run and its step outcomes atomically.
func (db *DB) SaveRun(res *smoke.RunResult) error {
	run := runFromResult(res)

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (
				id, suite_name, base_url, status, steps_total, steps_passed,
				failure_step, failure_detail, started_at, finished_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID, run.Suite, run.BaseURL, string(run.Status),
			run.StepsTotal, run.StepsPassed,
			nullString(run.FailureStep), nullString(run.FailureDetail),
			run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		for _, sr := range res.Steps {
			_, err := tx.Exec(`
				INSERT INTO step_results (run_id, seq, name, endpoint, status, duration_ms, detail)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				run.ID, sr.Seq, sr.Name, sr.Endpoint, string(sr.Status),
				sr.Duration.Milliseconds(), nullString(sr.Detail),
			)
			if err != nil {
				return fmt.Errorf("inserting step result %d: %w", sr.Seq, err)
			}
		}
		return nil
	})
}

func runFromResult(res *smoke.RunResult) *Run {
	run := &Run{
		ID:            res.ID,
		Suite:         res.Suite,
		BaseURL:       res.BaseURL,
		Status:        RunPassed,
		StepsTotal:    res.StepsTotal,
		StepsPassed:   res.StepsPassed,
		FailureStep:   res.FailureStep,
		FailureDetail: res.FailureDetail,
		StartedAt:     res.StartedAt,
		FinishedAt:    res.FinishedAt,
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Suite == "" {
		run.Suite = "default"
	}
	if res.Failed {
		run.Status = RunFailed
	}
	return run
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, suite_name, base_url, status, steps_total, steps_passed,
		       failure_step, failure_detail, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	return scanRunRow(row)
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, suite_name, base_url, status, steps_total, steps_passed,
		       failure_step, failure_detail, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var list []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ListStepResults returns the step outcomes of a run in execution order.
func (db *DB) ListStepResults(runID string) ([]*StepRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, seq, name, endpoint, status, duration_ms, detail
		FROM step_results WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing step results: %w", err)
	}
	defer rows.Close()

	var list []*StepRecord
	for rows.Next() {
		sr := &StepRecord{}
		var detail sql.NullString
		if err := rows.Scan(&sr.RunID, &sr.Seq, &sr.Name, &sr.Endpoint, &sr.Status, &sr.DurationMs, &detail); err != nil {
			return nil, fmt.Errorf("scanning step result: %w", err)
		}
		if detail.Valid {
			sr.Detail = detail.String
		}
		list = append(list, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunRow(row *sql.Row) (*Run, error) {
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var status, started, finished string
	var failureStep, failureDetail sql.NullString

	err := row.Scan(&run.ID, &run.Suite, &run.BaseURL, &status,
		&run.StepsTotal, &run.StepsPassed, &failureStep, &failureDetail,
		&started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = RunStatus(status)
	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("parsing run %s started_at: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return nil, fmt.Errorf("parsing run %s finished_at: %w", run.ID, err)
	}
	if failureStep.Valid {
		run.FailureStep = failureStep.String
	}
	if failureDetail.Valid {
		run.FailureDetail = failureDetail.String
	}
	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
