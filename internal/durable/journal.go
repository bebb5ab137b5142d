// Package durable wraps the suspension points spec §5 names (LLM calls,
// fetches, graph writes, event appends) so a crash mid-workflow resumes
// from the last completed step instead of restarting from scratch. A
// Step call either returns the journaled result of a prior attempt or
// runs the work and journals it; either way the caller can't tell the
// difference except by latency.
package durable

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotJournaled is returned by Journal.Load when no row exists yet for
// the given (runID, step) pair.
var ErrNotJournaled = errors.New("durable: step not journaled")

// Journal persists step results keyed by (run_id, step_name) in the
// run_steps table. It has no opinion on what a step's result type is —
// Step (step.go) owns the JSON (de)serialization.
type Journal struct {
	db *stdsql.DB
}

// NewJournal wraps the shared connection pool.
func NewJournal(db *stdsql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) load(ctx context.Context, runID, step string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := j.db.QueryRowContext(ctx, `SELECT result FROM run_steps WHERE run_id = $1 AND step_name = $2`, runID, step).Scan(&raw)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, ErrNotJournaled
	}
	if err != nil {
		return nil, fmt.Errorf("load journal row for %s/%s: %w", runID, step, err)
	}
	return raw, nil
}

func (j *Journal) store(ctx context.Context, runID, step string, raw json.RawMessage) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step_name, result) VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, step_name) DO NOTHING`,
		runID, step, raw)
	if err != nil {
		return fmt.Errorf("store journal row for %s/%s: %w", runID, step, err)
	}
	return nil
}
