package durable

import (
	"context"
	stdsql "database/sql"
	"fmt"
)

// RegionLock enforces spec §5's "the durability layer guarantees only
// one concurrent FullRun per region" using a session-scoped Postgres
// advisory lock keyed on the region slug's hash — held for the lifetime
// of one *sql.Conn checked out of the pool, released by an explicit
// pg_advisory_unlock on that session before the connection goes back.
// Concurrent runs across different regions take different lock keys and
// never block each other.
type RegionLock struct {
	db *stdsql.DB
}

// NewRegionLock wraps the shared connection pool.
func NewRegionLock(db *stdsql.DB) *RegionLock {
	return &RegionLock{db: db}
}

// Held is a lock acquired for one region; Release lets another run
// proceed for that region.
type Held struct {
	conn   *stdsql.Conn
	region string
	runID  string
}

// Release unlocks the region's advisory lock on the held session and
// returns the connection to the pool.
func (h *Held) Release() error {
	if h.conn == nil {
		return nil
	}
	_, unlockErr := h.conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, h.region)
	closeErr := h.conn.Close()
	if unlockErr != nil {
		return fmt.Errorf("advisory unlock for region %s: %w", h.region, unlockErr)
	}
	return closeErr
}

// ErrRegionBusy indicates another run already holds the lock for this
// region.
var ErrRegionBusy = fmt.Errorf("durable: region already has a run in progress")

// Acquire tries to take the region's lock for runID, recording the
// holder in region_run_locks so an operator can see who holds it
// without attaching to the session. It does not block: if the lock is
// already held, it returns ErrRegionBusy immediately, since a queued
// FullRun waiting behind another is not useful — the next scheduled
// invocation will simply try again.
func (l *RegionLock) Acquire(ctx context.Context, region, runID string) (*Held, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkout connection for region lock: %w", err)
	}

	var got bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, region).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("try advisory lock for region %s: %w", region, err)
	}
	if !got {
		_ = conn.Close()
		return nil, ErrRegionBusy
	}

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO region_run_locks (region_slug, run_id) VALUES ($1, $2)
		 ON CONFLICT (region_slug) DO UPDATE SET run_id = EXCLUDED.run_id, acquired_at = now()`,
		region, runID); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("record region lock holder: %w", err)
	}

	return &Held{conn: conn, region: region, runID: runID}, nil
}
