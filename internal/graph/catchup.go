package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// replayBatchSize bounds how many events ReplayFrom pulls from the store
// per ReadFrom call, so catching up after a long outage doesn't try to
// load the whole log into memory at once.
const replayBatchSize = 500

// ReplayFrom walks the event log from sinceSeq (exclusive) to the end,
// applying every event to the reducer in order. It's the only path that
// ever advances the graph past a gap: the inline Apply call a writer
// makes after its own Append is a latency optimization, not the
// correctness guarantee — ReplayFrom, driven by RunCatchupLoop, is.
func (r *Reducer) ReplayFrom(ctx context.Context, store *eventstore.Store, sinceSeq int64) (int64, error) {
	cursor := sinceSeq
	for {
		batch, err := store.ReadFrom(ctx, cursor, replayBatchSize)
		if err != nil {
			return cursor, fmt.Errorf("read events from seq %d: %w", cursor, err)
		}
		if len(batch) == 0 {
			return cursor, nil
		}
		for _, ev := range batch {
			if _, err := r.Apply(ctx, ev); err != nil {
				return cursor, fmt.Errorf("apply event seq %d (%s): %w", ev.Seq, ev.EventType, err)
			}
			cursor = ev.Seq
		}
	}
}

// Rebuild wipes every row the reducer derives from the log and replays
// the log from the beginning. It's the last-resort recovery path (spec §4.3.1) — a
// reducer bug that wrote wrong data needs the whole graph rederived, not
// just the tail caught up. Grounded on the idempotent-MERGE property
// every apply* function already has: replaying from seq 0 against an
// empty graph is the same code path as normal catch-up, just longer.
func (r *Reducer) Rebuild(ctx context.Context, store *eventstore.Store) error {
	if err := r.wipe(ctx); err != nil {
		return fmt.Errorf("wipe projection: %w", err)
	}
	if _, err := r.ReplayFrom(ctx, store, 0); err != nil {
		return fmt.Errorf("replay from seq 0: %w", err)
	}
	return nil
}

// wipe deletes every row the reducer creates from events — the five
// signal node types and Evidence — (ent cascades the implicit
// sourced_from/acted_in join tables when the owning row goes), then the
// three raw-SQL tables enrichment and the reducer itself maintain outside
// ent's model. Sources, Actors, Places, Situations, Dispatches and the
// other nodes no event creates are kept, since replay cannot re-create
// them.
func (r *Reducer) wipe(ctx context.Context) error {
	entDeletes := []func(context.Context) (int, error){
		r.client.Gathering.Delete().Exec,
		r.client.Aid.Delete().Exec,
		r.client.Need.Delete().Exec,
		r.client.Notice.Delete().Exec,
		r.client.Tension.Delete().Exec,
		r.client.Evidence.Delete().Exec,
	}
	for _, del := range entDeletes {
		if _, err := del(ctx); err != nil {
			return err
		}
	}

	for _, table := range []string{"signal_edge_facts", "signal_similarities", "embedding_cache"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Cursor persists and loads the reducer's replay position in the
// singleton reducer_cursor row, so RunCatchupLoop survives a process
// restart instead of re-trusting seq 0 (and redoing work that's already
// idempotent, but needlessly so for a log of any size).
type Cursor struct {
	reducer *Reducer
}

// NewCursor wires a Cursor against the same *sql.DB the reducer uses for
// its own raw-SQL tables.
func NewCursor(r *Reducer) *Cursor {
	return &Cursor{reducer: r}
}

// Load returns the last seq RunCatchupLoop successfully replayed through,
// or 0 if the cursor row hasn't advanced yet.
func (c *Cursor) Load(ctx context.Context) (int64, error) {
	var seq int64
	err := c.reducer.db.QueryRowContext(ctx, `SELECT last_processed_seq FROM reducer_cursor WHERE id = 1`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("load reducer cursor: %w", err)
	}
	return seq, nil
}

// Advance stores seq as the new cursor position. It's only ever called
// with a seq ReplayFrom actually reached, so a crash between a batch of
// applies and this call just means the next catch-up tick redoes a
// little idempotent work, not that it skips anything.
func (c *Cursor) Advance(ctx context.Context, seq int64) error {
	_, err := c.reducer.db.ExecContext(ctx,
		`UPDATE reducer_cursor SET last_processed_seq = $1, updated_at = now() WHERE id = 1`, seq)
	if err != nil {
		return fmt.Errorf("advance reducer cursor: %w", err)
	}
	return nil
}

// RunCatchupLoop is the correctness guarantee spec §4.3.1 asks for: the
// inline Apply a writer does right after its own Append only advances
// the graph for events that writer itself produced, so a subscriber that
// misses a NOTIFY (process restart, connection blip) would otherwise
// leave the projection stuck. Every interval, this compares the
// persisted cursor against the log's latest seq and replays any gap. It
// runs until ctx is cancelled.
func RunCatchupLoop(ctx context.Context, r *Reducer, store *eventstore.Store, cursor *Cursor, interval time.Duration) {
	tick := func() {
		last, err := cursor.Load(ctx)
		if err != nil {
			slog.Error("catch-up: load cursor failed", "error", err)
			return
		}
		latest, err := store.LatestSeq(ctx)
		if err != nil {
			slog.Error("catch-up: read latest seq failed", "error", err)
			return
		}
		if latest <= last {
			return
		}
		reached, err := r.ReplayFrom(ctx, store, last)
		if err != nil {
			slog.Error("catch-up: replay failed", "from_seq", last, "error", err)
			// Still advance to whatever we successfully reached, so the
			// next tick resumes past it rather than retrying the same
			// already-applied prefix.
			if reached > last {
				if aerr := cursor.Advance(ctx, reached); aerr != nil {
					slog.Error("catch-up: advance cursor after partial replay failed", "error", aerr)
				}
			}
			return
		}
		if err := cursor.Advance(ctx, reached); err != nil {
			slog.Error("catch-up: advance cursor failed", "error", err)
			return
		}
		if reached > last {
			slog.Info("catch-up: replayed gap", "from_seq", last, "to_seq", reached)
		}
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
