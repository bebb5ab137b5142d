package eventstore

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"fmt"
)

// Store is the append-only log described in spec §3.4/§6.3. It owns the
// events table and the pg_notify side of every write; NotifyListener is
// the read side.
type Store struct {
	db *stdsql.DB
}

// NewStore wraps the shared connection pool (storage.Client.DB()).
func NewStore(db *stdsql.DB) *Store {
	return &Store{db: db}
}

// AppendInput is everything Append needs beyond the payload itself.
// ParentSeq/CausedBySeq are nil for a root event (Event.IsRoot).
type AppendInput struct {
	EventType   EventType
	Payload     Payload
	ParentSeq   *int64
	CausedBySeq *int64
	RunID       string
	Actor       string
}

// Append persists one event and notifies subscribers, both inside a single
// transaction — pg_notify is transactional in Postgres and only fires once
// the transaction commits, so a listener never observes a seq that a
// concurrent ReadFrom can't yet see. Grounded on the teacher's
// EventPublisher.persistAndNotify; unlike the teacher, the NOTIFY payload
// here is just the seq (a few bytes), so there's no 8000-byte truncation
// path to worry about — the full event is always read back by seq.
func (s *Store) Append(ctx context.Context, in AppendInput) (Event, error) {
	if in.Payload == nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("nil payload"))
	}
	if in.Payload.payloadEventType() != in.EventType {
		return Event{}, NewAppendError(string(in.EventType), in.RunID,
			fmt.Errorf("payload is for event type %q, not %q", in.Payload.payloadEventType(), in.EventType))
	}

	payloadJSON, err := json.Marshal(in.Payload)
	if err != nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("marshal payload: %w", err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	var ev Event
	ev.EventType = in.EventType
	ev.Payload = in.Payload
	ev.ParentSeq = in.ParentSeq
	ev.CausedBySeq = in.CausedBySeq
	ev.RunID = in.RunID
	ev.Actor = in.Actor

	row := tx.QueryRowContext(ctx,
		`INSERT INTO events (event_type, parent_seq, caused_by_seq, run_id, actor, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING seq, ts, schema_v`,
		string(in.EventType), in.ParentSeq, in.CausedBySeq, in.RunID, in.Actor, payloadJSON,
	)
	if err := row.Scan(&ev.Seq, &ev.TS, &ev.SchemaV); err != nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("insert event: %w", err))
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", notifyChannel, fmt.Sprintf("%d", ev.Seq)); err != nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("pg_notify: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return Event{}, NewAppendError(string(in.EventType), in.RunID, fmt.Errorf("commit: %w", err))
	}

	return ev, nil
}

// LatestSeq returns the highest committed seq in the log, or 0 for an
// empty log. The graph catch-up loop compares this against a reducer's
// last-processed seq to decide whether there's a gap to replay.
func (s *Store) LatestSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query latest seq: %w", err)
	}
	return seq, nil
}

// ReadFrom returns up to limit events with seq > sinceSeq, in ascending
// seq order. It returns ErrGap if the rows read are not seq-contiguous —
// the table's BIGSERIAL PK guarantees no gaps under normal operation, so a
// gap here means corruption or a bug in how rows were deleted/retained.
func (s *Store) ReadFrom(ctx context.Context, sinceSeq int64, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, ts, event_type, parent_seq, caused_by_seq, run_id, actor, payload, schema_v
		 FROM events WHERE seq > $1 ORDER BY seq ASC LIMIT $2`,
		sinceSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	prev := sinceSeq
	for rows.Next() {
		var (
			ev          Event
			eventType   string
			payloadJSON []byte
		)
		if err := rows.Scan(&ev.Seq, &ev.TS, &eventType, &ev.ParentSeq, &ev.CausedBySeq, &ev.RunID, &ev.Actor, &payloadJSON, &ev.SchemaV); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.EventType = EventType(eventType)

		payload, err := decodePayload(ev.EventType, payloadJSON)
		if err != nil {
			return nil, fmt.Errorf("decode payload at seq %d: %w", ev.Seq, err)
		}
		ev.Payload = payload

		prev++
		if ev.Seq != prev {
			return nil, fmt.Errorf("%w: expected seq %d, got %d", ErrGap, prev, ev.Seq)
		}

		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// decodePayload looks up the registered constructor for eventType and
// unmarshals payloadJSON into it.
func decodePayload(eventType EventType, payloadJSON []byte) (Payload, error) {
	factory, ok := payloadFactories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	payload := factory()
	if err := json.Unmarshal(payloadJSON, payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", eventType, err)
	}
	return payload, nil
}
