package eventstore

import (
	"context"
	"log/slog"
)

// catchupBatch bounds how many rows ReadFrom pulls per round-trip while
// draining backlog; Subscribe loops until caught up rather than sending
// an overflow signal, since internal consumers (the graph projector, the
// weaver) always want every event, never a truncated feed.
const catchupBatch = 500

// Subscribe starts the listener (if not already running) and returns a
// channel delivering every event with seq > fromSeq, in order, first from
// a catch-up read and then live. The listener's LISTEN is established
// before the catch-up read runs, closing the window where an event
// committed between the catch-up query and LISTEN taking effect would
// otherwise be missed (same ordering the teacher's ConnectionManager.subscribe
// comment calls out for its WebSocket catch-up).
//
// The returned channel is closed when ctx is cancelled. A gap (ErrGap from
// ReadFrom) or a decode failure stops delivery and closes the channel;
// callers should treat closure without having reached the expected seq as
// an error condition worth restarting the subscription over.
func Subscribe(ctx context.Context, store *Store, listener *NotifyListener, fromSeq int64) (<-chan Event, error) {
	if err := listener.Start(ctx); err != nil {
		return nil, err
	}

	out := make(chan Event, catchupBatch)

	go func() {
		defer close(out)
		last := fromSeq

		drain := func() bool {
			for {
				events, err := store.ReadFrom(ctx, last, catchupBatch)
				if err != nil {
					slog.Error("eventstore: subscribe drain failed", "since_seq", last, "error", err)
					return false
				}
				for _, ev := range events {
					select {
					case out <- ev:
						last = ev.Seq
					case <-ctx.Done():
						return false
					}
				}
				if len(events) < catchupBatch {
					return true
				}
			}
		}

		if !drain() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-listener.Notifications():
				if !ok {
					return
				}
				// The notified seq is just a wakeup hint — always drain by
				// seq rather than trusting it directly, since a burst of
				// concurrent Appends can coalesce into fewer NOTIFY
				// deliveries than commits.
				if !drain() {
					return
				}
			}
		}
	}()

	return out, nil
}
