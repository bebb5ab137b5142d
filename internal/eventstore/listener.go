package eventstore

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
)

// notifyChannel is the single global channel every Append's pg_notify
// fires on (spec §4.2: "NOTIFY events, '<seq>'"). Unlike the teacher, which
// LISTENs on a distinct channel per session, the log has exactly one
// ordering domain, so there is only ever one channel to manage.
const notifyChannel = "events"

// NotifyListener holds a dedicated LISTEN connection and turns each NOTIFY
// on the events channel into a seq delivered on Notifications(). Adapted
// from the teacher's pkg/events/listener.go; simplified to one channel
// since this log has no per-session fan-out, so the generation-counter
// dance around concurrent Subscribe/Unsubscribe doesn't apply here.
type NotifyListener struct {
	connString string

	conn   *pgx.Conn
	connMu sync.Mutex

	running atomic.Bool

	notifications chan int64

	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

// NewNotifyListener creates a listener that will LISTEN on the events
// channel once Start is called.
func NewNotifyListener(connString string) *NotifyListener {
	return &NotifyListener{
		connString:    connString,
		notifications: make(chan int64, 256),
	}
}

// Notifications returns the channel of sequence numbers observed via
// NOTIFY. Callers should drain it promptly; it is buffered but not
// unbounded.
func (l *NotifyListener) Notifications() <-chan int64 {
	return l.notifications
}

// Start establishes the dedicated LISTEN connection and begins the
// receive loop.
func (l *NotifyListener) Start(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return NewAppendError("listen", "", err)
	}

	sanitized := pgx.Identifier{notifyChannel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+sanitized); err != nil {
		_ = conn.Close(ctx)
		return NewAppendError("listen", "", err)
	}

	l.connMu.Lock()
	l.conn = conn
	l.connMu.Unlock()

	l.running.Store(true)

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancelLoop = cancel
	l.loopDone = make(chan struct{})
	go func() {
		defer close(l.loopDone)
		l.receiveLoop(loopCtx)
	}()

	slog.Info("eventstore: notify listener started")
	return nil
}

// receiveLoop is the sole goroutine that touches the pgx connection,
// avoiding the "conn busy" race between WaitForNotification and any
// concurrent Exec.
func (l *NotifyListener) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn == nil {
			l.reconnect(ctx)
			continue
		}

		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("eventstore: NOTIFY receive error", "error", err)
			l.reconnect(ctx)
			continue
		}

		seq, err := strconv.ParseInt(notification.Payload, 10, 64)
		if err != nil {
			slog.Error("eventstore: malformed NOTIFY payload", "payload", notification.Payload, "error", err)
			continue
		}

		select {
		case l.notifications <- seq:
		case <-ctx.Done():
			return
		default:
			// Buffer full: a catch-up read will fill the gap once the
			// consumer drains, so drop rather than block the receive loop.
			slog.Warn("eventstore: notification buffer full, dropping seq", "seq", seq)
		}
	}
}

// reconnect re-establishes the LISTEN connection with exponential backoff.
func (l *NotifyListener) reconnect(ctx context.Context) {
	l.connMu.Lock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
	l.connMu.Unlock()

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		conn, err := pgx.Connect(ctx, l.connString)
		if err != nil {
			slog.Error("eventstore: LISTEN reconnect failed", "error", err, "backoff", backoff)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		sanitized := pgx.Identifier{notifyChannel}.Sanitize()
		if _, err := conn.Exec(ctx, "LISTEN "+sanitized); err != nil {
			slog.Error("eventstore: re-LISTEN failed", "error", err)
			_ = conn.Close(ctx)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		l.connMu.Lock()
		l.conn = conn
		l.connMu.Unlock()

		slog.Info("eventstore: notify listener reconnected")
		return
	}
}

// Stop signals the receive loop to exit, waits for it, then closes the
// LISTEN connection.
func (l *NotifyListener) Stop(ctx context.Context) {
	l.running.Store(false)

	if l.cancelLoop != nil {
		l.cancelLoop()
	}
	if l.loopDone != nil {
		<-l.loopDone
	}

	l.connMu.Lock()
	defer l.connMu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
}
