package eventstore

import "context"

// Handle is a causation-propagating view onto a Store: every event it
// appends is chained to the one before it as parent_seq, and Caused emits
// a child handle whose events additionally carry caused_by_seq back to
// the triggering event. A scout run constructs one root Handle per pin and
// threads it through bootstrap -> actordiscovery -> scrape -> synthesis so
// the resulting causal tree always traces a signal back to the pin that
// started the run.
type Handle struct {
	store    *Store
	runID    string
	actor    string
	lastSeq  *int64
	causedBy *int64
}

// NewHandle starts a new causal tree rooted at runID/actor.
func NewHandle(store *Store, runID, actor string) *Handle {
	return &Handle{store: store, runID: runID, actor: actor}
}

// Append appends eventType/payload, chaining it to the previous event
// this handle appended (parent_seq) and, if set, to the event that caused
// this handle to exist (caused_by_seq on the first append only).
func (h *Handle) Append(ctx context.Context, eventType EventType, payload Payload) (Event, error) {
	in := AppendInput{
		EventType:   eventType,
		Payload:     payload,
		ParentSeq:   h.lastSeq,
		CausedBySeq: h.causedBy,
		RunID:       h.runID,
		Actor:       h.actor,
	}
	ev, err := h.store.Append(ctx, in)
	if err != nil {
		return Event{}, err
	}
	h.lastSeq = &ev.Seq
	// caused_by_seq only applies to the first event in this handle's
	// chain; later events are caused by their immediate parent instead.
	h.causedBy = nil
	return ev, nil
}

// Caused returns a child handle whose first appended event carries
// caused_by_seq pointing at triggeringSeq — e.g. the weaver's
// situation_identified event caused_by the signal that tipped it over
// threshold.
func (h *Handle) Caused(triggeringSeq int64, actor string) *Handle {
	return &Handle{
		store:    h.store,
		runID:    h.runID,
		actor:    actor,
		causedBy: &triggeringSeq,
	}
}

// LastSeq returns the seq of the last event this handle appended, or nil
// if it hasn't appended anything yet.
func (h *Handle) LastSeq() *int64 {
	return h.lastSeq
}
