package scout

import (
	"sync/atomic"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// BudgetTracker gates expensive operations against a running
// spent_cents total the orchestrator propagates between sub-workflows
// (spec §4.4.1). It's safe for concurrent use since Scrape's
// bounded-concurrency fetch pipeline (spec §5's "buffer-unordered
// streams") charges it from multiple goroutines.
type BudgetTracker struct {
	limitCents int64
	spentCents int64
}

// NewBudgetTracker starts a tracker with limitCents available for the
// remainder of this FullRun.
func NewBudgetTracker(limitCents int64) *BudgetTracker {
	return &BudgetTracker{limitCents: limitCents}
}

// Allow reports whether an operation costing costCents can proceed
// without crossing the budget, and if so reserves it. A caller that
// gets false must skip the optional work and record a
// budget_checkpoint, per spec §5's backpressure rule — signals stay
// staged and survive to the next run rather than blocking this one.
func (b *BudgetTracker) Allow(costCents int64) bool {
	for {
		cur := atomic.LoadInt64(&b.spentCents)
		next := cur + costCents
		if next > b.limitCents {
			return false
		}
		if atomic.CompareAndSwapInt64(&b.spentCents, cur, next) {
			return true
		}
	}
}

// Spent returns the running total charged against this tracker so far.
func (b *BudgetTracker) Spent() int64 {
	return atomic.LoadInt64(&b.spentCents)
}

// Exhausted reports whether any further spend would cross the limit.
func (b *BudgetTracker) Exhausted() bool {
	return atomic.LoadInt64(&b.spentCents) >= b.limitCents
}

// Checkpoint builds the budget_checkpoint payload spec §5 asks for when
// the tracker gates an operation — the reducer treats this event as
// observability-only, but it's the durable record of why a run skipped
// optional work.
func (b *BudgetTracker) Checkpoint(runID string) *eventstore.BudgetCheckpointPayload {
	return &eventstore.BudgetCheckpointPayload{
		RunID:      runID,
		SpentCents: int(b.Spent()),
		LimitCents: int(b.limitCents),
	}
}
