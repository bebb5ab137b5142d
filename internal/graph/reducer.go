// Package graph projects the event log onto the property graph: one
// Reducer.Apply call per event, pure with respect to wall-clock time,
// identity generation, and external services. Every write is a MERGE —
// idempotent on entity id, guarded by last_updated_seq so replays never
// regress a node to an older state.
package graph

import (
	"context"
	"fmt"

	stdsql "database/sql"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// Result reports whether Apply actually wrote anything. A NoOp is not an
// error — observability events and stale-seq writes are both legitimate
// no-ops (spec §4.3.1).
type Result int

const (
	NoOp Result = iota
	Applied
)

// Reducer owns the ent client for graph writes and the raw *sql.DB for
// the two edge-fact tables ent doesn't model (signal_edge_facts,
// signal_similarities — see DESIGN.md's edge-property decision).
type Reducer struct {
	client *ent.Client
	db     *stdsql.DB
}

// NewReducer wires a Reducer against the shared storage client's ent
// handle and connection pool.
func NewReducer(client *ent.Client, db *stdsql.DB) *Reducer {
	return &Reducer{client: client, db: db}
}

// Client exposes the underlying ent handle for callers that seed or
// inspect graph state directly — internal/graph/enrichment's tests, and
// any future replay/rebuild tooling that needs to wipe the projection.
func (r *Reducer) Client() *ent.Client {
	return r.client
}

// Apply projects one event onto the graph. It never reads the wall clock
// or calls any external service — everything it needs is in the event
// (its payload, plus event.TS as the retraction/expiry time for the
// cancellation, retraction and expiry events) plus whatever the guard
// comparison (event.Seq vs a node's last_updated_seq) requires of the
// current row.
func (r *Reducer) Apply(ctx context.Context, ev eventstore.Event) (Result, error) {
	switch p := ev.Payload.(type) {
	case *eventstore.GatheringDiscoveredPayload:
		return r.applyGatheringDiscovered(ctx, ev.Seq, p)
	case *eventstore.AidDiscoveredPayload:
		return r.applyAidDiscovered(ctx, ev.Seq, p)
	case *eventstore.NeedDiscoveredPayload:
		return r.applyNeedDiscovered(ctx, ev.Seq, p)
	case *eventstore.NoticeDiscoveredPayload:
		return r.applyNoticeDiscovered(ctx, ev.Seq, p)
	case *eventstore.TensionDiscoveredPayload:
		return r.applyTensionDiscovered(ctx, ev.Seq, p)

	case *eventstore.ConfidenceScoredPayload:
		return r.applyConfidenceScored(ctx, ev.Seq, p)
	case *eventstore.SeverityClassifiedPayload:
		return r.applySeverityClassified(ctx, ev.Seq, p)
	case *eventstore.UrgencyClassifiedPayload:
		return r.applyUrgencyClassified(ctx, ev.Seq, p)
	case *eventstore.SensitivityClassifiedPayload:
		return r.applySensitivityClassified(ctx, ev.Seq, p)

	case *eventstore.GatheringCorrectedPayload:
		return r.applyGatheringCorrected(ctx, ev.Seq, p)
	case *eventstore.AidCorrectedPayload:
		return r.applyAidCorrected(ctx, ev.Seq, p)
	case *eventstore.NeedCorrectedPayload:
		return r.applyNeedCorrected(ctx, ev.Seq, p)
	case *eventstore.NoticeCorrectedPayload:
		return r.applyNoticeCorrected(ctx, ev.Seq, p)
	case *eventstore.TensionCorrectedPayload:
		return r.applyTensionCorrected(ctx, ev.Seq, p)

	case *eventstore.GatheringCancelledPayload:
		return r.applyGatheringCancelled(ctx, ev.Seq, ev.TS, p)
	case *eventstore.AnnouncementRetractedPayload:
		return r.applyAnnouncementRetracted(ctx, ev.Seq, ev.TS, p)
	case *eventstore.EntityExpiredPayload:
		return r.applyEntityExpired(ctx, ev.Seq, ev.TS, p)
	case *eventstore.SignalPassedPayload:
		return r.applySignalPassed(ctx, ev.Seq, p)
	case *eventstore.SignalQuarantinedPayload:
		return r.applySignalQuarantined(ctx, ev.Seq, p)

	case *eventstore.ObservationCorroboratedPayload:
		return r.applyObservationCorroborated(ctx, ev.Seq, p)
	case *eventstore.SourceChangedPayload:
		return r.applySourceChanged(ctx, p)

	case *eventstore.CitationRecordedPayload:
		return r.applyCitationRecorded(ctx, ev.Seq, p)
	case *eventstore.ActorLinkedToSignalPayload:
		return r.applyActorLinkedToSignal(ctx, p)
	case *eventstore.ActorLinkedToSourcePayload:
		return r.applyActorLinkedToSource(ctx, p)

	case *eventstore.SituationIdentifiedPayload,
		*eventstore.SituationChangedPayload,
		*eventstore.SituationPromotedPayload,
		*eventstore.DispatchCreatedPayload,
		*eventstore.CitationRetractedPayload,
		*eventstore.TagsAggregatedPayload:
		// Written by internal/weaver through its own typed writer, which
		// has the situation/dispatch IDs already resolved — the reducer's
		// job here is limited to the signal-graph side of the event log.
		return NoOp, nil

	case *eventstore.FreshnessConfirmedPayload,
		*eventstore.SourceLinkDiscoveredPayload,
		*eventstore.DetailsChangedPayload:
		// No graph field tracks these directly: freshness_confirmed repeats
		// a fact already asserted (nothing new to write), source_link_discovered
		// is a candidate for internal/scout's actor-discovery pass to evaluate
		// rather than an existing node, and details_changed is a catch-all
		// marker that doesn't carry the new value itself.
		return NoOp, nil

	case *eventstore.URLScrapedPayload,
		*eventstore.LLMExtractionCompletedPayload,
		*eventstore.BudgetCheckpointPayload,
		*eventstore.DuplicateDetectedPayload,
		*eventstore.ObservationRejectedPayload,
		*eventstore.ExtractionDroppedNoDatePayload,
		*eventstore.ToneClassifiedPayload:
		// Observability-only: explicit no-ops (spec §4.3.1).
		return NoOp, nil

	default:
		return NoOp, fmt.Errorf("graph: no reducer case for payload type %T (event_type %s)", ev.Payload, ev.EventType)
	}
}
