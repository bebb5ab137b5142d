// Package eventstore implements the append-only fact log described in
// spec §4.2: a gap-free monotonic sequence of typed events, each caused by
// at most one parent, read by replay and by a live NOTIFY subscription.
package eventstore

import "time"

// EventType identifies one of the 40 event families declared below (spec §3.4).
type EventType string

const (
	// Discovery — one per signal type, carrying only that type's fields.
	EventTypeGatheringDiscovered EventType = "gathering_discovered"
	EventTypeAidDiscovered       EventType = "aid_discovered"
	EventTypeNeedDiscovered      EventType = "need_discovered"
	EventTypeNoticeDiscovered    EventType = "notice_discovered"
	EventTypeTensionDiscovered   EventType = "tension_discovered"

	// Corroboration / expiry / rejection.
	EventTypeObservationCorroborated  EventType = "observation_corroborated"
	EventTypeFreshnessConfirmed       EventType = "freshness_confirmed"
	EventTypeEntityExpired            EventType = "entity_expired"
	EventTypeObservationRejected      EventType = "observation_rejected"
	EventTypeDuplicateDetected        EventType = "duplicate_detected"
	EventTypeExtractionDroppedNoDate  EventType = "extraction_dropped_no_date"

	// Classification.
	EventTypeConfidenceScored    EventType = "confidence_scored"
	EventTypeSeverityClassified  EventType = "severity_classified"
	EventTypeUrgencyClassified   EventType = "urgency_classified"
	EventTypeSensitivityClassified EventType = "sensitivity_classified"
	EventTypeToneClassified      EventType = "tone_classified"

	// Corrections — per-entity typed sum types, one event per entity kind.
	EventTypeGatheringCorrected EventType = "gathering_corrected"
	EventTypeAidCorrected       EventType = "aid_corrected"
	EventTypeNeedCorrected      EventType = "need_corrected"
	EventTypeNoticeCorrected    EventType = "notice_corrected"
	EventTypeTensionCorrected   EventType = "tension_corrected"

	// Changes — typed nested variants, not a freeform JSON diff.
	EventTypeSourceChanged    EventType = "source_changed"
	EventTypeSituationChanged EventType = "situation_changed"

	// Observability — no-ops to the reducer; other consumers use them.
	EventTypeURLScraped            EventType = "url_scraped"
	EventTypeLLMExtractionCompleted EventType = "llm_extraction_completed"
	EventTypeBudgetCheckpoint       EventType = "budget_checkpoint"

	// Relationships.
	EventTypeCitationRecorded     EventType = "citation_recorded"
	EventTypeActorLinkedToSignal  EventType = "actor_linked_to_signal"
	EventTypeActorLinkedToSource  EventType = "actor_linked_to_source"
	EventTypeSourceLinkDiscovered EventType = "source_link_discovered"
	EventTypeTagsAggregated       EventType = "tags_aggregated"

	// Situation lifecycle.
	EventTypeSituationIdentified EventType = "situation_identified"
	EventTypeSituationPromoted  EventType = "situation_promoted"
	EventTypeDispatchCreated    EventType = "dispatch_created"

	// Lifecycle.
	EventTypeGatheringCancelled    EventType = "gathering_cancelled"
	EventTypeAnnouncementRetracted EventType = "announcement_retracted"
	EventTypeCitationRetracted     EventType = "citation_retracted"
	EventTypeDetailsChanged        EventType = "details_changed"

	// Signal Lint promotion gate — generic across signal type, same fan-out
	// shape as EventTypeEntityExpired.
	EventTypeSignalPassed      EventType = "signal_passed"
	EventTypeSignalQuarantined EventType = "signal_quarantined"
)

// Payload is the sum type every event's typed body implements. Matching on
// concrete payload type (a type switch in the reducer) replaces any
// dynamic field-name string construction.
type Payload interface {
	payloadEventType() EventType
}

// Event is one row of the append-only log (spec §3.4, §6.3).
type Event struct {
	Seq         int64
	TS          time.Time
	EventType   EventType
	Payload     Payload
	ParentSeq   *int64
	CausedBySeq *int64
	RunID       string
	Actor       string
	SchemaV     int16
}

// IsRoot reports whether this event begins a new causal tree.
func (e Event) IsRoot() bool {
	return e.ParentSeq == nil && e.CausedBySeq == nil
}
