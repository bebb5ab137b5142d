package eventstore

import "time"

// MentionedEntity mirrors ent/schema's MentionedEntity — duplicated here
// rather than imported so the event log's wire shape never depends on the
// generated ent package.
type MentionedEntity struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Role       string `json:"role"`
}

// SignalCore carries the fields shared by every discovery payload (spec
// §3.1) — everything the extractor is allowed to assert as fact. Fields
// the system assigns later (confidence, sensitivity, severity) are
// deliberately absent; they arrive on their own classification events.
type SignalCore struct {
	SignalID          string            `json:"signal_id"`
	Title             string            `json:"title"`
	Summary           string            `json:"summary,omitempty"`
	SourceURL         string            `json:"source_url"`
	SourceID          string            `json:"source_id"`
	ExtractedAt       time.Time         `json:"extracted_at"`
	ContentDate       *time.Time        `json:"content_date,omitempty"`
	AboutLat          *float64          `json:"about_lat,omitempty"`
	AboutLng          *float64          `json:"about_lng,omitempty"`
	AboutLocationName string            `json:"about_location_name,omitempty"`
	MentionedEntities []MentionedEntity `json:"mentioned_entities,omitempty"`
	ScheduleID        string            `json:"schedule_id,omitempty"`
	CreatedBy         string            `json:"created_by"`
	ScoutRunID        string            `json:"scout_run_id"`
}

// GatheringDiscoveredPayload is the gathering_discovered event body.
type GatheringDiscoveredPayload struct {
	SignalCore
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Organizer   string     `json:"organizer,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
	ActionURL   string     `json:"action_url,omitempty"`
}

func (GatheringDiscoveredPayload) payloadEventType() EventType { return EventTypeGatheringDiscovered }

// AidDiscoveredPayload is the aid_discovered event body.
type AidDiscoveredPayload struct {
	SignalCore
	Availability string `json:"availability,omitempty"`
	IsOngoing    bool   `json:"is_ongoing"`
	ActionURL    string `json:"action_url,omitempty"`
}

func (AidDiscoveredPayload) payloadEventType() EventType { return EventTypeAidDiscovered }

// NeedDiscoveredPayload is the need_discovered event body.
type NeedDiscoveredPayload struct {
	SignalCore
	Urgency    string `json:"urgency,omitempty"`
	WhatNeeded string `json:"what_needed,omitempty"`
	Goal       string `json:"goal,omitempty"`
}

func (NeedDiscoveredPayload) payloadEventType() EventType { return EventTypeNeedDiscovered }

// NoticeDiscoveredPayload is the notice_discovered event body.
type NoticeDiscoveredPayload struct {
	SignalCore
	Severity        string     `json:"severity,omitempty"`
	Category        string     `json:"category,omitempty"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	SourceAuthority string     `json:"source_authority,omitempty"`
}

func (NoticeDiscoveredPayload) payloadEventType() EventType { return EventTypeNoticeDiscovered }

// TensionDiscoveredPayload is the tension_discovered event body.
type TensionDiscoveredPayload struct {
	SignalCore
	Severity       string `json:"severity,omitempty"`
	WhatWouldHelp  string `json:"what_would_help,omitempty"`
}

func (TensionDiscoveredPayload) payloadEventType() EventType { return EventTypeTensionDiscovered }

// --- Corroboration / expiry / rejection ---

// ObservationCorroboratedPayload records a second-or-later sighting of an
// already-known signal from a distinct source.
type ObservationCorroboratedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	SourceID   string `json:"source_id"`
}

func (ObservationCorroboratedPayload) payloadEventType() EventType {
	return EventTypeObservationCorroborated
}

// FreshnessConfirmedPayload records a source still reporting a signal as
// current without new corroborating detail.
type FreshnessConfirmedPayload struct {
	SignalType string    `json:"signal_type"`
	SignalID   string    `json:"signal_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (FreshnessConfirmedPayload) payloadEventType() EventType { return EventTypeFreshnessConfirmed }

// EntityExpiredPayload marks a time-bound signal as past its relevance
// window (e.g. a Gathering whose ends_at has passed).
type EntityExpiredPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	Reason     string `json:"reason"`
}

func (EntityExpiredPayload) payloadEventType() EventType { return EventTypeEntityExpired }

// SignalPassedPayload records the Signal Lint gate (spec §4.6) letting a
// staged signal through to live untouched.
type SignalPassedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
}

func (SignalPassedPayload) payloadEventType() EventType { return EventTypeSignalPassed }

// SignalQuarantinedPayload records the Signal Lint gate rejecting a staged
// signal — quarantined signals never reach live and stay invisible to
// public queries.
type SignalQuarantinedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	Reason     string `json:"reason"`
}

func (SignalQuarantinedPayload) payloadEventType() EventType { return EventTypeSignalQuarantined }

// ObservationRejectedPayload records score_and_filter dropping a candidate
// (spec §4.4.3 step 1) before it ever became a signal.
type ObservationRejectedPayload struct {
	SourceURL string `json:"source_url"`
	Reason    string `json:"reason"`
}

func (ObservationRejectedPayload) payloadEventType() EventType { return EventTypeObservationRejected }

// DuplicateDetectedPayload records the dedup pass's verdict that a
// candidate matches an existing signal rather than minting a new one.
type DuplicateDetectedPayload struct {
	SignalType     string  `json:"signal_type"`
	ExistingID     string  `json:"existing_id"`
	CandidateTitle string  `json:"candidate_title"`
	Similarity     float64 `json:"similarity"`
}

func (DuplicateDetectedPayload) payloadEventType() EventType { return EventTypeDuplicateDetected }

// ExtractionDroppedNoDatePayload records a candidate signal dropped for
// lacking any resolvable content_date where one is required.
type ExtractionDroppedNoDatePayload struct {
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
}

func (ExtractionDroppedNoDatePayload) payloadEventType() EventType {
	return EventTypeExtractionDroppedNoDate
}

// --- Classification ---

// ConfidenceScoredPayload assigns confidence — system-computed, never
// carried on a discovery event (spec §3.1 invariant).
type ConfidenceScoredPayload struct {
	SignalType string  `json:"signal_type"`
	SignalID   string  `json:"signal_id"`
	Confidence float64 `json:"confidence"`
}

func (ConfidenceScoredPayload) payloadEventType() EventType { return EventTypeConfidenceScored }

// SeverityClassifiedPayload assigns severity on Notice/Tension signals.
type SeverityClassifiedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	Severity   string `json:"severity"`
}

func (SeverityClassifiedPayload) payloadEventType() EventType { return EventTypeSeverityClassified }

// UrgencyClassifiedPayload assigns urgency on Need signals.
type UrgencyClassifiedPayload struct {
	SignalID string `json:"signal_id"`
	Urgency  string `json:"urgency"`
}

func (UrgencyClassifiedPayload) payloadEventType() EventType { return EventTypeUrgencyClassified }

// SensitivityClassifiedPayload assigns sensitivity on any signal.
type SensitivityClassifiedPayload struct {
	SignalType  string `json:"signal_type"`
	SignalID    string `json:"signal_id"`
	Sensitivity string `json:"sensitivity"`
}

func (SensitivityClassifiedPayload) payloadEventType() EventType {
	return EventTypeSensitivityClassified
}

// ToneClassifiedPayload records the extractor's tone read on a signal —
// observability only, consumed by the lint pass's fidelity checks.
type ToneClassifiedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	Tone       string `json:"tone"`
}

func (ToneClassifiedPayload) payloadEventType() EventType { return EventTypeToneClassified }

// --- Corrections: per-entity typed sum types ---

// GatheringCorrection is a compile-time-checked sum type: each variant
// names a field that actually exists on Gathering. The reducer matches on
// the concrete variant, never on a dynamic field-name string.
type GatheringCorrection interface {
	gatheringField() string
}

type GatheringCorrectionTitle struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type GatheringCorrectionStartsAt struct {
	Old time.Time `json:"old"`
	New time.Time `json:"new"`
}
type GatheringCorrectionEndsAt struct {
	Old *time.Time `json:"old"`
	New *time.Time `json:"new"`
}
type GatheringCorrectionActionURL struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (GatheringCorrectionTitle) gatheringField() string     { return "title" }
func (GatheringCorrectionStartsAt) gatheringField() string   { return "starts_at" }
func (GatheringCorrectionEndsAt) gatheringField() string     { return "ends_at" }
func (GatheringCorrectionActionURL) gatheringField() string  { return "action_url" }

// GatheringCorrectedPayload is the gathering_corrected event body.
type GatheringCorrectedPayload struct {
	SignalID   string              `json:"signal_id"`
	Correction GatheringCorrection `json:"correction"`
}

func (GatheringCorrectedPayload) payloadEventType() EventType { return EventTypeGatheringCorrected }

// TensionCorrection is the Tension analogue of GatheringCorrection.
type TensionCorrection interface {
	tensionField() string
}

type TensionCorrectionTitle struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type TensionCorrectionWhatWouldHelp struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (TensionCorrectionTitle) tensionField() string          { return "title" }
func (TensionCorrectionWhatWouldHelp) tensionField() string  { return "what_would_help" }

// TensionCorrectedPayload is the tension_corrected event body.
type TensionCorrectedPayload struct {
	SignalID   string            `json:"signal_id"`
	Correction TensionCorrection `json:"correction"`
}

func (TensionCorrectedPayload) payloadEventType() EventType { return EventTypeTensionCorrected }

// AidCorrection is the Aid analogue of GatheringCorrection.
type AidCorrection interface {
	aidField() string
}

type AidCorrectionTitle struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type AidCorrectionAvailability struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (AidCorrectionTitle) aidField() string        { return "title" }
func (AidCorrectionAvailability) aidField() string { return "availability" }

// AidCorrectedPayload is the aid_corrected event body.
type AidCorrectedPayload struct {
	SignalID   string        `json:"signal_id"`
	Correction AidCorrection `json:"correction"`
}

func (AidCorrectedPayload) payloadEventType() EventType { return EventTypeAidCorrected }

// NeedCorrection is the Need analogue of GatheringCorrection.
type NeedCorrection interface {
	needField() string
}

type NeedCorrectionTitle struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type NeedCorrectionWhatNeeded struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (NeedCorrectionTitle) needField() string       { return "title" }
func (NeedCorrectionWhatNeeded) needField() string  { return "what_needed" }

// NeedCorrectedPayload is the need_corrected event body.
type NeedCorrectedPayload struct {
	SignalID   string         `json:"signal_id"`
	Correction NeedCorrection `json:"correction"`
}

func (NeedCorrectedPayload) payloadEventType() EventType { return EventTypeNeedCorrected }

// NoticeCorrection is the Notice analogue of GatheringCorrection.
type NoticeCorrection interface {
	noticeField() string
}

type NoticeCorrectionTitle struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type NoticeCorrectionEffectiveDate struct {
	Old *time.Time `json:"old"`
	New *time.Time `json:"new"`
}

func (NoticeCorrectionTitle) noticeField() string         { return "title" }
func (NoticeCorrectionEffectiveDate) noticeField() string { return "effective_date" }

// NoticeCorrectedPayload is the notice_corrected event body.
type NoticeCorrectedPayload struct {
	SignalID   string           `json:"signal_id"`
	Correction NoticeCorrection `json:"correction"`
}

func (NoticeCorrectedPayload) payloadEventType() EventType { return EventTypeNoticeCorrected }

// --- Changes: typed nested variants, not a freeform diff ---

// SourceChange is a compile-time-checked sum type for what changed on a
// Source.
type SourceChange interface {
	sourceField() string
}

type SourceChangeActive struct {
	Old bool `json:"old"`
	New bool `json:"new"`
}
type SourceChangeWeight struct {
	Old float64 `json:"old"`
	New float64 `json:"new"`
}

func (SourceChangeActive) sourceField() string { return "active" }
func (SourceChangeWeight) sourceField() string { return "weight" }

// SourceChangedPayload is the source_changed event body.
type SourceChangedPayload struct {
	SourceID string       `json:"source_id"`
	Change   SourceChange `json:"change"`
}

func (SourceChangedPayload) payloadEventType() EventType { return EventTypeSourceChanged }

// SituationChange is a compile-time-checked sum type for what changed on a
// Situation between weaving passes.
type SituationChange interface {
	situationField() string
}

type SituationChangeArc struct {
	Old string `json:"old"`
	New string `json:"new"`
}
type SituationChangeTemperature struct {
	Old float64 `json:"old"`
	New float64 `json:"new"`
}
type SituationChangeClarity struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func (SituationChangeArc) situationField() string         { return "arc" }
func (SituationChangeTemperature) situationField() string { return "temperature" }
func (SituationChangeClarity) situationField() string     { return "clarity" }

// SituationChangedPayload is the situation_changed event body.
type SituationChangedPayload struct {
	SituationID string          `json:"situation_id"`
	Change      SituationChange `json:"change"`
}

func (SituationChangedPayload) payloadEventType() EventType { return EventTypeSituationChanged }

// --- Observability: no-ops to the reducer ---

// URLScrapedPayload records a fetch attempt, successful or not.
type URLScrapedPayload struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	BytesRead  int64  `json:"bytes_read"`
}

func (URLScrapedPayload) payloadEventType() EventType { return EventTypeURLScraped }

// LLMExtractionCompletedPayload records one extractor call's shape for
// cost/latency observability.
type LLMExtractionCompletedPayload struct {
	SourceURL      string `json:"source_url"`
	CandidateCount int    `json:"candidate_count"`
	CostCents      int    `json:"cost_cents"`
	LatencyMS      int64  `json:"latency_ms"`
}

func (LLMExtractionCompletedPayload) payloadEventType() EventType {
	return EventTypeLLMExtractionCompleted
}

// BudgetCheckpointPayload records a running spend total for a run.
type BudgetCheckpointPayload struct {
	RunID      string `json:"run_id"`
	SpentCents int    `json:"spent_cents"`
	LimitCents int    `json:"limit_cents"`
}

func (BudgetCheckpointPayload) payloadEventType() EventType { return EventTypeBudgetCheckpoint }

// --- Relationships ---

// CitationRecordedPayload links a signal to the Evidence it was SOURCED_FROM.
type CitationRecordedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	EvidenceID string `json:"evidence_id"`
	ArchiveRef string `json:"archive_ref"`
}

func (CitationRecordedPayload) payloadEventType() EventType { return EventTypeCitationRecorded }

// ActorLinkedToSignalPayload records an ACTED_IN edge plus its role.
type ActorLinkedToSignalPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	ActorID    string `json:"actor_id"`
	Role       string `json:"role"` // authored|mentioned
}

func (ActorLinkedToSignalPayload) payloadEventType() EventType { return EventTypeActorLinkedToSignal }

// ActorLinkedToSourcePayload records a HAS_SOURCE edge.
type ActorLinkedToSourcePayload struct {
	ActorID  string `json:"actor_id"`
	SourceID string `json:"source_id"`
}

func (ActorLinkedToSourcePayload) payloadEventType() EventType { return EventTypeActorLinkedToSource }

// SourceLinkDiscoveredPayload records actor-discovery surfacing a new
// candidate source from an existing one.
type SourceLinkDiscoveredPayload struct {
	FromSourceID   string `json:"from_source_id"`
	CanonicalValue string `json:"canonical_value"`
}

func (SourceLinkDiscoveredPayload) payloadEventType() EventType {
	return EventTypeSourceLinkDiscovered
}

// TagsAggregatedPayload records a Situation's tag set recomputation.
type TagsAggregatedPayload struct {
	SituationID string   `json:"situation_id"`
	TagSlugs    []string `json:"tag_slugs"`
}

func (TagsAggregatedPayload) payloadEventType() EventType { return EventTypeTagsAggregated }

// --- Situation lifecycle ---

// SituationIdentifiedPayload records the weaver minting a new Situation.
type SituationIdentifiedPayload struct {
	SituationID string   `json:"situation_id"`
	Headline    string   `json:"headline"`
	SignalIDs   []string `json:"signal_ids"`
}

func (SituationIdentifiedPayload) payloadEventType() EventType { return EventTypeSituationIdentified }

// SituationPromotedPayload records a situation crossing a visibility or
// arc threshold worth flagging to downstream consumers.
type SituationPromotedPayload struct {
	SituationID string `json:"situation_id"`
	Arc         string `json:"arc"`
}

func (SituationPromotedPayload) payloadEventType() EventType { return EventTypeSituationPromoted }

// DispatchCreatedPayload records a new Dispatch being appended.
type DispatchCreatedPayload struct {
	DispatchID   string   `json:"dispatch_id"`
	SituationID  string   `json:"situation_id"`
	DispatchType string   `json:"dispatch_type"`
	CitedSignals []string `json:"cited_signals"`
}

func (DispatchCreatedPayload) payloadEventType() EventType { return EventTypeDispatchCreated }

// --- Lifecycle ---

// GatheringCancelledPayload marks a Gathering as no longer happening.
type GatheringCancelledPayload struct {
	SignalID string `json:"signal_id"`
	Reason   string `json:"reason,omitempty"`
}

func (GatheringCancelledPayload) payloadEventType() EventType { return EventTypeGatheringCancelled }

// AnnouncementRetractedPayload marks a Notice as withdrawn by its source.
type AnnouncementRetractedPayload struct {
	SignalID string `json:"signal_id"`
}

func (AnnouncementRetractedPayload) payloadEventType() EventType {
	return EventTypeAnnouncementRetracted
}

// CitationRetractedPayload records a dispatch citation invalidated by a
// subsequent correction or retraction of the signal it pointed at.
type CitationRetractedPayload struct {
	DispatchID string `json:"dispatch_id"`
	SignalID   string `json:"signal_id"`
}

func (CitationRetractedPayload) payloadEventType() EventType { return EventTypeCitationRetracted }

// DetailsChangedPayload is a catch-all for minor factual updates that
// don't warrant a dedicated correction variant (e.g. a restated summary
// with no structural field change).
type DetailsChangedPayload struct {
	SignalType string `json:"signal_type"`
	SignalID   string `json:"signal_id"`
	Field      string `json:"field"`
}

func (DetailsChangedPayload) payloadEventType() EventType { return EventTypeDetailsChanged }
