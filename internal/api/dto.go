package api

import "time"

// LocationResponse is a signal's or situation's optional point location.
type LocationResponse struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// SignalResponse is the public projection of one live signal row —
// shared SignalMixin fields plus a type-specific Fields map, since the
// five ent-generated structs (Gathering/Aid/Need/Notice/Tension) share
// no common Go interface, only a common schema mixin.
type SignalResponse struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary,omitempty"`
	Confidence  float64           `json:"confidence"`
	Sensitivity string            `json:"sensitivity"`
	SourceURL   string            `json:"source_url"`
	ExtractedAt time.Time         `json:"extracted_at"`
	ContentDate *time.Time        `json:"content_date,omitempty"`
	Location    *LocationResponse `json:"location,omitempty"`
	Fields      map[string]any    `json:"fields,omitempty"`
}

// SituationResponse is the public projection of one active situation —
// structured_state is never serialized wholesale; only what callers
// explicitly project (mentioned_actors only for admin requests, via
// internal/masking.RedactStructuredState) is exposed.
type SituationResponse struct {
	ID             string            `json:"id"`
	Headline       string            `json:"headline"`
	Lede           string            `json:"lede,omitempty"`
	Arc            string            `json:"arc"`
	Temperature    float64           `json:"temperature"`
	Clarity        string            `json:"clarity"`
	Centroid       *LocationResponse `json:"centroid,omitempty"`
	SignalCount    int               `json:"signal_count"`
	TensionCount   int               `json:"tension_count"`
	Sensitivity    string            `json:"sensitivity"`
	StructuredState map[string]any   `json:"structured_state,omitempty"`
}

// DispatchResponse is the public projection of one dispatch entry.
type DispatchResponse struct {
	ID            string    `json:"id"`
	SituationID   string    `json:"situation_id"`
	Body          string    `json:"body"`
	DispatchType  string    `json:"dispatch_type"`
	Supersedes    string    `json:"supersedes,omitempty"`
	FlaggedReview bool      `json:"flagged_for_review"`
	CreatedAt     time.Time `json:"created_at"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Regions       int    `json:"regions"`
	LLMProviders  int    `json:"llm_providers"`
}
