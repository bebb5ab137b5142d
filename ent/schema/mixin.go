package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// SeqGuardMixin carries last_updated_seq, the monotonic write guard every
// node in the graph projection is required to have (spec §3.1, §4.3.1):
// a write only applies when the originating event's seq is strictly greater
// than the value already stored.
type SeqGuardMixin struct {
	mixin.Schema
}

func (SeqGuardMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("last_updated_seq").
			Default(0).
			Comment("monotonic guard: a write only applies when event.seq > this value"),
	}
}

// SignalMixin carries the fields every signal variant shares (spec §3.1),
// regardless of which of the five typed tables (Gathering, Aid, Need,
// Notice, Tension) it belongs to.
type SignalMixin struct {
	mixin.Schema
}

func (SignalMixin) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("signal_id").
			Unique().
			Immutable(),
		field.String("title"),
		field.Text("summary").
			Optional(),
		field.Float("confidence").
			Default(0).
			Comment("assigned by confidence_scored, never carried on the discovery event"),
		field.Enum("sensitivity").
			Values("public", "elevated", "sensitive").
			Default("public"),
		field.String("source_url"),
		field.Time("extracted_at"),
		field.Time("content_date").
			Optional().
			Nillable(),
		field.Float("about_lat").
			Optional().
			Nillable(),
		field.Float("about_lng").
			Optional().
			Nillable(),
		field.String("about_location_name").
			Optional().
			Nillable(),
		field.Enum("review_status").
			Values("staged", "live", "rejected", "quarantined").
			Default("staged").
			Comment("monotonic: staged -> live | rejected | quarantined"),
		field.String("created_by").
			Comment("producer module identifier"),
		field.String("scout_run_id"),
		field.JSON("mentioned_entities", []MentionedEntity{}).
			Optional(),

		// Set by a lifecycle event (gathering_cancelled, announcement_retracted,
		// entity_expired) without touching review_status — retraction is
		// orthogonal to the staged->live|rejected|quarantined review gate, since
		// a signal can be withdrawn after it already went live.
		field.Time("retracted_at").
			Optional().
			Nillable(),
		field.String("retracted_reason").
			Optional().
			Nillable(),

		// Enrichment-derived, rebuildable (spec §4.3.2) — not facts, never
		// carried on a discovery event.
		field.JSON("embedding", []float32{}).
			Optional().
			Comment("1024-dim embedding vector; stale if embedding_model_v differs"),
		field.Int("embedding_model_v").
			Optional().
			Comment("model version the stored embedding was computed with"),
		field.Int("source_diversity").
			Default(0),
		field.Int("channel_diversity").
			Default(0),
		field.Int("corroboration_count").
			Default(0),
		field.Float("cause_heat").
			Default(0),
	}
}

// MentionedEntity is the shape of one entry in Signal.mentioned_entities.
type MentionedEntity struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	Role       string `json:"role"`
}

var _ ent.Mixin = (*SignalMixin)(nil)
