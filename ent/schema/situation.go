package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Situation holds the schema definition for the causal grouping above
// signals (spec §3.3). temperature and its component scalars are derived
// purely from graph mechanics (internal/weaver) — no LLM value enters the
// formula, so every scalar here is a plain float written by the weaver,
// never by the extractor.
type Situation struct {
	ent.Schema
}

func (Situation) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SeqGuardMixin{},
	}
}

func (Situation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("situation_id").
			Unique().
			Immutable(),
		field.String("headline"),
		field.Text("lede").
			Optional().
			Nillable(),
		field.Enum("arc").
			Values("emerging", "developing", "active", "cooling", "cold").
			Default("emerging"),
		field.Float("tension_heat").
			Default(0),
		field.Float("entity_velocity").
			Default(0),
		field.Float("amplification").
			Default(0),
		field.Float("response_coverage").
			Default(0),
		field.Float("clarity_need").
			Default(0),
		field.Float("temperature").
			Default(0).
			Comment("composite of the five component scalars above, 0..1"),
		field.Enum("clarity").
			Values("fuzzy", "sharpening", "sharp").
			Default("fuzzy"),
		field.Float("centroid_lat").
			Optional().
			Nillable(),
		field.Float("centroid_lng").
			Optional().
			Nillable(),
		field.JSON("narrative_embedding", []float32{}).
			Optional().
			Comment("1024-dim; vector index created via migration, see internal/storage/migrations"),
		field.JSON("causal_embedding", []float32{}).
			Optional().
			Comment("1024-dim; vector index created via migration, see internal/storage/migrations"),
		field.JSON("structured_state", map[string]interface{}{}).
			Optional().
			Comment("working memory; structured_state.mentioned_actors is admin-only, never exposed publicly"),
		field.Int("signal_count").
			Default(0),
		field.Int("tension_count").
			Default(0),
		field.Enum("sensitivity").
			Values("public", "elevated", "sensitive").
			Default("public"),
		field.Time("last_signal_at").
			Optional().
			Nillable().
			Comment("drives the clarity_need staleness decay after 30 days of silence"),
	}
}

func (Situation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("has_dispatch", Dispatch.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("caused_by", Situation.Type),
		edge.From("causes", Situation.Type).
			Ref("caused_by"),
		edge.To("tags", Tag.Type),
		edge.To("suppressed_tags", Tag.Type),
		edge.From("evidenced_by_gatherings", Gathering.Type).
			Ref("evidences").
			Through("gathering_evidence", GatheringEvidence.Type),
		edge.From("evidenced_by_aids", Aid.Type).
			Ref("evidences").
			Through("aid_evidence", AidEvidence.Type),
		edge.From("evidenced_by_needs", Need.Type).
			Ref("evidences").
			Through("need_evidence", NeedEvidence.Type),
		edge.From("evidenced_by_notices", Notice.Type).
			Ref("evidences").
			Through("notice_evidence", NoticeEvidence.Type),
		edge.From("evidenced_by_tensions", Tension.Type).
			Ref("evidences").
			Through("tension_evidence", TensionEvidence.Type),
	}
}

func (Situation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("arc"),
		index.Fields("temperature"),
		index.Fields("sensitivity"),
	}
}

func (Situation) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
