package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Dispatch holds the schema definition for an append-only narrative entry
// (spec §3.3). Corrections supersede but never overwrite — supersedes
// points at the dispatch being corrected, the superseded row is left in
// place.
type Dispatch struct {
	ent.Schema
}

func (Dispatch) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("dispatch_id").
			Unique().
			Immutable(),
		field.Text("body").
			Comment("inline [signal:UUID] citation tokens"),
		field.Enum("dispatch_type").
			Values("update", "emergence", "split", "merge", "reactivation", "correction"),
		field.String("supersedes").
			Optional().
			Nillable().
			Comment("dispatch_id this one corrects, set only when dispatch_type=correction"),
		field.Bool("flagged_for_review").
			Default(false),
		field.String("flag_reason").
			Optional().
			Nillable(),
		field.Float("fidelity_score").
			Optional().
			Nillable().
			Comment("cosine similarity between body and cited signals' embeddings"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Dispatch) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("situation", Situation.Type).
			Ref("has_dispatch").
			Unique().
			Required().
			Immutable(),
		edge.To("cites_gatherings", Gathering.Type),
		edge.To("cites_aids", Aid.Type),
		edge.To("cites_needs", Need.Type),
		edge.To("cites_notices", Notice.Type),
		edge.To("cites_tensions", Tension.Type),
	}
}

func (Dispatch) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("dispatch_type"),
		index.Fields("flagged_for_review").
			Annotations(entsql.IndexWhere("flagged_for_review = true")),
		index.Fields("created_at"),
	}
}

func (Dispatch) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
