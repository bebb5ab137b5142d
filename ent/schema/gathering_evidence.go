package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// GatheringEvidence is the join schema for Gathering EVIDENCES Situation
// (spec §3.3), carrying the per-pair debunked flag that plain ent edges
// can't express.
type GatheringEvidence struct {
	ent.Schema
}

func (GatheringEvidence) Fields() []ent.Field {
	return []ent.Field{
		field.Bool("debunked").
			Default(false),
	}
}

func (GatheringEvidence) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("gathering", Gathering.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("situation", Situation.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
