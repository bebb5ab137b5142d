package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// TensionEvidence is the join schema for Tension EVIDENCES Situation (spec
// §3.3). debunked here is the flag the temperature formula's
// tension_heat_agg and clarity_need thesis_support filter on.
type TensionEvidence struct {
	ent.Schema
}

func (TensionEvidence) Fields() []ent.Field {
	return []ent.Field{
		field.Bool("debunked").
			Default(false),
	}
}

func (TensionEvidence) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("tension", Tension.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("situation", Situation.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
