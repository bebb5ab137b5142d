package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// AidEvidence is the join schema for Aid EVIDENCES Situation (spec §3.3).
type AidEvidence struct {
	ent.Schema
}

func (AidEvidence) Fields() []ent.Field {
	return []ent.Field{
		field.Bool("debunked").
			Default(false),
	}
}

func (AidEvidence) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("aid", Aid.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("situation", Situation.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
