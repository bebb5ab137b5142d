package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// NeedEvidence is the join schema for Need EVIDENCES Situation (spec §3.3).
type NeedEvidence struct {
	ent.Schema
}

func (NeedEvidence) Fields() []ent.Field {
	return []ent.Field{
		field.Bool("debunked").
			Default(false),
	}
}

func (NeedEvidence) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("need", Need.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("situation", Situation.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
