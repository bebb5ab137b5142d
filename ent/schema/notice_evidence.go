package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// NoticeEvidence is the join schema for Notice EVIDENCES Situation (spec §3.3).
type NoticeEvidence struct {
	ent.Schema
}

func (NoticeEvidence) Fields() []ent.Field {
	return []ent.Field{
		field.Bool("debunked").
			Default(false),
	}
}

func (NoticeEvidence) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("notice", Notice.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("situation", Situation.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
