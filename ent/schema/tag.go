package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Tag holds the schema definition for a thematic tag (spec §6.6). Situation-
// level tags auto-aggregate from constituent signal tags when frequency >= 2
// and no suppressed_tags edge exists (internal/graph handles the aggregation;
// this schema only carries the edges it reads).
type Tag struct {
	ent.Schema
}

func (Tag) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("tag_id").
			Unique().
			Immutable(),
		field.String("slug").
			Unique(),
		field.String("name"),
	}
}

func (Tag) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("gatherings", Gathering.Type).Ref("tags"),
		edge.From("aids", Aid.Type).Ref("tags"),
		edge.From("needs", Need.Type).Ref("tags"),
		edge.From("notices", Notice.Type).Ref("tags"),
		edge.From("tensions", Tension.Type).Ref("tags"),
		edge.From("situations", Situation.Type).Ref("tags"),
		edge.From("suppressed_by", Situation.Type).Ref("suppressed_tags"),
	}
}

func (Tag) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("slug").
			Unique(),
	}
}

func (Tag) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
