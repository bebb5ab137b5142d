package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Actor holds the schema definition for an identity attached to an owned
// source (spec §3.2). Actors only exist for owned sources; aggregator-
// source authors remain text metadata on mentioned_entities.
type Actor struct {
	ent.Schema
}

func (Actor) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("actor_id").
			Unique().
			Immutable(),
		field.String("entity_id").
			Unique().
			Comment("= source.canonical_value; URL-as-identity, deterministic across concurrent writers"),
		field.String("name"),
		field.String("actor_type").
			Optional().
			Nillable(),
		field.Float("location_lat").
			Optional().
			Nillable(),
		field.Float("location_lng").
			Optional().
			Nillable(),
		field.String("location_name").
			Optional().
			Nillable(),
		field.Text("bio").
			Optional().
			Nillable(),
		field.Int("discovery_depth").
			Default(0).
			Comment("hops from a bootstrap seed; at max depth no further discovery is triggered"),
	}
}

func (Actor) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("has_source", Source.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Actor) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("entity_id").
			Unique(),
		index.Fields("discovery_depth"),
	}
}

func (Actor) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
