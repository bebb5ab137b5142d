package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Place holds the schema definition for a first-class venue (spec §3.2).
// Dedup key is (slug, city) — the same slug in different cities is two
// distinct places.
type Place struct {
	ent.Schema
}

func (Place) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("place_id").
			Unique().
			Immutable(),
		field.String("name"),
		field.String("slug"),
		field.String("place_type").
			Optional().
			Nillable(),
		field.String("city"),
		field.Float("lat").
			Optional().
			Nillable(),
		field.Float("lng").
			Optional().
			Nillable(),
		field.Bool("geocoded").
			Default(false),
	}
}

func (Place) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("slug", "city").
			Unique(),
	}
}

func (Place) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
