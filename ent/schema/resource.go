package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Resource holds the schema definition for a resource tag vocabulary entry
// (spec §6.1: "resource tags with role requires|prefers|offers"). The role
// itself is a property of the edge from a signal to a Resource and is
// tracked in signal_edge_facts alongside confidence, since it differs per
// (signal, resource) pair rather than per Resource.
type Resource struct {
	ent.Schema
}

func (Resource) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("resource_id").
			Unique().
			Immutable(),
		field.String("slug").
			Unique(),
		field.String("name"),
	}
}

func (Resource) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("slug").
			Unique(),
	}
}

func (Resource) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
