package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Pin holds the schema definition for an ephemeral discovery seed (spec
// §4.4.1: scrape loads sources "via ephemeral Pin nodes" alongside actor
// HAS_SOURCE and signal PRODUCED_BY provenance). A Pin records a
// region/query the actor-discovery sub-workflow surfaced but that hasn't
// yet been promoted to a Source.
type Pin struct {
	ent.Schema
}

func (Pin) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("pin_id").
			Unique().
			Immutable(),
		field.String("region"),
		field.String("query"),
		field.String("discovered_via").
			Optional().
			Nillable().
			Comment("source_id or actor_id this pin was surfaced from, if any"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("expires_at").
			Optional().
			Nillable(),
	}
}

func (Pin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("region"),
		index.Fields("expires_at"),
	}
}

func (Pin) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
