package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Evidence holds the schema definition for a grounding artifact a signal
// is SOURCED_FROM (spec §3.2) — a pointer into the archive store, not a
// copy of the fetched content itself.
type Evidence struct {
	ent.Schema
}

func (Evidence) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("evidence_id").
			Unique().
			Immutable(),
		field.String("archive_ref").
			Comment("content-type + archive row id, e.g. \"page:<uuid>\""),
		field.Text("excerpt").
			Optional().
			Nillable(),
		field.Time("captured_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Evidence) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("archive_ref"),
	}
}

func (Evidence) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
