package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Schedule holds the schema definition for a signal's recurrence (spec
// §4.4.3, §6.5). Exactly one of rrule or schedule_text is set — an invalid
// RRULE falls back to schedule_text rather than being silently dropped
// (internal/graph/schedule's two-path constructor enforces this).
type Schedule struct {
	ent.Schema
}

func (Schedule) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("schedule_id").
			Unique().
			Immutable(),
		field.String("rrule").
			Optional().
			Nillable(),
		field.JSON("explicit_dates", []string{}).
			Optional(),
		field.JSON("exception_dates", []string{}).
			Optional(),
		field.String("timezone").
			Optional().
			Nillable().
			Comment("IANA timezone name"),
		field.String("schedule_text").
			Optional().
			Nillable().
			Comment("natural-language fallback when rrule is absent or failed to parse"),
	}
}

func (Schedule) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
