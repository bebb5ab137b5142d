package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Notice holds the schema definition for an official or informational
// announcement signal (spec §3.1).
type Notice struct {
	ent.Schema
}

func (Notice) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SignalMixin{},
		SeqGuardMixin{},
	}
}

func (Notice) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("severity").
			Values("info", "advisory", "warning", "critical").
			Optional().
			Nillable(),
		field.String("category").
			Optional().
			Nillable(),
		field.Time("effective_date").
			Optional().
			Nillable(),
		field.String("source_authority").
			Optional().
			Nillable(),
	}
}

func (Notice) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("produced_by", Source.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Restrict)),
		edge.To("acted_in", Actor.Type),
		edge.To("sourced_from", Evidence.Type),
		edge.To("schedule", Schedule.Type).
			Unique().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("tags", Tag.Type),
		edge.To("evidences", Situation.Type).
			Through("notice_evidence", NoticeEvidence.Type),
	}
}

func (Notice) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("review_status"),
		index.Fields("scout_run_id"),
		index.Fields("severity"),
		index.Fields("effective_date"),
	}
}

func (Notice) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
