package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Aid holds the schema definition for an available-resource-or-service
// signal (spec §3.1).
type Aid struct {
	ent.Schema
}

func (Aid) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SignalMixin{},
		SeqGuardMixin{},
	}
}

func (Aid) Fields() []ent.Field {
	return []ent.Field{
		field.String("availability").
			Optional().
			Nillable(),
		field.Bool("is_ongoing").
			Default(false),
		field.String("action_url").
			Optional().
			Nillable(),
	}
}

func (Aid) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("produced_by", Source.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Restrict)),
		edge.To("acted_in", Actor.Type),
		edge.To("sourced_from", Evidence.Type),
		edge.To("responds_to", Tension.Type),
		edge.To("schedule", Schedule.Type).
			Unique().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("tags", Tag.Type),
		edge.To("offers", Resource.Type).
			Comment("resource tags with role requires|prefers|offers; role tracked in signal_edge_facts"),
		edge.To("evidences", Situation.Type).
			Through("aid_evidence", AidEvidence.Type),
	}
}

func (Aid) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("review_status"),
		index.Fields("scout_run_id"),
		index.Fields("review_status", "is_ongoing"),
	}
}

func (Aid) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
