package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Need holds the schema definition for an explicit-request-for-help signal
// (spec §3.1).
type Need struct {
	ent.Schema
}

func (Need) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SignalMixin{},
		SeqGuardMixin{},
	}
}

func (Need) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("urgency").
			Values("low", "moderate", "high", "critical").
			Optional().
			Nillable(),
		field.Text("what_needed").
			Optional().
			Nillable(),
		field.Text("goal").
			Optional().
			Nillable(),
	}
}

func (Need) Edges() []ent.Edge {
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
		edge.To("requires", Resource.Type).
			Comment("resource tags with role requires|prefers|offers; role tracked in signal_edge_facts"),
		edge.To("evidences", Situation.Type).
			Through("need_evidence", NeedEvidence.Type),
	}
}

func (Need) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("review_status"),
		index.Fields("scout_run_id"),
		index.Fields("urgency"),
		index.Fields("review_status", "urgency"),
	}
}

func (Need) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
