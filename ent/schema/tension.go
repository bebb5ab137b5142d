package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Tension holds the schema definition for an unresolved-concern-or-problem
// signal (spec §3.1). Tension.cause_heat (from SignalMixin) feeds directly
// into the situation temperature formula's tension_heat_agg component.
type Tension struct {
	ent.Schema
}

func (Tension) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SignalMixin{},
		SeqGuardMixin{},
	}
}

func (Tension) Fields() []ent.Field {
	return []ent.Field{
		field.Enum("severity").
			Values("low", "moderate", "high", "critical").
			Optional().
			Nillable(),
		field.Text("what_would_help").
			Optional().
			Nillable(),
	}
}

func (Tension) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("produced_by", Source.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Restrict)),
		edge.To("acted_in", Actor.Type),
		edge.To("sourced_from", Evidence.Type),
		edge.To("tags", Tag.Type),
		edge.To("evidences", Situation.Type).
			Through("tension_evidence", TensionEvidence.Type),
	}
}

func (Tension) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("review_status"),
		index.Fields("scout_run_id"),
		index.Fields("severity"),
		index.Fields("cause_heat"),
	}
}

func (Tension) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
