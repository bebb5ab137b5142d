package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Gathering holds the schema definition for a time-bound community event
// signal (spec §3.1).
type Gathering struct {
	ent.Schema
}

func (Gathering) Mixin() []ent.Mixin {
	return []ent.Mixin{
		SignalMixin{},
		SeqGuardMixin{},
	}
}

func (Gathering) Fields() []ent.Field {
	return []ent.Field{
		field.Time("starts_at"),
		field.Time("ends_at").
			Optional().
			Nillable(),
		field.String("organizer").
			Optional().
			Nillable(),
		field.Bool("is_recurring").
			Default(false),
		field.String("action_url").
			Optional().
			Nillable(),
	}
}

func (Gathering) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("produced_by", Source.Type).
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Restrict)),
		edge.To("acted_in", Actor.Type).
			Comment("role (authored|mentioned) tracked in signal_edge_facts, not here"),
		edge.To("sourced_from", Evidence.Type),
		edge.To("draws_to", Tension.Type).
			Comment("gathering_type edge property tracked in signal_edge_facts"),
		edge.To("gathers_at", Place.Type).
			Unique(),
		edge.To("schedule", Schedule.Type).
			Unique().
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("tags", Tag.Type),
		edge.To("evidences", Situation.Type).
			Through("gathering_evidence", GatheringEvidence.Type),
	}
}

func (Gathering) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("review_status"),
		index.Fields("scout_run_id"),
		index.Fields("starts_at"),
		index.Fields("review_status", "starts_at"),
	}
}

func (Gathering) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
