package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Source holds the schema definition for a fetchable endpoint (spec §3.2).
type Source struct {
	ent.Schema
}

func (Source) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("source_id").
			Unique().
			Immutable(),
		field.String("canonical_value").
			Unique().
			Comment("normalized URL or query string; identity key"),
		field.Enum("scraping_strategy").
			Values("web_page", "feed", "social_profile", "search_query", "event_platform"),
		field.Float("weight").
			Default(1.0),
		field.Int("consecutive_empty_runs").
			Default(0),
		field.Time("last_scraped_at").
			Optional().
			Nillable(),
		field.Bool("active").
			Default(true),
		field.Bool("owned").
			Default(false).
			Comment("owned sources (social profile, owned website) permit actor attachment"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Source) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("actors", Actor.Type).
			Ref("has_source"),
	}
}

func (Source) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("canonical_value").
			Unique(),
		index.Fields("active", "scraping_strategy"),
		index.Fields("last_scraped_at"),
	}
}

func (Source) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
