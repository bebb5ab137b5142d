package storage

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// signalEmbeddingTables lists the five signal tables carrying a 1024-dim
// embedding column; CreateVectorIndexes promotes the two Situation
// embedding columns separately (spec §6.5: "vector indexes on each signal type's
// embedding plus Situation.narrative_embedding and Situation.causal_embedding").
var signalEmbeddingTables = []string{
	"gatherings", "aids", "needs", "notices", "tensions",
}

// CreateVectorIndexes converts the JSONB embedding columns ent creates
// into real pgvector columns and adds HNSW approximate-nearest-neighbor
// indexes on top — custom SQL ent's schema DSL has no field type for,
// mirroring the teacher's CreateGINIndexes post-migration hook.
func CreateVectorIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	for _, table := range signalEmbeddingTables {
		if err := promoteToVector(ctx, db, table, "embedding"); err != nil {
			return fmt.Errorf("promote %s.embedding: %w", table, err)
		}
	}
	if err := promoteToVector(ctx, db, "situations", "narrative_embedding"); err != nil {
		return fmt.Errorf("promote situations.narrative_embedding: %w", err)
	}
	if err := promoteToVector(ctx, db, "situations", "causal_embedding"); err != nil {
		return fmt.Errorf("promote situations.causal_embedding: %w", err)
	}
	return nil
}

// promoteToVector alters column to vector(1024) (casting any existing JSONB
// array content across), then creates an HNSW cosine-distance index on it.
// Both statements are idempotent: the ALTER is a no-op if the column is
// already vector(1024), and the index uses IF NOT EXISTS.
func promoteToVector(ctx context.Context, db *stdsql.DB, table, column string) error {
	alter := fmt.Sprintf(
		`ALTER TABLE %s ALTER COLUMN %s TYPE vector(1024)
		 USING (CASE WHEN %s IS NULL THEN NULL
		             ELSE (SELECT array_agg(x::float4) FROM jsonb_array_elements_text(%s) AS t(x))::vector
		        END)`,
		table, column, column, column,
	)
	if _, err := db.ExecContext(ctx, alter); err != nil {
		return fmt.Errorf("alter column: %w", err)
	}

	indexName := fmt.Sprintf("idx_%s_%s_hnsw", table, column)
	index := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (%s vector_cosine_ops)`,
		indexName, table, column,
	)
	if _, err := db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}
