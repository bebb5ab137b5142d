package enrichment

import (
	"context"
	"crypto/sha256"
	stdsql "database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingCache persists embedding vectors across runs, keyed by
// hash(model_version + input_text) (spec §4.3.2) — distinct from
// RunContext's per-run cache, which only dedupes repeat text within a
// single scrape and never touches the database.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Put(ctx context.Context, key string, vec []float32) error
}

type dbEmbeddingCache struct {
	db *stdsql.DB
}

// NewDBEmbeddingCache backs EmbeddingCache with the embedding_cache table.
func NewDBEmbeddingCache(db *stdsql.DB) EmbeddingCache {
	return &dbEmbeddingCache{db: db}
}

func (c *dbEmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var v pgvector.Vector
	err := c.db.QueryRowContext(ctx, `SELECT embedding FROM embedding_cache WHERE cache_key = $1`, key).Scan(&v)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache get: %w", err)
	}
	return v.Slice(), true, nil
}

// Put is a no-op on conflict: the cache key already encodes the model
// version and exact input text, so an existing row is definitionally the
// same vector a second caller would have computed.
func (c *dbEmbeddingCache) Put(ctx context.Context, key string, vec []float32) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO embedding_cache (cache_key, embedding) VALUES ($1, $2) ON CONFLICT (cache_key) DO NOTHING`,
		key, pgvector.NewVector(vec),
	)
	if err != nil {
		return fmt.Errorf("embedding cache put: %w", err)
	}
	return nil
}

func cacheKey(modelVersion int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", modelVersion, text)))
	return hex.EncodeToString(sum[:])
}
