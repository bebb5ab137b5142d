// Package enrichment runs the post-reduction passes over the property
// graph — embedding, source/channel diversity, and cause heat (spec
// §4.3.2) — that turn facts the reducer already wrote into the derived
// signal used by weaving and search. Every pass is idempotent and reads
// only what it needs to decide whether a row is stale, so running the
// same pass twice in a row is a no-op the second time.
//
// Passes talk to Postgres directly through database/sql rather than
// through the ent client: the columns they touch (the promoted
// vector(1024) embedding column, source_diversity, cause_heat, the
// signal_similarities table) either have no ent field type (pgvector) or
// are shared verbatim across all five signal tables, so one raw-SQL loop
// over table names replaces five otherwise-identical ent code paths.
package enrichment

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/fourthplaces/rootsignal/internal/graph/dedup"
)

// Embedder computes embedding vectors for a batch of input texts, in the
// order given. The concrete implementation (internal/llmclient, against
// whatever embedding provider is configured) is an external collaborator
// — out of scope here, same as the LLM provider itself.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CauseHeatSimilarityThreshold is the cosine-similarity floor above which
// one signal counts as a cause-heat neighbor of another (spec §4.3.2).
const CauseHeatSimilarityThreshold = 0.75

// signalKind describes one of the five physical signal tables, all of
// which share the SignalMixin columns this package reads and writes.
type signalKind struct {
	Type       string
	Table      string
	JoinTable  string // implicit M2M join table ent generates for sourced_from
	JoinColumn string // the FK column on JoinTable pointing back at Table
}

var signalKinds = []signalKind{
	{Type: "gathering", Table: "gatherings", JoinTable: "gathering_sourced_from", JoinColumn: "gathering_id"},
	{Type: "aid", Table: "aids", JoinTable: "aid_sourced_from", JoinColumn: "aid_id"},
	{Type: "need", Table: "needs", JoinTable: "need_sourced_from", JoinColumn: "need_id"},
	{Type: "notice", Table: "notices", JoinTable: "notice_sourced_from", JoinColumn: "notice_id"},
	{Type: "tension", Table: "tensions", JoinTable: "tension_sourced_from", JoinColumn: "tension_id"},
}

func tableForType(signalType string) string {
	for _, k := range signalKinds {
		if k.Type == signalType {
			return k.Table
		}
	}
	return ""
}

// Enricher runs the three enrichment passes against the storage pool.
type Enricher struct {
	db           *stdsql.DB
	embedder     Embedder
	cache        EmbeddingCache
	modelVersion int
}

func NewEnricher(db *stdsql.DB, embedder Embedder, cache EmbeddingCache, modelVersion int) *Enricher {
	return &Enricher{db: db, embedder: embedder, cache: cache, modelVersion: modelVersion}
}

// RunAll runs the three passes in their dependency order: embeddings feed
// cause heat, diversity feeds cause heat, so embedding and diversity must
// both finish before cause heat starts.
func (e *Enricher) RunAll(ctx context.Context) error {
	if _, err := e.RunEmbeddingPass(ctx); err != nil {
		return err
	}
	if _, err := e.RunDiversityPass(ctx); err != nil {
		return err
	}
	if _, err := e.RunCauseHeatPass(ctx); err != nil {
		return err
	}
	return nil
}

// RunEmbeddingPass computes embeddings for every signal missing one or
// carrying a stale model version, across all five signal tables.
func (e *Enricher) RunEmbeddingPass(ctx context.Context) (int, error) {
	total := 0
	for _, k := range signalKinds {
		n, err := e.embedKind(ctx, k)
		if err != nil {
			return total, fmt.Errorf("enrichment: embedding pass (%s): %w", k.Type, err)
		}
		total += n
	}
	return total, nil
}

type embedCandidate struct {
	id   string
	text string
}

func (e *Enricher) embedKind(ctx context.Context, k signalKind) (int, error) {
	query := fmt.Sprintf(
		`SELECT signal_id, title, COALESCE(summary, '') FROM %s WHERE embedding_model_v IS NULL OR embedding_model_v <> $1`,
		k.Table,
	)
	rows, err := e.db.QueryContext(ctx, query, e.modelVersion)
	if err != nil {
		return 0, fmt.Errorf("select stale embeddings: %w", err)
	}
	var candidates []embedCandidate
	for rows.Next() {
		var c embedCandidate
		var title, summary string
		if err := rows.Scan(&c.id, &title, &summary); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan candidate: %w", err)
		}
		c.text = title
		if summary != "" {
			c.text = title + "\n" + summary
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	if len(candidates) == 0 {
		return 0, nil
	}

	vectors, err := e.resolveEmbeddings(ctx, candidates)
	if err != nil {
		return 0, err
	}

	update := fmt.Sprintf(`UPDATE %s SET embedding = $1, embedding_model_v = $2 WHERE signal_id = $3`, k.Table)
	for i, c := range candidates {
		if _, err := e.db.ExecContext(ctx, update, pgvector.NewVector(vectors[i]), e.modelVersion, c.id); err != nil {
			return 0, fmt.Errorf("write embedding for %s %s: %w", k.Type, c.id, err)
		}
	}
	return len(candidates), nil
}

// resolveEmbeddings fills in vectors for every candidate, serving cache
// hits directly and batching everything else through the embedder in one
// call — the cache key is hash(model_version + input_text) (spec §4.3.2).
func (e *Enricher) resolveEmbeddings(ctx context.Context, candidates []embedCandidate) ([][]float32, error) {
	vectors := make([][]float32, len(candidates))
	keys := make([]string, len(candidates))
	var missIdx []int
	var missTexts []string

	for i, c := range candidates {
		keys[i] = cacheKey(e.modelVersion, c.text)
		v, ok, err := e.cache.Get(ctx, keys[i])
		if err != nil {
			return nil, fmt.Errorf("embedding cache get: %w", err)
		}
		if ok {
			vectors[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, c.text)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := e.embedder.Embed(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(embedded), len(missTexts))
	}
	for j, idx := range missIdx {
		vectors[idx] = embedded[j]
		if err := e.cache.Put(ctx, keys[idx], embedded[j]); err != nil {
			return nil, fmt.Errorf("embedding cache put: %w", err)
		}
	}
	return vectors, nil
}

// RunDiversityPass recounts SOURCED_FROM incident edges for every signal
// and writes source_diversity, channel_diversity, and corroboration_count
// from scratch — rerunning it after a reducer replay reproduces the same
// numbers, since it derives them from graph topology alone.
func (e *Enricher) RunDiversityPass(ctx context.Context) (int, error) {
	total := 0
	for _, k := range signalKinds {
		n, err := e.diversifyKind(ctx, k)
		if err != nil {
			return total, fmt.Errorf("enrichment: diversity pass (%s): %w", k.Type, err)
		}
		total += n
	}
	return total, nil
}

func (e *Enricher) diversifyKind(ctx context.Context, k signalKind) (int, error) {
	idRows, err := e.db.QueryContext(ctx, fmt.Sprintf(`SELECT signal_id FROM %s`, k.Table))
	if err != nil {
		return 0, fmt.Errorf("list signals: %w", err)
	}
	var ids []string
	for idRows.Next() {
		var id string
		if err := idRows.Scan(&id); err != nil {
			idRows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := idRows.Err(); err != nil {
		idRows.Close()
		return 0, err
	}
	idRows.Close()

	update := fmt.Sprintf(`UPDATE %s SET source_diversity = $1, channel_diversity = $2, corroboration_count = $3 WHERE signal_id = $4`, k.Table)
	for _, id := range ids {
		refs, err := e.evidenceRefs(ctx, k, id)
		if err != nil {
			return 0, fmt.Errorf("evidence refs for %s %s: %w", k.Type, id, err)
		}

		sources := make(map[string]struct{}, len(refs))
		channels := make(map[string]struct{}, len(refs))
		for _, ref := range refs {
			prov, err := resolveProvenance(ctx, e.db, ref)
			if err != nil {
				return 0, fmt.Errorf("resolve provenance for %s %s: %w", k.Type, id, err)
			}
			sources[prov.SourceID] = struct{}{}
			channels[prov.Channel] = struct{}{}
		}

		if _, err := e.db.ExecContext(ctx, update, len(sources), len(channels), len(refs), id); err != nil {
			return 0, fmt.Errorf("write diversity for %s %s: %w", k.Type, id, err)
		}
	}
	return len(ids), nil
}

func (e *Enricher) evidenceRefs(ctx context.Context, k signalKind, id string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT ev.archive_ref FROM %s j JOIN evidences ev ON ev.evidence_id = j.evidence_id WHERE j.%s = $1`,
		k.JoinTable, k.JoinColumn,
	)
	rows, err := e.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// embeddedSignal is a signal pulled into memory for the cause-heat batch —
// a full O(n^2) comparison across every embedded, non-retracted signal in
// the graph, run as one offline pass rather than per-write, matching the
// "normalize by batch max" framing of the pass itself.
type embeddedSignal struct {
	Type            string
	ID              string
	Embedding       []float32
	SourceDiversity int
}

type similarPair struct {
	i, j   int
	weight float64
}

// RunCauseHeatPass sums cosine_similarity(s, n) * n.source_diversity over
// every neighbor above CauseHeatSimilarityThreshold, normalizes by the
// batch max, and rebuilds signal_similarities (the SIMILAR_TO edge
// weights) from the same comparison (spec §4.3.2).
func (e *Enricher) RunCauseHeatPass(ctx context.Context) (int, error) {
	var all []embeddedSignal
	for _, k := range signalKinds {
		signals, err := e.loadEmbedded(ctx, k)
		if err != nil {
			return 0, fmt.Errorf("enrichment: cause heat pass (%s): %w", k.Type, err)
		}
		all = append(all, signals...)
	}
	if len(all) == 0 {
		return 0, nil
	}

	heats := make([]float64, len(all))
	var pairs []similarPair
	for i := range all {
		var sum float64
		for j := range all {
			if i == j {
				continue
			}
			sim := dedup.CosineSimilarity(all[i].Embedding, all[j].Embedding)
			if sim < CauseHeatSimilarityThreshold {
				continue
			}
			sum += sim * float64(all[j].SourceDiversity)
			if i < j {
				pairs = append(pairs, similarPair{i: i, j: j, weight: sim})
			}
		}
		heats[i] = sum
	}

	max := 0.0
	for _, h := range heats {
		if h > max {
			max = h
		}
	}

	for i, s := range all {
		normalized := 0.0
		if max > 0 {
			normalized = heats[i] / max
		}
		table := tableForType(s.Type)
		if _, err := e.db.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET cause_heat = $1 WHERE signal_id = $2`, table), normalized, s.ID); err != nil {
			return 0, fmt.Errorf("write cause_heat for %s %s: %w", s.Type, s.ID, err)
		}
	}

	if err := e.writeSimilarities(ctx, all, pairs); err != nil {
		return 0, err
	}
	return len(all), nil
}

func (e *Enricher) loadEmbedded(ctx context.Context, k signalKind) ([]embeddedSignal, error) {
	query := fmt.Sprintf(
		`SELECT signal_id, embedding, source_diversity FROM %s WHERE embedding IS NOT NULL AND retracted_at IS NULL ORDER BY signal_id`,
		k.Table,
	)
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []embeddedSignal
	for rows.Next() {
		var id string
		var vec pgvector.Vector
		var sourceDiversity int
		if err := rows.Scan(&id, &vec, &sourceDiversity); err != nil {
			return nil, err
		}
		out = append(out, embeddedSignal{Type: k.Type, ID: id, Embedding: vec.Slice(), SourceDiversity: sourceDiversity})
	}
	return out, rows.Err()
}

// writeSimilarities rebuilds signal_similarities wholesale each run, the
// same rebuild-don't-patch approach as the rest of this pass — stale
// pairs (a signal that drifted below threshold) would otherwise linger
// forever since nothing else ever deletes a row here.
func (e *Enricher) writeSimilarities(ctx context.Context, all []embeddedSignal, pairs []similarPair) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin similarities rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM signal_similarities`); err != nil {
		return fmt.Errorf("clear signal_similarities: %w", err)
	}

	const insert = `
		INSERT INTO signal_similarities (signal_a_type, signal_a_id, signal_b_type, signal_b_id, weight)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (signal_a_type, signal_a_id, signal_b_type, signal_b_id)
		DO UPDATE SET weight = EXCLUDED.weight, computed_at = now()`
	for _, p := range pairs {
		a, b := all[p.i], all[p.j]
		if _, err := tx.ExecContext(ctx, insert, a.Type, a.ID, b.Type, b.ID, p.weight); err != nil {
			return fmt.Errorf("write similarity %s/%s: %w", a.ID, b.ID, err)
		}
	}
	return tx.Commit()
}
