package enrichment

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"hash/fnv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph"
	"github.com/fourthplaces/rootsignal/test/storagetest"
)

// countingEmbedder returns a deterministic, near-orthogonal unit vector
// per distinct input text — identical text always embeds identically,
// distinct text embeds to (almost certainly) orthogonal vectors, which is
// exactly what the cause-heat and cache tests below need without pulling
// in a real embedding provider.
type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t)
	}
	return out, nil
}

func deterministicVector(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	v := make([]float32, 1024)
	v[int(h.Sum32()%1024)] = 1
	return v
}

func seedGathering(t *testing.T, ctx context.Context, r *graph.Reducer, sourceID, id, title string, seq int64) {
	t.Helper()
	_, err := r.Apply(ctx, eventstore.Event{
		Seq:       seq,
		EventType: eventstore.EventTypeGatheringDiscovered,
		Payload: &eventstore.GatheringDiscoveredPayload{
			SignalCore: eventstore.SignalCore{
				SignalID:    id,
				Title:       title,
				SourceURL:   "https://example.org/" + id,
				SourceID:    sourceID,
				ExtractedAt: time.Now().UTC(),
				CreatedBy:   "scout.extractor",
				ScoutRunID:  "run-1",
			},
			StartsAt: time.Now().Add(24 * time.Hour).UTC(),
		},
	})
	require.NoError(t, err)
}

func seedSource(t *testing.T, ctx context.Context, r *graph.Reducer, id string) {
	t.Helper()
	_, err := r.Client().Source.Create().
		SetID(id).
		SetCanonicalValue("https://example.org/" + id).
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)
}

// seedArchiveRow inserts an archive_sources row plus one row in the given
// content-type table, returning an archive_ref ("<contentType>:<rowID>")
// ready to hand to a citation_recorded event.
func seedArchiveRow(t *testing.T, ctx context.Context, db *stdsql.DB, contentType, table string) string {
	t.Helper()
	sourceID := uuid.New().String()
	_, err := db.ExecContext(ctx,
		`INSERT INTO archive_sources (id, canonical_value) VALUES ($1, $2)`,
		sourceID, "https://example.org/"+sourceID)
	require.NoError(t, err)

	rowID := uuid.New().String()
	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, source_id, url, content_hash, fetched_at) VALUES ($1, $2, $3, $4, now())`, table),
		rowID, sourceID, "https://example.org/"+rowID, "hash-"+rowID)
	require.NoError(t, err)

	return contentType + ":" + rowID
}

func recordCitation(t *testing.T, ctx context.Context, r *graph.Reducer, seq int64, signalID, evidenceID, archiveRef string) {
	t.Helper()
	_, err := r.Apply(ctx, eventstore.Event{
		Seq:       seq,
		EventType: eventstore.EventTypeCitationRecorded,
		Payload: &eventstore.CitationRecordedPayload{
			SignalType: "gathering",
			SignalID:   signalID,
			EvidenceID: evidenceID,
			ArchiveRef: archiveRef,
		},
	})
	require.NoError(t, err)
}

func TestRunEmbeddingPass_WritesVectorAndReusesCacheAcrossRows(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := graph.NewReducer(client.Client, client.DB())
	seedSource(t, ctx, r, "source-1")
	seedGathering(t, ctx, r, "source-1", "gathering-1", "Block Party", 1)

	embedder := &countingEmbedder{}
	cache := NewDBEmbeddingCache(client.DB())
	enricher := NewEnricher(client.DB(), embedder, cache, 1)

	n, err := enricher.RunEmbeddingPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, embedder.calls)

	var modelV int
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT embedding_model_v FROM gatherings WHERE signal_id = $1`, "gathering-1").Scan(&modelV))
	assert.Equal(t, 1, modelV)

	// A second signal with the identical title text hits the cache this
	// pass writes to, instead of calling the embedder again.
	seedGathering(t, ctx, r, "source-1", "gathering-2", "Block Party", 2)
	n, err = enricher.RunEmbeddingPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, embedder.calls, "identical title text should be served from the embedding cache")
}

func TestRunDiversityPass_CountsDistinctSourcesAndChannels(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := graph.NewReducer(client.Client, client.DB())
	seedSource(t, ctx, r, "source-1")
	seedGathering(t, ctx, r, "source-1", "gathering-1", "Block Party", 1)

	pageRef := seedArchiveRow(t, ctx, client.DB(), "page", "pages")
	feedRef := seedArchiveRow(t, ctx, client.DB(), "feed", "feeds")
	recordCitation(t, ctx, r, 2, "gathering-1", "evidence-1", pageRef)
	recordCitation(t, ctx, r, 3, "gathering-1", "evidence-2", feedRef)

	enricher := NewEnricher(client.DB(), &countingEmbedder{}, NewDBEmbeddingCache(client.DB()), 1)
	n, err := enricher.RunDiversityPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var sourceDiversity, channelDiversity, corroborationCount int
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT source_diversity, channel_diversity, corroboration_count FROM gatherings WHERE signal_id = $1`,
		"gathering-1").Scan(&sourceDiversity, &channelDiversity, &corroborationCount))
	assert.Equal(t, 2, sourceDiversity)
	assert.Equal(t, 2, channelDiversity)
	assert.Equal(t, 2, corroborationCount)
}

func TestRunCauseHeatPass_NormalizesByBatchMaxAndWritesSimilarities(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	r := graph.NewReducer(client.Client, client.DB())
	seedSource(t, ctx, r, "source-1")
	seedGathering(t, ctx, r, "source-1", "gathering-1", "Block Party", 1)
	seedGathering(t, ctx, r, "source-1", "gathering-2", "Block Party", 2)

	// Each gathering needs at least one SOURCED_FROM citation so its
	// source_diversity is nonzero — cause heat weights a neighbor's
	// contribution by that neighbor's source_diversity, so an uncited
	// signal can never make another signal's heat positive.
	pageRef1 := seedArchiveRow(t, ctx, client.DB(), "page", "pages")
	pageRef2 := seedArchiveRow(t, ctx, client.DB(), "page", "pages")
	recordCitation(t, ctx, r, 3, "gathering-1", "evidence-1", pageRef1)
	recordCitation(t, ctx, r, 4, "gathering-2", "evidence-2", pageRef2)

	enricher := NewEnricher(client.DB(), &countingEmbedder{}, NewDBEmbeddingCache(client.DB()), 1)
	_, err := enricher.RunEmbeddingPass(ctx)
	require.NoError(t, err)
	_, err = enricher.RunDiversityPass(ctx)
	require.NoError(t, err)
	n, err := enricher.RunCauseHeatPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var heat1, heat2 float64
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT cause_heat FROM gatherings WHERE signal_id = $1`, "gathering-1").Scan(&heat1))
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT cause_heat FROM gatherings WHERE signal_id = $1`, "gathering-2").Scan(&heat2))
	assert.InDelta(t, 1.0, heat1, 0.0001, "the only neighbor above threshold is identical, so batch max equals its own heat")
	assert.InDelta(t, 1.0, heat2, 0.0001)

	var weight float64
	require.NoError(t, client.DB().QueryRowContext(ctx,
		`SELECT weight FROM signal_similarities WHERE signal_a_id = $1 AND signal_b_id = $2`,
		"gathering-1", "gathering-2").Scan(&weight))
	assert.InDelta(t, 1.0, weight, 0.0001)
}
