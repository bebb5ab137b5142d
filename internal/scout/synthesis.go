package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/antzucaro/matchr"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph/enrichment"
)

// ActorNameMatchThreshold is the Jaro-Winkler floor above which a
// mentioned_entities name is considered the same actor as an existing
// Actor row — the same similarity family internal/graph/dedup uses for
// titles, applied here to names instead.
const ActorNameMatchThreshold = 0.90

// SynthesisResult reports what one Synthesis invocation derived.
type SynthesisResult struct {
	SignalsEmbedded    int `json:"signals_embedded"`
	SignalsDiversified int `json:"signals_diversified"`
	SimilarityPairs    int `json:"similarity_pairs"`
	ActorsLinked       int `json:"actors_linked"`
}

// DiscoveredMention is one signal's mentioned_entities, carried forward
// from the discovery event Scrape already appended rather than re-read
// from the graph — ent's generated client has no type-erased "find this
// ID across all five signal tables" query, so the caller that minted the
// signal is the cheapest place to remember what it mentioned.
type DiscoveredMention struct {
	SignalType string
	SignalID   string
	Names      []string
}

// Synthesis is the derived-graph sub-workflow that runs after Scrape has
// appended this run's discovery events and the reducer has projected
// them: recompute embeddings/diversity/cause-heat over every signal the
// enrichment passes haven't caught up on yet (spec §4.3.2), then resolve
// each freshly-discovered signal's mentioned_entities against existing
// Actor rows and emit actor_linked_to_signal with role "mentioned" for
// any name that matches closely enough. Independently invocable as
// "resynthesize this run's actor links" without re-scraping anything.
func Synthesis(
	ctx context.Context,
	j *durable.Journal,
	client *ent.Client,
	db *stdsql.DB,
	store *eventstore.Store,
	embedder enrichment.Embedder,
	cache enrichment.EmbeddingCache,
	embeddingModelVersion int,
	runID string,
	mentions []DiscoveredMention,
) (SynthesisResult, error) {
	return durable.Step(ctx, j, runID, "synthesis", durable.DefaultRetryPolicy, func(ctx context.Context) (SynthesisResult, error) {
		enricher := enrichment.NewEnricher(db, embedder, cache, embeddingModelVersion)

		embedded, err := enricher.RunEmbeddingPass(ctx)
		if err != nil {
			return SynthesisResult{}, fmt.Errorf("embedding pass: %w", err)
		}
		diversified, err := enricher.RunDiversityPass(ctx)
		if err != nil {
			return SynthesisResult{}, fmt.Errorf("diversity pass: %w", err)
		}
		pairs, err := enricher.RunCauseHeatPass(ctx)
		if err != nil {
			return SynthesisResult{}, fmt.Errorf("cause heat pass: %w", err)
		}

		linked, err := linkMentionedActors(ctx, client, store, runID, mentions)
		if err != nil {
			return SynthesisResult{}, fmt.Errorf("link mentioned actors: %w", err)
		}

		return SynthesisResult{
			SignalsEmbedded:    embedded,
			SignalsDiversified: diversified,
			SimilarityPairs:    pairs,
			ActorsLinked:       linked,
		}, nil
	})
}

// linkMentionedActors resolves each discovered signal's mentioned_entities
// against existing Actor rows by fuzzy name match and emits
// actor_linked_to_signal for every hit. A name with no close Actor stays
// text-only metadata on mentioned_entities, per ent/schema/actor.go's
// "actors only exist for owned sources" invariant — this never mints a
// new Actor from a mention alone.
func linkMentionedActors(ctx context.Context, client *ent.Client, store *eventstore.Store, runID string, mentions []DiscoveredMention) (int, error) {
	actors, err := client.Actor.Query().All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load actors: %w", err)
	}
	if len(actors) == 0 {
		return 0, nil
	}

	linked := 0
	for _, m := range mentions {
		for _, name := range m.Names {
			actorID, ok := bestActorMatch(actors, name)
			if !ok {
				continue
			}
			if _, err := store.Append(ctx, eventstore.AppendInput{
				EventType: eventstore.EventTypeActorLinkedToSignal,
				RunID:     runID,
				Actor:     "scout.synthesis",
				Payload: &eventstore.ActorLinkedToSignalPayload{
					SignalType: m.SignalType,
					SignalID:   m.SignalID,
					ActorID:    actorID,
					Role:       "mentioned",
				},
			}); err != nil {
				return linked, fmt.Errorf("append actor_linked_to_signal for %s %s: %w", m.SignalType, m.SignalID, err)
			}
			linked++
		}
	}
	return linked, nil
}

func bestActorMatch(actors []*ent.Actor, name string) (string, bool) {
	bestScore := 0.0
	bestID := ""
	for _, a := range actors {
		score := matchr.JaroWinkler(name, a.Name, true)
		if score > bestScore {
			bestScore = score
			bestID = a.ID
		}
	}
	if bestScore >= ActorNameMatchThreshold {
		return bestID, true
	}
	return "", false
}
