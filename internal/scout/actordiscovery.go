package scout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/actor"
	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
)

// ActorSeed is one curated (name, owned-source-URL) pair an operator
// has vetted for a region — "seed actors from curated pages" (spec
// §4.4.1) assumes the curation already resolved who the actor is; this
// workflow's job is wiring that identity into the graph and the Archive,
// not inferring it from page content.
type ActorSeed struct {
	Name         string
	URL          string
	ActorType    string
	LocationName string
}

// ActorDiscoveryResult reports what this run seeded, journaled so a
// replay doesn't re-mint actor IDs for URLs already resolved.
type ActorDiscoveryResult struct {
	ActorsSeeded []string `json:"actors_seeded"`
}

// ActorDiscovery resolves each seed's URL to an owned Archive source,
// get-or-creates the Actor by entity_id (= the source's canonical
// value, per ent/schema/actor.go — URL-as-identity is deterministic
// across concurrent writers, so two runs racing on the same curated URL
// converge on one Actor row), and appends actor_linked_to_source for
// the reducer to wire HAS_SOURCE. Independently invocable as "discover
// actors for X" without running the rest of FullRun.
func ActorDiscovery(ctx context.Context, j *durable.Journal, client *ent.Client, a *archive.Archive, store *eventstore.Store, runID string, seeds []ActorSeed) (ActorDiscoveryResult, error) {
	return durable.Step(ctx, j, runID, "actor_discovery", durable.DefaultRetryPolicy, func(ctx context.Context) (ActorDiscoveryResult, error) {
		var result ActorDiscoveryResult
		for _, seed := range seeds {
			h, err := a.Source(ctx, seed.URL)
			if err != nil {
				return ActorDiscoveryResult{}, fmt.Errorf("resolve actor source %s: %w", seed.URL, err)
			}

			existing, err := client.Actor.Query().Where(actor.EntityID(h.CanonicalValue())).Only(ctx)
			var actorID string
			switch {
			case err == nil:
				actorID = existing.ID
			case ent.IsNotFound(err):
				actorID = uuid.NewString()
				create := client.Actor.Create().
					SetID(actorID).
					SetEntityID(h.CanonicalValue()).
					SetName(seed.Name).
					SetHasSourceID(h.SourceID())
				if seed.ActorType != "" {
					create = create.SetActorType(seed.ActorType)
				}
				if seed.LocationName != "" {
					create = create.SetLocationName(seed.LocationName)
				}
				if _, cerr := create.Save(ctx); cerr != nil && !ent.IsConstraintError(cerr) {
					return ActorDiscoveryResult{}, fmt.Errorf("create actor for %s: %w", seed.URL, cerr)
				}
			default:
				return ActorDiscoveryResult{}, fmt.Errorf("query actor by entity_id %s: %w", h.CanonicalValue(), err)
			}

			if _, err := store.Append(ctx, eventstore.AppendInput{
				EventType: eventstore.EventTypeActorLinkedToSource,
				RunID:     runID,
				Actor:     "scout.actordiscovery",
				Payload:   &eventstore.ActorLinkedToSourcePayload{ActorID: actorID, SourceID: h.SourceID()},
			}); err != nil {
				return ActorDiscoveryResult{}, fmt.Errorf("append actor_linked_to_source for %s: %w", seed.URL, err)
			}

			result.ActorsSeeded = append(result.ActorsSeeded, actorID)
		}
		return result, nil
	})
}
