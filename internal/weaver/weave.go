package weaver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/dispatch"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
	"github.com/fourthplaces/rootsignal/internal/weaver/verify"
)

// CandidateSignal is one staged signal Weave discovered for this run —
// the fields a clustering verdict and post-hoc verification both need.
type CandidateSignal struct {
	SignalType string
	SignalID   string
	Title      string
	Summary    string
	CauseHeat  float64
	Embedding  []float32
}

// ExistingSituation is one situation already in the graph, offered as a
// candidate assignment target.
type ExistingSituation struct {
	SituationID string
	Headline    string
	Lede        string
	Arc         string
	CreatedAt   time.Time
}

// WeaveResult reports what one Weave invocation did.
type WeaveResult struct {
	SituationsCreated int `json:"situations_created"`
	DispatchesWritten int `json:"dispatches_written"`
	DispatchesFlagged int `json:"dispatches_flagged"`
}

// Weave is the weaving sub-workflow (spec §4.5.1): cluster this run's
// staged signals into situations via one LLM verdict call, write the
// situations/dispatches the verdict implies directly against ent (the
// reducer treats situation/dispatch events as no-ops — spec's own
// contract is that the weaver resolves these IDs itself, not the
// reducer), then run post-hoc verification on every freshly-written
// dispatch. Weave does not recompute temperature or arc for the
// situations it touches.
//
// Simplified against the full spec: candidate retrieval is the caller's
// job (candidates/existingSituations are passed in, already resolved by
// embedding search against narrative_embedding/causal_embedding) and one
// cluster call covers the whole run's candidates rather than the
// wider-net multi-threshold retrieval §4.5.1 step 1 describes in full;
// batches-within-a-run are still processed sequentially since there is
// only the one call.
func Weave(
	ctx context.Context,
	j *durable.Journal,
	client *ent.Client,
	store *eventstore.Store,
	clusterer llmclient.Clusterer,
	scanner verify.PIIScanner,
	runID string,
	region string,
	candidates []CandidateSignal,
	existingSituations []ExistingSituation,
) (WeaveResult, error) {
	return durable.Step(ctx, j, runID, "weave", durable.DefaultRetryPolicy, func(ctx context.Context) (WeaveResult, error) {
		if len(candidates) == 0 {
			return WeaveResult{}, nil
		}

		batch := llmclient.ClusterBatch{Region: region}
		for _, c := range candidates {
			batch.Signals = append(batch.Signals, llmclient.ClusterSignal{
				SignalID: c.SignalID, SignalType: c.SignalType, Title: c.Title, Summary: c.Summary, CauseHeat: c.CauseHeat,
			})
		}
		for _, s := range existingSituations {
			batch.Situations = append(batch.Situations, llmclient.ClusterSituation{
				SituationID: s.SituationID, Headline: s.Headline, Lede: s.Lede, Arc: s.Arc,
			})
		}

		verdict, err := clusterer.Cluster(ctx, batch)
		if err != nil {
			return WeaveResult{}, fmt.Errorf("cluster: %w", err)
		}

		result := WeaveResult{}
		tempIDToReal := make(map[string]string, len(verdict.NewSituations))
		ageOf := make(map[string]time.Time, len(existingSituations))
		for _, s := range existingSituations {
			ageOf[s.SituationID] = s.CreatedAt
		}

		signalByID := make(map[string]CandidateSignal, len(candidates))
		for _, c := range candidates {
			signalByID[c.SignalID] = c
		}

		assignedBySituation := make(map[string][]string)

		for _, spec := range verdict.NewSituations {
			situationID := uuid.NewString()
			tempIDToReal[spec.TempID] = situationID
			if _, err := client.Situation.Create().
				SetID(situationID).
				SetHeadline(spec.Headline).
				SetLede(spec.Lede).
				Save(ctx); err != nil {
				return result, fmt.Errorf("create situation %s: %w", spec.Headline, err)
			}
			ageOf[situationID] = time.Now()
			result.SituationsCreated++
		}

		for _, a := range verdict.Assignments {
			sit := a.SituationID
			if sit == "" {
				sit = tempIDToReal[a.NewSituationID]
			}
			if sit == "" {
				slog.Warn("weave: assignment resolved to no situation", "signal_id", a.SignalID)
				continue
			}
			cand, ok := signalByID[a.SignalID]
			if !ok {
				continue
			}
			if err := linkEvidence(ctx, client, cand.SignalType, cand.SignalID, sit); err != nil {
				slog.Error("weave: link evidence failed", "signal_id", a.SignalID, "situation_id", sit, "error", err)
				continue
			}
			assignedBySituation[sit] = append(assignedBySituation[sit], a.SignalID)
		}

		for situationID, signalIDs := range assignedBySituation {
			headline := ""
			for _, s := range existingSituations {
				if s.SituationID == situationID {
					headline = s.Headline
				}
			}
			if _, err := store.Append(ctx, eventstore.AppendInput{
				EventType: eventstore.EventTypeSituationIdentified,
				RunID:     runID,
				Actor:     "weaver.weave",
				Payload:   &eventstore.SituationIdentifiedPayload{SituationID: situationID, Headline: headline, SignalIDs: signalIDs},
			}); err != nil {
				slog.Error("weave: situation_identified append failed", "situation_id", situationID, "error", err)
			}
		}

		for _, spec := range verdict.Dispatches {
			situationID := spec.SituationID
			if real, ok := tempIDToReal[situationID]; ok {
				situationID = real
			}
			if situationID == "" {
				continue
			}
			dispatchID := uuid.NewString()

			create := client.Dispatch.Create().
				SetID(dispatchID).
				SetSituationID(situationID).
				SetBody(spec.Body).
				SetDispatchType(dispatch.DispatchType(spec.DispatchType))

			var cited []verify.CitedSignal
			knownIDs := make(map[string]bool, len(spec.CitedSignals))
			for _, sid := range spec.CitedSignals {
				knownIDs[sid] = true
				if c, ok := signalByID[sid]; ok {
					cited = append(cited, verify.CitedSignal{ID: sid, Embedding: c.Embedding})
					attachCitation(create, c.SignalType, sid)
				}
			}

			dispatchEmbedding := meanEmbedding(cited)
			verdict := verify.Run(verify.Dispatch{ID: dispatchID, Body: spec.Body}, dispatchEmbedding, knownIDs, cited, scanner)
			if !verdict.Passed {
				create = create.SetFlaggedForReview(true).SetFlagReason(verdict.FlagReason)
				result.DispatchesFlagged++
			}
			if verdict.FidelityScore > 0 {
				create = create.SetFidelityScore(verdict.FidelityScore)
			}

			if _, err := create.Save(ctx); err != nil {
				return result, fmt.Errorf("create dispatch for situation %s: %w", situationID, err)
			}
			result.DispatchesWritten++

			if _, err := store.Append(ctx, eventstore.AppendInput{
				EventType: eventstore.EventTypeDispatchCreated,
				RunID:     runID,
				Actor:     "weaver.weave",
				Payload: &eventstore.DispatchCreatedPayload{
					DispatchID:   dispatchID,
					SituationID:  situationID,
					DispatchType: spec.DispatchType,
					CitedSignals: spec.CitedSignals,
				},
			}); err != nil {
				slog.Error("weave: dispatch_created append failed", "dispatch_id", dispatchID, "error", err)
			}
		}

		return result, nil
	})
}

func meanEmbedding(cited []verify.CitedSignal) []float32 {
	if len(cited) == 0 {
		return nil
	}
	dim := len(cited[0].Embedding)
	if dim == 0 {
		return nil
	}
	sum := make([]float32, dim)
	for _, c := range cited {
		if len(c.Embedding) != dim {
			continue
		}
		for i, v := range c.Embedding {
			sum[i] += v
		}
	}
	for i := range sum {
		sum[i] /= float32(len(cited))
	}
	return sum
}

// linkEvidence creates the type-specific EVIDENCES join row (spec §3.3's
// Signal EVIDENCES Situation edge, carrying a per-pair debunked flag no
// plain ent edge can express).
func linkEvidence(ctx context.Context, client *ent.Client, signalType, signalID, situationID string) error {
	switch signalType {
	case "gathering":
		_, err := client.GatheringEvidence.Create().SetGatheringID(signalID).SetSituationID(situationID).Save(ctx)
		return err
	case "aid":
		_, err := client.AidEvidence.Create().SetAidID(signalID).SetSituationID(situationID).Save(ctx)
		return err
	case "need":
		_, err := client.NeedEvidence.Create().SetNeedID(signalID).SetSituationID(situationID).Save(ctx)
		return err
	case "notice":
		_, err := client.NoticeEvidence.Create().SetNoticeID(signalID).SetSituationID(situationID).Save(ctx)
		return err
	case "tension":
		_, err := client.TensionEvidence.Create().SetTensionID(signalID).SetSituationID(situationID).Save(ctx)
		return err
	default:
		return fmt.Errorf("unknown signal type %q", signalType)
	}
}

// attachCitation additionally wires the Dispatch CITES Signal edge
// (spec §3.3), distinct from EVIDENCES which is Situation-level.
func attachCitation(create *ent.DispatchCreate, signalType, signalID string) {
	switch signalType {
	case "gathering":
		create.AddCitesGatheringIDs(signalID)
	case "aid":
		create.AddCitesAidIDs(signalID)
	case "need":
		create.AddCitesNeedIDs(signalID)
	case "notice":
		create.AddCitesNoticeIDs(signalID)
	case "tension":
		create.AddCitesTensionIDs(signalID)
	}
}
