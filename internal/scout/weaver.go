package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/situation"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
	"github.com/fourthplaces/rootsignal/internal/weaver"
	"github.com/fourthplaces/rootsignal/internal/weaver/verify"
)

// existingSituationLimit bounds how many active situations SituationWeaver
// offers the clustering call as assignment targets — spec §4.5.1's nearest-
// situation retrieval is not implemented here (see weaver.Weave's own
// Intentionally-simplified note); this is the placeholder candidate set
// until that similarity search exists.
const existingSituationLimit = 50

// SituationWeaver is the thin scout-side entry point for spec §4.4's
// "SituationWeaver" sub-workflow: resolve this run's staged signals and
// the region's active situations from ent, then hand both to
// internal/weaver.Weave, which owns every write the clustering verdict
// implies. Independently invocable as "weave this run's signals" without
// running the rest of FullRun.
func SituationWeaver(
	ctx context.Context,
	j *durable.Journal,
	client *ent.Client,
	db *stdsql.DB,
	store *eventstore.Store,
	clusterer llmclient.Clusterer,
	scanner verify.PIIScanner,
	runID string,
	region string,
) (weaver.WeaveResult, error) {
	candidates, err := stagedCandidatesForRun(ctx, db, runID)
	if err != nil {
		return weaver.WeaveResult{}, fmt.Errorf("situation weaver: load candidates: %w", err)
	}

	weaveCandidates := make([]weaver.CandidateSignal, len(candidates))
	for i, c := range candidates {
		weaveCandidates[i] = weaver.CandidateSignal{
			SignalType: c.SignalType,
			SignalID:   c.SignalID,
			Title:      c.Title,
			Summary:    c.Summary,
			CauseHeat:  c.CauseHeat,
			Embedding:  c.Embedding,
		}
	}

	situations, err := activeSituations(ctx, client)
	if err != nil {
		return weaver.WeaveResult{}, fmt.Errorf("situation weaver: load existing situations: %w", err)
	}

	return weaver.Weave(ctx, j, client, store, clusterer, scanner, runID, region, weaveCandidates, situations)
}

// activeSituations offers every non-Cold situation, most recently active
// first, as candidate assignment targets.
func activeSituations(ctx context.Context, client *ent.Client) ([]weaver.ExistingSituation, error) {
	rows, err := client.Situation.Query().
		Order(ent.Desc(situation.FieldLastSignalAt)).
		Limit(existingSituationLimit).
		All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]weaver.ExistingSituation, 0, len(rows))
	for _, s := range rows {
		if s.Arc == situation.ArcCold {
			continue
		}
		lede := ""
		if s.Lede != nil {
			lede = *s.Lede
		}
		// Situation carries no created_at field (only last_updated_seq via
		// SeqGuardMixin) — last_signal_at is the closest recency signal ent
		// already tracks, and it is all weaver.Weave's still-unused ageOf
		// map wants today.
		var age time.Time
		if s.LastSignalAt != nil {
			age = *s.LastSignalAt
		}
		out = append(out, weaver.ExistingSituation{
			SituationID: s.ID,
			Headline:    s.Headline,
			Lede:        lede,
			Arc:         string(s.Arc),
			CreatedAt:   age,
		})
	}
	return out, nil
}

// stagedSignal is the raw-SQL cross-table row shape shared by
// SituationWeaver and Lint — both need the same "staged signals from this
// run" set, just projected onto a different caller-side struct.
type stagedSignal struct {
	SignalType string
	SignalID   string
	Title      string
	Summary    string
	SourceURL  string
	CauseHeat  float64
	Embedding  []float32
}

// stagedCandidatesForRun reads every still-staged signal this run
// produced, across all five signal tables — the same one-query-per-table
// loop internal/graph/enrichment already uses for cause_heat recomputation,
// since ent has no type-erased query across the five typed tables.
func stagedCandidatesForRun(ctx context.Context, db *stdsql.DB, runID string) ([]stagedSignal, error) {
	var out []stagedSignal
	for signalType, table := range signalTable {
		query := fmt.Sprintf(
			`SELECT signal_id, title, summary, source_url, cause_heat, embedding FROM %s
			 WHERE scout_run_id = $1 AND review_status = 'staged' AND retracted_at IS NULL
			   AND embedding IS NOT NULL`,
			table,
		)
		rows, err := db.QueryContext(ctx, query, runID)
		if err != nil {
			return nil, fmt.Errorf("query staged %s signals: %w", signalType, err)
		}
		for rows.Next() {
			var id, title, sourceURL string
			var summary stdsql.NullString
			var causeHeat float64
			var vec pgvector.Vector
			if err := rows.Scan(&id, &title, &summary, &sourceURL, &causeHeat, &vec); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan staged %s signal: %w", signalType, err)
			}
			out = append(out, stagedSignal{
				SignalType: signalType,
				SignalID:   id,
				Title:      title,
				Summary:    summary.String,
				SourceURL:  sourceURL,
				CauseHeat:  causeHeat,
				Embedding:  vec.Slice(),
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}
