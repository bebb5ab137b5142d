package scout

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/ent/aid"
	"github.com/fourthplaces/rootsignal/ent/gathering"
	"github.com/fourthplaces/rootsignal/ent/need"
	"github.com/fourthplaces/rootsignal/ent/notice"
	"github.com/fourthplaces/rootsignal/ent/source"
	"github.com/fourthplaces/rootsignal/ent/tension"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph/enrichment"
)

// Thresholds the QA pass applies. Each is a deliberate, documented
// constant rather than a config knob — supervisor.go is a safety net,
// not a tunable product surface (spec §4.4.1's "QA pass" framing).
const (
	// DuplicateMergeSimilarityThreshold is the cosine-similarity floor,
	// well above CauseHeatSimilarityThreshold, at which two signals of the
	// same type are treated as the same real-world thing rather than
	// merely related — retraction is irreversible in effect, so the bar
	// is high.
	DuplicateMergeSimilarityThreshold = 0.97

	// SourcePenaltyEmptyRunThreshold is the number of consecutive empty
	// scrape runs after which a source's weight starts decaying.
	SourcePenaltyEmptyRunThreshold = 5
	// SourcePenaltyDecay multiplies weight once per QA pass while a
	// source stays above the empty-run threshold.
	SourcePenaltyDecay = 0.8
	// SourcePenaltyFloor deactivates a source once decay pushes its
	// weight below this value; a deactivated source is no longer
	// penalized by later QA passes.
	SourcePenaltyFloor = 0.1

	// BeaconMinSamples is the minimum number of a source's signals needed
	// before interval regularity is judged at all; fewer give no
	// statistical basis for "suspiciously regular."
	BeaconMinSamples = 5
	// BeaconCoefficientOfVariationCeiling is the max ratio of
	// stddev(interval) / mean(interval) below which posting is flagged
	// as beacon-like — organic human activity is bursty, this low a
	// coefficient of variation reads as scripted.
	BeaconCoefficientOfVariationCeiling = 0.05
	// BeaconWeightPenalty is the one-time weight cut applied to a
	// beacon-flagged source's owning Source row, stacking with (not
	// replacing) ordinary staleness penalties.
	BeaconWeightPenalty = 0.5
)

// SupervisorResult reports what one QA pass changed.
type SupervisorResult struct {
	AutoFixed        int `json:"auto_fixed"`
	SourcesPenalized int `json:"sources_penalized"`
	DuplicatesMerged int `json:"duplicates_merged"`
	EchoesFlagged    int `json:"echoes_flagged"`
	CauseHeatUpdated int `json:"cause_heat_updated"`
	BeaconsFlagged   int `json:"beacons_flagged"`
}

// supervisorSignalKind mirrors internal/graph/enrichment's own unexported
// table — duplicated rather than imported for the same reason scout's own
// signalTable is (internal/scout/scrape.go): two packages reading the same
// five tables for unrelated reasons shouldn't depend on each other's
// internals for table names.
type supervisorSignalKind struct {
	Type       string
	Table      string
	JoinTable  string
	JoinColumn string
}

var supervisorSignalKinds = []supervisorSignalKind{
	{Type: "gathering", Table: "gatherings", JoinTable: "gathering_sourced_from", JoinColumn: "gathering_id"},
	{Type: "aid", Table: "aids", JoinTable: "aid_sourced_from", JoinColumn: "aid_id"},
	{Type: "need", Table: "needs", JoinTable: "need_sourced_from", JoinColumn: "need_id"},
	{Type: "notice", Table: "notices", JoinTable: "notice_sourced_from", JoinColumn: "notice_id"},
	{Type: "tension", Table: "tensions", JoinTable: "tension_sourced_from", JoinColumn: "tension_id"},
}

// Supervisor is the QA pass that closes out FullRun (spec §4.4.1): it
// mechanically repairs a narrow class of data defects the LLM-driven Lint
// gate never touches, decays trust in sources that have gone quiet or
// look automated, retracts signals the embedding-similarity graph reveals
// are the same real-world thing extracted twice, and leaves cause_heat
// current for whatever Lint and the weaver just promoted.
func Supervisor(
	ctx context.Context,
	j *durable.Journal,
	client *ent.Client,
	db *stdsql.DB,
	store *eventstore.Store,
	enricher *enrichment.Enricher,
	runID string,
) (SupervisorResult, error) {
	return durable.Step(ctx, j, runID, "supervisor", durable.DefaultRetryPolicy, func(ctx context.Context) (SupervisorResult, error) {
		autoFixed, err := autoFixSignals(ctx, client, store, runID)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: auto-fix: %w", err)
		}

		penalized, err := penalizeStaleSources(ctx, client, store, runID)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: source penalties: %w", err)
		}

		causeHeatUpdated, err := enricher.RunCauseHeatPass(ctx)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: cause heat: %w", err)
		}

		merged, err := mergeDuplicates(ctx, client, db, store, runID)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: duplicate merge: %w", err)
		}

		echoes, err := detectEchoes(ctx, db)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: echo detection: %w", err)
		}

		beacons, err := detectBeacons(ctx, client, store, runID)
		if err != nil {
			return SupervisorResult{}, fmt.Errorf("supervisor: beacon detection: %w", err)
		}

		return SupervisorResult{
			AutoFixed:        autoFixed,
			SourcesPenalized: penalized,
			DuplicatesMerged: merged,
			EchoesFlagged:    echoes,
			CauseHeatUpdated: causeHeatUpdated,
			BeaconsFlagged:   beacons,
		}, nil
	})
}

// autoFixSignals repairs the one mechanical defect extraction can produce
// that Lint's allow-listed corrections already have a typed event for:
// a Gathering whose ends_at landed before its starts_at (a malformed
// schedule parse). The fix is to drop the untrustworthy ends_at rather
// than guess a replacement — an open-ended gathering is a safe default,
// a fabricated end time is not.
func autoFixSignals(ctx context.Context, client *ent.Client, store *eventstore.Store, runID string) (int, error) {
	broken, err := client.Gathering.Query().
		Where(gathering.RetractedAtIsNil(), gathering.EndsAtNotNil()).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("query gatherings: %w", err)
	}

	fixed := 0
	for _, g := range broken {
		if g.EndsAt == nil || !g.EndsAt.Before(g.StartsAt) {
			continue
		}
		if _, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeGatheringCorrected,
			RunID:     runID,
			Actor:     "scout.supervisor",
			Payload: &eventstore.GatheringCorrectedPayload{
				SignalID:   g.ID,
				Correction: eventstore.GatheringCorrectionEndsAt{Old: g.EndsAt, New: nil},
			},
		}); err != nil {
			return fixed, fmt.Errorf("append gathering_corrected for %s: %w", g.ID, err)
		}
		fixed++
	}
	return fixed, nil
}

// penalizeStaleSources decays the weight of any source that has gone
// SourcePenaltyEmptyRunThreshold scrapes in a row without yielding a
// signal, deactivating it once weight falls below the floor. Scrape
// reads neither Source.weight nor Source.active: FullRun scrapes the
// region's seed URLs whatever these fields say.
func penalizeStaleSources(ctx context.Context, client *ent.Client, store *eventstore.Store, runID string) (int, error) {
	stale, err := client.Source.Query().
		Where(source.ActiveEQ(true), source.ConsecutiveEmptyRunsGTE(SourcePenaltyEmptyRunThreshold)).
		All(ctx)
	if err != nil {
		return 0, fmt.Errorf("query stale sources: %w", err)
	}

	penalized := 0
	for _, s := range stale {
		if err := applySourceWeightCut(ctx, store, runID, s, SourcePenaltyDecay); err != nil {
			return penalized, err
		}
		penalized++
	}
	return penalized, nil
}

// applySourceWeightCut multiplies a source's weight by factor and
// deactivates it if the result falls below SourcePenaltyFloor, appending
// the typed source_changed events the reducer already knows how to apply
// (internal/graph/corroboration.go's applySourceChanged).
func applySourceWeightCut(ctx context.Context, store *eventstore.Store, runID string, s *ent.Source, factor float64) error {
	newWeight := s.Weight * factor
	if _, err := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeSourceChanged,
		RunID:     runID,
		Actor:     "scout.supervisor",
		Payload: &eventstore.SourceChangedPayload{
			SourceID: s.ID,
			Change:   eventstore.SourceChangeWeight{Old: s.Weight, New: newWeight},
		},
	}); err != nil {
		return fmt.Errorf("append source_changed (weight) for %s: %w", s.ID, err)
	}

	if newWeight >= SourcePenaltyFloor {
		return nil
	}
	if _, err := store.Append(ctx, eventstore.AppendInput{
		EventType: eventstore.EventTypeSourceChanged,
		RunID:     runID,
		Actor:     "scout.supervisor",
		Payload: &eventstore.SourceChangedPayload{
			SourceID: s.ID,
			Change:   eventstore.SourceChangeActive{Old: true, New: false},
		},
	}); err != nil {
		return fmt.Errorf("append source_changed (active) for %s: %w", s.ID, err)
	}
	return nil
}

// similarityPair mirrors one row of signal_similarities, rebuilt fresh by
// the cause-heat pass immediately before this runs.
type similarityPair struct {
	TypeA, IDA string
	TypeB, IDB string
	Weight     float64
}

// mergeDuplicates retracts the newer half of any pair of same-type,
// non-retracted signals whose embedding similarity clears
// DuplicateMergeSimilarityThreshold — extraction-time dedup
// (score_and_filter's dedup_verdict, spec §4.3.3) judges each candidate
// once, when it is extracted, against recent titles and the single
// nearest embedding; this pass re-checks every same-type pair, catching
// the same real-world thing extracted twice that the one-time check let
// through.
func mergeDuplicates(ctx context.Context, client *ent.Client, db *stdsql.DB, store *eventstore.Store, runID string) (int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT signal_a_type, signal_a_id, signal_b_type, signal_b_id, weight
		FROM signal_similarities
		WHERE weight >= $1 AND signal_a_type = signal_b_type`,
		DuplicateMergeSimilarityThreshold,
	)
	if err != nil {
		return 0, fmt.Errorf("query signal_similarities: %w", err)
	}
	var pairs []similarityPair
	for rows.Next() {
		var p similarityPair
		if err := rows.Scan(&p.TypeA, &p.IDA, &p.TypeB, &p.IDB, &p.Weight); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan signal_similarities: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	rows.Close()

	merged := 0
	retracted := make(map[string]bool)
	for _, p := range pairs {
		if retracted[p.TypeA+":"+p.IDA] || retracted[p.TypeB+":"+p.IDB] {
			continue
		}
		older, newer, ok, err := olderAndNewer(ctx, client, p.TypeA, p.IDA, p.IDB)
		if err != nil {
			return merged, err
		}
		if !ok {
			continue
		}
		if _, err := store.Append(ctx, eventstore.AppendInput{
			EventType: eventstore.EventTypeEntityExpired,
			RunID:     runID,
			Actor:     "scout.supervisor",
			Payload: &eventstore.EntityExpiredPayload{
				SignalType: p.TypeA,
				SignalID:   newer,
				Reason:     fmt.Sprintf("duplicate_of:%s", older),
			},
		}); err != nil {
			return merged, fmt.Errorf("append entity_expired (duplicate) for %s: %w", newer, err)
		}
		retracted[p.TypeA+":"+newer] = true
		merged++
	}
	return merged, nil
}

// olderAndNewer fetches both signals' extracted_at and returns the
// older/newer id pair — the newer one is retracted, since the older
// extraction is more likely to be what later corroboration was already
// built against.
func olderAndNewer(ctx context.Context, client *ent.Client, signalType, idA, idB string) (older, newer string, ok bool, err error) {
	switch signalType {
	case "gathering":
		a, err := client.Gathering.Get(ctx, idA)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		b, err := client.Gathering.Get(ctx, idB)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		if a.RetractedAt != nil || b.RetractedAt != nil {
			return "", "", false, nil
		}
		if a.ExtractedAt.Before(b.ExtractedAt) {
			return a.ID, b.ID, true, nil
		}
		return b.ID, a.ID, true, nil
	case "aid":
		a, err := client.Aid.Get(ctx, idA)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		b, err := client.Aid.Get(ctx, idB)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		if a.RetractedAt != nil || b.RetractedAt != nil {
			return "", "", false, nil
		}
		if a.ExtractedAt.Before(b.ExtractedAt) {
			return a.ID, b.ID, true, nil
		}
		return b.ID, a.ID, true, nil
	case "need":
		a, err := client.Need.Get(ctx, idA)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		b, err := client.Need.Get(ctx, idB)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		if a.RetractedAt != nil || b.RetractedAt != nil {
			return "", "", false, nil
		}
		if a.ExtractedAt.Before(b.ExtractedAt) {
			return a.ID, b.ID, true, nil
		}
		return b.ID, a.ID, true, nil
	case "notice":
		a, err := client.Notice.Get(ctx, idA)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		b, err := client.Notice.Get(ctx, idB)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		if a.RetractedAt != nil || b.RetractedAt != nil {
			return "", "", false, nil
		}
		if a.ExtractedAt.Before(b.ExtractedAt) {
			return a.ID, b.ID, true, nil
		}
		return b.ID, a.ID, true, nil
	case "tension":
		a, err := client.Tension.Get(ctx, idA)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		b, err := client.Tension.Get(ctx, idB)
		if err != nil {
			return "", "", false, guardedGetErr(err)
		}
		if a.RetractedAt != nil || b.RetractedAt != nil {
			return "", "", false, nil
		}
		if a.ExtractedAt.Before(b.ExtractedAt) {
			return a.ID, b.ID, true, nil
		}
		return b.ID, a.ID, true, nil
	default:
		return "", "", false, fmt.Errorf("unknown signal type %q", signalType)
	}
}

// guardedGetErr treats a row vanishing between the similarity scan and
// the lookup (already retracted, or merged by an earlier pair in the
// same pass) as "skip," not a failure.
func guardedGetErr(err error) error {
	if ent.IsNotFound(err) {
		return nil
	}
	return err
}

// detectEchoes caps source_diversity/channel_diversity back to 1 for any
// live signal whose corroborating evidence excerpts are, once
// whitespace-normalized, textually identical across every source —
// syndicated wire content re-published verbatim by multiple outlets,
// which the diversity pass (internal/graph/enrichment) otherwise counts
// as independent corroboration. This is a derived, rebuildable
// correction like the enrichment passes themselves: no event is
// appended, since nothing about the underlying facts changed, only how
// much independent weight they're given.
func detectEchoes(ctx context.Context, db *stdsql.DB) (int, error) {
	flagged := 0
	for _, k := range supervisorSignalKinds {
		n, err := detectEchoesForKind(ctx, db, k)
		if err != nil {
			return flagged, fmt.Errorf("echo detection (%s): %w", k.Type, err)
		}
		flagged += n
	}
	return flagged, nil
}

func detectEchoesForKind(ctx context.Context, db *stdsql.DB, k supervisorSignalKind) (int, error) {
	query := fmt.Sprintf(`
		SELECT signal_id FROM %s
		WHERE retracted_at IS NULL AND source_diversity > 1`,
		k.Table,
	)
	idRows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("list candidates: %w", err)
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

	flagged := 0
	for _, id := range ids {
		excerpts, err := evidenceExcerpts(ctx, db, k, id)
		if err != nil {
			return flagged, fmt.Errorf("evidence excerpts for %s %s: %w", k.Type, id, err)
		}
		if !allNormalizedEqual(excerpts) {
			continue
		}
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET source_diversity = 1, channel_diversity = 1 WHERE signal_id = $1`, k.Table),
			id,
		); err != nil {
			return flagged, fmt.Errorf("cap diversity for %s %s: %w", k.Type, id, err)
		}
		flagged++
	}
	return flagged, nil
}

func evidenceExcerpts(ctx context.Context, db *stdsql.DB, k supervisorSignalKind, signalID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT ev.excerpt FROM %s j
		JOIN evidences ev ON ev.evidence_id = j.evidence_id
		WHERE j.%s = $1 AND ev.excerpt IS NOT NULL`,
		k.JoinTable, k.JoinColumn,
	)
	rows, err := db.QueryContext(ctx, query, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var excerpts []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		excerpts = append(excerpts, e)
	}
	return excerpts, rows.Err()
}

// allNormalizedEqual reports whether every excerpt, once lowercased and
// whitespace-collapsed, is identical — at least two distinct excerpts are
// required, otherwise there's nothing to compare.
func allNormalizedEqual(excerpts []string) bool {
	if len(excerpts) < 2 {
		return false
	}
	first := normalizeExcerpt(excerpts[0])
	if first == "" {
		return false
	}
	for _, e := range excerpts[1:] {
		if normalizeExcerpt(e) != first {
			return false
		}
	}
	return true
}

func normalizeExcerpt(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// detectBeacons flags a source whose produced signals arrive at
// suspiciously regular intervals — organic civic activity is bursty;
// near-zero variance in posting cadence reads as a scripted feed rather
// than a person or institution, the same "volume alone is not velocity"
// anti-astroturfing stance entity_velocity (spec §4.5.2) already takes
// one layer up. A flagged source takes the same weight cut a stale
// source does, via applySourceWeightCut.
func detectBeacons(ctx context.Context, client *ent.Client, store *eventstore.Store, runID string) (int, error) {
	sources, err := client.Source.Query().Where(source.ActiveEQ(true), source.OwnedEQ(true)).All(ctx)
	if err != nil {
		return 0, fmt.Errorf("query owned sources: %w", err)
	}

	flagged := 0
	for _, s := range sources {
		times, err := producedTimestamps(ctx, client, s.ID)
		if err != nil {
			return flagged, fmt.Errorf("produced timestamps for %s: %w", s.ID, err)
		}
		if !looksLikeBeacon(times) {
			continue
		}
		if err := applySourceWeightCut(ctx, store, runID, s, BeaconWeightPenalty); err != nil {
			return flagged, err
		}
		flagged++
	}
	return flagged, nil
}

func producedTimestamps(ctx context.Context, client *ent.Client, sourceID string) ([]time.Time, error) {
	var out []time.Time

	gatherings, err := client.Gathering.Query().Where(gathering.HasProducedByWith(source.ID(sourceID))).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range gatherings {
		out = append(out, g.ExtractedAt)
	}

	aids, err := client.Aid.Query().Where(aid.HasProducedByWith(source.ID(sourceID))).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range aids {
		out = append(out, a.ExtractedAt)
	}

	needs, err := client.Need.Query().Where(need.HasProducedByWith(source.ID(sourceID))).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range needs {
		out = append(out, n.ExtractedAt)
	}

	notices, err := client.Notice.Query().Where(notice.HasProducedByWith(source.ID(sourceID))).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range notices {
		out = append(out, n.ExtractedAt)
	}

	tensions, err := client.Tension.Query().Where(tension.HasProducedByWith(source.ID(sourceID))).All(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tensions {
		out = append(out, t.ExtractedAt)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// looksLikeBeacon reports whether a sorted list of timestamps has a
// coefficient of variation low enough to read as scripted.
func looksLikeBeacon(times []time.Time) bool {
	if len(times) < BeaconMinSamples {
		return false
	}
	deltas := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		deltas = append(deltas, times[i].Sub(times[i-1]).Seconds())
	}

	var sum float64
	for _, d := range deltas {
		sum += d
	}
	mean := sum / float64(len(deltas))
	if mean <= 0 {
		return false
	}

	var variance float64
	for _, d := range deltas {
		diff := d - mean
		variance += diff * diff
	}
	variance /= float64(len(deltas))
	stddev := math.Sqrt(variance)

	cv := stddev / mean
	if cv <= BeaconCoefficientOfVariationCeiling {
		slog.Info("supervisor: beacon cadence detected", "mean_interval_s", mean, "coefficient_of_variation", cv)
		return true
	}
	return false
}
