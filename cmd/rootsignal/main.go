// Command rootsignal runs the civic-signal pipeline: the read-only
// projection API, the event-log catch-up projector, and the scheduled
// per-region FullRun loop. Every dependency built here is wired to
// something that runs before main blocks in the scheduler loop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/fourthplaces/rootsignal/internal/api"
	"github.com/fourthplaces/rootsignal/internal/archive"
	"github.com/fourthplaces/rootsignal/internal/config"
	"github.com/fourthplaces/rootsignal/internal/durable"
	"github.com/fourthplaces/rootsignal/internal/eventstore"
	"github.com/fourthplaces/rootsignal/internal/graph"
	"github.com/fourthplaces/rootsignal/internal/graph/enrichment"
	"github.com/fourthplaces/rootsignal/internal/llmclient"
	"github.com/fourthplaces/rootsignal/internal/masking"
	"github.com/fourthplaces/rootsignal/internal/scout"
	"github.com/fourthplaces/rootsignal/internal/storage"

	"github.com/google/uuid"
)

// embeddingModelVersion is bumped whenever the configured embedding
// provider/model changes, so RunEmbeddingPass knows which signals have
// stale vectors (ent/schema SignalMixin.embedding_model_v).
const embeddingModelVersion = 1

// primaryLLMProvider is the llm-providers.yaml key this process dials
// for every capability (Extract/Embed/Cluster/Lint) — every sub-workflow
// accepts a single provider per capability set, so one named entry
// covers the whole pipeline until a region needs its own override.
const primaryLLMProvider = "primary"

// catchupInterval is the polling safety net behind the NOTIFY-driven
// live projector: how often RunCatchupLoop re-checks the persisted
// cursor against the log's latest seq, independent of whether any
// NOTIFY was missed.
const catchupInterval = 30 * time.Second

// regionRunInterval is how often the scheduler offers each configured
// region a FullRun. A region already mid-run is skipped via
// durable.ErrRegionBusy rather than queued.
const regionRunInterval = 15 * time.Minute

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	dbConfig, err := storage.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load database config", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("error closing database client", "error", err)
		}
	}()
	db := store.DB()
	slog.Info("connected to postgres and applied migrations")

	provider, err := cfg.GetLLMProvider(primaryLLMProvider)
	if err != nil {
		slog.Error("failed to resolve primary LLM provider", "error", err)
		os.Exit(1)
	}
	llm, err := llmclient.NewGRPCClient(provider.Addr)
	if err != nil {
		slog.Error("failed to dial LLM service", "addr", provider.Addr, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := llm.Close(); err != nil {
			slog.Error("error closing LLM client", "error", err)
		}
	}()

	eventLog := eventstore.NewStore(db)
	journal := durable.NewJournal(db)
	locks := durable.NewRegionLock(db)

	reducer := graph.NewReducer(store.Client, db)
	cursor := graph.NewCursor(reducer)
	runProjector(ctx, dbConfig.DSN(), reducer, eventLog, cursor)

	archiveStore := archive.NewStore(db)
	// No platform Service implementations are registered yet — every
	// SourceHandle capability call returns archive.ErrUnsupported until
	// a deployment wires one in. The registry exists so that wiring is
	// additive, not a breaking change to Archive's constructor.
	archiveServices := archive.NewServices()
	arch := archive.New(archiveStore, archiveServices, llmTextAnalyzer{llm: llm})

	scanner := masking.NewPatternScanner()
	cache := enrichment.NewDBEmbeddingCache(db)

	srv := api.NewServer(store.Client, db, cfg)
	go func() {
		addr := ":" + httpPort
		slog.Info("http server listening", "addr", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	deps := scout.FullRunDeps{
		Client:                store.Client,
		DB:                    db,
		Archive:               arch,
		Store:                 eventLog,
		Journal:               journal,
		Locks:                 locks,
		LLM:                   llm,
		Scanner:               scanner,
		Cache:                 cache,
		EmbeddingModelVersion: embeddingModelVersion,
	}

	runScheduler(ctx, cfg, deps)
}

// runProjector starts the live NOTIFY-driven catch-up consumer plus the
// interval-based safety net (spec §4.3.1: a writer's inline Apply only
// advances the graph for events that writer produced itself, so a
// subscriber that misses a notification needs an independent correctness
// path). The live consumer restarts its subscription whenever the
// channel closes (context cancellation aside); RunCatchupLoop behind it
// guarantees forward progress even if the live path stays down.
func runProjector(ctx context.Context, connString string, reducer *graph.Reducer, store *eventstore.Store, cursor *graph.Cursor) {
	listener := eventstore.NewNotifyListener(connString)

	go func() {
		for {
			last, err := cursor.Load(ctx)
			if err != nil {
				slog.Error("projector: load cursor failed", "error", err)
				last = 0
			}

			events, err := eventstore.Subscribe(ctx, store, listener, last)
			if err != nil {
				slog.Error("projector: subscribe failed, retrying", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
					continue
				}
			}

			for ev := range events {
				if _, err := reducer.Apply(ctx, ev); err != nil {
					slog.Error("projector: apply failed", "seq", ev.Seq, "event_type", ev.EventType, "error", err)
					continue
				}
				if err := cursor.Advance(ctx, ev.Seq); err != nil {
					slog.Error("projector: advance cursor failed", "error", err)
				}
			}

			if ctx.Err() != nil {
				return
			}
			slog.Warn("projector: subscription closed, resubscribing")
		}
	}()

	go graph.RunCatchupLoop(ctx, reducer, store, cursor, catchupInterval)
}

// runScheduler offers every configured region a FullRun every
// regionRunInterval, each on its own goroutine with its own run ID so one
// region's slow run never delays another's. RegionLock already rejects
// overlapping runs for the same region, so a tick that lands while the
// previous run is still in flight just logs durable.ErrRegionBusy and
// moves on.
func runScheduler(ctx context.Context, cfg *config.Config, deps scout.FullRunDeps) {
	ticker := time.NewTicker(regionRunInterval)
	defer ticker.Stop()

	runAll := func() {
		for slug, region := range cfg.Regions.GetAll() {
			budget := cfg.Budget
			if budget == nil {
				budget = config.DefaultBudgetConfig()
			}
			go func(region *config.RegionConfig, budget *config.BudgetConfig) {
				runID := uuid.NewString()
				log := slog.With("region", slug, "run_id", runID)
				log.Info("full run starting")
				result, err := scout.FullRun(ctx, deps, region, budget, runID)
				if err != nil {
					log.Error("full run failed", "error", err)
					return
				}
				log.Info("full run complete",
					"signals", result.Scrape.SignalCounts,
					"situations_created", result.Weave.SituationsCreated,
					"dispatches_written", result.Weave.DispatchesWritten,
					"duplicates_merged", result.Supervisor.DuplicatesMerged)
			}(region, budget)
		}
	}

	runAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runAll()
		}
	}
}

// llmTextAnalyzer adapts llmclient's ImageDescriber/Transcriber pair to
// archive.TextAnalyzer, routing by MIME prefix — the one caller neither
// interface had before this entry point wired one in.
type llmTextAnalyzer struct {
	llm *llmclient.GRPCClient
}

func (a llmTextAnalyzer) Analyze(ctx context.Context, mimeType string, data []byte) (string, error) {
	switch {
	case len(mimeType) >= 6 && mimeType[:6] == "image/":
		return a.llm.DescribeImage(ctx, data, mimeType, "Transcribe any text visible in this image.")
	case len(mimeType) >= 6 && mimeType[:6] == "audio/":
		return a.llm.Transcribe(ctx, data, mimeType)
	case len(mimeType) >= 6 && mimeType[:6] == "video/":
		return a.llm.Transcribe(ctx, data, mimeType)
	default:
		return "", fmt.Errorf("llmTextAnalyzer: unsupported mime type %q", mimeType)
	}
}
