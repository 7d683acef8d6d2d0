// StockVision - stock photography market research engine.
// Combines search-interest demand with multi-catalog supply counts to
// score keyword opportunities.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/api"
	"github.com/stockvision/stockvision/internal/cache"
	"github.com/stockvision/stockvision/internal/config"
	"github.com/stockvision/stockvision/internal/discovery"
	"github.com/stockvision/stockvision/internal/research"
	"github.com/stockvision/stockvision/internal/sources"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("StockVision - Starting research engine")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Initialize the optional persistent cache store. A missing or
	// unreachable database degrades to memory-only operation.
	var store *cache.Store
	if cfg.MongoURI != "" {
		store, err = cache.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Warn().Err(err).Msg("MongoDB unavailable, cache will be memory-only")
			store = nil
		} else {
			defer store.Close(ctx)
		}
	}

	researchCache := cache.New(cfg.CacheTTL, store)
	log.Info().Dur("ttl", cfg.CacheTTL).Msg("Research cache initialized")

	// Initialize source adapters
	demand := sources.NewTrendsClient(cfg.SourceTimeout)

	supplies := make([]sources.SupplyProvider, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		supplies = append(supplies, sources.NewCatalogClient(src, cfg.SourceTimeout))
		log.Info().
			Str("source", src.ID).
			Float64("weight", src.Weight).
			Bool("enabled", src.Enabled).
			Msg("Supply source configured")
	}

	// Initialize the analysis pipeline
	aggregator := research.NewAggregator(demand, supplies)
	engine := research.NewEngine(aggregator, researchCache, cfg.AnalyzeTimeout)
	log.Info().Msg("Analysis engine initialized")

	// Initialize discovery
	orchestrator := discovery.NewOrchestrator(engine, discovery.DefaultCatalog(), cfg.DiscoveryWorkers)
	log.Info().Int("workers", cfg.DiscoveryWorkers).Msg("Discovery orchestrator initialized")

	// Initialize API server
	handlers := api.NewHandlers(engine, orchestrator, cfg.Sources, cfg.CacheTTL)
	apiServer := api.NewServer(handlers, cfg.HTTPAddr, cfg.HTTPTimeout)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("API server error")
		}
	}()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Int("sources", len(cfg.Sources)).
		Msg("StockVision engine running")

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	if err := apiServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	log.Info().Msg("StockVision engine stopped")
}
