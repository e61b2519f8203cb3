package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ersonp/drama-core/internal/application/handlers"
	"github.com/ersonp/drama-core/internal/domain/ports"
	"github.com/ersonp/drama-core/internal/domain/services"
	"github.com/ersonp/drama-core/internal/infrastructure/config"
	"github.com/ersonp/drama-core/internal/infrastructure/dracor"
	"github.com/ersonp/drama-core/internal/infrastructure/morphology"
	"github.com/ersonp/drama-core/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/drama-core/internal/logging"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Logger        *slog.Logger
	IngestHandler *handlers.IngestHandler
	PlaysHandler  *handlers.PlaysHandler
	YearsHandler  *handlers.YearsHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(ctx context.Context, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()

	relationalDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	aliases, err := config.LoadAliases(cfg.AliasesFile)
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}

	source, err := dracor.NewClient(cfg.API)
	if err != nil {
		return fmt.Errorf("creating dracor client: %w", err)
	}

	parser := services.NewRelationGraphParser(cfg.Relations.Vocabulary(), logger)
	merger := services.NewCharacterRecordMerger(services.NewIdentifierReconciler(aliases.Aliases), logger)
	batch := services.NewBatchMerger(parser, merger)

	deps := &internalDeps{
		Deps: Deps{
			Config:        cfg,
			Logger:        logger,
			IngestHandler: handlers.NewIngestHandler(source, relationalDB, batch, logger),
			PlaysHandler:  handlers.NewPlaysHandler(relationalDB),
			YearsHandler:  handlers.NewYearsHandler(relationalDB),
		},
		relationalDB: relationalDB,
	}

	return fn(deps)
}

// withAnalysis provides the handlers that need morphological analyzers.
// Analyzers are only built for commands that use them.
func withAnalysis(ctx context.Context, fn func(*handlers.AggregateHandler, *handlers.KeynessHandler) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		registry, err := morphology.NewRegistry(d.Config.Analysis, d.Config.API.Timeout)
		if err != nil {
			return fmt.Errorf("creating analyzers: %w", err)
		}

		aggregator := services.NewCorpusRecordAggregator(d.Config.Analysis.TagMap)
		return fn(
			handlers.NewAggregateHandler(d.relationalDB, registry, aggregator, d.Logger),
			handlers.NewKeynessHandler(d.relationalDB, registry, d.Config.Keyness.StopWords, d.Logger),
		)
	})
}

// openStore opens the SQLite play store named by the config.
func openStore(cfg *config.Config) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("creating sqlite repository: %w", err)
	}
	return repo, nil
}

// openPlayStore adapts openStore to handlers.StoreOpener.
func openPlayStore(cfg *config.Config) (ports.PlayStore, error) {
	repo, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if globalVerbose {
		level = slog.LevelDebug
	}
	return logging.NewLogger("drama", logging.LevelFromEnv(level))
}
