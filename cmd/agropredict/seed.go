package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"agropredict/internal/cache"
	"agropredict/internal/catalog"
	"agropredict/internal/config"
	"agropredict/internal/estimator"
	"agropredict/internal/events"
	"agropredict/internal/model"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogFormat)
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			logger.Info("migration complete", "db_driver", cfg.DBDriver)
			return nil
		},
	}
}

type seedOptions struct {
	catalogPath string
	examples    int
	reset       bool
	seed        uint64
}

func seedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the species and region catalog, optionally with example predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.catalogPath == "" {
				opts.catalogPath = cfg.CatalogPath
			}
			return runSeed(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "catalog YAML file, defaults to CATALOG_PATH or the built-in catalog")
	cmd.Flags().IntVar(&opts.examples, "examples", 0, "number of example predictions to create")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete existing predictions and analyses first")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the example generator, 0 picks one")
	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, opts seedOptions) error {
	logger := newLogger(cfg.LogFormat)
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.examples < 0 {
		return fmt.Errorf("--examples must not be negative, got %d", opts.examples)
	}
	if opts.seed > estimator.MaxSeed {
		return fmt.Errorf("--seed must not exceed %d, got %d", estimator.MaxSeed, opts.seed)
	}

	file, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	seeder := repository.NewSeedRepository(db)
	if opts.reset {
		if err := seeder.ClearPredictions(ctx); err != nil {
			return err
		}
		logger.Info("predictions cleared")
	}
	summary, err := seeder.SeedCatalog(ctx, file)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded",
		"regions", summary.Regions,
		"communes", summary.Communes,
		"species", summary.Species,
	)
	if opts.examples == 0 {
		return nil
	}

	provider := catalog.NewProvider(repository.NewCatalogRepository(db))
	if err := provider.Reload(ctx); err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = estimator.NewSeed()
	}
	var seeds service.SeedFunc
	if cfg.RandomSeed != nil {
		seeds = service.FixedSeed(*cfg.RandomSeed)
	}
	predictions := service.NewPredictionService(
		repository.NewPredictionRepository(db),
		provider,
		cache.NewMemory(cfg.AnalysisCacheTTL),
		events.Noop{},
		seeds,
		logger,
	)

	completed := 0
	for _, req := range service.ExampleRequests(provider.Snapshot(), opts.examples, estimator.NewSource(seed)) {
		p, err := predictions.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("create example prediction: %w", err)
		}
		if p.Status == model.StatusCompleted {
			completed++
		}
	}
	logger.Info("example predictions created",
		"requested", opts.examples,
		"completed", completed,
		"generator_seed", seed,
	)
	return nil
}
