package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agropredict/internal/cache"
	"agropredict/internal/catalog"
	"agropredict/internal/estimator"
	"agropredict/internal/events"
	"agropredict/internal/model"
	"agropredict/internal/service"
)

type estimateOptions struct {
	catalogPath   string
	species       string
	commune       string
	hectares      float64
	age           int
	density       int
	irrigation    string
	soil          string
	fertilization string
	seed          uint64
}

// estimateOutput is what the estimate command prints
type estimateOutput struct {
	Species  string              `json:"species"`
	Commune  string              `json:"commune"`
	Seed     uint64              `json:"seed"`
	Request  estimator.Request   `json:"request"`
	Estimate *estimator.Estimate `json:"estimate"`
}

func estimateCmd() *cobra.Command {
	var opts estimateOptions

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print an estimate as JSON without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "", "catalog YAML file, defaults to the built-in catalog")
	f.StringVar(&opts.species, "species", "", "species code, e.g. palto")
	f.StringVar(&opts.commune, "commune", "", "commune code or name, e.g. ST")
	f.Float64Var(&opts.hectares, "hectares", 1, "planted area in hectares")
	f.IntVar(&opts.age, "age", 5, "tree age in years")
	f.IntVar(&opts.density, "density", 300, "trees per hectare")
	f.StringVar(&opts.irrigation, "irrigation", string(model.IrrigationDrip), "irrigation method")
	f.StringVar(&opts.soil, "soil", string(model.SoilLoam), "soil type")
	f.StringVar(&opts.fertilization, "fertilization", string(model.FertilizationMixed), "fertilization regime")
	f.Uint64Var(&opts.seed, "seed", 0, "seed for the stochastic draws, 0 picks one")
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("commune")
	return cmd
}

func runEstimate(ctx context.Context, out io.Writer, opts estimateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.seed > estimator.MaxSeed {
		return fmt.Errorf("--seed must not exceed %d, got %d", estimator.MaxSeed, opts.seed)
	}
	file, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return err
	}
	snap := file.Snapshot()

	sp, ok := snap.SpeciesByCode(opts.species)
	if !ok {
		return fmt.Errorf("unknown species %q", opts.species)
	}
	commune, ok := snap.CommuneByCode(opts.commune)
	if !ok {
		if commune, ok = snap.CommuneByName(opts.commune); !ok {
			return fmt.Errorf("unknown commune %q", opts.commune)
		}
	}

	seed := opts.seed
	if seed == 0 {
		seed = estimator.NewSeed()
	}
	req := estimator.Request{
		SpeciesID:     sp.ID,
		CommuneID:     commune.ID,
		Hectares:      opts.hectares,
		TreeAge:       opts.age,
		Density:       opts.density,
		Irrigation:    model.Irrigation(opts.irrigation),
		Soil:          model.Soil(opts.soil),
		Fertilization: model.Fertilization(opts.fertilization),
	}

	// nothing is stored, so the service runs without a repository
	predictions := service.NewPredictionService(
		nil,
		staticCatalog{snap},
		cache.NewMemory(0),
		events.Noop{},
		service.FixedSeed(seed),
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	)
	est, err := predictions.Estimate(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(estimateOutput{
		Species:  sp.Code,
		Commune:  commune.Name,
		Seed:     seed,
		Request:  req,
		Estimate: est,
	})
}

type staticCatalog struct {
	snap *catalog.Snapshot
}

func (c staticCatalog) Snapshot() *catalog.Snapshot { return c.snap }
