package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"agropredict/internal/cache"
	"agropredict/internal/catalog"
	"agropredict/internal/estimator"
	"agropredict/internal/events"
	"agropredict/internal/external"
	"agropredict/internal/model"
	"agropredict/internal/repository"
)

// staticCatalog serves a snapshot the test can swap
type staticCatalog struct {
	snap *catalog.Snapshot
}

func (c *staticCatalog) Snapshot() *catalog.Snapshot {
	return c.snap
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []events.PredictionEvent
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, event events.PredictionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

type failingClimate struct{}

func (failingClimate) Current(ctx context.Context, commune model.Commune) (*external.Climate, error) {
	return nil, errors.New("climate offline")
}

type fixture struct {
	db          *gorm.DB
	catalog     *staticCatalog
	predictions repository.PredictionRepository
	analyses    repository.AnalysisRepository
	cache       *cache.Memory
	publisher   *recordingPublisher
	service     *predictionService
	logger      *slog.Logger
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupFixture opens an in-memory database seeded with the built-in catalog
// and a prediction service drawing from seed 42
func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f, err := catalog.Load("")
	require.NoError(t, err)
	_, err = repository.NewSeedRepository(db).SeedCatalog(ctx, f)
	require.NoError(t, err)

	provider := catalog.NewProvider(repository.NewCatalogRepository(db))
	require.NoError(t, provider.Reload(ctx))

	fx := &fixture{
		db:          db,
		catalog:     &staticCatalog{snap: provider.Snapshot()},
		predictions: repository.NewPredictionRepository(db),
		analyses:    repository.NewAnalysisRepository(db),
		cache:       cache.NewMemory(time.Hour),
		publisher:   &recordingPublisher{},
		logger:      discardLogger(),
	}
	fx.service = NewPredictionService(fx.predictions, fx.catalog, fx.cache, fx.publisher, FixedSeed(42), fx.logger).(*predictionService)
	return fx
}

// request builds a valid request for a species and commune code
func (fx *fixture) request(t *testing.T, speciesCode, communeCode string) estimator.Request {
	t.Helper()
	sp, ok := fx.catalog.snap.SpeciesByCode(speciesCode)
	require.True(t, ok, speciesCode)
	commune, ok := fx.catalog.snap.CommuneByCode(communeCode)
	require.True(t, ok, communeCode)
	return estimator.Request{
		SpeciesID:     sp.ID,
		CommuneID:     commune.ID,
		Hectares:      2,
		TreeAge:       10,
		Density:       300,
		Irrigation:    model.IrrigationDrip,
		Soil:          model.SoilLoam,
		Fertilization: model.FertilizationMixed,
	}
}

// create stores and computes a prediction
func (fx *fixture) create(t *testing.T, speciesCode, communeCode string) *model.Prediction {
	t.Helper()
	p, err := fx.service.Create(context.Background(), fx.request(t, speciesCode, communeCode))
	require.NoError(t, err)
	return p
}
