package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agropredict/internal/catalog"
	"agropredict/internal/estimator"
	"agropredict/internal/repository"
)

func TestCatalogListsAndCommunes(t *testing.T) {
	fx := setupFixture(t)
	svc := NewCatalogService(fx.catalog, repository.NewCatalogRepository(fx.db))
	ctx := context.Background()

	assert.Len(t, svc.Species(ctx), 10)
	assert.Len(t, svc.Regions(ctx), 5)

	santiago, _ := fx.catalog.snap.CommuneByCode("ST")
	communes, err := svc.Communes(ctx, santiago.RegionID)
	require.NoError(t, err)
	require.Len(t, communes, 2)
	assert.Equal(t, "Buin", communes[0].Name)

	_, err = svc.Communes(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectROI(t *testing.T) {
	fx := setupFixture(t)
	svc := NewCatalogService(fx.catalog, repository.NewCatalogRepository(fx.db))
	ctx := context.Background()
	palto, _ := fx.catalog.snap.SpeciesByCode("palto")
	olivo, _ := fx.catalog.snap.SpeciesByCode("olivo")

	proj, err := svc.ProjectROI(ctx, palto.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultProjectionYears, proj.Years)
	assert.Equal(t, estimator.ProjectROI(palto, 3, DefaultProjectionYears), proj.ROI)
	assert.True(t, proj.HasPrice)

	proj, err = svc.ProjectROI(ctx, olivo.ID, 3, 10)
	require.NoError(t, err)
	assert.Zero(t, proj.ROI)
	assert.False(t, proj.HasPrice)

	_, err = svc.ProjectROI(ctx, 404, 3, 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.ProjectROI(ctx, palto.ID, 0, 80)
	var verr *estimator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestExampleRequestsAreValid(t *testing.T) {
	f, err := catalog.Load("")
	require.NoError(t, err)
	snap := f.Snapshot()

	requests := ExampleRequests(snap, 20, estimator.NewSource(7))
	require.Len(t, requests, 20)
	for _, req := range requests {
		assert.Nil(t, req.Validate().Err())
		_, ok := snap.Species(req.SpeciesID)
		assert.True(t, ok)
		_, ok = snap.Commune(req.CommuneID)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, req.TreeAge, 3)
		assert.LessOrEqual(t, req.TreeAge, 10)
		assert.GreaterOrEqual(t, req.Density, 200)
		assert.LessOrEqual(t, req.Density, 400)
	}

	assert.Nil(t, ExampleRequests(catalog.NewSnapshot(nil, nil), 3, estimator.NewSource(7)))
}
