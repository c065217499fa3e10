package service

import (
	"context"
	"fmt"

	"agropredict/internal/estimator"
	"agropredict/internal/model"
	"agropredict/internal/repository"
)

// Projection bounds
const (
	DefaultProjectionYears = estimator.ProjectionYears
	MaxProjectionYears     = 50
)

// CatalogService exposes the species and geography catalog
type CatalogService interface {
	Species(ctx context.Context) []model.Species
	Regions(ctx context.Context) []model.Region
	Communes(ctx context.Context, regionID uint) ([]model.Commune, error)
	ProjectROI(ctx context.Context, speciesID uint, hectares float64, years int) (*ROIProjection, error)
}

// ROIProjection is a what-if return for a species on its base yield
type ROIProjection struct {
	SpeciesID   uint    `json:"species_id"`
	SpeciesCode string  `json:"species_code"`
	Hectares    float64 `json:"hectares"`
	Years       int     `json:"years"`
	ROI         float64 `json:"roi"`
	HasPrice    bool    `json:"has_price"`
}

// catalogService implements CatalogService
type catalogService struct {
	catalogs CatalogSource
	repo     repository.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogs CatalogSource, repo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogs: catalogs, repo: repo}
}

func (s *catalogService) Species(ctx context.Context) []model.Species {
	return s.catalogs.Snapshot().AllSpecies()
}

func (s *catalogService) Regions(ctx context.Context) []model.Region {
	return s.catalogs.Snapshot().Regions()
}

// Communes lists the communes of a region by name
func (s *catalogService) Communes(ctx context.Context, regionID uint) ([]model.Commune, error) {
	communes, err := s.repo.ListCommunes(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("communes of region %d: %w", regionID, err)
	}
	return communes, nil
}

// ProjectROI projects the ROI of planting hectares of a species for years.
// Zero years selects the default horizon.
func (s *catalogService) ProjectROI(ctx context.Context, speciesID uint, hectares float64, years int) (*ROIProjection, error) {
	if years == 0 {
		years = DefaultProjectionYears
	}
	verr := &estimator.ValidationError{}
	if hectares <= 0 {
		verr.Add("hectares", "hectares must be positive", hectares, "> 0")
	}
	if years < 1 || years > MaxProjectionYears {
		verr.Add("years", "years out of range", years, fmt.Sprintf("1-%d", MaxProjectionYears))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	sp, ok := s.catalogs.Snapshot().Species(speciesID)
	if !ok {
		return nil, fmt.Errorf("species %d: %w", speciesID, repository.ErrNotFound)
	}
	return &ROIProjection{
		SpeciesID:   sp.ID,
		SpeciesCode: sp.Code,
		Hectares:    hectares,
		Years:       years,
		ROI:         estimator.ProjectROI(sp, hectares, years),
		HasPrice:    sp.HasEconomicData(),
	}, nil
}
