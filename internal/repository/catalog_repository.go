package repository

import (
	"context"

	"gorm.io/gorm"

	"agropredict/internal/model"
)

// CatalogRepository reads species and geography
type CatalogRepository interface {
	ListSpecies(ctx context.Context) ([]model.Species, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
	ListCommunes(ctx context.Context, regionID uint) ([]model.Commune, error)
}

// catalogRepository implements CatalogRepository
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// ListSpecies returns every species ordered by code
func (r *catalogRepository) ListSpecies(ctx context.Context) ([]model.Species, error) {
	var species []model.Species
	err := r.db.WithContext(ctx).Order("code").Find(&species).Error
	return species, err
}

// ListRegions returns every region with its communes
func (r *catalogRepository) ListRegions(ctx context.Context) ([]model.Region, error) {
	var regions []model.Region
	err := r.db.WithContext(ctx).
		Preload("Communes", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("name").
		Find(&regions).Error
	return regions, err
}

// ListCommunes returns the communes of a region, or ErrNotFound when the
// region does not exist
func (r *catalogRepository) ListCommunes(ctx context.Context, regionID uint) ([]model.Commune, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Region{}).Where("id = ?", regionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var communes []model.Commune
	err := r.db.WithContext(ctx).Where("region_id = ?", regionID).Order("name").Find(&communes).Error
	return communes, err
}
