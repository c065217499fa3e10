package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agropredict/internal/catalog"
	"agropredict/internal/model"
)

// SeedSummary counts the rows written by a seed run
type SeedSummary struct {
	Regions  int `json:"regions"`
	Communes int `json:"communes"`
	Species  int `json:"species"`
}

// SeedRepository handles database seeding operations
type SeedRepository struct {
	db *gorm.DB
}

// NewSeedRepository creates a new seed repository
func NewSeedRepository(db *gorm.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

// SeedCatalog upserts regions, communes and species by code, so running it
// twice leaves a single copy of each
func (s *SeedRepository) SeedCatalog(ctx context.Context, f *catalog.File) (*SeedSummary, error) {
	regions, species := f.Models()
	summary := &SeedSummary{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, region := range regions {
			communes := region.Communes
			region.Communes = nil
			if err := upsertByCode(tx, &region, "name", "latitude", "longitude"); err != nil {
				return fmt.Errorf("failed to seed region %s: %w", region.Code, err)
			}
			var stored model.Region
			if err := tx.Where("code = ?", region.Code).First(&stored).Error; err != nil {
				return fmt.Errorf("failed to reload region %s: %w", region.Code, err)
			}
			summary.Regions++

			for _, commune := range communes {
				commune.RegionID = stored.ID
				if err := upsertByCode(tx, &commune, "name", "region_id", "latitude", "longitude"); err != nil {
					return fmt.Errorf("failed to seed commune %s: %w", commune.Code, err)
				}
				summary.Communes++
			}
		}

		if len(species) > 0 {
			err := upsertByCode(tx, &species, "name", "scientific_name", "base_yield", "price_per_ton",
				"planting_cost_per_ha", "maintenance_cost_per_ha", "water_per_ton")
			if err != nil {
				return fmt.Errorf("failed to seed species: %w", err)
			}
		}
		summary.Species = len(species)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func upsertByCode(tx *gorm.DB, value any, columns ...string) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(value).Error
}

// ClearPredictions removes every prediction and analysis
func (s *SeedRepository) ClearPredictions(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&model.Analysis{}).Error; err != nil {
		return fmt.Errorf("failed to clear analyses: %w", err)
	}
	if err := tx.Delete(&model.Prediction{}).Error; err != nil {
		return fmt.Errorf("failed to clear predictions: %w", err)
	}
	return nil
}
