package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agropredict/internal/model"
)

// AnalysisRepository stores the derived analysis of predictions
type AnalysisRepository interface {
	GetByPrediction(ctx context.Context, predictionID uint) (*model.Analysis, error)
	Upsert(ctx context.Context, a *model.Analysis) error
	DeleteByPrediction(ctx context.Context, predictionID uint) error
}

// analysisRepository implements AnalysisRepository
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) GetByPrediction(ctx context.Context, predictionID uint) (*model.Analysis, error) {
	var a model.Analysis
	err := r.db.WithContext(ctx).Preload("BestAlternative").Where("prediction_id = ?", predictionID).First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// Upsert replaces the analysis of a.PredictionID
func (r *analysisRepository) Upsert(ctx context.Context, a *model.Analysis) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prediction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"risk_category", "rentability_category", "recommendation",
				"best_alternative_id", "result_stamp", "updated_at",
			}),
		}).
		Create(a).Error
}

func (r *analysisRepository) DeleteByPrediction(ctx context.Context, predictionID uint) error {
	return r.db.WithContext(ctx).Where("prediction_id = ?", predictionID).Delete(&model.Analysis{}).Error
}
