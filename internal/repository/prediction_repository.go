package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agropredict/internal/model"
)

// DefaultPageSize is the listing page size
const DefaultPageSize = 10

// ListFilter narrows a prediction listing. Zero values disable a filter.
type ListFilter struct {
	SpeciesID uint
	RegionID  uint
	Status    model.Status
	Page      int
	PageSize  int
}

// RecordFilter selects completed predictions for aggregation. Zero values
// disable a filter; SpeciesID and RegionID combine with OR when AnyOf is set.
// Results are oldest first unless Newest is set.
type RecordFilter struct {
	SpeciesID uint
	RegionID  uint
	AnyOf     bool
	IDs       []uint
	Limit     int
	Newest    bool
}

// StatusCount is one row of the lifecycle breakdown
type StatusCount struct {
	Status model.Status `gorm:"column:status"`
	Count  int64        `gorm:"column:count"`
}

// PredictionRepository stores predictions
type PredictionRepository interface {
	Create(ctx context.Context, p *model.Prediction) error
	Save(ctx context.Context, p *model.Prediction) error
	Get(ctx context.Context, id uint) (*model.Prediction, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, f ListFilter) ([]model.Prediction, int64, error)
	Completed(ctx context.Context, f RecordFilter) ([]model.Prediction, error)
	Recent(ctx context.Context, limit int) ([]model.Prediction, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

// predictionRepository implements PredictionRepository
type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Species").Preload("Commune.Region")
}

// Create inserts a prediction without touching its relations
func (r *predictionRepository) Create(ctx context.Context, p *model.Prediction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// Save writes every column of an existing prediction
func (r *predictionRepository) Save(ctx context.Context, p *model.Prediction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Get loads a prediction with species, commune, region and analysis
func (r *predictionRepository) Get(ctx context.Context, id uint) (*model.Prediction, error) {
	var p model.Prediction
	err := withRelations(r.db.WithContext(ctx)).
		Preload("Analysis").
		Preload("Analysis.BestAlternative").
		First(&p, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Delete removes a prediction and its analysis
func (r *predictionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prediction_id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Prediction{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List returns one page of predictions, newest first, and the total count
func (r *predictionRepository) List(ctx context.Context, f ListFilter) ([]model.Prediction, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.SpeciesID != 0 {
			db = db.Where("predictions.species_id = ?", f.SpeciesID)
		}
		if f.Status != "" {
			db = db.Where("predictions.status = ?", f.Status)
		}
		if f.RegionID != 0 {
			db = db.Where("predictions.commune_id IN (?)", r.communesOf(f.RegionID))
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Prediction{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	var items []model.Prediction
	err := withRelations(r.db.WithContext(ctx)).
		Scopes(filter).
		Order("predictions.created_at DESC, predictions.id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error
	return items, total, err
}

func (r *predictionRepository) communesOf(regionID uint) *gorm.DB {
	return r.db.Model(&model.Commune{}).Select("id").Where("region_id = ?", regionID)
}

// Completed returns completed predictions matching f
func (r *predictionRepository) Completed(ctx context.Context, f RecordFilter) ([]model.Prediction, error) {
	q := withRelations(r.db.WithContext(ctx)).Where("predictions.status = ?", model.StatusCompleted)
	if len(f.IDs) > 0 {
		q = q.Where("predictions.id IN ?", f.IDs)
	}

	region := r.communesOf(f.RegionID)
	switch {
	case f.AnyOf && f.SpeciesID != 0 && f.RegionID != 0:
		q = q.Where(r.db.Where("predictions.species_id = ?", f.SpeciesID).Or("predictions.commune_id IN (?)", region))
	default:
		if f.SpeciesID != 0 {
			q = q.Where("predictions.species_id = ?", f.SpeciesID)
		}
		if f.RegionID != 0 {
			q = q.Where("predictions.commune_id IN (?)", region)
		}
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	order := "predictions.created_at ASC, predictions.id ASC"
	if f.Newest {
		order = "predictions.created_at DESC, predictions.id DESC"
	}
	var items []model.Prediction
	err := q.Order(order).Find(&items).Error
	return items, err
}

// Recent returns the newest predictions in any state
func (r *predictionRepository) Recent(ctx context.Context, limit int) ([]model.Prediction, error) {
	var items []model.Prediction
	err := withRelations(r.db.WithContext(ctx)).
		Order("predictions.created_at DESC, predictions.id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// CountByStatus aggregates the lifecycle breakdown in SQL
func (r *predictionRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM predictions
		GROUP BY status
		ORDER BY status`).Scan(&rows).Error
	return rows, err
}
