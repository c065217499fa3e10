package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"agropredict/internal/cache"
	"agropredict/internal/estimator"
	"agropredict/internal/events"
	"agropredict/internal/model"
	"agropredict/internal/repository"
)

// PredictionService defines the lifecycle operations of predictions
type PredictionService interface {
	Create(ctx context.Context, req estimator.Request) (*model.Prediction, error)
	Get(ctx context.Context, id uint) (*model.Prediction, error)
	List(ctx context.Context, filter repository.ListFilter) (*PredictionPage, error)
	Recompute(ctx context.Context, id uint) (*model.Prediction, error)
	Delete(ctx context.Context, id uint) error
	Estimate(ctx context.Context, req estimator.Request) (*estimator.Estimate, error)
}

// PredictionPage is one page of a prediction listing
type PredictionPage struct {
	Items    []model.Prediction `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Pages    int                `json:"pages"`
}

// predictionService implements PredictionService
type predictionService struct {
	repo      repository.PredictionRepository
	catalogs  CatalogSource
	analyses  cache.AnalysisCache
	publisher events.Publisher
	seeds     SeedFunc
	now       func() time.Time
	logger    *slog.Logger
}

// NewPredictionService creates a new prediction service. A nil seeds draws a
// fresh random seed per computation.
func NewPredictionService(
	repo repository.PredictionRepository,
	catalogs CatalogSource,
	analyses cache.AnalysisCache,
	publisher events.Publisher,
	seeds SeedFunc,
	logger *slog.Logger,
) PredictionService {
	if seeds == nil {
		seeds = estimator.NewSeed
	}
	return &predictionService{
		repo:      repo,
		catalogs:  catalogs,
		analyses:  analyses,
		publisher: publisher,
		seeds:     seeds,
		now:       time.Now,
		logger:    logger,
	}
}

// Create validates the request, stores a pending prediction and computes it.
// A prediction whose species yields nothing is returned with status error.
func (s *predictionService) Create(ctx context.Context, req estimator.Request) (*model.Prediction, error) {
	sp, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	p := &model.Prediction{
		SpeciesID:     req.SpeciesID,
		CommuneID:     req.CommuneID,
		Hectares:      req.Hectares,
		TreeAge:       req.TreeAge,
		Density:       req.Density,
		Irrigation:    req.Irrigation,
		Soil:          req.Soil,
		Fertilization: req.Fertilization,
		Seed:          s.nextSeed(),
		Status:        model.StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}

	if err := s.compute(ctx, p, sp); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.ID)
}

// Get returns a prediction with its species, commune and analysis
func (s *predictionService) Get(ctx context.Context, id uint) (*model.Prediction, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of predictions, newest first
func (s *predictionService) List(ctx context.Context, filter repository.ListFilter) (*PredictionPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = repository.DefaultPageSize
	}
	if filter.Status != "" && !filter.Status.Valid() {
		verr := &estimator.ValidationError{}
		verr.Add("status", "unknown status", string(filter.Status), "pending|processing|completed|error")
		return nil, verr
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	pages := int(total) / filter.PageSize
	if int(total)%filter.PageSize != 0 {
		pages++
	}
	return &PredictionPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Pages:    pages,
	}, nil
}

// Recompute reruns the computation of a stored prediction with a new seed.
// The completion stamp always moves forward, which invalidates its analysis.
func (s *predictionService) Recompute(ctx context.Context, id uint) (*model.Prediction, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var sp *model.Species
	if found, ok := s.catalogs.Snapshot().Species(p.SpeciesID); ok {
		sp = &found
	}
	p.Seed = s.nextSeed()
	if err := s.compute(ctx, p, sp); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, p.ID)
}

// Delete removes a prediction and its analysis
func (s *predictionService) Delete(ctx context.Context, id uint) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, events.SubjectPredictionDeleted, p)
	return nil
}

// Estimate computes a request without storing anything
func (s *predictionService) Estimate(ctx context.Context, req estimator.Request) (*estimator.Estimate, error) {
	sp, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return estimator.Compute(req, sp, estimator.NewSource(s.nextSeed()))
}

// resolve validates req and looks its references up in the catalog
func (s *predictionService) resolve(req estimator.Request) (*model.Species, error) {
	snap := s.catalogs.Snapshot()
	verr := req.Validate()

	var sp *model.Species
	if req.SpeciesID != 0 {
		found, ok := snap.Species(req.SpeciesID)
		if ok {
			sp = &found
		} else {
			verr.Add("species_id", "unknown species", req.SpeciesID, "catalog species id")
		}
	}
	if req.CommuneID != 0 {
		if _, ok := snap.Commune(req.CommuneID); !ok {
			verr.Add("commune_id", "unknown commune", req.CommuneID, "catalog commune id")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return sp, nil
}

// compute moves p through processing to completed or error and persists
// every transition
func (s *predictionService) compute(ctx context.Context, p *model.Prediction, sp *model.Species) error {
	previous := p.CompletedAt
	p.ClearResults()
	p.Status = model.StatusProcessing
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to mark prediction %d processing: %w", p.ID, err)
	}

	est, err := estimator.Compute(estimator.FromPrediction(p), sp, estimator.NewSource(p.Seed))
	if err != nil {
		p.Status = model.StatusError
		p.FailureMessage = err.Error()
		if saveErr := s.repo.Save(ctx, p); saveErr != nil {
			return fmt.Errorf("failed to store failed prediction %d: %w", p.ID, saveErr)
		}
		s.logger.Warn("prediction computation failed",
			"prediction_id", p.ID,
			"species_id", p.SpeciesID,
			"error", err.Error(),
		)
		s.invalidate(ctx, p.ID)
		s.publish(ctx, events.SubjectPredictionFailed, p)
		return nil
	}

	est.Apply(p)
	factors, err := json.Marshal(est.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode factors: %w", err)
	}
	p.Factors = datatypes.JSON(factors)

	stamp := s.now().UTC().Truncate(time.Microsecond)
	if previous != nil && !stamp.After(*previous) {
		stamp = previous.Add(time.Microsecond)
	}
	p.CompletedAt = &stamp
	p.Status = model.StatusCompleted
	if err := s.repo.Save(ctx, p); err != nil {
		s.markFailed(ctx, p, err)
		return fmt.Errorf("failed to store prediction %d results: %w", p.ID, err)
	}

	s.invalidate(ctx, p.ID)
	s.publish(ctx, events.SubjectPredictionCompleted, p)
	return nil
}

// nextSeed draws a seed for a new computation, kept within MaxSeed
func (s *predictionService) nextSeed() uint64 {
	return estimator.StorableSeed(s.seeds())
}

// markFailed moves p to error after its results could not be stored, so the
// row does not stay in processing. A failure here is only logged.
func (s *predictionService) markFailed(ctx context.Context, p *model.Prediction, cause error) {
	p.ClearResults()
	p.Status = model.StatusError
	p.FailureMessage = "storing results failed: " + cause.Error()
	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to mark prediction as failed",
			"prediction_id", p.ID,
			"error", err.Error(),
		)
		return
	}
	s.invalidate(ctx, p.ID)
}

func (s *predictionService) invalidate(ctx context.Context, id uint) {
	if err := s.analyses.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate analysis cache",
			"prediction_id", id,
			"error", err.Error(),
		)
	}
}

// publish notifies subscribers. Delivery failures are logged, never returned.
func (s *predictionService) publish(ctx context.Context, subject string, p *model.Prediction) {
	event := events.PredictionEvent{
		PredictionID: p.ID,
		SpeciesCode:  p.Species.Code,
		CommuneID:    p.CommuneID,
		Status:       string(p.Status),
		ROI:          p.ROI,
		Message:      p.FailureMessage,
		OccurredAt:   s.now().UTC(),
	}
	if event.SpeciesCode == "" {
		if sp, ok := s.catalogs.Snapshot().Species(p.SpeciesID); ok {
			event.SpeciesCode = sp.Code
		}
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("failed to publish prediction event",
			"subject", subject,
			"prediction_id", p.ID,
			"error", err.Error(),
		)
	}
}
