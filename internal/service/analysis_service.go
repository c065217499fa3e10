package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agropredict/internal/analytics"
	"agropredict/internal/cache"
	"agropredict/internal/estimator"
	"agropredict/internal/model"
	"agropredict/internal/repository"
)

// Result sizes of the analysis views
const (
	PeerLimit        = 3
	AlternativeLimit = 5
)

// AnalysisService derives analyses from completed predictions
type AnalysisService interface {
	Analysis(ctx context.Context, predictionID uint) (*AnalysisView, error)
	Risk(ctx context.Context, predictionID uint) (*RiskView, error)
}

// AnalysisView is the classification of a prediction next to its regional peers
type AnalysisView struct {
	PredictionID uint                 `json:"prediction_id"`
	Analysis     model.Analysis       `json:"analysis"`
	Peers        []analytics.PeerStat `json:"peers"`
	Cached       bool                 `json:"cached"`
}

// RiskView is the risk reading of a prediction with its regional context
type RiskView struct {
	PredictionID uint                            `json:"prediction_id"`
	SpeciesCode  string                          `json:"species_code"`
	RegionName   string                          `json:"region_name"`
	ExpectedROI  *float64                        `json:"expected_roi"`
	Investment   *float64                        `json:"investment"`
	Confidence   *int                            `json:"confidence"`
	RiskCategory string                          `json:"risk_category"`
	Payback      estimator.Payback               `json:"payback"`
	PaybackText  string                          `json:"payback_text"`
	CrossRegion  []analytics.RegionalPerformance `json:"cross_region"`
	Alternatives []analytics.PeerStat            `json:"alternatives"`
}

// analysisService implements AnalysisService
type analysisService struct {
	predictions repository.PredictionRepository
	analyses    repository.AnalysisRepository
	cache       cache.AnalysisCache
	logger      *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	predictions repository.PredictionRepository,
	analyses repository.AnalysisRepository,
	c cache.AnalysisCache,
	logger *slog.Logger,
) AnalysisService {
	return &analysisService{
		predictions: predictions,
		analyses:    analyses,
		cache:       c,
		logger:      logger,
	}
}

// Analysis returns the analysis of a completed prediction, creating or
// refreshing the stored record when its stamp no longer matches
func (s *analysisService) Analysis(ctx context.Context, predictionID uint) (*AnalysisView, error) {
	p, err := s.completed(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if view, ok := s.cached(ctx, p); ok {
		return view, nil
	}

	records, err := s.predictions.Completed(ctx, repository.RecordFilter{RegionID: p.Commune.RegionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load regional peers: %w", err)
	}
	focal := analytics.FromPrediction(p)
	all := analytics.PeerComparison(focal, analytics.FromPredictions(records), 0)

	analysis := p.Analysis
	if analysis == nil || analysis.IsStaleFor(p) {
		analysis, err = s.refresh(ctx, p, focal, all)
		if err != nil {
			return nil, err
		}
	}

	view := &AnalysisView{
		PredictionID: p.ID,
		Analysis:     *analysis,
		Peers:        truncatePeers(all, PeerLimit),
	}
	s.store(ctx, p, view)
	return view, nil
}

// Risk reads the risk of a completed prediction together with the same
// species in other regions and the best other species of its region
func (s *analysisService) Risk(ctx context.Context, predictionID uint) (*RiskView, error) {
	p, err := s.completed(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	records, err := s.predictions.Completed(ctx, repository.RecordFilter{
		SpeciesID: p.SpeciesID,
		RegionID:  p.Commune.RegionID,
		AnyOf:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load related predictions: %w", err)
	}
	focal := analytics.FromPrediction(p)
	related := analytics.FromPredictions(records)

	payback := estimator.PaybackPeriod(p.Species, p.Investment, p.YieldPerHa, p.Hectares)
	return &RiskView{
		PredictionID: p.ID,
		SpeciesCode:  p.Species.Code,
		RegionName:   p.Commune.Region.Name,
		ExpectedROI:  p.ROI,
		Investment:   p.Investment,
		Confidence:   p.Confidence,
		RiskCategory: estimator.RiskCategory(p.ROI, p.Confidence),
		Payback:      payback,
		PaybackText:  payback.String(),
		CrossRegion:  analytics.CrossRegion(focal, related, 0),
		Alternatives: analytics.RegionalAlternatives(focal, related, AlternativeLimit),
	}, nil
}

func (s *analysisService) completed(ctx context.Context, predictionID uint) (*model.Prediction, error) {
	p, err := s.predictions.Get(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if !p.IsCompleted() {
		return nil, fmt.Errorf("prediction %d is %s: %w", p.ID, p.Status, ErrNotCompleted)
	}
	return p, nil
}

// refresh classifies p and upserts its analysis record
func (s *analysisService) refresh(ctx context.Context, p *model.Prediction, focal analytics.Record, peers []analytics.PeerStat) (*model.Analysis, error) {
	analysis := &model.Analysis{
		PredictionID:        p.ID,
		RiskCategory:        estimator.RiskCategory(p.ROI, p.Confidence),
		RentabilityCategory: estimator.RentabilityCategory(p.ROI),
		Recommendation:      estimator.Recommendation(p.ROI),
		ResultStamp:         *p.CompletedAt,
	}
	if best, ok := analytics.BestAlternative(focal, peers); ok {
		id := best.SpeciesID
		analysis.BestAlternativeID = &id
	}
	if err := s.analyses.Upsert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to store analysis of prediction %d: %w", p.ID, err)
	}

	stored, err := s.analyses.GetByPrediction(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload analysis of prediction %d: %w", p.ID, err)
	}
	s.logger.Info("analysis refreshed",
		"prediction_id", p.ID,
		"risk_category", stored.RiskCategory,
		"best_alternative_id", stored.BestAlternativeID,
	)
	return stored, nil
}

// cached returns the cached view when it was built for p's current stamp.
// Cache failures degrade to a recomputation.
func (s *analysisService) cached(ctx context.Context, p *model.Prediction) (*AnalysisView, bool) {
	entry, err := s.cache.Get(ctx, p.ID)
	if err != nil {
		s.logger.Warn("analysis cache read failed", "prediction_id", p.ID, "error", err.Error())
		return nil, false
	}
	if !entry.FreshFor(p.CompletedAt) {
		return nil, false
	}
	var view AnalysisView
	if err := json.Unmarshal(entry.Payload, &view); err != nil {
		return nil, false
	}
	view.Cached = true
	return &view, true
}

func (s *analysisService) store(ctx context.Context, p *model.Prediction, view *AnalysisView) {
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, p.ID, &cache.Entry{Stamp: *p.CompletedAt, Payload: payload}); err != nil {
		s.logger.Warn("analysis cache write failed", "prediction_id", p.ID, "error", err.Error())
	}
}

func truncatePeers(stats []analytics.PeerStat, limit int) []analytics.PeerStat {
	if len(stats) > limit {
		return stats[:limit]
	}
	return stats
}
