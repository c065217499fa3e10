package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"agropredict/internal/analytics"
	"agropredict/internal/external"
	"agropredict/internal/model"
	"agropredict/internal/repository"
)

// Dashboard sizes
const (
	RecentLimit    = 5
	TopLimit       = 5
	ActivityWindow = 30 * 24 * time.Hour
	ClimateCommune = "Santiago"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

// Dashboard represents the dashboard response
type Dashboard struct {
	Totals     Totals                  `json:"totals"`
	Activity   Activity                `json:"activity"`
	Recent     []model.Prediction      `json:"recent"`
	TopSpecies []analytics.SpeciesStat `json:"top_species"`
	Regions    []analytics.RegionStat  `json:"regions"`
	Climate    *external.Climate       `json:"climate,omitempty"`
}

// Totals counts predictions per lifecycle state
type Totals struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Processing     int64   `json:"processing"`
	Completed      int64   `json:"completed"`
	Failed         int64   `json:"failed"`
	CompletionRate float64 `json:"completion_rate"` // percent, one decimal
}

// Activity compares completed predictions created in the current window
// against the window before it
type Activity struct {
	WindowDays    int     `json:"window_days"`
	Current       int     `json:"current"`
	Previous      int     `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// dashboardService implements DashboardService
type dashboardService struct {
	predictions repository.PredictionRepository
	catalogs    CatalogSource
	climate     external.ClimateProvider
	now         func() time.Time
	logger      *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	predictions repository.PredictionRepository,
	catalogs CatalogSource,
	climate external.ClimateProvider,
	logger *slog.Logger,
) DashboardService {
	return &dashboardService{
		predictions: predictions,
		catalogs:    catalogs,
		climate:     climate,
		now:         time.Now,
		logger:      logger,
	}
}

// GetDashboard loads counts, recent predictions, completed records and the
// climate snapshot concurrently and folds them into the dashboard
func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		counts  []repository.StatusCount
		recent  []model.Prediction
		records []analytics.Record
		climate *external.Climate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.predictions.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("failed to count predictions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.predictions.Recent(gctx, RecentLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent predictions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		completed, err := s.predictions.Completed(gctx, repository.RecordFilter{})
		if err != nil {
			return fmt.Errorf("failed to load completed predictions: %w", err)
		}
		records = analytics.FromPredictions(completed)
		return nil
	})
	g.Go(func() error {
		climate = s.currentClimate(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Totals:     s.calculateTotals(counts),
		Activity:   s.calculateActivity(records),
		Recent:     recent,
		TopSpecies: analytics.BySpecies(records, TopLimit),
		Regions:    roundRegions(analytics.ByRegion(records, TopLimit)),
		Climate:    climate,
	}, nil
}

// currentClimate is best effort: a failing provider leaves the snapshot out
func (s *dashboardService) currentClimate(ctx context.Context) *external.Climate {
	commune, ok := s.catalogs.Snapshot().CommuneByName(ClimateCommune)
	if !ok {
		commune = model.Commune{Name: ClimateCommune}
	}
	climate, err := s.climate.Current(ctx, commune)
	if err != nil {
		s.logger.Warn("climate lookup failed", "commune", commune.Name, "error", err.Error())
		return nil
	}
	return climate
}

// calculateTotals sums the per-status counts
func (s *dashboardService) calculateTotals(counts []repository.StatusCount) Totals {
	var t Totals
	for _, c := range counts {
		t.Total += c.Count
		switch c.Status {
		case model.StatusPending:
			t.Pending = c.Count
		case model.StatusProcessing:
			t.Processing = c.Count
		case model.StatusCompleted:
			t.Completed = c.Count
		case model.StatusError:
			t.Failed = c.Count
		}
	}
	t.CompletionRate = s.calculateCompletionRate(t.Completed, t.Total)
	return t
}

// calculateCompletionRate returns completed/total as a percentage with one
// decimal. An empty store has a rate of 0.
func (s *dashboardService) calculateCompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return round1(float64(completed) / float64(total) * 100)
}

// calculateActivity counts completed records created in the last window and
// in the window before it
func (s *dashboardService) calculateActivity(records []analytics.Record) Activity {
	now := s.now()
	currentStart := now.Add(-ActivityWindow)
	previousStart := currentStart.Add(-ActivityWindow)

	a := Activity{WindowDays: int(ActivityWindow / (24 * time.Hour))}
	for _, r := range records {
		switch {
		case !r.CreatedAt.Before(currentStart) && !r.CreatedAt.After(now):
			a.Current++
		case !r.CreatedAt.Before(previousStart) && r.CreatedAt.Before(currentStart):
			a.Previous++
		}
	}
	a.ChangePercent = s.calculateChangePercent(float64(a.Current), float64(a.Previous))
	return a
}

// calculateChangePercent calculates percentage change between two values
// Handles division by zero and missing data gracefully
func (s *dashboardService) calculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			// Both are zero - no change
			return 0.0
		}
		// Growth from nothing is reported as 100%
		return 100.0
	}
	change := ((current - previous) / previous) * 100
	return round2(change)
}

func roundRegions(stats []analytics.RegionStat) []analytics.RegionStat {
	for i := range stats {
		stats[i].TotalHectares = round2(stats[i].TotalHectares)
		stats[i].TotalYield = round2(stats[i].TotalYield)
		stats[i].TotalInvestment = round2(stats[i].TotalInvestment)
	}
	return stats
}
