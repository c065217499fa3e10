package service

import (
	"context"
	"fmt"
	"io"

	"agropredict/internal/analytics"
	"agropredict/internal/report"
	"agropredict/internal/repository"
)

// ComparisonService compares completed predictions side by side
type ComparisonService interface {
	Compare(ctx context.Context, ids []uint) ([]analytics.ComparisonItem, error)
	Export(ctx context.Context, ids []uint, w io.Writer) error
}

// comparisonService implements ComparisonService
type comparisonService struct {
	predictions repository.PredictionRepository
}

// NewComparisonService creates a new comparison service
func NewComparisonService(predictions repository.PredictionRepository) ComparisonService {
	return &comparisonService{predictions: predictions}
}

// Compare compares the given predictions in the order requested. Without
// ids the most recent completed predictions are compared.
func (s *comparisonService) Compare(ctx context.Context, ids []uint) ([]analytics.ComparisonItem, error) {
	records, err := s.records(ctx, ids)
	if err != nil {
		return nil, err
	}
	return analytics.Compare(records)
}

// Export writes the comparison as an xlsx workbook
func (s *comparisonService) Export(ctx context.Context, ids []uint, w io.Writer) error {
	items, err := s.Compare(ctx, ids)
	if err != nil {
		return err
	}
	return report.WriteComparison(w, items)
}

func (s *comparisonService) records(ctx context.Context, ids []uint) ([]analytics.Record, error) {
	if len(ids) == 0 {
		recent, err := s.predictions.Completed(ctx, repository.RecordFilter{Limit: analytics.MaxComparison, Newest: true})
		if err != nil {
			return nil, fmt.Errorf("failed to load recent predictions: %w", err)
		}
		return analytics.FromPredictions(recent), nil
	}

	ids = unique(ids)
	if len(ids) < analytics.MinComparison || len(ids) > analytics.MaxComparison {
		return nil, fmt.Errorf("compare %d predictions: %w", len(ids), analytics.ErrComparisonSize)
	}

	found, err := s.predictions.Completed(ctx, repository.RecordFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	byID := make(map[uint]analytics.Record, len(found))
	for _, r := range analytics.FromPredictions(found) {
		byID[r.ID] = r
	}

	records := make([]analytics.Record, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("prediction %d is missing or not completed: %w", id, repository.ErrNotFound)
		}
		records = append(records, r)
	}
	return records, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
