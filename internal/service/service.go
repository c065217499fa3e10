package service

import (
	"errors"
	"math"

	"agropredict/internal/catalog"
)

// ErrNotCompleted is returned when an operation needs computed results
var ErrNotCompleted = errors.New("prediction is not completed")

// CatalogSource serves the current catalog snapshot
type CatalogSource interface {
	Snapshot() *catalog.Snapshot
}

// SeedFunc supplies the seed of the next computation
type SeedFunc func() uint64

// FixedSeed always returns seed, making every computation reproducible
func FixedSeed(seed uint64) SeedFunc {
	return func() uint64 { return seed }
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
