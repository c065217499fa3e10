package estimator

import (
	"math"
	"math/rand/v2"
	"time"
)

// MaxSeed is the largest seed a prediction can store. Seed columns are
// signed 64-bit integers in both sqlite and postgres.
const MaxSeed uint64 = math.MaxInt64

// Source supplies the uniform draws used by the stochastic parts of an
// estimate. A Source is used by a single computation at a time.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// NewSource returns a deterministic PCG source for seed
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a fresh seed for a prediction that has none. The result
// never exceeds MaxSeed.
func NewSeed() uint64 {
	return StorableSeed(uint64(time.Now().UnixNano()) ^ rand.Uint64())
}

// StorableSeed clears the high bit so seed fits a signed 64-bit column
func StorableSeed(seed uint64) uint64 {
	return seed &^ (1 << 63)
}

// uniform draws a value in [lo, hi) from src
func uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}
