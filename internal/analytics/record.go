// Package analytics folds already computed predictions into grouped
// statistics and comparisons. It never recomputes a yield and draws no
// random numbers.
package analytics

import (
	"time"

	"agropredict/internal/model"
)

// Record is the read-only view of one prediction that aggregation works on
type Record struct {
	ID          uint      `json:"id"`
	SpeciesID   uint      `json:"species_id"`
	SpeciesCode string    `json:"species_code"`
	SpeciesName string    `json:"species_name"`
	CommuneID   uint      `json:"commune_id"`
	CommuneName string    `json:"commune_name"`
	RegionID    uint      `json:"region_id"`
	RegionName  string    `json:"region_name"`
	Hectares    float64   `json:"hectares"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`

	YieldPerHa *float64 `json:"yield_per_ha,omitempty"`
	YieldTotal *float64 `json:"yield_total,omitempty"`
	Confidence *int     `json:"confidence,omitempty"`
	WaterPerHa *float64 `json:"water_per_ha,omitempty"`
	Investment *float64 `json:"investment,omitempty"`
	ROI        *float64 `json:"roi,omitempty"`
}

// FromPrediction builds a record from a prediction loaded with its species
// and its commune's region
func FromPrediction(p *model.Prediction) Record {
	return Record{
		ID:          p.ID,
		SpeciesID:   p.SpeciesID,
		SpeciesCode: p.Species.Code,
		SpeciesName: p.Species.Name,
		CommuneID:   p.CommuneID,
		CommuneName: p.Commune.Name,
		RegionID:    p.Commune.RegionID,
		RegionName:  p.Commune.Region.Name,
		Hectares:    p.Hectares,
		Completed:   p.IsCompleted(),
		CreatedAt:   p.CreatedAt,
		YieldPerHa:  p.YieldPerHa,
		YieldTotal:  p.YieldTotal,
		Confidence:  p.Confidence,
		WaterPerHa:  p.WaterPerHa,
		Investment:  p.Investment,
		ROI:         p.ROI,
	}
}

// FromPredictions converts a batch of predictions
func FromPredictions(ps []model.Prediction) []Record {
	records := make([]Record, 0, len(ps))
	for i := range ps {
		records = append(records, FromPrediction(&ps[i]))
	}
	return records
}

// mean accumulates an average that ignores missing values
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *mean) addInt(v *int) {
	if v == nil {
		return
	}
	m.sum += float64(*v)
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// grouper keeps groups in first-appearance order
type grouper[K comparable, A any] struct {
	order []K
	accs  map[K]*A
}

func newGrouper[K comparable, A any]() *grouper[K, A] {
	return &grouper[K, A]{accs: make(map[K]*A)}
}

// get returns the accumulator of key, creating it with init on first use
func (g *grouper[K, A]) get(key K, init func() *A) *A {
	acc, ok := g.accs[key]
	if !ok {
		acc = init()
		g.accs[key] = acc
		g.order = append(g.order, key)
	}
	return acc
}

func (g *grouper[K, A]) each(fn func(*A)) {
	for _, k := range g.order {
		fn(g.accs[k])
	}
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
