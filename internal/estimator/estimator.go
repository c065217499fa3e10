// Package estimator is the pure estimation engine: it turns cultivation
// parameters and species coefficients into yield, water, economic and
// classification results without touching storage.
package estimator

import (
	"errors"
	"fmt"

	"agropredict/internal/model"
)

// ErrNoYield is returned when a species cannot produce a yield
var ErrNoYield = errors.New("species has no base yield")

// Estimate is the complete output of one computation
type Estimate struct {
	YieldPerHa  float64   `json:"yield_per_ha"`
	YieldTotal  float64   `json:"yield_total"`
	Confidence  int       `json:"confidence"`
	Water       Water     `json:"water"`
	Economics   Economics `json:"economics"`
	Factors     Factors   `json:"factors"`
	Risk        string    `json:"risk_category"`
	Rentability string    `json:"rentability_category"`
	Advice      string    `json:"recommendation"`
}

// Compute runs Yield, Water, Economics and the classifier in sequence.
// src is drawn twice: first for the regional factor, then for confidence.
// req is expected to be validated.
func Compute(req Request, sp *model.Species, src Source) (*Estimate, error) {
	if sp == nil {
		return nil, fmt.Errorf("compute estimate: %w", ErrNoYield)
	}
	if sp.BaseYield < 0 {
		return nil, fmt.Errorf("compute estimate for %s: %w", sp.Code, ErrNoYield)
	}

	factors := FactorsFor(req, DrawRegionalFactor(src))
	yieldPerHa := sp.BaseYield * factors.Product()
	yieldTotal := yieldPerHa * req.Hectares

	water := EstimateWater(sp.Code, sp.WaterPerTon, yieldTotal, req.Hectares)
	econ := Analyze(*sp, yieldPerHa, req.Hectares)
	confidence := DrawConfidence(src)

	return &Estimate{
		YieldPerHa:  yieldPerHa,
		YieldTotal:  yieldTotal,
		Confidence:  confidence,
		Water:       water,
		Economics:   econ,
		Factors:     factors,
		Risk:        RiskCategory(econ.ROI, &confidence),
		Rentability: RentabilityCategory(econ.ROI),
		Advice:      Recommendation(econ.ROI),
	}, nil
}

// Apply copies the estimate into a prediction's result fields
func (e *Estimate) Apply(p *model.Prediction) {
	yieldPerHa, yieldTotal := e.YieldPerHa, e.YieldTotal
	waterTotal, waterPerHa := e.Water.Total, e.Water.PerHa
	confidence := e.Confidence

	p.YieldPerHa = &yieldPerHa
	p.YieldTotal = &yieldTotal
	p.WaterTotal = &waterTotal
	p.WaterPerHa = &waterPerHa
	p.Confidence = &confidence
	p.Investment = e.Economics.Investment
	p.Revenue5Y = e.Economics.Revenue
	p.ROI = e.Economics.ROI
}
