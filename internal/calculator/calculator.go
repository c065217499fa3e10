// Package calculator holds the standalone agronomic calculators. They are
// independent of the catalog and of stored predictions.
package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agropredict/internal/estimator"
)

// Extraction coefficients in kg of nutrient per ton of fruit
const (
	extractionN = 3.5
	extractionP = 1.5
	extractionK = 5.5

	// soilFactor converts a soil test in ppm to kg/ha over a 30 cm layer
	soilFactor = 3900.0 / 1_000_000
	availableP = 0.8
	availableK = 0.9
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FertilizationInput is the NPK dose request
type FertilizationInput struct {
	ExpectedYield float64 `json:"expected_yield"`
	Hectares      float64 `json:"hectares"`
	SoilN         float64 `json:"soil_n"`
	SoilP         float64 `json:"soil_p"`
	SoilK         float64 `json:"soil_k"`
	Formula       string  `json:"formula"`
}

// FertilizationResult is the fertilizer dose per hectare and in total
type FertilizationResult struct {
	DosePerHa float64 `json:"dose_per_ha"`
	DoseTotal float64 `json:"dose_total"`
}

// Fertilization computes the product dose that covers the most limiting
// nutrient given the soil supply
func Fertilization(in FertilizationInput) (*FertilizationResult, error) {
	verr := &estimator.ValidationError{}
	if in.ExpectedYield < 0 {
		verr.Add("expected_yield", "must not be negative", in.ExpectedYield, ">= 0")
	}
	if in.Hectares <= 0 {
		in.Hectares = 1
	}
	if in.Formula == "" {
		in.Formula = "15-15-15"
	}
	grade, err := parseFormula(in.Formula)
	if err != nil {
		verr.Add("formula", err.Error(), in.Formula, "N-P-K, e.g. 15-15-15")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	reqN := math.Max(0, in.ExpectedYield*extractionN-in.SoilN*soilFactor)
	reqP := math.Max(0, in.ExpectedYield*extractionP-in.SoilP*soilFactor*availableP)
	reqK := math.Max(0, in.ExpectedYield*extractionK-in.SoilK*soilFactor*availableK)

	dose := math.Max(perGrade(reqN, grade[0]), math.Max(perGrade(reqP, grade[1]), perGrade(reqK, grade[2])))
	return &FertilizationResult{DosePerHa: round1(dose), DoseTotal: round1(dose * in.Hectares)}, nil
}

func perGrade(required, fraction float64) float64 {
	if fraction <= 0 {
		return 0
	}
	return required / fraction
}

func parseFormula(formula string) ([3]float64, error) {
	var grade [3]float64
	parts := strings.Split(formula, "-")
	if len(parts) != 3 {
		return grade, fmt.Errorf("formula must have three parts")
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || v > 100 {
			return grade, fmt.Errorf("invalid grade %q", p)
		}
		grade[i] = v / 100
	}
	return grade, nil
}

// IrrigationInput is the irrigation scheduling request
type IrrigationInput struct {
	ET0        float64 `json:"et0"`
	Kc         float64 `json:"kc"`
	Efficiency float64 `json:"efficiency"`
	Frequency  int     `json:"frequency_days"`
}

// IrrigationResult holds depths in mm and the event volume in m3/ha
type IrrigationResult struct {
	DailyDepth  float64 `json:"daily_depth"`
	EventDepth  float64 `json:"event_depth"`
	EventVolume float64 `json:"event_volume"`
}

// Irrigation computes the gross depth and volume of one irrigation event
func Irrigation(in IrrigationInput) (*IrrigationResult, error) {
	verr := &estimator.ValidationError{}
	if in.ET0 < 0 {
		verr.Add("et0", "must not be negative", in.ET0, ">= 0")
	}
	if in.Efficiency <= 0 || in.Efficiency > 1 {
		verr.Add("efficiency", "out of range", in.Efficiency, "(0, 1]")
	}
	if in.Frequency < 1 {
		verr.Add("frequency_days", "out of range", in.Frequency, ">= 1")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	daily := in.ET0 * in.Kc
	event := daily * float64(in.Frequency) / in.Efficiency
	return &IrrigationResult{
		DailyDepth:  round1(daily),
		EventDepth:  round1(event),
		EventVolume: round1(event * 10),
	}, nil
}

// ROIInput is the simple investment return request
type ROIInput struct {
	Investment   float64 `json:"investment"`
	AnnualProfit float64 `json:"annual_profit"`
}

// ROIResult carries the annual ROI percentage and payback years. Payback is
// nil unless both investment and profit are positive.
type ROIResult struct {
	ROI     float64  `json:"roi"`
	Payback *float64 `json:"payback,omitempty"`
}

// SimpleROI relates one year of profit to the investment
func SimpleROI(in ROIInput) (*ROIResult, error) {
	if in.Investment < 0 {
		verr := &estimator.ValidationError{}
		verr.Add("investment", "must not be negative", in.Investment, ">= 0")
		return nil, verr
	}
	res := &ROIResult{}
	if in.Investment > 0 {
		res.ROI = round1(in.AnnualProfit / in.Investment * 100)
	}
	if in.Investment > 0 && in.AnnualProfit > 0 {
		p := round1(in.Investment / in.AnnualProfit)
		res.Payback = &p
	}
	return res, nil
}

// SeedingInput is the planting quantity request
type SeedingInput struct {
	Density  float64 `json:"density"`
	Survival float64 `json:"survival"`
}

// SeedingResult is the number of plants to establish the target density
type SeedingResult struct {
	Plants int `json:"plants"`
}

// Seeding inflates the target density by the expected survival rate
func Seeding(in SeedingInput) (*SeedingResult, error) {
	verr := &estimator.ValidationError{}
	if in.Density <= 0 {
		verr.Add("density", "must be positive", in.Density, "> 0")
	}
	if in.Survival <= 0 || in.Survival > 1 {
		verr.Add("survival", "out of range", in.Survival, "(0, 1]")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &SeedingResult{Plants: int(math.Round(in.Density / in.Survival))}, nil
}

// WaterBalanceInput holds period totals in mm
type WaterBalanceInput struct {
	Precipitation float64 `json:"precipitation"`
	ETc           float64 `json:"etc"`
	Infiltration  float64 `json:"infiltration"`
}

// WaterBalanceResult is the period balance in mm. Negative means deficit.
type WaterBalanceResult struct {
	Balance float64 `json:"balance"`
	Deficit bool    `json:"deficit"`
}

// WaterBalance subtracts crop demand and deep infiltration from rainfall
func WaterBalance(in WaterBalanceInput) *WaterBalanceResult {
	b := round1(in.Precipitation - in.ETc - in.Infiltration)
	return &WaterBalanceResult{Balance: b, Deficit: b < 0}
}
