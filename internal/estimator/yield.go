package estimator

import "agropredict/internal/model"

// Bounds of the regional variance multiplier
const (
	RegionalFactorMin = 0.9
	RegionalFactorMax = 1.1
)

// Factors is the breakdown of the multiplicative yield model
type Factors struct {
	Age           float64 `json:"age"`
	Density       float64 `json:"density"`
	Irrigation    float64 `json:"irrigation"`
	Soil          float64 `json:"soil"`
	Fertilization float64 `json:"fertilization"`
	Regional      float64 `json:"regional"`
}

// Product multiplies every factor in model order
func (f Factors) Product() float64 {
	return f.Age * f.Density * f.Irrigation * f.Soil * f.Fertilization * f.Regional
}

// AgeFactor models orchard ramp-up, peak maturity and gradual decline
func AgeFactor(years int) float64 {
	switch {
	case years <= 3:
		return 0.3
	case years <= 7:
		return 0.8
	case years <= 15:
		return 1.0
	default:
		return 0.9
	}
}

// DensityFactor penalizes sparse and overcrowded plantations
func DensityFactor(treesPerHa int) float64 {
	switch {
	case treesPerHa < 200:
		return 0.85
	case treesPerHa <= 400:
		return 1.0
	default:
		return 0.95
	}
}

// IrrigationFactor returns the yield multiplier of an irrigation method.
// Unknown methods are neutral.
func IrrigationFactor(i model.Irrigation) float64 {
	switch i {
	case model.IrrigationDrip:
		return 1.10
	case model.IrrigationMicroSprinkler:
		return 1.05
	case model.IrrigationSprinkler:
		return 0.95
	case model.IrrigationGravity:
		return 0.85
	default:
		return 1.0
	}
}

// SoilFactor returns the yield multiplier of a soil texture.
// Unknown textures are neutral.
func SoilFactor(s model.Soil) float64 {
	switch s {
	case model.SoilLoam:
		return 1.10
	case model.SoilSilty:
		return 1.00
	case model.SoilClay:
		return 0.95
	case model.SoilSandy:
		return 0.90
	default:
		return 1.0
	}
}

// FertilizationFactor returns the yield multiplier of a fertilization regime.
// Unknown regimes are neutral.
func FertilizationFactor(f model.Fertilization) float64 {
	switch f {
	case model.FertilizationMixed:
		return 1.15
	case model.FertilizationChemical:
		return 1.05
	case model.FertilizationOrganic:
		return 1.00
	case model.FertilizationNone:
		return 0.80
	default:
		return 1.0
	}
}

// FactorsFor looks up the deterministic factors of req and applies regional
func FactorsFor(req Request, regional float64) Factors {
	return Factors{
		Age:           AgeFactor(req.TreeAge),
		Density:       DensityFactor(req.Density),
		Irrigation:    IrrigationFactor(req.Irrigation),
		Soil:          SoilFactor(req.Soil),
		Fertilization: FertilizationFactor(req.Fertilization),
		Regional:      regional,
	}
}

// YieldPerHectare computes tons per hectare for a base yield
func YieldPerHectare(baseYield float64, req Request, regional float64) float64 {
	return baseYield * FactorsFor(req, regional).Product()
}

// DrawRegionalFactor draws the regional variance multiplier from src
func DrawRegionalFactor(src Source) float64 {
	return uniform(src, RegionalFactorMin, RegionalFactorMax)
}
