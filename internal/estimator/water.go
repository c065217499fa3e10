package estimator

// DefaultWaterPerHa is the fallback water use in m3/ha, keyed by species
// code, used when a species has no per-ton coefficient
var DefaultWaterPerHa = map[string]float64{
	"palto":    8000,
	"naranjo":  6500,
	"limonero": 6000,
	"manzano":  4500,
	"cerezo":   5500,
	"nogal":    7000,
	"almendro": 5000,
	"olivo":    3500,
	"durazno":  5000,
	"peral":    4800,
}

// UnknownSpeciesWaterPerHa applies to species missing from DefaultWaterPerHa
const UnknownSpeciesWaterPerHa = 5000.0

// Water is the estimated water use of a cultivation in m3
type Water struct {
	Total    float64 `json:"total"`
	PerHa    float64 `json:"per_ha"`
	Fallback bool    `json:"fallback"`
}

// EstimateWater derives water use from production when the species has a
// per-ton coefficient and falls back to the per-species table otherwise.
// hectares must be positive.
func EstimateWater(speciesCode string, waterPerTon, yieldTotal, hectares float64) Water {
	if yieldTotal > 0 && waterPerTon > 0 {
		total := yieldTotal * waterPerTon
		return Water{Total: total, PerHa: total / hectares}
	}
	perHa := FallbackWaterPerHa(speciesCode)
	return Water{Total: perHa * hectares, PerHa: perHa, Fallback: true}
}

// FallbackWaterPerHa returns the table value for a species code
func FallbackWaterPerHa(speciesCode string) float64 {
	if v, ok := DefaultWaterPerHa[speciesCode]; ok {
		return v
	}
	return UnknownSpeciesWaterPerHa
}
