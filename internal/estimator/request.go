package estimator

import (
	"fmt"
	"strings"

	"agropredict/internal/model"
)

// Accepted input ranges
const (
	MinHectares = 0.1
	MinTreeAge  = 1
	MaxTreeAge  = 100
	MinDensity  = 50
	MaxDensity  = 2000
)

// Request holds the cultivation parameters of one estimate
type Request struct {
	SpeciesID     uint                `json:"species_id"`
	CommuneID     uint                `json:"commune_id"`
	Hectares      float64             `json:"hectares"`
	TreeAge       int                 `json:"tree_age"`
	Density       int                 `json:"density"`
	Irrigation    model.Irrigation    `json:"irrigation"`
	Soil          model.Soil          `json:"soil"`
	Fertilization model.Fertilization `json:"fertilization"`
}

// FromPrediction extracts the cultivation parameters of a stored prediction
func FromPrediction(p *model.Prediction) Request {
	return Request{
		SpeciesID:     p.SpeciesID,
		CommuneID:     p.CommuneID,
		Hectares:      p.Hectares,
		TreeAge:       p.TreeAge,
		Density:       p.Density,
		Irrigation:    p.Irrigation,
		Soil:          p.Soil,
		Fertilization: p.Fertilization,
	}
}

// FieldError is a single rejected input field
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Actual   any    `json:"actual,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// ValidationError collects every rejected field of a request
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid cultivation request: %s", strings.Join(names, ", "))
}

// Add appends a rejected field
func (e *ValidationError) Add(field, message string, actual any, expected string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message, Actual: actual, Expected: expected})
}

// Err returns nil when no field was rejected
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks ranges and enumerations. References to species and
// commune are resolved against the catalog by the caller.
func (r Request) Validate() *ValidationError {
	verr := &ValidationError{}
	if r.SpeciesID == 0 {
		verr.Add("species_id", "species is required", r.SpeciesID, "catalog species id")
	}
	if r.CommuneID == 0 {
		verr.Add("commune_id", "commune is required", r.CommuneID, "catalog commune id")
	}
	if r.Hectares <= MinHectares {
		verr.Add("hectares", "hectares out of range", r.Hectares, fmt.Sprintf("> %.1f", MinHectares))
	}
	if r.TreeAge < MinTreeAge || r.TreeAge > MaxTreeAge {
		verr.Add("tree_age", "tree age out of range", r.TreeAge, fmt.Sprintf("%d-%d", MinTreeAge, MaxTreeAge))
	}
	if r.Density < MinDensity || r.Density > MaxDensity {
		verr.Add("density", "density out of range", r.Density, fmt.Sprintf("%d-%d", MinDensity, MaxDensity))
	}
	if !r.Irrigation.Known() {
		verr.Add("irrigation", "unknown irrigation method", string(r.Irrigation), joinEnum(model.IrrigationMethods))
	}
	if !r.Soil.Known() {
		verr.Add("soil", "unknown soil type", string(r.Soil), joinEnum(model.SoilTypes))
	}
	if !r.Fertilization.Known() {
		verr.Add("fertilization", "unknown fertilization", string(r.Fertilization), joinEnum(model.FertilizationRegimes))
	}
	return verr
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}
