package model

// Status is the lifecycle state of a prediction
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Statuses lists every lifecycle state
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusError}

// Valid reports whether s is a known lifecycle state
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Irrigation is the irrigation method of a cultivation
type Irrigation string

const (
	IrrigationDrip           Irrigation = "drip"
	IrrigationSprinkler      Irrigation = "sprinkler"
	IrrigationGravity        Irrigation = "gravity"
	IrrigationMicroSprinkler Irrigation = "micro-sprinkler"
)

// IrrigationMethods lists the accepted irrigation methods
var IrrigationMethods = []Irrigation{IrrigationDrip, IrrigationSprinkler, IrrigationGravity, IrrigationMicroSprinkler}

// Known reports whether i is one of the accepted irrigation methods
func (i Irrigation) Known() bool {
	for _, v := range IrrigationMethods {
		if i == v {
			return true
		}
	}
	return false
}

// Soil is the soil texture of a cultivation
type Soil string

const (
	SoilClay  Soil = "clay"
	SoilSandy Soil = "sandy"
	SoilLoam  Soil = "loam"
	SoilSilty Soil = "silty"
)

// SoilTypes lists the accepted soil textures
var SoilTypes = []Soil{SoilClay, SoilSandy, SoilLoam, SoilSilty}

// Known reports whether s is one of the accepted soil textures
func (s Soil) Known() bool {
	for _, v := range SoilTypes {
		if s == v {
			return true
		}
	}
	return false
}

// Fertilization is the fertilization regime of a cultivation
type Fertilization string

const (
	FertilizationOrganic  Fertilization = "organic"
	FertilizationChemical Fertilization = "chemical"
	FertilizationMixed    Fertilization = "mixed"
	FertilizationNone     Fertilization = "none"
)

// FertilizationRegimes lists the accepted fertilization regimes
var FertilizationRegimes = []Fertilization{FertilizationOrganic, FertilizationChemical, FertilizationMixed, FertilizationNone}

// Known reports whether f is one of the accepted fertilization regimes
func (f Fertilization) Known() bool {
	for _, v := range FertilizationRegimes {
		if f == v {
			return true
		}
	}
	return false
}
