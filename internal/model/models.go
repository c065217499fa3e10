package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Region represents an administrative region that groups communes
type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string   `gorm:"not null;size:100" json:"name"`
	Code      string   `gorm:"not null;size:10;uniqueIndex" json:"code"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Relationships
	Communes []Commune `gorm:"foreignKey:RegionID;constraint:OnDelete:CASCADE" json:"communes,omitempty"`
}

// TableName specifies the table name for Region
func (Region) TableName() string {
	return "regions"
}

// Commune represents a commune inside a region
type Commune struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RegionID  uint     `gorm:"not null;index" json:"region_id"`
	Name      string   `gorm:"not null;size:100" json:"name"`
	Code      string   `gorm:"not null;size:10;uniqueIndex" json:"code"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Relationships
	Region Region `gorm:"foreignKey:RegionID" json:"region,omitempty"`
}

// TableName specifies the table name for Commune
func (Commune) TableName() string {
	return "communes"
}

// Species represents a tree species with its yield and economic coefficients.
// Price and cost fields default to 0, meaning economic data is unavailable.
type Species struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code           string  `gorm:"not null;size:20;uniqueIndex" json:"code"`
	Name           string  `gorm:"not null;size:100" json:"name"`
	ScientificName string  `gorm:"size:100" json:"scientific_name"`
	BaseYield      float64 `gorm:"not null" json:"base_yield"` // tons per hectare

	PricePerTon          float64 `gorm:"not null;default:0" json:"price_per_ton"`
	PlantingCostPerHa    float64 `gorm:"not null;default:0" json:"planting_cost_per_ha"`
	MaintenanceCostPerHa float64 `gorm:"not null;default:0" json:"maintenance_cost_per_ha"`
	WaterPerTon          float64 `gorm:"not null;default:0" json:"water_per_ton"` // m3 per ton produced
}

// TableName specifies the table name for Species
func (Species) TableName() string {
	return "species"
}

// HasEconomicData reports whether the species carries a price
func (s Species) HasEconomicData() bool {
	return s.PricePerTon > 0
}

// Prediction holds the cultivation parameters of one estimate and, once
// completed, its computed results
type Prediction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SpeciesID uint `gorm:"not null;index:idx_prediction_species_status,priority:1" json:"species_id"`
	CommuneID uint `gorm:"not null;index" json:"commune_id"`

	// Cultivation parameters
	Hectares      float64       `gorm:"not null" json:"hectares"`
	TreeAge       int           `gorm:"not null" json:"tree_age"`
	Density       int           `gorm:"not null" json:"density"` // trees per hectare
	Irrigation    Irrigation    `gorm:"not null;size:20" json:"irrigation"`
	Soil          Soil          `gorm:"not null;size:20" json:"soil"`
	Fertilization Fertilization `gorm:"not null;size:20" json:"fertilization"`

	// Results, populated only when Status is completed
	YieldPerHa     *float64       `json:"yield_per_ha,omitempty"`
	YieldTotal     *float64       `json:"yield_total,omitempty"`
	Confidence     *int           `json:"confidence,omitempty"`
	WaterTotal     *float64       `json:"water_total,omitempty"`
	WaterPerHa     *float64       `json:"water_per_ha,omitempty"`
	Investment     *float64       `json:"investment,omitempty"`
	Revenue5Y      *float64       `gorm:"column:revenue_5y" json:"revenue_5y,omitempty"`
	ROI            *float64       `gorm:"column:roi" json:"roi,omitempty"`
	Factors        datatypes.JSON `json:"factors,omitempty"`
	Seed           uint64         `json:"seed"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	FailureMessage string         `gorm:"type:text" json:"failure_message,omitempty"`

	// Control
	Status Status `gorm:"not null;size:20;default:pending;index:idx_prediction_species_status,priority:2" json:"status"`

	// Relationships
	Species  Species   `gorm:"foreignKey:SpeciesID" json:"species,omitempty"`
	Commune  Commune   `gorm:"foreignKey:CommuneID" json:"commune,omitempty"`
	Analysis *Analysis `gorm:"foreignKey:PredictionID;constraint:OnDelete:CASCADE" json:"analysis,omitempty"`
}

// TableName specifies the table name for Prediction
func (Prediction) TableName() string {
	return "predictions"
}

// BeforeCreate hook to start every prediction in the pending state
func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}

// ClearResults empties every computed field
func (p *Prediction) ClearResults() {
	p.YieldPerHa = nil
	p.YieldTotal = nil
	p.Confidence = nil
	p.WaterTotal = nil
	p.WaterPerHa = nil
	p.Investment = nil
	p.Revenue5Y = nil
	p.ROI = nil
	p.Factors = nil
	p.CompletedAt = nil
	p.FailureMessage = ""
}

// IsCompleted reports whether the prediction holds computed results
func (p *Prediction) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// Analysis is the derived classification of a completed prediction.
// ResultStamp records the prediction's CompletedAt at analysis time.
type Analysis struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PredictionID         uint      `gorm:"not null;uniqueIndex" json:"prediction_id"`
	RiskCategory         string    `gorm:"not null;size:20" json:"risk_category"`
	RentabilityCategory  string    `gorm:"not null;size:20" json:"rentability_category"`
	Recommendation       string    `gorm:"type:text" json:"recommendation"`
	BestAlternativeID    *uint     `gorm:"column:best_alternative_id" json:"best_alternative_id,omitempty"`
	ResultStamp          time.Time `gorm:"not null" json:"result_stamp"`

	// Relationships
	BestAlternative *Species `gorm:"foreignKey:BestAlternativeID;constraint:OnDelete:SET NULL" json:"best_alternative,omitempty"`
}

// TableName specifies the table name for Analysis
func (Analysis) TableName() string {
	return "analyses"
}

// IsStaleFor reports whether the analysis was computed for a different
// completion of the prediction
func (a *Analysis) IsStaleFor(p *Prediction) bool {
	if p.CompletedAt == nil {
		return true
	}
	return !a.ResultStamp.Equal(*p.CompletedAt)
}
