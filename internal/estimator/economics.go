package estimator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"agropredict/internal/model"
)

// ProjectionYears is the horizon of the per-request economic projection
const ProjectionYears = 5

var hundred = decimal.NewFromInt(100)

// Economics is the investment projection of a cultivation. All fields are
// nil when the species has no price data.
type Economics struct {
	Investment *float64 `json:"investment,omitempty"`
	Revenue    *float64 `json:"revenue,omitempty"`
	ROI        *float64 `json:"roi,omitempty"`
}

// Available reports whether the projection carries values
func (e Economics) Available() bool {
	return e.Investment != nil
}

// Investment is planting cost plus maintenance over years, in currency units
func Investment(sp model.Species, hectares float64, years int) float64 {
	ha := decimal.NewFromFloat(hectares)
	planting := decimal.NewFromFloat(sp.PlantingCostPerHa).Mul(ha)
	maintenance := decimal.NewFromFloat(sp.MaintenanceCostPerHa).Mul(ha).Mul(decimal.NewFromInt(int64(years)))
	return planting.Add(maintenance).InexactFloat64()
}

// Revenue is the sales value of yieldPerHa over years
func Revenue(yieldPerHa, hectares, pricePerTon float64, years int) float64 {
	return decimal.NewFromFloat(yieldPerHa).
		Mul(decimal.NewFromFloat(hectares)).
		Mul(decimal.NewFromFloat(pricePerTon)).
		Mul(decimal.NewFromInt(int64(years))).
		InexactFloat64()
}

// ROI returns the return on investment as a percentage. A non-positive
// investment yields 0.
func ROI(revenue, investment float64) float64 {
	inv := decimal.NewFromFloat(investment)
	if !inv.IsPositive() {
		return 0
	}
	return decimal.NewFromFloat(revenue).Sub(inv).Div(inv).Mul(hundred).InexactFloat64()
}

// Analyze projects investment, revenue and ROI over ProjectionYears
func Analyze(sp model.Species, yieldPerHa, hectares float64) Economics {
	if !sp.HasEconomicData() {
		return Economics{}
	}
	investment := Investment(sp, hectares, ProjectionYears)
	revenue := Revenue(yieldPerHa, hectares, sp.PricePerTon, ProjectionYears)
	roi := ROI(revenue, investment)
	return Economics{Investment: &investment, Revenue: &revenue, ROI: &roi}
}

// ProjectROI is the catalog-level what-if projection over years using the
// species base yield. It returns 0 when price or base yield is missing.
func ProjectROI(sp model.Species, hectares float64, years int) float64 {
	if sp.PricePerTon == 0 || sp.BaseYield == 0 || years <= 0 {
		return 0
	}
	investment := Investment(sp, hectares, years)
	revenue := Revenue(sp.BaseYield, hectares, sp.PricePerTon, years)
	if investment <= 0 {
		return 0
	}
	return decimal.NewFromFloat(ROI(revenue, investment)).Round(2).InexactFloat64()
}

// PaybackState qualifies a payback period
type PaybackState string

const (
	PaybackRecovered    PaybackState = "recovered"
	PaybackNotRecovered PaybackState = "not_recovered"
	PaybackUnavailable  PaybackState = "unavailable"
)

// Payback is the time needed to recover an investment from net annual gain
type Payback struct {
	State PaybackState `json:"state"`
	Years float64      `json:"years,omitempty"`
}

// String renders the payback the way reports display it
func (p Payback) String() string {
	switch p.State {
	case PaybackRecovered:
		return fmt.Sprintf("%.1f years", p.Years)
	case PaybackNotRecovered:
		return "not recovered"
	default:
		return "unavailable"
	}
}

// PaybackPeriod divides the investment by the annual net gain, where the
// gain is one year of revenue minus one year of maintenance
func PaybackPeriod(sp model.Species, investment, yieldPerHa *float64, hectares float64) Payback {
	if investment == nil || *investment == 0 || yieldPerHa == nil || *yieldPerHa == 0 {
		return Payback{State: PaybackUnavailable}
	}
	annualRevenue := decimal.NewFromFloat(Revenue(*yieldPerHa, hectares, sp.PricePerTon, 1))
	annualCost := decimal.NewFromFloat(sp.MaintenanceCostPerHa).Mul(decimal.NewFromFloat(hectares))
	gain := annualRevenue.Sub(annualCost)
	if !gain.IsPositive() {
		return Payback{State: PaybackNotRecovered}
	}
	years := decimal.NewFromFloat(*investment).Div(gain).InexactFloat64()
	return Payback{State: PaybackRecovered, Years: years}
}
