package estimator

import "fmt"

// Bounds of the reliability score
const (
	ConfidenceBase = 85
	ConfidenceMin  = 70
	ConfidenceMax  = 95
)

// Risk categories, from safest to riskiest
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

// Rentability categories
const (
	RentabilityVeryHigh = "Very High"
	RentabilityHigh     = "High"
	RentabilityMedium   = "Medium"
	RentabilityLow      = "Low"
	RentabilityNegative = "Negative"
	RentabilityNoData   = "No data"
)

// DrawConfidence draws the reliability score from src, truncated to an
// integer and clamped to [ConfidenceMin, ConfidenceMax]
func DrawConfidence(src Source) int {
	c := int(ConfidenceBase + uniform(src, -15, 10))
	return min(ConfidenceMax, max(ConfidenceMin, c))
}

// RiskCategory classifies an investment. Missing values count as 0.
func RiskCategory(roi *float64, confidence *int) string {
	r := valueOr(roi)
	c := 0
	if confidence != nil {
		c = *confidence
	}
	switch {
	case r >= 30 && c >= 85:
		return RiskLow
	case r >= 15 && c >= 75:
		return RiskMedium
	case r >= 0 && c >= 65:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// RentabilityCategory classifies ROI alone
func RentabilityCategory(roi *float64) string {
	if roi == nil {
		return RentabilityNoData
	}
	switch r := *roi; {
	case r >= 50:
		return RentabilityVeryHigh
	case r >= 30:
		return RentabilityHigh
	case r >= 15:
		return RentabilityMedium
	case r >= 0:
		return RentabilityLow
	default:
		return RentabilityNegative
	}
}

// Recommendation renders the advice sentence of an ROI band
func Recommendation(roi *float64) string {
	r := valueOr(roi)
	switch {
	case r >= 50:
		return fmt.Sprintf("Excellent opportunity: ROI %.1f%%.", r)
	case r >= 30:
		return fmt.Sprintf("Good opportunity: ROI %.1f%%.", r)
	case r >= 15:
		return fmt.Sprintf("Moderate opportunity: ROI %.1f%%.", r)
	case r >= 0:
		return fmt.Sprintf("Low return: ROI %.1f%%.", r)
	default:
		return fmt.Sprintf("Not recommended: negative ROI (%.1f%%).", r)
	}
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
