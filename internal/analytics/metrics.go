// Package analytics computes portfolio and position metrics: return on
// margin, spot-strike ratio, risk grouping, sector aggregation, margin
// alerts, stress testing, and placeholder Greeks.
package analytics

// Risk group labels returned by RiskGroup.
const (
	RiskGroupLow    = "Low Risk"
	RiskGroupMedium = "Medium Risk"
	RiskGroupHigh   = "High Risk"
)

// ROM is return on margin as a percentage. Non-positive margin yields 0.
func ROM(premiumCollected, marginUsed float64) float64 {
	if marginUsed <= 0 {
		return 0
	}
	return (premiumCollected / marginUsed) * 100
}

// SSR is the spot-strike ratio as a percentage of spot. Non-positive spot
// yields 0.
func SSR(spotPrice, strikePrice float64) float64 {
	if spotPrice <= 0 {
		return 0
	}
	return ((spotPrice - strikePrice) / spotPrice) * 100
}

// ROI mirrors ROM; both express premium collected per unit margin.
func ROI(premiumCollected, marginUsed float64) float64 {
	return ROM(premiumCollected, marginUsed)
}

// RewardRiskRatio is premium collected per unit of risk indicator.
// Non-positive risk yields 0.
func RewardRiskRatio(premiumCollected float64, riskIndicator int) float64 {
	if riskIndicator <= 0 {
		return 0
	}
	return premiumCollected / float64(riskIndicator)
}

// RiskGroup buckets a 1-10 risk indicator into three labels.
func RiskGroup(riskIndicator int) string {
	switch {
	case riskIndicator <= 3:
		return RiskGroupLow
	case riskIndicator <= 6:
		return RiskGroupMedium
	default:
		return RiskGroupHigh
	}
}

// MarginEfficiency is premium collected per unit margin, unscaled.
func MarginEfficiency(premiumCollected, marginUsed float64) float64 {
	if marginUsed <= 0 {
		return 0
	}
	return premiumCollected / marginUsed
}
