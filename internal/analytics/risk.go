package analytics

import (
	"fmt"
	"math"

	"github.com/sidkap/optadvisor/internal/domain"
)

// DefaultUtilizationThreshold triggers the margin alert at 70% utilization.
const DefaultUtilizationThreshold = 0.7

// MarginAlert reports whether margin utilization breached a threshold.
type MarginAlert struct {
	Utilization float64 `json:"utilization"`
	Threshold   float64 `json:"threshold"`
	Alert       bool    `json:"alert"`
	Message     string  `json:"message"`
}

// MarginUtilizationAlert compares used/total margin against the threshold.
// A zero total reads as zero utilization, not an error.
func MarginUtilizationAlert(m domain.MarginSummary, threshold float64) MarginAlert {
	utilization := 0.0
	if m.Total != 0 {
		utilization = m.Used / m.Total
	}
	alert := utilization > threshold
	status := "OK"
	if alert {
		status = "HIGH"
	}
	return MarginAlert{
		Utilization: utilization,
		Threshold:   threshold,
		Alert:       alert,
		Message:     fmt.Sprintf("Margin utilization is %s: %.2f%%", status, utilization*100),
	}
}

// StressedPosition is one position after a simulated market drop.
type StressedPosition struct {
	Position             domain.Position `json:"position"`
	SimulatedMarketValue float64         `json:"simulated_market_value"`
	SimulatedPnL         float64         `json:"simulated_pnl"`
}

// StressResult is the outcome of a uniform drop simulation.
type StressResult struct {
	DropPct            float64            `json:"drop_pct"`
	SimulatedPositions []StressedPosition `json:"simulated_positions"`
	TotalSimulatedPnL  float64            `json:"total_simulated_pnl"`
}

// StressTest applies a uniform percentage drop to every position's market
// value and restates P&L under the drop.
func StressTest(positions []domain.Position, dropPct float64) StressResult {
	result := StressResult{
		DropPct:            dropPct,
		SimulatedPositions: make([]StressedPosition, 0, len(positions)),
	}
	for _, pos := range positions {
		newMV := pos.MarketValue * (1 - dropPct)
		newPnL := pos.PnL - (pos.MarketValue - newMV)
		result.SimulatedPositions = append(result.SimulatedPositions, StressedPosition{
			Position:             pos,
			SimulatedMarketValue: newMV,
			SimulatedPnL:         newPnL,
		})
		result.TotalSimulatedPnL += newPnL
	}
	return result
}

// VaRResult is a value-at-risk estimate at a confidence level.
type VaRResult struct {
	VaR        float64 `json:"var"`
	Confidence float64 `json:"confidence"`
}

// ValueAtRisk estimates maximum expected loss as twice the population
// standard deviation of position P&L. This is a coarse placeholder, not a
// historical or parametric VaR.
func ValueAtRisk(positions []domain.Position, confidence float64) VaRResult {
	if len(positions) == 0 {
		return VaRResult{VaR: 0, Confidence: confidence}
	}
	var sum float64
	for _, pos := range positions {
		sum += pos.PnL
	}
	mean := sum / float64(len(positions))

	var variance float64
	for _, pos := range positions {
		d := pos.PnL - mean
		variance += d * d
	}
	variance /= float64(len(positions))

	return VaRResult{VaR: 2 * math.Sqrt(variance), Confidence: confidence}
}
