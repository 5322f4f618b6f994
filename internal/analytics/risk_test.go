package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
)

func TestMarginUtilizationAlert(t *testing.T) {
	alert := MarginUtilizationAlert(domain.MarginSummary{Used: 70000, Total: 100000}, DefaultUtilizationThreshold)
	assert.InDelta(t, 0.7, alert.Utilization, 1e-9)
	assert.False(t, alert.Alert, "utilization equal to threshold does not alert")
	assert.Contains(t, alert.Message, "OK")

	alert = MarginUtilizationAlert(domain.MarginSummary{Used: 90000, Total: 100000}, DefaultUtilizationThreshold)
	assert.True(t, alert.Alert)
	assert.Contains(t, alert.Message, "HIGH")
	assert.Contains(t, alert.Message, "90.00%")
}

func TestMarginUtilizationAlertZeroTotal(t *testing.T) {
	alert := MarginUtilizationAlert(domain.MarginSummary{Used: 50000, Total: 0}, DefaultUtilizationThreshold)
	assert.Zero(t, alert.Utilization)
	assert.False(t, alert.Alert)
}

func TestStressTest(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "RELIANCE", MarketValue: 100000, PnL: 5000},
		{Symbol: "TCS", MarketValue: 80000, PnL: -2000},
	}
	result := StressTest(positions, 0.05)

	require.Len(t, result.SimulatedPositions, 2)
	assert.InDelta(t, 95000.0, result.SimulatedPositions[0].SimulatedMarketValue, 1e-9)
	assert.InDelta(t, 0.0, result.SimulatedPositions[0].SimulatedPnL, 1e-9)
	assert.InDelta(t, 76000.0, result.SimulatedPositions[1].SimulatedMarketValue, 1e-9)
	assert.InDelta(t, -6000.0, result.SimulatedPositions[1].SimulatedPnL, 1e-9)
	assert.InDelta(t, -6000.0, result.TotalSimulatedPnL, 1e-9)
}

func TestStressTestEmpty(t *testing.T) {
	result := StressTest(nil, 0.05)
	assert.Empty(t, result.SimulatedPositions)
	assert.Zero(t, result.TotalSimulatedPnL)
}

func TestValueAtRisk(t *testing.T) {
	positions := []domain.Position{
		{PnL: 5000},
		{PnL: -2000},
	}
	result := ValueAtRisk(positions, 0.95)
	// Population stddev of {5000, -2000} is 3500; VaR doubles it.
	assert.InDelta(t, 7000.0, result.VaR, 1e-6)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestValueAtRiskNoPositions(t *testing.T) {
	result := ValueAtRisk(nil, 0.95)
	assert.Zero(t, result.VaR)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestGreeksDeterministicPerSymbol(t *testing.T) {
	pos := domain.Position{Symbol: "RELIANCE", Quantity: 75}

	first := PositionGreeksFor(pos)
	second := PositionGreeksFor(pos)
	assert.Equal(t, first, second)

	assert.GreaterOrEqual(t, first.Delta, -1.0)
	assert.LessOrEqual(t, first.Delta, 1.0)
	assert.GreaterOrEqual(t, first.Gamma, 0.0)
	assert.LessOrEqual(t, first.Gamma, 0.2)
	assert.LessOrEqual(t, first.Theta, 0.0)
	assert.GreaterOrEqual(t, first.Theta, -0.1)
	assert.GreaterOrEqual(t, first.Vega, 0.0)
	assert.LessOrEqual(t, first.Vega, 1.0)

	other := PositionGreeksFor(domain.Position{Symbol: "TCS"})
	assert.NotEqual(t, first, other)
}

func TestPortfolioGreeksSums(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "RELIANCE", Quantity: 75},
		{Symbol: "TCS", Quantity: -50},
	}
	total := PortfolioGreeks(positions)
	per := PerPositionGreeks(positions)
	require.Len(t, per, 2)

	assert.InDelta(t, per[0].Delta+per[1].Delta, total.Delta, 1e-9)
	assert.InDelta(t, per[0].Vega+per[1].Vega, total.Vega, 1e-9)
	assert.Equal(t, "RELIANCE", per[0].Symbol)
	assert.Equal(t, 75, per[0].Quantity)
}
