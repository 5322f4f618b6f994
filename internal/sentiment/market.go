package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
)

// MarketAnalyst derives a per-symbol sentiment verdict from technical
// indicators. It compares the last price against the 20-day EMA: more than
// 5% above reads Cautiously Positive, more than 5% below Cautiously
// Negative, otherwise neutral. Confidence starts at 7.0 and rises with the
// amount of data the indicator snapshot carried.
type MarketAnalyst struct {
	provider domain.MarketDataProvider
	logger   *slog.Logger
}

// NewMarketAnalyst returns an indicator-driven analyst.
func NewMarketAnalyst(provider domain.MarketDataProvider, logger *slog.Logger) *MarketAnalyst {
	return &MarketAnalyst{
		provider: provider,
		logger:   logger.With(slog.String("component", "sentiment.market")),
	}
}

// AnalyzeSentiment implements domain.SentimentAnalyst.
func (m *MarketAnalyst) AnalyzeSentiment(ctx context.Context, symbol string) (domain.SentimentAnalysis, error) {
	indicators, err := m.provider.MarketIndicators(ctx, symbol)
	if err != nil {
		return domain.SentimentAnalysis{}, fmt.Errorf("sentiment: analyze %s: %w", symbol, err)
	}

	verdict := classify(indicators.Values)
	drivers := keyDrivers(indicators.Values)

	return domain.SentimentAnalysis{
		Symbol:     symbol,
		Sentiment:  verdict,
		Confidence: confidenceScore(indicators.Values),
		KeyDrivers: drivers,
		Summary: fmt.Sprintf("%s shows %s sentiment with key drivers including %s.",
			symbol, strings.ToLower(verdict), strings.Join(firstN(drivers, 2), ", ")),
	}, nil
}

func classify(values map[string]float64) string {
	price, okPrice := values["current_price"]
	ema, okEMA := values["ema_20"]
	if !okPrice || !okEMA || ema == 0 {
		return "neutral"
	}
	switch {
	case price > ema*1.05:
		return "Cautiously Positive"
	case price < ema*0.95:
		return "Cautiously Negative"
	default:
		return "neutral"
	}
}

// confidenceScore starts at 7.0 and adds 0.5 for price data, 0.5 for trend
// data, and 0.3 for volume data, capped at 10.
func confidenceScore(values map[string]float64) float64 {
	score := 7.0
	if _, ok := values["current_price"]; ok {
		score += 0.5
	}
	if _, ok := values["ema_20"]; ok {
		score += 0.5
	}
	if _, ok := values["volume"]; ok {
		score += 0.3
	}
	if score > 10 {
		score = 10
	}
	return score
}

func keyDrivers(values map[string]float64) []string {
	var drivers []string
	if _, ok := values["ema_20"]; ok {
		drivers = append(drivers, "Technical momentum above key levels")
	}
	if _, ok := values["volume"]; ok {
		drivers = append(drivers, "Sustained trading volume")
	}
	if len(drivers) == 0 {
		drivers = []string{"Market momentum", "Sector strength"}
	}
	return drivers
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
