// Package recommend runs the staged recommendation workflow: portfolio
// analysis, opportunity scanning, sentiment, metrics, filtering, generation,
// self-review, and ranking.
package recommend

import (
	"github.com/sidkap/optadvisor/internal/domain"
)

// Stage names the workflow phases in execution order.
type Stage string

const (
	StageGathering        Stage = "gathering"
	StageScanning         Stage = "scanning"
	StageSentiment        Stage = "sentiment_analysis"
	StageMetrics          Stage = "metrics_calculation"
	StageFiltering        Stage = "filtering"
	StageGeneration       Stage = "generation"
	StageSelfReview       Stage = "self_review"
	StageRanking          Stage = "ranking"
	StageDone             Stage = "done"
	StageFailedTerminally Stage = "failed"
)

// PortfolioNotes holds the observations of the portfolio-analysis stage that
// later stages consult.
type PortfolioNotes struct {
	LowExposureSectors []string          `json:"low_exposure_sectors"`
	HighRiskPositions  []domain.Position `json:"high_risk_positions"`
	AvailableMargin    float64           `json:"available_margin"`
}

// RunState carries the workflow state across stages. A stage that fails
// records its error string and the run aborts; partial results accumulated
// before the failure stay readable.
type RunState struct {
	RunID                string                              `json:"run_id"`
	Stage                Stage                               `json:"stage"`
	Portfolio            domain.Portfolio                    `json:"portfolio"`
	Filters              domain.FilterConstraints            `json:"filters"`
	ScopeStocks          []string                            `json:"scope_stocks"`
	Notes                PortfolioNotes                      `json:"notes"`
	Opportunities        []domain.TradeOpportunity           `json:"opportunities"`
	MarketAnalyses       map[string]domain.SentimentAnalysis `json:"market_analyses"`
	Recommendations      []domain.TradeRecommendation        `json:"recommendations"`
	FinalRecommendations []domain.TradeRecommendation        `json:"final_recommendations"`
	ConfidenceScores     map[string]float64                  `json:"confidence_scores"`
	Error                string                              `json:"error,omitempty"`
}

// DefaultFilters are the engine thresholds applied when the caller passes a
// zero FilterConstraints.
var DefaultFilters = domain.FilterConstraints{
	MinSSR:     0.02,
	MinPremium: 0.05,
	MinROM:     0.05,
	MaxRisk:    7,
}
