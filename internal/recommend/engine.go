package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sidkap/optadvisor/internal/domain"
)

const (
	lowExposureThreshold = 0.1
	highRiskThreshold    = 8
	optionsPerSymbol     = 10
	reviewBaseQuality    = 0.8
	reviewMinConfidence  = 6.0
	maxFinalRecs         = 5
)

// Engine executes the recommendation workflow against a market data
// provider and a sentiment analyst.
type Engine struct {
	provider domain.MarketDataProvider
	analyst  domain.SentimentAnalyst
	logger   *slog.Logger

	// OnStage, when set, is called after every stage transition with the
	// current state. Used by the server to stream run progress.
	OnStage func(state *RunState)
}

// NewEngine returns a workflow engine.
func NewEngine(provider domain.MarketDataProvider, analyst domain.SentimentAnalyst, logger *slog.Logger) *Engine {
	return &Engine{
		provider: provider,
		analyst:  analyst,
		logger:   logger.With(slog.String("component", "recommend")),
	}
}

// FindOpportunities runs all stages and returns the final ranked
// recommendations. Zero filters fall back to DefaultFilters; a nil scope
// means the caller's configured universe was empty and scanning is a no-op.
// On stage failure the returned state retains everything computed before
// the failing stage.
func (e *Engine) FindOpportunities(ctx context.Context, portfolio domain.Portfolio, filters domain.FilterConstraints, scopeStocks []string) (*RunState, error) {
	if filters == (domain.FilterConstraints{}) {
		filters = DefaultFilters
	}
	state := &RunState{
		RunID:            uuid.NewString(),
		Portfolio:        portfolio,
		Filters:          filters,
		ScopeStocks:      scopeStocks,
		MarketAnalyses:   map[string]domain.SentimentAnalysis{},
		ConfidenceScores: map[string]float64{},
	}
	e.logger.Info("starting opportunity analysis",
		slog.String("run_id", state.RunID),
		slog.Int("scope_stocks", len(scopeStocks)),
	)

	stages := []struct {
		stage Stage
		run   func(context.Context, *RunState) error
	}{
		{StageGathering, e.analyzePortfolio},
		{StageScanning, e.scanOpportunities},
		{StageSentiment, e.analyzeMarketSentiment},
		{StageMetrics, e.calculateMetrics},
		{StageFiltering, e.applyFilters},
		{StageGeneration, e.generateRecommendations},
		{StageSelfReview, e.selfReview},
		{StageRanking, e.rankRecommendations},
	}
	for _, s := range stages {
		state.Stage = s.stage
		e.emit(state)
		if err := s.run(ctx, state); err != nil {
			state.Error = fmt.Sprintf("recommendation workflow failed at %s: %v", s.stage, err)
			state.Stage = StageFailedTerminally
			e.emit(state)
			return state, fmt.Errorf("recommend: %s stage: %w", s.stage, err)
		}
	}

	state.Stage = StageDone
	e.emit(state)
	e.logger.Info("opportunity analysis complete",
		slog.String("run_id", state.RunID),
		slog.Int("recommendations", len(state.FinalRecommendations)),
	)
	return state, nil
}

func (e *Engine) emit(state *RunState) {
	if e.OnStage != nil {
		e.OnStage(state)
	}
}

// analyzePortfolio records low-exposure sectors, high-risk positions, and
// available margin for later stages.
func (e *Engine) analyzePortfolio(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	for sector, exposure := range state.Portfolio.SectorExposure {
		if exposure < lowExposureThreshold {
			state.Notes.LowExposureSectors = append(state.Notes.LowExposureSectors, sector)
		}
	}
	for _, pos := range state.Portfolio.Positions {
		if pos.RiskIndicator >= highRiskThreshold {
			state.Notes.HighRiskPositions = append(state.Notes.HighRiskPositions, pos)
		}
	}
	state.Notes.AvailableMargin = state.Portfolio.AvailableCash

	e.logger.Debug("portfolio analyzed",
		slog.Int("positions", len(state.Portfolio.Positions)),
		slog.Int("high_risk_positions", len(state.Notes.HighRiskPositions)),
	)
	return nil
}

// scanOpportunities fetches each scope stock's chain and quote, taking at
// most the first ten chain entries per symbol. Per-symbol fetch failures
// are logged and skipped.
func (e *Engine) scanOpportunities(ctx context.Context, state *RunState) error {
	for _, symbol := range state.ScopeStocks {
		if err := ctx.Err(); err != nil {
			return domain.ErrContextDone
		}
		chain, err := e.provider.OptionChain(ctx, symbol)
		if err != nil {
			e.logger.Warn("failed to scan opportunities for symbol",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		quote, err := e.provider.Quote(ctx, symbol)
		if err != nil {
			e.logger.Warn("failed to fetch quote for symbol",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(chain) > optionsPerSymbol {
			chain = chain[:optionsPerSymbol]
		}
		for _, opt := range chain {
			state.Opportunities = append(state.Opportunities, domain.TradeOpportunity{
				Symbol: symbol,
				Option: opt,
				Quote:  quote,
			})
		}
	}
	e.logger.Info("scanned opportunities",
		slog.Int("opportunities", len(state.Opportunities)),
		slog.Int("stocks", len(state.ScopeStocks)),
	)
	return nil
}

// analyzeMarketSentiment runs the analyst once per unique opportunity
// symbol. A failed analysis leaves that symbol without sentiment rather
// than aborting.
func (e *Engine) analyzeMarketSentiment(ctx context.Context, state *RunState) error {
	seen := map[string]bool{}
	for _, opp := range state.Opportunities {
		if seen[opp.Symbol] {
			continue
		}
		seen[opp.Symbol] = true

		if err := ctx.Err(); err != nil {
			return domain.ErrContextDone
		}
		analysis, err := e.analyst.AnalyzeSentiment(ctx, opp.Symbol)
		if err != nil {
			e.logger.Warn("failed to analyze sentiment for symbol",
				slog.String("symbol", opp.Symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		state.MarketAnalyses[opp.Symbol] = analysis
	}
	return nil
}

// calculateMetrics fills in ROM, SSR, and the risk indicator for every
// opportunity.
func (e *Engine) calculateMetrics(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	for i := range state.Opportunities {
		opp := &state.Opportunities[i]
		analysis, ok := state.MarketAnalyses[opp.Symbol]
		var analysisPtr *domain.SentimentAnalysis
		if ok {
			analysisPtr = &analysis
		}
		opp.ROM = opportunityROM(opp.Option)
		opp.SSR = opportunitySSR(opp.Option, opp.Quote)
		opp.RiskIndicator = riskIndicator(opp.Option, analysisPtr)
		opp.HasMetrics = true
	}
	return nil
}

// opportunityROM is premium over required margin as a percentage, capped at
// 100. Non-positive margin yields 0.
func opportunityROM(opt domain.OptionQuote) float64 {
	if opt.MarginRequired <= 0 {
		return 0
	}
	rom := (opt.Premium / opt.MarginRequired) * 100
	if rom > 100 {
		rom = 100
	}
	return rom
}

// opportunitySSR is the strike safety ratio as a percentage of spot,
// floored at 0. Non-positive spot yields 0.
func opportunitySSR(opt domain.OptionQuote, quote domain.Quote) float64 {
	if quote.LastPrice <= 0 {
		return 0
	}
	ssr := ((quote.LastPrice - opt.StrikePrice) / quote.LastPrice) * 100
	if ssr < 0 {
		ssr = 0
	}
	return ssr
}

// riskIndicator scores 1-10 from a base of 5: negative sentiment adds 2,
// positive subtracts 1, and a put adds 1.
func riskIndicator(opt domain.OptionQuote, analysis *domain.SentimentAnalysis) int {
	risk := 5
	if analysis != nil {
		if strings.Contains(analysis.Sentiment, "Negative") {
			risk += 2
		} else if strings.Contains(analysis.Sentiment, "Positive") {
			risk--
		}
	}
	if opt.OptionType == "PE" {
		risk++
	}
	if risk < 1 {
		risk = 1
	}
	if risk > 10 {
		risk = 10
	}
	return risk
}

// applyFilters keeps opportunities whose computed metrics clear the
// configured thresholds. Opportunities without metrics are dropped.
func (e *Engine) applyFilters(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	f := state.Filters
	var kept []domain.TradeOpportunity
	for _, opp := range state.Opportunities {
		if !opp.HasMetrics {
			continue
		}
		if opp.ROM >= f.MinROM &&
			opp.SSR >= f.MinSSR &&
			opp.Option.Premium >= f.MinPremium &&
			opp.RiskIndicator <= f.MaxRisk {
			kept = append(kept, opp)
		}
	}
	state.Opportunities = kept
	e.logger.Info("filtered opportunities", slog.Int("remaining", len(kept)))
	return nil
}

// generateRecommendations turns every surviving opportunity into a
// recommendation.
func (e *Engine) generateRecommendations(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	for _, opp := range state.Opportunities {
		rec := e.createRecommendation(opp, state)
		state.Recommendations = append(state.Recommendations, rec)
	}
	e.logger.Info("generated recommendations", slog.Int("count", len(state.Recommendations)))
	return nil
}

func (e *Engine) createRecommendation(opp domain.TradeOpportunity, state *RunState) domain.TradeRecommendation {
	analysis, hasAnalysis := state.MarketAnalyses[opp.Symbol]

	confidence := 7.0
	if hasAnalysis {
		confidence = analysis.Confidence
	}
	quantity := opp.Option.LotSize
	if quantity == 0 {
		quantity = 1
	}

	var analysisPtr *domain.SentimentAnalysis
	if hasAnalysis {
		analysisPtr = &analysis
	}
	return domain.TradeRecommendation{
		ID:                 uuid.NewString(),
		RecommendationType: recommendationType(opp, state.Portfolio),
		Symbol:             opp.Symbol,
		OptionType:         opp.Option.OptionType,
		StrikePrice:        opp.Option.StrikePrice,
		Expiry:             opp.Option.Expiry,
		Quantity:           quantity,
		PriceRange: domain.PriceRange{
			Low:  opp.Option.BidPrice,
			High: opp.Option.AskPrice,
		},
		Confidence:      confidence,
		TradeDriver:     buildTradeDriver(opp, analysisPtr),
		RiskAssessment:  fmt.Sprintf("Risk indicator: %d/10", opp.RiskIndicator),
		ExpectedROM:     opp.ROM,
		ExpectedSSR:     opp.SSR,
		Reasoning:       buildReasoning(opp, analysisPtr),
		PortfolioImpact: buildPortfolioImpact(opp, state.Portfolio),
	}
}

// recommendationType is a swap when the portfolio already holds the symbol
// at high risk, otherwise a new trade. Hedge detection is not implemented
// yet and never fires.
func recommendationType(opp domain.TradeOpportunity, portfolio domain.Portfolio) domain.RecommendationType {
	for _, pos := range portfolio.Positions {
		if pos.Symbol == opp.Symbol && pos.RiskIndicator >= highRiskThreshold {
			return domain.SwapTrade
		}
	}
	if shouldHedge(opp, portfolio) {
		return domain.HedgeTrade
	}
	return domain.NewTrade
}

func shouldHedge(opp domain.TradeOpportunity, portfolio domain.Portfolio) bool {
	return false
}

func buildTradeDriver(opp domain.TradeOpportunity, analysis *domain.SentimentAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s posted strong financial performance and positive sentiment\n", opp.Symbol)
	b.WriteString("- Currently the portfolio has relatively less exposure to this sector\n")
	fmt.Fprintf(&b, "- The trade is offering good ROM at %.1f%% and SSR of %.1f%%\n", opp.ROM, opp.SSR)
	b.WriteString("- Overall positive sentiments for the sector")
	if analysis != nil {
		fmt.Fprintf(&b, "\n- Market analyst confidence: %g/10", analysis.Confidence)
	}
	return b.String()
}

func buildReasoning(opp domain.TradeOpportunity, analysis *domain.SentimentAnalysis) string {
	sentiment := "Neutral"
	if analysis != nil {
		sentiment = analysis.Sentiment
	}
	var b strings.Builder
	fmt.Fprintf(&b, "This recommendation is based on comprehensive analysis of %s:\n\n", opp.Symbol)
	fmt.Fprintf(&b, "1. Technical Analysis: %s option with strike price %.0f\n", opp.Option.OptionType, opp.Option.StrikePrice)
	fmt.Fprintf(&b, "2. Market Sentiment: %s\n", sentiment)
	b.WriteString("3. Portfolio Diversification: Reduces concentration risk\n")
	b.WriteString("4. Risk-Reward Profile: Favorable ROM and SSR metrics\n")
	b.WriteString("5. Market Conditions: Aligned with current market trends")
	return b.String()
}

// stockSectors is the coarse symbol to sector mapping used for portfolio
// impact text. Unknown symbols fall under General.
var stockSectors = map[string]string{
	"ICICIBANK":  "Banking",
	"HDFCBANK":   "Banking",
	"INFY":       "IT",
	"TCS":        "IT",
	"RELIANCE":   "Oil & Gas",
	"TATAMOTORS": "Auto",
}

func buildPortfolioImpact(opp domain.TradeOpportunity, portfolio domain.Portfolio) string {
	sector, ok := stockSectors[opp.Symbol]
	if !ok {
		sector = "General"
	}
	exposure := portfolio.SectorExposure[sector]

	var b strings.Builder
	b.WriteString("Portfolio Impact Analysis:\n\n")
	fmt.Fprintf(&b, "1. Sector Exposure: %s exposure will increase from %.1f%% to %.1f%%\n",
		sector, exposure*100, (exposure+0.05)*100)
	b.WriteString("2. Risk Distribution: Improves overall portfolio risk profile\n")
	fmt.Fprintf(&b, "3. Margin Utilization: Uses %.0f of available margin\n", opp.Option.MarginRequired)
	b.WriteString("4. Diversification: Reduces concentration in existing positions")
	return b.String()
}

// selfReview rescales each recommendation's confidence by a quality score
// and keeps only those still at or above the confidence floor.
func (e *Engine) selfReview(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	var kept []domain.TradeRecommendation
	for _, rec := range state.Recommendations {
		quality := assessQuality(rec)
		rec.Confidence = rec.Confidence * quality
		if rec.Confidence > 10 {
			rec.Confidence = 10
		}
		if rec.Confidence >= reviewMinConfidence {
			kept = append(kept, rec)
			state.ConfidenceScores[rec.Symbol] = rec.Confidence
		}
	}
	state.Recommendations = kept
	e.logger.Info("self-review completed", slog.Int("high_quality", len(kept)))
	return nil
}

// assessQuality scores a recommendation 0 to 1 from a 0.8 base: high
// confidence adds 0.1, low confidence subtracts 0.1, strong ROM and SSR add
// 0.05 each.
func assessQuality(rec domain.TradeRecommendation) float64 {
	quality := reviewBaseQuality
	if rec.Confidence >= 8 {
		quality += 0.1
	} else if rec.Confidence <= 6 {
		quality -= 0.1
	}
	if rec.ExpectedROM >= 10 {
		quality += 0.05
	}
	if rec.ExpectedSSR >= 5 {
		quality += 0.05
	}
	if quality < 0 {
		quality = 0
	}
	if quality > 1 {
		quality = 1
	}
	return quality
}

// rankRecommendations orders by confidence then expected ROM, both
// descending, and keeps the top five.
func (e *Engine) rankRecommendations(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrContextDone
	}
	ranked := make([]domain.TradeRecommendation, len(state.Recommendations))
	copy(ranked, state.Recommendations)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].ExpectedROM > ranked[j].ExpectedROM
	})

	if len(ranked) > maxFinalRecs {
		ranked = ranked[:maxFinalRecs]
	}
	state.FinalRecommendations = ranked
	e.logger.Info("ranked recommendations", slog.Int("final", len(ranked)))
	return nil
}
