package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	domain.MarketDataProvider

	chains    map[string][]domain.OptionQuote
	quotes    map[string]domain.Quote
	chainErrs map[string]error
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	if err := f.chainErrs[symbol]; err != nil {
		return nil, err
	}
	return f.chains[symbol], nil
}

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, errors.New("no quote")
	}
	return q, nil
}

type fakeAnalyst struct {
	analyses map[string]domain.SentimentAnalysis
	errs     map[string]error
}

func (f *fakeAnalyst) AnalyzeSentiment(ctx context.Context, symbol string) (domain.SentimentAnalysis, error) {
	if err := f.errs[symbol]; err != nil {
		return domain.SentimentAnalysis{}, err
	}
	if a, ok := f.analyses[symbol]; ok {
		return a, nil
	}
	return domain.SentimentAnalysis{}, errors.New("no analysis")
}

func goodOption(strike float64) domain.OptionQuote {
	return domain.OptionQuote{
		StrikePrice:    strike,
		OptionType:     "CE",
		Expiry:         "2026-09-25",
		BidPrice:       24.0,
		AskPrice:       26.0,
		LotSize:        250,
		Premium:        25.0,
		MarginRequired: 100.0,
	}
}

func TestFindOpportunitiesFullRun(t *testing.T) {
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{
			"RELIANCE": {goodOption(2400)},
		},
		quotes: map[string]domain.Quote{
			"RELIANCE": {Symbol: "RELIANCE", LastPrice: 2500},
		},
	}
	analyst := &fakeAnalyst{
		analyses: map[string]domain.SentimentAnalysis{
			"RELIANCE": {Symbol: "RELIANCE", Sentiment: "Positive", Confidence: 8.0},
		},
	}
	engine := NewEngine(provider, analyst, testLogger())

	var stages []Stage
	engine.OnStage = func(state *RunState) {
		stages = append(stages, state.Stage)
	}

	state, err := engine.FindOpportunities(context.Background(), domain.Portfolio{}, domain.FilterConstraints{}, []string{"RELIANCE"})
	require.NoError(t, err)
	require.Len(t, state.FinalRecommendations, 1)

	rec := state.FinalRecommendations[0]
	assert.Equal(t, domain.NewTrade, rec.RecommendationType)
	assert.Equal(t, "RELIANCE", rec.Symbol)
	assert.Equal(t, "CE", rec.OptionType)
	assert.Equal(t, 250, rec.Quantity)
	assert.Equal(t, domain.PriceRange{Low: 24.0, High: 26.0}, rec.PriceRange)
	assert.NotEmpty(t, rec.ID)
	// ROM 25%, SSR 4%, positive sentiment, call option: risk 4.
	assert.InDelta(t, 25.0, rec.ExpectedROM, 1e-9)
	assert.InDelta(t, 4.0, rec.ExpectedSSR, 1e-9)
	assert.Equal(t, "Risk indicator: 4/10", rec.RiskAssessment)
	// Quality: 0.8 + 0.1 (conf 8) + 0.05 (ROM >= 10) = 0.95; 8 * 0.95 = 7.6.
	assert.InDelta(t, 7.6, rec.Confidence, 1e-9)

	assert.Equal(t, []Stage{
		StageGathering, StageScanning, StageSentiment, StageMetrics,
		StageFiltering, StageGeneration, StageSelfReview, StageRanking, StageDone,
	}, stages)
	assert.NotEmpty(t, state.RunID)
	assert.Empty(t, state.Error)
}

func TestMetricsAndRiskIndicator(t *testing.T) {
	// ROM caps at 100.
	rich := goodOption(2400)
	rich.Premium = 500
	rich.MarginRequired = 100
	assert.InDelta(t, 100.0, opportunityROM(rich), 1e-9)

	noMargin := goodOption(2400)
	noMargin.MarginRequired = 0
	assert.Zero(t, opportunityROM(noMargin))

	// SSR floors at 0 when strike is above spot.
	assert.Zero(t, opportunitySSR(goodOption(2600), domain.Quote{LastPrice: 2500}))
	assert.Zero(t, opportunitySSR(goodOption(2400), domain.Quote{}))

	negative := domain.SentimentAnalysis{Sentiment: "Moderately Negative"}
	positive := domain.SentimentAnalysis{Sentiment: "Positive"}
	put := domain.OptionQuote{OptionType: "PE"}
	call := domain.OptionQuote{OptionType: "CE"}

	assert.Equal(t, 8, riskIndicator(put, &negative))
	assert.Equal(t, 7, riskIndicator(call, &negative))
	assert.Equal(t, 4, riskIndicator(call, &positive))
	assert.Equal(t, 5, riskIndicator(put, &positive))
	assert.Equal(t, 5, riskIndicator(call, nil))
	assert.Equal(t, 6, riskIndicator(put, nil))
}

func TestFilteringDropsBelowThreshold(t *testing.T) {
	weak := goodOption(2600) // strike above spot, SSR 0
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{"RELIANCE": {weak}},
		quotes: map[string]domain.Quote{"RELIANCE": {LastPrice: 2500}},
	}
	engine := NewEngine(provider, &fakeAnalyst{}, testLogger())

	state, err := engine.FindOpportunities(context.Background(), domain.Portfolio{}, domain.FilterConstraints{}, []string{"RELIANCE"})
	require.NoError(t, err)
	assert.Empty(t, state.FinalRecommendations)
}

func TestSwapTypeForHighRiskHolding(t *testing.T) {
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{"RELIANCE": {goodOption(2400)}},
		quotes: map[string]domain.Quote{"RELIANCE": {LastPrice: 2500}},
	}
	analyst := &fakeAnalyst{
		analyses: map[string]domain.SentimentAnalysis{
			"RELIANCE": {Sentiment: "Positive", Confidence: 8.0},
		},
	}
	engine := NewEngine(provider, analyst, testLogger())

	portfolio := domain.Portfolio{
		Positions: []domain.Position{
			{Symbol: "RELIANCE", RiskIndicator: 8},
		},
	}
	state, err := engine.FindOpportunities(context.Background(), portfolio, domain.FilterConstraints{}, []string{"RELIANCE"})
	require.NoError(t, err)
	require.Len(t, state.FinalRecommendations, 1)
	assert.Equal(t, domain.SwapTrade, state.FinalRecommendations[0].RecommendationType)
}

func TestScanCapsOptionsPerSymbol(t *testing.T) {
	var chain []domain.OptionQuote
	for i := 0; i < 15; i++ {
		chain = append(chain, goodOption(2000+float64(i)*50))
	}
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{"RELIANCE": chain},
		quotes: map[string]domain.Quote{"RELIANCE": {LastPrice: 2500}},
	}
	engine := NewEngine(provider, &fakeAnalyst{}, testLogger())

	state := &RunState{ScopeStocks: []string{"RELIANCE"}}
	require.NoError(t, engine.scanOpportunities(context.Background(), state))
	assert.Len(t, state.Opportunities, 10)
}

func TestScanSkipsFailingSymbols(t *testing.T) {
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{"INFY": {goodOption(1500)}},
		quotes: map[string]domain.Quote{"INFY": {LastPrice: 1600}},
		chainErrs: map[string]error{
			"TCS": fmt.Errorf("upstream 503"),
		},
	}
	engine := NewEngine(provider, &fakeAnalyst{}, testLogger())

	state := &RunState{ScopeStocks: []string{"TCS", "INFY"}}
	require.NoError(t, engine.scanOpportunities(context.Background(), state))
	require.Len(t, state.Opportunities, 1)
	assert.Equal(t, "INFY", state.Opportunities[0].Symbol)
}

func TestSelfReviewDropsLowConfidence(t *testing.T) {
	engine := NewEngine(&fakeProvider{}, &fakeAnalyst{}, testLogger())
	state := &RunState{
		ConfidenceScores: map[string]float64{},
		Recommendations: []domain.TradeRecommendation{
			// 7 * (0.8 - 0) = 5.6 < 6: dropped. Base confidence 7 hits
			// neither the >= 8 bonus nor the <= 6 penalty.
			{Symbol: "WEAK", Confidence: 7.0},
			// 9 * (0.8 + 0.1 + 0.05 + 0.05) = 9: kept.
			{Symbol: "STRONG", Confidence: 9.0, ExpectedROM: 12, ExpectedSSR: 6},
		},
	}
	require.NoError(t, engine.selfReview(context.Background(), state))

	require.Len(t, state.Recommendations, 1)
	assert.Equal(t, "STRONG", state.Recommendations[0].Symbol)
	assert.InDelta(t, 9.0, state.Recommendations[0].Confidence, 1e-9)
	assert.Contains(t, state.ConfidenceScores, "STRONG")
	assert.NotContains(t, state.ConfidenceScores, "WEAK")
}

func TestRankingOrdersAndLimits(t *testing.T) {
	engine := NewEngine(&fakeProvider{}, &fakeAnalyst{}, testLogger())
	state := &RunState{
		Recommendations: []domain.TradeRecommendation{
			{Symbol: "A", Confidence: 7.0, ExpectedROM: 10},
			{Symbol: "B", Confidence: 9.0, ExpectedROM: 5},
			{Symbol: "C", Confidence: 7.0, ExpectedROM: 20},
			{Symbol: "D", Confidence: 8.0, ExpectedROM: 1},
			{Symbol: "E", Confidence: 6.5, ExpectedROM: 50},
			{Symbol: "F", Confidence: 6.4, ExpectedROM: 50},
		},
	}
	require.NoError(t, engine.rankRecommendations(context.Background(), state))

	require.Len(t, state.FinalRecommendations, 5)
	symbols := make([]string, 0, 5)
	for _, rec := range state.FinalRecommendations {
		symbols = append(symbols, rec.Symbol)
	}
	// Confidence descending, ROM breaking the A/C tie.
	assert.Equal(t, []string{"B", "D", "C", "A", "E"}, symbols)
}

func TestWorkflowFailureRetainsPartialState(t *testing.T) {
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{"RELIANCE": {goodOption(2400)}},
		quotes: map[string]domain.Quote{"RELIANCE": {LastPrice: 2500}},
	}
	engine := NewEngine(provider, &fakeAnalyst{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var cancelled bool
	engine.OnStage = func(state *RunState) {
		// Cancel once scanning has produced opportunities.
		if state.Stage == StageSentiment && !cancelled {
			cancelled = true
			cancel()
		}
	}

	state, err := engine.FindOpportunities(ctx, domain.Portfolio{}, domain.FilterConstraints{}, []string{"RELIANCE"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContextDone)
	assert.Equal(t, StageFailedTerminally, state.Stage)
	assert.Contains(t, state.Error, "sentiment_analysis")
	assert.NotEmpty(t, state.Opportunities, "pre-failure results are retained")
	assert.Empty(t, state.FinalRecommendations)
}
