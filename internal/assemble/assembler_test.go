package assemble

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/eventlog"
	"github.com/sidkap/optadvisor/internal/feedback"
	"github.com/sidkap/optadvisor/internal/sentiment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	portfolio    domain.Portfolio
	portfolioErr error
	margin       domain.MarginSummary
	quotes       map[string]domain.Quote
	quoteErrs    map[string]error
	chains       map[string][]domain.OptionQuote
	indicators   map[string]domain.MarketIndicators
}

func (f *fakeProvider) Portfolio(ctx context.Context) (domain.Portfolio, error) {
	return f.portfolio, f.portfolioErr
}

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := f.quoteErrs[symbol]; err != nil {
		return domain.Quote{}, err
	}
	return f.quotes[symbol], nil
}

func (f *fakeProvider) MarketIndicators(ctx context.Context, symbol string) (domain.MarketIndicators, error) {
	return f.indicators[symbol], nil
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	return f.chains[symbol], nil
}

func (f *fakeProvider) Margins(ctx context.Context) (domain.MarginSummary, error) {
	return f.margin, nil
}

type fakeNews struct{}

func (fakeNews) AggregateNewsAndMacro(ctx context.Context, country string) (domain.NewsBundle, error) {
	return domain.NewsBundle{
		Country: country,
		News:    []domain.NewsArticle{{Title: "RELIANCE wins arbitration case"}},
	}, nil
}

type fakeCompleter struct{}

func (fakeCompleter) GenerateResponse(ctx context.Context, prompt, systemMessage string) (string, error) {
	return "Neutral", nil
}

func newTestAssembler(t *testing.T, provider *fakeProvider) (*Assembler, domain.EventStore) {
	t.Helper()
	logger := testLogger()
	store := eventlog.NewFileStore(filepath.Join(t.TempDir(), "events.log"), logger)
	analyst := sentiment.NewAnalyst(fakeCompleter{}, fakeNews{}, logger)
	miner := feedback.NewMiner(store, logger)
	return New(provider, fakeNews{}, analyst, miner, store, logger), store
}

func TestAssembleFullBundle(t *testing.T) {
	provider := &fakeProvider{
		portfolio: domain.Portfolio{
			Positions: []domain.Position{{Symbol: "RELIANCE", Quantity: 75}},
		},
		margin: domain.MarginSummary{Used: 70000, Total: 100000},
		quotes: map[string]domain.Quote{
			"RELIANCE": {Symbol: "RELIANCE", LastPrice: 2500},
		},
		chains: map[string][]domain.OptionQuote{
			"RELIANCE": {{StrikePrice: 2400, OptionType: "PE"}},
		},
		indicators: map[string]domain.MarketIndicators{
			"RELIANCE": {Symbol: "RELIANCE", Values: map[string]float64{"ema_20": 2450}},
		},
	}
	a, store := newTestAssembler(t, provider)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{
		"symbol": "RELIANCE", "option_type": "PE", "reason": "good premium",
	}))

	bundle, err := a.Assemble(ctx, []string{"RELIANCE"}, []string{"https://example.com"})
	require.NoError(t, err)

	assert.Len(t, bundle.Portfolio.Positions, 1)
	assert.NotZero(t, bundle.PortfolioGreeks.Vega)
	require.Len(t, bundle.PerPositionGreeks, 1)
	assert.Equal(t, domain.MarginSummary{Used: 70000, Total: 100000}, bundle.Margin)
	assert.Equal(t, "India", bundle.NewsIndia.Country)
	assert.Equal(t, "USA", bundle.NewsUSA.Country)
	assert.Equal(t, 2500.0, bundle.Quotes["RELIANCE"].LastPrice)
	assert.Len(t, bundle.OptionChains["RELIANCE"], 1)
	assert.Contains(t, bundle.TechnicalIndicators["RELIANCE"].Values, "ema_20")
	assert.Equal(t, "Neutral", bundle.NewsSentiment["RELIANCE"])
	assert.Contains(t, bundle.SectorSentiment, "Other")
	assert.Contains(t, bundle.RecentFeedback, "accepted: RELIANCE (good premium)")
	assert.Contains(t, bundle.PreferenceSummary, "RELIANCE (1)")
	assert.Empty(t, bundle.Errors)
}

func TestAssembleEmptyScanList(t *testing.T) {
	a, _ := newTestAssembler(t, &fakeProvider{})

	bundle, err := a.Assemble(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.NotNil(t, bundle.Quotes)
	assert.NotNil(t, bundle.OptionChains)
	assert.NotNil(t, bundle.TechnicalIndicators)
	assert.Empty(t, bundle.Quotes)
	assert.Equal(t, "No strong user preferences detected yet.", bundle.PreferenceSummary)
	assert.Empty(t, bundle.Errors)
}

func TestAssemblePartialFailure(t *testing.T) {
	provider := &fakeProvider{
		portfolioErr: errors.New("broker down"),
		quotes: map[string]domain.Quote{
			"TCS": {Symbol: "TCS", LastPrice: 3500},
		},
		quoteErrs: map[string]error{
			"INFY": errors.New("rate limited"),
		},
	}
	a, _ := newTestAssembler(t, provider)

	bundle, err := a.Assemble(context.Background(), []string{"TCS", "INFY"}, nil)
	require.NoError(t, err, "partial failures do not abort assembly")

	assert.Equal(t, 3500.0, bundle.Quotes["TCS"].LastPrice)
	// Failed quote still has a placeholder entry.
	assert.Contains(t, bundle.Quotes, "INFY")
	assert.Zero(t, bundle.Quotes["INFY"].LastPrice)
	assert.Empty(t, bundle.Portfolio.Positions)

	require.NotEmpty(t, bundle.Errors)
	joined := ""
	for _, e := range bundle.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "portfolio: broker down")
	assert.Contains(t, joined, "quote INFY: rate limited")
}
