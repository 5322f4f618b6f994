package scanner

import (
	"context"
	"errors"
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

	chains map[string][]domain.OptionQuote
	errs   map[string]error
	calls  []string
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	f.calls = append(f.calls, symbol)
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.chains[symbol], nil
}

func passingOption(strike float64) domain.OptionQuote {
	return domain.OptionQuote{
		StrikePrice:  strike,
		OptionType:   "PE",
		Expiry:       "2026-09-25",
		LastPrice:    25.5,
		OpenInterest: 5000,
		Theta:        -0.03,
		Risk:         0.02,
	}
}

func TestPassesThresholds(t *testing.T) {
	f := DefaultChainFilter

	assert.True(t, Passes(f, passingOption(2400)))

	low := passingOption(2400)
	low.LastPrice = 9.99
	assert.False(t, Passes(f, low), "premium below minimum")

	risky := passingOption(2400)
	risky.Risk = 0.06
	assert.False(t, Passes(f, risky), "risk above maximum")

	illiquid := passingOption(2400)
	illiquid.OpenInterest = 999
	assert.False(t, Passes(f, illiquid), "open interest below minimum")

	flat := passingOption(2400)
	flat.Theta = -0.001
	assert.False(t, Passes(f, flat), "time decay below minimum")

	// Boundary values are inclusive.
	edge := passingOption(2400)
	edge.LastPrice = f.MinPremium
	edge.Risk = f.MaxRisk
	edge.OpenInterest = f.MinLiquidity
	edge.Theta = -f.MinTimeDecay
	assert.True(t, Passes(f, edge))
}

func TestFilterChainPreservesOrder(t *testing.T) {
	chain := []domain.OptionQuote{
		passingOption(2400),
		{StrikePrice: 2500, LastPrice: 1}, // fails premium
		passingOption(2600),
	}
	opps := FilterChain(DefaultChainFilter, "RELIANCE", chain)

	require.Len(t, opps, 2)
	assert.Equal(t, 2400.0, opps[0].Strike)
	assert.Equal(t, 2600.0, opps[1].Strike)
	assert.Equal(t, "RELIANCE", opps[0].Symbol)
	assert.Equal(t, 25.5, opps[0].Premium)
}

func TestScanSkipsFailedSymbols(t *testing.T) {
	provider := &fakeProvider{
		chains: map[string][]domain.OptionQuote{
			"RELIANCE": {passingOption(2400)},
			"INFY":     {passingOption(1500)},
		},
		errs: map[string]error{
			"TCS": errors.New("upstream 503"),
		},
	}
	s := New(provider, testLogger())

	opps, err := s.Scan(context.Background(), []string{"RELIANCE", "TCS", "INFY"}, nil)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, "RELIANCE", opps[0].Symbol)
	assert.Equal(t, "INFY", opps[1].Symbol)
	assert.Equal(t, []string{"RELIANCE", "TCS", "INFY"}, provider.calls)
}

func TestScanEmptyStockList(t *testing.T) {
	provider := &fakeProvider{}
	s := New(provider, testLogger())

	opps, err := s.Scan(context.Background(), []string{}, nil)
	require.NoError(t, err)
	assert.Empty(t, opps)
	assert.Empty(t, provider.calls)
}

func TestScanCancelledContext(t *testing.T) {
	provider := &fakeProvider{}
	s := New(provider, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, []string{"RELIANCE"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContextDone)
}

func TestDefaultStockListIsNifty50(t *testing.T) {
	assert.Len(t, DefaultStockList, 48)
	assert.Contains(t, DefaultStockList, "RELIANCE")
	assert.Contains(t, DefaultStockList, "APOLLOHOSP")
}
