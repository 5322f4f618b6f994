package cache

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

type fakeProvider struct {
	quoteCalls     int
	portfolioCalls int
	quote          domain.Quote
	portfolio      domain.Portfolio
	err            error
}

func (f *fakeProvider) Portfolio(ctx context.Context) (domain.Portfolio, error) {
	f.portfolioCalls++
	return f.portfolio, f.err
}

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	f.quoteCalls++
	return f.quote, f.err
}

func (f *fakeProvider) MarketIndicators(ctx context.Context, symbol string) (domain.MarketIndicators, error) {
	return domain.MarketIndicators{}, f.err
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	return nil, f.err
}

func (f *fakeProvider) Margins(ctx context.Context) (domain.MarginSummary, error) {
	return domain.MarginSummary{}, f.err
}

type memoryCache struct {
	quotes    map[string]domain.Quote
	portfolio *domain.Portfolio
	readErr   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{quotes: make(map[string]domain.Quote)}
}

func (m *memoryCache) SetQuote(ctx context.Context, quote domain.Quote) error {
	m.quotes[quote.Symbol] = quote
	return nil
}

func (m *memoryCache) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	if m.readErr != nil {
		return domain.Quote{}, m.readErr
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return domain.Quote{}, domain.ErrNotFound
	}
	return q, nil
}

func (m *memoryCache) SetPortfolio(ctx context.Context, p domain.Portfolio) error {
	m.portfolio = &p
	return nil
}

func (m *memoryCache) GetPortfolio(ctx context.Context) (domain.Portfolio, error) {
	if m.readErr != nil {
		return domain.Portfolio{}, m.readErr
	}
	if m.portfolio == nil {
		return domain.Portfolio{}, domain.ErrNotFound
	}
	return *m.portfolio, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuoteReadThrough(t *testing.T) {
	upstream := &fakeProvider{quote: domain.Quote{Symbol: "INFY", LastPrice: 1500}}
	cp := NewCachedProvider(upstream, newMemoryCache(), discard())

	q1, err := cp.Quote(context.Background(), "INFY")
	require.NoError(t, err)
	q2, err := cp.Quote(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Equal(t, q1, q2)
	assert.Equal(t, 1, upstream.quoteCalls)
}

func TestPortfolioReadThrough(t *testing.T) {
	upstream := &fakeProvider{portfolio: domain.Portfolio{AvailableCash: 50000}}
	cp := NewCachedProvider(upstream, newMemoryCache(), discard())

	_, err := cp.Portfolio(context.Background())
	require.NoError(t, err)
	_, err = cp.Portfolio(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.portfolioCalls)
}

func TestCacheFailureFallsThrough(t *testing.T) {
	mc := newMemoryCache()
	mc.readErr = errors.New("redis down")
	upstream := &fakeProvider{quote: domain.Quote{Symbol: "TCS", LastPrice: 3200}}
	cp := NewCachedProvider(upstream, mc, discard())

	q, err := cp.Quote(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, 3200.0, q.LastPrice)
	assert.Equal(t, 1, upstream.quoteCalls)
}

func TestUpstreamErrorPropagates(t *testing.T) {
	upstream := &fakeProvider{err: domain.ErrProvider}
	cp := NewCachedProvider(upstream, newMemoryCache(), discard())

	_, err := cp.Quote(context.Background(), "INFY")
	require.ErrorIs(t, err, domain.ErrProvider)
}
