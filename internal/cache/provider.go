// Package cache provides a read-through caching layer over the market data
// provider. Quotes and the portfolio snapshot are served from the cache when
// present; everything else passes straight to the upstream provider.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sidkap/optadvisor/internal/domain"
)

// CachedProvider decorates a domain.MarketDataProvider with a
// domain.SnapshotCache. Cache failures never fail a read; the upstream
// provider is the source of truth.
type CachedProvider struct {
	upstream domain.MarketDataProvider
	cache    domain.SnapshotCache
	logger   *slog.Logger
}

// NewCachedProvider wraps upstream with the given snapshot cache.
func NewCachedProvider(upstream domain.MarketDataProvider, cache domain.SnapshotCache, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		cache:    cache,
		logger:   logger.With(slog.String("component", "cached_provider")),
	}
}

// Quote serves a cached quote when present, otherwise fetches from upstream
// and stores the result.
func (p *CachedProvider) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	cached, err := p.cache.GetQuote(ctx, symbol)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("quote cache read failed", slog.String("symbol", symbol), slog.Any("error", err))
	}

	quote, err := p.upstream.Quote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := p.cache.SetQuote(ctx, quote); err != nil {
		p.logger.Warn("quote cache write failed", slog.String("symbol", symbol), slog.Any("error", err))
	}
	return quote, nil
}

// Portfolio serves the cached snapshot when present, otherwise fetches from
// upstream and stores the result.
func (p *CachedProvider) Portfolio(ctx context.Context) (domain.Portfolio, error) {
	cached, err := p.cache.GetPortfolio(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("portfolio cache read failed", slog.Any("error", err))
	}

	portfolio, err := p.upstream.Portfolio(ctx)
	if err != nil {
		return domain.Portfolio{}, err
	}
	if err := p.cache.SetPortfolio(ctx, portfolio); err != nil {
		p.logger.Warn("portfolio cache write failed", slog.Any("error", err))
	}
	return portfolio, nil
}

// MarketIndicators passes through to the upstream provider.
func (p *CachedProvider) MarketIndicators(ctx context.Context, symbol string) (domain.MarketIndicators, error) {
	return p.upstream.MarketIndicators(ctx, symbol)
}

// OptionChain passes through to the upstream provider. Chains move too fast
// to be worth caching between runs.
func (p *CachedProvider) OptionChain(ctx context.Context, symbol string) ([]domain.OptionQuote, error) {
	return p.upstream.OptionChain(ctx, symbol)
}

// Margins passes through to the upstream provider.
func (p *CachedProvider) Margins(ctx context.Context) (domain.MarginSummary, error) {
	return p.upstream.Margins(ctx)
}

var _ domain.MarketDataProvider = (*CachedProvider)(nil)
