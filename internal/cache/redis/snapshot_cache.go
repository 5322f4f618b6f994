package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidkap/optadvisor/internal/domain"
)

const (
	quoteTTL     = 5 * time.Minute
	portfolioTTL = 15 * time.Minute
)

// SnapshotCache implements domain.SnapshotCache using JSON-serialized values.
//
// Key schema:
//
//	quote:{symbol}      - JSON Quote, 5-minute TTL
//	portfolio:snapshot  - JSON Portfolio, 15-minute TTL
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func quoteKey(symbol string) string { return "quote:" + symbol }

const portfolioKey = "portfolio:snapshot"

// SetQuote stores the latest quote for a symbol with a 5-minute TTL.
func (sc *SnapshotCache) SetQuote(ctx context.Context, quote domain.Quote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("redis: marshal quote %s: %w", quote.Symbol, err)
	}
	if err := sc.rdb.Set(ctx, quoteKey(quote.Symbol), data, quoteTTL).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", quote.Symbol, err)
	}
	return nil
}

// GetQuote retrieves the cached quote for a symbol.
// It returns domain.ErrNotFound when no quote is cached.
func (sc *SnapshotCache) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	data, err := sc.rdb.Get(ctx, quoteKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Quote{}, domain.ErrNotFound
		}
		return domain.Quote{}, fmt.Errorf("redis: get quote %s: %w", symbol, err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return domain.Quote{}, fmt.Errorf("redis: unmarshal quote %s: %w", symbol, err)
	}
	return quote, nil
}

// SetPortfolio stores the latest portfolio snapshot with a 15-minute TTL.
func (sc *SnapshotCache) SetPortfolio(ctx context.Context, p domain.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis: marshal portfolio: %w", err)
	}
	if err := sc.rdb.Set(ctx, portfolioKey, data, portfolioTTL).Err(); err != nil {
		return fmt.Errorf("redis: set portfolio: %w", err)
	}
	return nil
}

// GetPortfolio retrieves the cached portfolio snapshot.
// It returns domain.ErrNotFound when no snapshot is cached.
func (sc *SnapshotCache) GetPortfolio(ctx context.Context) (domain.Portfolio, error) {
	data, err := sc.rdb.Get(ctx, portfolioKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Portfolio{}, domain.ErrNotFound
		}
		return domain.Portfolio{}, fmt.Errorf("redis: get portfolio: %w", err)
	}

	var p domain.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Portfolio{}, fmt.Errorf("redis: unmarshal portfolio: %w", err)
	}
	return p, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
