// Package scanner walks option chains for a configurable stock list and
// keeps the entries that clear premium, risk, liquidity, and time-decay
// thresholds.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sidkap/optadvisor/internal/domain"
)

// DefaultStockList is the NIFTY 50 universe scanned when no custom list is
// configured.
var DefaultStockList = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "HDFC", "KOTAKBANK", "LT", "SBIN", "AXISBANK",
	"ITC", "HCLTECH", "BHARTIARTL", "ASIANPAINT", "BAJFINANCE", "MARUTI", "SUNPHARMA", "ULTRACEMCO", "TITAN",
	"NESTLEIND", "WIPRO", "POWERGRID", "ONGC", "ADANIPORTS", "HINDUNILVR", "JSWSTEEL", "TATAMOTORS", "COALINDIA",
	"GRASIM", "NTPC", "TATASTEEL", "BPCL", "DIVISLAB", "BRITANNIA", "CIPLA", "EICHERMOT", "HEROMOTOCO", "HDFCLIFE",
	"INDUSINDBK", "M&M", "SHREECEM", "BAJAJFINSV", "BAJAJ-AUTO", "DRREDDY", "UPL", "TECHM", "SBILIFE", "APOLLOHOSP",
}

// DefaultChainFilter holds the stock thresholds applied when the config
// does not override them.
var DefaultChainFilter = domain.ChainFilter{
	MinPremium:   10.0,
	MaxRisk:      0.05,
	MinLiquidity: 1000,
	MinTimeDecay: 0.01,
}

// Opportunity is one option-chain entry that cleared every threshold.
type Opportunity struct {
	Symbol       string             `json:"symbol"`
	Strike       float64            `json:"strike"`
	Type         string             `json:"type"`
	Expiry       string             `json:"expiry"`
	Premium      float64            `json:"premium"`
	Risk         float64            `json:"risk"`
	OpenInterest float64            `json:"open_interest"`
	Theta        float64            `json:"theta"`
	Details      domain.OptionQuote `json:"details"`
}

// Passes reports whether one option clears every threshold. All bounds are
// inclusive; theta is compared by magnitude since short-option decay is
// negative.
func Passes(f domain.ChainFilter, opt domain.OptionQuote) bool {
	return opt.LastPrice >= f.MinPremium &&
		opt.Risk <= f.MaxRisk &&
		opt.OpenInterest >= f.MinLiquidity &&
		math.Abs(opt.Theta) >= f.MinTimeDecay
}

// FilterChain keeps the chain entries that pass the filter, preserving
// chain order.
func FilterChain(f domain.ChainFilter, symbol string, chain []domain.OptionQuote) []Opportunity {
	var out []Opportunity
	for _, opt := range chain {
		if !Passes(f, opt) {
			continue
		}
		out = append(out, Opportunity{
			Symbol:       symbol,
			Strike:       opt.StrikePrice,
			Type:         opt.OptionType,
			Expiry:       opt.Expiry,
			Premium:      opt.LastPrice,
			Risk:         opt.Risk,
			OpenInterest: opt.OpenInterest,
			Theta:        opt.Theta,
			Details:      opt,
		})
	}
	return out
}

// Scanner fetches option chains from a market data provider and filters
// them.
type Scanner struct {
	provider domain.MarketDataProvider
	logger   *slog.Logger
}

// New returns a Scanner backed by the given provider.
func New(provider domain.MarketDataProvider, logger *slog.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		logger:   logger.With(slog.String("component", "scanner")),
	}
}

// Scan walks the stock list in order and collects passing options across
// all chains. A symbol whose chain cannot be fetched is logged and skipped;
// the scan aborts only on context cancellation. Nil arguments fall back to
// DefaultStockList and DefaultChainFilter.
func (s *Scanner) Scan(ctx context.Context, stockList []string, filter *domain.ChainFilter) ([]Opportunity, error) {
	if stockList == nil {
		stockList = DefaultStockList
	}
	f := DefaultChainFilter
	if filter != nil {
		f = *filter
	}

	var opportunities []Opportunity
	for _, symbol := range stockList {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scanner: scan: %w", domain.ErrContextDone)
		}
		chain, err := s.provider.OptionChain(ctx, symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("scanner: scan %s: %w", symbol, domain.ErrContextDone)
			}
			s.logger.Warn("option chain unavailable, skipping symbol",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		opportunities = append(opportunities, FilterChain(f, symbol, chain)...)
	}

	s.logger.Info("scan complete",
		slog.Int("symbols", len(stockList)),
		slog.Int("opportunities", len(opportunities)),
	)
	return opportunities, nil
}
