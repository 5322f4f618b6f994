package domain

import "context"

// MarketDataProvider supplies quotes, indicators, option chains, margins, and
// the position list. All calls are read-only; no brokerage state is mutated.
type MarketDataProvider interface {
	Portfolio(ctx context.Context) (Portfolio, error)
	Quote(ctx context.Context, symbol string) (Quote, error)
	MarketIndicators(ctx context.Context, symbol string) (MarketIndicators, error)
	OptionChain(ctx context.Context, symbol string) ([]OptionQuote, error)
	Margins(ctx context.Context) (MarginSummary, error)
}

// NewsProvider supplies headlines and macro indicator links per region.
type NewsProvider interface {
	AggregateNewsAndMacro(ctx context.Context, country string) (NewsBundle, error)
}

// TextCompleter is the opaque language-model backend. No structure is
// assumed over its output beyond best-effort JSON extraction downstream.
type TextCompleter interface {
	GenerateResponse(ctx context.Context, prompt, systemMessage string) (string, error)
}

// SentimentAnalyst produces a per-symbol sentiment verdict. The engine's
// sentiment stage delegates here; failures are per-symbol, not fatal.
type SentimentAnalyst interface {
	AnalyzeSentiment(ctx context.Context, symbol string) (SentimentAnalysis, error)
}

// SnapshotCache caches the latest quote and portfolio snapshot between
// analysis runs. Get methods return ErrNotFound on a miss.
type SnapshotCache interface {
	SetQuote(ctx context.Context, quote Quote) error
	GetQuote(ctx context.Context, symbol string) (Quote, error)
	SetPortfolio(ctx context.Context, p Portfolio) error
	GetPortfolio(ctx context.Context) (Portfolio, error)
}

// BlobWriter uploads a serialized object to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
}
