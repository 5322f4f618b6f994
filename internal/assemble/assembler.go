// Package assemble builds the full analysis context: portfolio, Greeks,
// margins, news, per-symbol technicals, option chains, quotes, sentiment,
// and mined user preferences, all gathered concurrently with per-source
// failure tolerance.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sidkap/optadvisor/internal/analytics"
	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/feedback"
	"github.com/sidkap/optadvisor/internal/sentiment"
)

// recentFeedbackShown bounds the verbatim feedback lines carried in the
// bundle; the mined preference summary covers the longer history.
const recentFeedbackShown = 10

// Assembler gathers context from every source for one analysis run.
type Assembler struct {
	provider domain.MarketDataProvider
	news     domain.NewsProvider
	analyst  *sentiment.Analyst
	miner    *feedback.Miner
	store    domain.EventStore
	logger   *slog.Logger
}

// New returns a context assembler.
func New(provider domain.MarketDataProvider, news domain.NewsProvider, analyst *sentiment.Analyst, miner *feedback.Miner, store domain.EventStore, logger *slog.Logger) *Assembler {
	return &Assembler{
		provider: provider,
		news:     news,
		analyst:  analyst,
		miner:    miner,
		store:    store,
		logger:   logger.With(slog.String("component", "assemble")),
	}
}

// Assemble builds the context bundle for a scan list. Feedback patterns are
// mined before anything else so events appended later in the run cannot
// leak into the preference summary. Source failures record a placeholder
// value and an entry in Errors; only context cancellation aborts.
func (a *Assembler) Assemble(ctx context.Context, scanList, userLinks []string) (domain.ContextBundle, error) {
	bundle := domain.ContextBundle{
		UserNewsLinks:       userLinks,
		TechnicalIndicators: map[string]domain.MarketIndicators{},
		OptionChains:        map[string][]domain.OptionQuote{},
		Quotes:              map[string]domain.Quote{},
		NewsSentiment:       map[string]string{},
		SectorSentiment:     map[string]string{},
	}

	// Preference mining reads the log first.
	patterns, err := a.miner.AnalyzePatterns(ctx, feedback.DefaultRecentWindow)
	if err != nil {
		return bundle, fmt.Errorf("assemble: %w", err)
	}
	bundle.PreferenceSummary = feedback.SummarizePatterns(patterns)
	bundle.RecentFeedback = a.recentFeedback(ctx, &bundle)

	var mu sync.Mutex
	fail := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		bundle.Errors = append(bundle.Errors, fmt.Sprintf(format, args...))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		portfolio, err := a.provider.Portfolio(gctx)
		if err != nil {
			fail("portfolio: %v", err)
			return nil
		}
		mu.Lock()
		bundle.Portfolio = portfolio
		bundle.PortfolioGreeks = analytics.PortfolioGreeks(portfolio.Positions)
		bundle.PerPositionGreeks = analytics.PerPositionGreeks(portfolio.Positions)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		margin, err := a.provider.Margins(gctx)
		if err != nil {
			fail("margins: %v", err)
			return nil
		}
		mu.Lock()
		bundle.Margin = margin
		mu.Unlock()
		return nil
	})

	for _, country := range []string{"India", "USA"} {
		country := country
		g.Go(func() error {
			news, err := a.news.AggregateNewsAndMacro(gctx, country)
			if err != nil {
				fail("news %s: %v", country, err)
				return nil
			}
			mu.Lock()
			if country == "India" {
				bundle.NewsIndia = news
			} else {
				bundle.NewsUSA = news
			}
			mu.Unlock()
			return nil
		})
	}

	for _, symbol := range scanList {
		symbol := symbol
		g.Go(func() error {
			indicators, err := a.provider.MarketIndicators(gctx, symbol)
			if err != nil {
				fail("indicators %s: %v", symbol, err)
				indicators = domain.MarketIndicators{Symbol: symbol}
			}
			mu.Lock()
			bundle.TechnicalIndicators[symbol] = indicators
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			chain, err := a.provider.OptionChain(gctx, symbol)
			if err != nil {
				fail("option chain %s: %v", symbol, err)
				chain = nil
			}
			mu.Lock()
			bundle.OptionChains[symbol] = chain
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			quote, err := a.provider.Quote(gctx, symbol)
			if err != nil {
				fail("quote %s: %v", symbol, err)
				quote = domain.Quote{Symbol: symbol}
			}
			mu.Lock()
			bundle.Quotes[symbol] = quote
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return bundle, fmt.Errorf("assemble: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return bundle, fmt.Errorf("assemble: %w", domain.ErrContextDone)
	}

	// Sentiment calls run after the fan-out so they see fresh headlines.
	bundle.NewsSentiment = a.analyst.ForSymbols(ctx, scanList, userLinks)
	bundle.SectorSentiment = a.analyst.ForSectors(ctx, scanList, userLinks)

	a.logger.Info("context assembled",
		slog.Int("symbols", len(scanList)),
		slog.Int("errors", len(bundle.Errors)),
	)
	return bundle, nil
}

// recentFeedback renders the last few accept/reject events as plain lines.
func (a *Assembler) recentFeedback(ctx context.Context, bundle *domain.ContextBundle) string {
	events, err := a.store.ReadAll(ctx)
	if err != nil {
		bundle.Errors = append(bundle.Errors, fmt.Sprintf("recent feedback: %v", err))
		return ""
	}
	var lines []string
	for _, ev := range events {
		if !ev.IsFeedback() {
			continue
		}
		action := strings.TrimPrefix(ev.EventType, domain.UserActionPrefix)
		symbol, _ := ev.Data["symbol"].(string)
		reason, _ := ev.Data["reason"].(string)
		line := fmt.Sprintf("%s: %s", action, symbol)
		if reason != "" {
			line += " (" + reason + ")"
		}
		lines = append(lines, line)
	}
	if len(lines) > recentFeedbackShown {
		lines = lines[len(lines)-recentFeedbackShown:]
	}
	return strings.Join(lines, "\n")
}
