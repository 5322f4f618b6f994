package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
)

// NoSentiment is recorded for a symbol or sector whose model call failed.
const NoSentiment = "No sentiment available"

// Analyst classifies news sentiment for stocks and sectors by collecting
// headlines from the news provider and asking the model for a verdict.
type Analyst struct {
	completer domain.TextCompleter
	news      domain.NewsProvider
	sectors   map[string]string
	logger    *slog.Logger
}

// NewAnalyst builds a news sentiment analyst.
func NewAnalyst(completer domain.TextCompleter, news domain.NewsProvider, logger *slog.Logger) *Analyst {
	logger = logger.With(slog.String("component", "sentiment"))
	return &Analyst{
		completer: completer,
		news:      news,
		sectors:   buildSectorMap(logger),
		logger:    logger,
	}
}

// MatchesSymbol reports whether a headline concerns a symbol. Matching is
// case-insensitive substring containment of the symbol in the headline.
func MatchesSymbol(symbol, headline string) bool {
	return strings.Contains(strings.ToUpper(headline), strings.ToUpper(symbol))
}

// Headlines collects news titles for India and the USA. A failed country
// fetch is logged and contributes nothing.
func (a *Analyst) Headlines(ctx context.Context) []string {
	var headlines []string
	for _, country := range []string{"India", "USA"} {
		bundle, err := a.news.AggregateNewsAndMacro(ctx, country)
		if err != nil {
			a.logger.Warn("failed to fetch news",
				slog.String("country", country),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, article := range bundle.News {
			if article.Title != "" {
				headlines = append(headlines, article.Title)
			}
		}
	}
	return headlines
}

// ForSymbols returns a sentiment verdict per scan-list symbol. Each symbol
// gets one model call over the headlines that mention it; a failed call
// records NoSentiment for that symbol.
func (a *Analyst) ForSymbols(ctx context.Context, scanList []string, userLinks []string) map[string]string {
	headlines := a.Headlines(ctx)
	verdicts := make(map[string]string, len(scanList))
	for _, symbol := range scanList {
		var matched []string
		for _, h := range headlines {
			if MatchesSymbol(symbol, h) {
				matched = append(matched, h)
			}
		}
		prompt := symbolPrompt(symbol, matched, userLinks)
		verdict, err := a.completer.GenerateResponse(ctx, prompt, "")
		if err != nil {
			a.logger.Warn("sentiment call failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			verdicts[symbol] = NoSentiment
			continue
		}
		verdicts[symbol] = verdict
	}
	return verdicts
}

// ForSectors groups the scan list by sector and returns one verdict per
// sector. Headlines mentioning any stock of a sector feed that sector's
// prompt.
func (a *Analyst) ForSectors(ctx context.Context, scanList []string, userLinks []string) map[string]string {
	headlines := a.Headlines(ctx)

	sectorStocks := map[string][]string{}
	var order []string
	for _, symbol := range scanList {
		sector := a.SectorOf(symbol)
		if _, ok := sectorStocks[sector]; !ok {
			order = append(order, sector)
		}
		sectorStocks[sector] = append(sectorStocks[sector], symbol)
	}

	verdicts := make(map[string]string, len(sectorStocks))
	for _, sector := range order {
		stocks := sectorStocks[sector]
		var matched []string
		for _, h := range headlines {
			for _, s := range stocks {
				if MatchesSymbol(s, h) {
					matched = append(matched, h)
					break
				}
			}
		}
		prompt := sectorPrompt(sector, stocks, matched, userLinks)
		verdict, err := a.completer.GenerateResponse(ctx, prompt, "")
		if err != nil {
			a.logger.Warn("sector sentiment call failed",
				slog.String("sector", sector),
				slog.String("error", err.Error()),
			)
			verdicts[sector] = NoSentiment
			continue
		}
		verdicts[sector] = verdict
	}
	return verdicts
}

func symbolPrompt(symbol string, headlines, userLinks []string) string {
	var b strings.Builder
	b.WriteString("You are a financial news sentiment analyst.\n")
	fmt.Fprintf(&b, "Analyze the following news headlines and user-submitted links for the stock %s:\n\n", symbol)
	fmt.Fprintf(&b, "NEWS HEADLINES:\n%s\n\n", strings.Join(headlines, "\n"))
	fmt.Fprintf(&b, "USER LINKS:\n%s\n\n", strings.Join(userLinks, "\n"))
	fmt.Fprintf(&b, "Classify the overall sentiment for %s as Bullish, Bearish, or Neutral. ", symbol)
	b.WriteString("List the key drivers (news, events, macro factors) and provide a 1-2 sentence summary of the sentiment and its likely impact on the stock.")
	return b.String()
}

func sectorPrompt(sector string, stocks, headlines, userLinks []string) string {
	var b strings.Builder
	b.WriteString("You are a financial news sentiment analyst.\n")
	fmt.Fprintf(&b, "Analyze the following news headlines and user-submitted links for the %s sector (stocks: %s):\n\n",
		sector, strings.Join(stocks, ", "))
	fmt.Fprintf(&b, "NEWS HEADLINES:\n%s\n\n", strings.Join(headlines, "\n"))
	fmt.Fprintf(&b, "USER LINKS:\n%s\n\n", strings.Join(userLinks, "\n"))
	fmt.Fprintf(&b, "Classify the overall sentiment for the %s sector as Bullish, Bearish, or Neutral. ", sector)
	b.WriteString("List the key drivers (news, events, macro factors) and provide a 1-2 sentence summary of the sentiment and its likely impact on the sector.")
	return b.String()
}
