package sentiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) GenerateResponse(ctx context.Context, prompt, systemMessage string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeNews struct {
	bundles map[string]domain.NewsBundle
}

func (f *fakeNews) AggregateNewsAndMacro(ctx context.Context, country string) (domain.NewsBundle, error) {
	b, ok := f.bundles[country]
	if !ok {
		return domain.NewsBundle{}, errors.New("no bundle")
	}
	return b, nil
}

func newsWith(titles ...string) *fakeNews {
	articles := make([]domain.NewsArticle, 0, len(titles))
	for _, t := range titles {
		articles = append(articles, domain.NewsArticle{Title: t})
	}
	return &fakeNews{bundles: map[string]domain.NewsBundle{
		"India": {Country: "India", News: articles},
		"USA":   {Country: "USA"},
	}}
}

func TestMatchesSymbol(t *testing.T) {
	assert.True(t, MatchesSymbol("SBIN", "SBIN posts record quarterly profit"))
	assert.True(t, MatchesSymbol("sbin", "Brokerages upgrade SBIN on asset quality"))
	assert.False(t, MatchesSymbol("TCS", "SBIN posts record quarterly profit"))
	// Substring containment: a symbol inside a longer word still matches.
	assert.True(t, MatchesSymbol("ITC", "NIFTY IT component gains broadly: ITCONS up 4%"))
}

func TestSectorMapFirstMatchWins(t *testing.T) {
	a := NewAnalyst(&fakeCompleter{}, newsWith(), testLogger())

	// SBIN appears under both Banking and PSU; the Banking entry is first.
	assert.Equal(t, "Banking", a.SectorOf("SBIN"))
	assert.Equal(t, "PSU", a.SectorOf("ONGC"))
	assert.Equal(t, "IT", a.SectorOf("TCS"))
	assert.Equal(t, SectorOther, a.SectorOf("ZOMATO"))
}

func TestForSymbolsMatchedHeadlinesOnly(t *testing.T) {
	completer := &fakeCompleter{reply: "Bullish. Key drivers: results."}
	news := newsWith("RELIANCE wins arbitration case", "TCS announces buyback")
	a := NewAnalyst(completer, news, testLogger())

	verdicts := a.ForSymbols(context.Background(), []string{"RELIANCE"}, []string{"https://example.com/article"})
	require.Len(t, verdicts, 1)
	assert.Equal(t, "Bullish. Key drivers: results.", verdicts["RELIANCE"])

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "RELIANCE wins arbitration case")
	assert.NotContains(t, prompt, "TCS announces buyback")
	assert.Contains(t, prompt, "https://example.com/article")
}

func TestForSymbolsFailureYieldsPlaceholder(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	a := NewAnalyst(completer, newsWith(), testLogger())

	verdicts := a.ForSymbols(context.Background(), []string{"TCS"}, nil)
	assert.Equal(t, NoSentiment, verdicts["TCS"])
}

func TestForSectorsGroupsAndCallsOncePerSector(t *testing.T) {
	completer := &fakeCompleter{reply: "Neutral"}
	news := newsWith("TCS announces buyback")
	a := NewAnalyst(completer, news, testLogger())

	verdicts := a.ForSectors(context.Background(), []string{"TCS", "INFY", "SBIN"}, nil)
	require.Len(t, verdicts, 2)
	assert.Equal(t, "Neutral", verdicts["IT"])
	assert.Equal(t, "Neutral", verdicts["Banking"])
	// One model call per sector, not per stock.
	assert.Len(t, completer.prompts, 2)

	var itPrompt string
	for _, p := range completer.prompts {
		if strings.Contains(p, "IT sector") {
			itPrompt = p
		}
	}
	require.NotEmpty(t, itPrompt)
	assert.Contains(t, itPrompt, "TCS, INFY")
	assert.Contains(t, itPrompt, "TCS announces buyback")
}

type fakeIndicators struct {
	domain.MarketDataProvider

	values map[string]map[string]float64
	err    error
}

func (f *fakeIndicators) MarketIndicators(ctx context.Context, symbol string) (domain.MarketIndicators, error) {
	if f.err != nil {
		return domain.MarketIndicators{}, f.err
	}
	return domain.MarketIndicators{Symbol: symbol, Values: f.values[symbol]}, nil
}

func TestMarketAnalystClassification(t *testing.T) {
	provider := &fakeIndicators{values: map[string]map[string]float64{
		"UP":   {"current_price": 1100, "ema_20": 1000, "volume": 5e6},
		"DOWN": {"current_price": 900, "ema_20": 1000},
		"FLAT": {"current_price": 1010, "ema_20": 1000},
		"BARE": {},
	}}
	m := NewMarketAnalyst(provider, testLogger())
	ctx := context.Background()

	up, err := m.AnalyzeSentiment(ctx, "UP")
	require.NoError(t, err)
	assert.Equal(t, "Cautiously Positive", up.Sentiment)
	// 7.0 + 0.5 price + 0.5 ema + 0.3 volume.
	assert.InDelta(t, 8.3, up.Confidence, 1e-9)
	assert.Contains(t, up.Summary, "UP shows cautiously positive sentiment")

	down, err := m.AnalyzeSentiment(ctx, "DOWN")
	require.NoError(t, err)
	assert.Equal(t, "Cautiously Negative", down.Sentiment)

	flat, err := m.AnalyzeSentiment(ctx, "FLAT")
	require.NoError(t, err)
	assert.Equal(t, "neutral", flat.Sentiment)

	bare, err := m.AnalyzeSentiment(ctx, "BARE")
	require.NoError(t, err)
	assert.Equal(t, "neutral", bare.Sentiment)
	assert.InDelta(t, 7.0, bare.Confidence, 1e-9)
	assert.Equal(t, []string{"Market momentum", "Sector strength"}, bare.KeyDrivers)
}

func TestMarketAnalystProviderError(t *testing.T) {
	m := NewMarketAnalyst(&fakeIndicators{err: errors.New("timeout")}, testLogger())

	_, err := m.AnalyzeSentiment(context.Background(), "TCS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TCS")
}
