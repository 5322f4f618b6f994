package feedback

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/eventlog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMiner(t *testing.T) (*Miner, domain.EventStore) {
	t.Helper()
	store := eventlog.NewFileStore(filepath.Join(t.TempDir(), "events.log"), testLogger())
	return NewMiner(store, testLogger()), store
}

func TestAnalyzePatternsCountsAndKeywords(t *testing.T) {
	miner, store := newTestMiner(t)
	ctx := context.Background()

	// Non-feedback events must not count.
	require.NoError(t, store.Append(ctx, domain.EventPortfolioSummary, map[string]any{"risk_score": 3.0}))
	require.NoError(t, store.Append(ctx, domain.UserActionBuy, map[string]any{"symbol": "INFY"}))

	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{
		"symbol":      "RELIANCE",
		"option_type": "PE",
		"rationale":   "high premium yield",
		"risk":        4.0,
	}))
	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{
		"symbol":      "RELIANCE",
		"option_type": "PE",
		"rationale":   "premium cushion",
		"risk":        6.0,
	}))
	require.NoError(t, store.Append(ctx, domain.UserActionRejected, map[string]any{
		"symbol":      "TCS",
		"option_type": "CE",
		"reason":      "too risky",
	}))

	p, err := miner.AnalyzePatterns(ctx, 50)
	require.NoError(t, err)

	assert.Equal(t, 3, p.TotalFeedback)
	require.Contains(t, p.SymbolStats, "RELIANCE")
	assert.Equal(t, 2, p.SymbolStats["RELIANCE"].Accepted)
	assert.Equal(t, 0, p.SymbolStats["RELIANCE"].Rejected)
	assert.Equal(t, 1, p.SymbolStats["TCS"].Rejected)

	assert.Equal(t, 2, p.OptionTypeStats["PE"].Accepted)
	assert.Equal(t, 1, p.OptionTypeStats["CE"].Rejected)

	// "premium" appears in two accepted rationales; "risky" in one rejection.
	assert.Equal(t, 2, p.RationaleKeywords["premium"].Accepted)
	assert.Equal(t, 1, p.RationaleKeywords["risky"].Rejected)

	require.NotNil(t, p.AvgRisk.Accepted)
	assert.InDelta(t, 5.0, *p.AvgRisk.Accepted, 1e-9)
	assert.Nil(t, p.AvgRisk.Rejected)
}

func TestAnalyzePatternsMissingFieldsCountUnknown(t *testing.T) {
	miner, store := newTestMiner(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.UserActionRejected, map[string]any{}))

	p, err := miner.AnalyzePatterns(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SymbolStats["UNKNOWN"].Rejected)
	assert.Equal(t, 1, p.OptionTypeStats["UNKNOWN"].Rejected)
	assert.Empty(t, p.RationaleKeywords)
}

func TestAnalyzePatternsRecentWindow(t *testing.T) {
	miner, store := newTestMiner(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{"symbol": "OLD"}))
	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{"symbol": "NEW1"}))
	require.NoError(t, store.Append(ctx, domain.UserActionAccepted, map[string]any{"symbol": "NEW2"}))

	p, err := miner.AnalyzePatterns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalFeedback)
	assert.NotContains(t, p.SymbolStats, "OLD")
	assert.Contains(t, p.SymbolStats, "NEW1")
	assert.Contains(t, p.SymbolStats, "NEW2")

	// A window larger than the log keeps everything.
	p, err = miner.AnalyzePatterns(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalFeedback)
}

func TestAnalyzePatternsEmptyLog(t *testing.T) {
	miner, _ := newTestMiner(t)

	p, err := miner.AnalyzePatterns(context.Background(), 50)
	require.NoError(t, err)
	assert.Zero(t, p.TotalFeedback)
	assert.Empty(t, p.SymbolStats)
	assert.Nil(t, p.AvgRisk.Accepted)
	assert.Nil(t, p.AvgRisk.Rejected)
}

func TestSummarizePatternsSections(t *testing.T) {
	avg := 4.5
	p := domain.FeedbackPattern{
		SymbolStats: map[string]*domain.OutcomeCounts{
			"RELIANCE": {Accepted: 3},
			"TCS":      {Rejected: 2},
		},
		OptionTypeStats: map[string]*domain.OutcomeCounts{
			"PE": {Accepted: 3},
		},
		RationaleKeywords: map[string]*domain.OutcomeCounts{
			"premium": {Accepted: 2},
		},
		AvgRisk:       domain.AverageRisk{Accepted: &avg},
		TotalFeedback: 5,
	}

	summary := SummarizePatterns(p)
	assert.Contains(t, summary, "User often accepts recommendations for: RELIANCE (3)")
	assert.Contains(t, summary, "User often rejects: TCS (2)")
	assert.Contains(t, summary, "Preferred option types: PE (3)")
	assert.Contains(t, summary, "Average risk for accepted: 4.50")
	assert.Contains(t, summary, "Common accepted rationale: premium (2)")
	assert.NotContains(t, summary, "Average risk for rejected")

	// Zero-count entries never appear in a section.
	assert.False(t, strings.Contains(summary, "TCS (0)"))
}

func TestSummarizePatternsEmptyFallback(t *testing.T) {
	summary := SummarizePatterns(domain.FeedbackPattern{
		SymbolStats:       map[string]*domain.OutcomeCounts{},
		OptionTypeStats:   map[string]*domain.OutcomeCounts{},
		RationaleKeywords: map[string]*domain.OutcomeCounts{},
	})
	assert.Equal(t, "No strong user preferences detected yet.", summary)
}
