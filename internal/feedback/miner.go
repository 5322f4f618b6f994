// Package feedback mines accept/reject decisions out of the event log and
// folds them into preference patterns the recommendation prompt can cite.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
)

// DefaultRecentWindow is how many trailing feedback events a mining pass
// considers when the caller does not say otherwise.
const DefaultRecentWindow = 50

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Miner aggregates user feedback events into preference patterns.
type Miner struct {
	store  domain.EventStore
	logger *slog.Logger
}

// NewMiner returns a Miner reading from the given store.
func NewMiner(store domain.EventStore, logger *slog.Logger) *Miner {
	return &Miner{
		store:  store,
		logger: logger.With(slog.String("component", "feedback")),
	}
}

// AnalyzePatterns reads the log, keeps only accepted/rejected user actions,
// trims to the nRecent most recent, and aggregates counts per symbol, per
// option type, and per rationale keyword, plus average risk per outcome.
// Missing data fields count under "UNKNOWN" rather than being dropped.
func (m *Miner) AnalyzePatterns(ctx context.Context, nRecent int) (domain.FeedbackPattern, error) {
	if nRecent <= 0 {
		nRecent = DefaultRecentWindow
	}

	events, err := m.store.ReadAll(ctx)
	if err != nil {
		return domain.FeedbackPattern{}, fmt.Errorf("feedback: analyze patterns: %w", err)
	}

	var feedback []domain.Event
	for _, ev := range events {
		if ev.IsFeedback() {
			feedback = append(feedback, ev)
		}
	}
	if len(feedback) > nRecent {
		feedback = feedback[len(feedback)-nRecent:]
	}

	pattern := domain.FeedbackPattern{
		SymbolStats:       map[string]*domain.OutcomeCounts{},
		OptionTypeStats:   map[string]*domain.OutcomeCounts{},
		RationaleKeywords: map[string]*domain.OutcomeCounts{},
		TotalFeedback:     len(feedback),
	}

	var (
		riskAccepted []float64
		riskRejected []float64
	)
	for _, ev := range feedback {
		accepted := ev.EventType == domain.UserActionAccepted

		bump(pattern.SymbolStats, stringField(ev.Data, "symbol"), accepted)
		bump(pattern.OptionTypeStats, stringField(ev.Data, "option_type"), accepted)

		for _, text := range []string{rawString(ev.Data, "rationale"), rawString(ev.Data, "reason")} {
			for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
				bump(pattern.RationaleKeywords, word, accepted)
			}
		}

		if risk, ok := numberField(ev.Data, "risk"); ok {
			if accepted {
				riskAccepted = append(riskAccepted, risk)
			} else {
				riskRejected = append(riskRejected, risk)
			}
		}
	}

	pattern.AvgRisk.Accepted = mean(riskAccepted)
	pattern.AvgRisk.Rejected = mean(riskRejected)

	m.logger.Debug("feedback patterns mined",
		slog.Int("total_feedback", pattern.TotalFeedback),
		slog.Int("symbols", len(pattern.SymbolStats)),
	)
	return pattern, nil
}

func bump(stats map[string]*domain.OutcomeCounts, key string, accepted bool) {
	c, ok := stats[key]
	if !ok {
		c = &domain.OutcomeCounts{}
		stats[key] = c
	}
	if accepted {
		c.Accepted++
	} else {
		c.Rejected++
	}
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok && s != "" {
		return s
	}
	return "UNKNOWN"
}

func rawString(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func numberField(data map[string]any, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	avg := sum / float64(len(vals))
	return &avg
}

// SummarizePatterns renders a pattern as short natural-language lines for
// prompt inclusion. Each section is emitted only when it has a non-zero
// entry; with no sections at all a fixed fallback sentence is returned.
func SummarizePatterns(p domain.FeedbackPattern) string {
	var lines []string

	if len(p.SymbolStats) > 0 {
		if s := joinTop(p.SymbolStats, 3, true); s != "" {
			lines = append(lines, "User often accepts recommendations for: "+s)
		}
		if s := joinTop(p.SymbolStats, 3, false); s != "" {
			lines = append(lines, "User often rejects: "+s)
		}
	}
	if len(p.OptionTypeStats) > 0 {
		if s := joinTop(p.OptionTypeStats, 2, true); s != "" {
			lines = append(lines, "Preferred option types: "+s)
		}
		if s := joinTop(p.OptionTypeStats, 2, false); s != "" {
			lines = append(lines, "Rejected option types: "+s)
		}
	}
	if p.AvgRisk.Accepted != nil {
		lines = append(lines, fmt.Sprintf("Average risk for accepted: %.2f", *p.AvgRisk.Accepted))
	}
	if p.AvgRisk.Rejected != nil {
		lines = append(lines, fmt.Sprintf("Average risk for rejected: %.2f", *p.AvgRisk.Rejected))
	}
	if len(p.RationaleKeywords) > 0 {
		if s := joinTop(p.RationaleKeywords, 3, true); s != "" {
			lines = append(lines, "Common accepted rationale: "+s)
		}
		if s := joinTop(p.RationaleKeywords, 3, false); s != "" {
			lines = append(lines, "Common rejected rationale: "+s)
		}
	}

	if len(lines) == 0 {
		return "No strong user preferences detected yet."
	}
	return strings.Join(lines, "\n")
}

// joinTop formats the top n entries by the chosen outcome count, omitting
// zero-count entries. Ties break alphabetically so output is stable.
func joinTop(stats map[string]*domain.OutcomeCounts, n int, accepted bool) string {
	type entry struct {
		key   string
		count int
	}
	entries := make([]entry, 0, len(stats))
	for k, c := range stats {
		count := c.Rejected
		if accepted {
			count = c.Accepted
		}
		entries = append(entries, entry{key: k, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	parts := make([]string, 0, n)
	for _, e := range entries {
		if e.count == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", e.key, e.count))
	}
	return strings.Join(parts, ", ")
}
