// Package domain defines the core types of the advisory pipeline: the
// append-only event log, mined feedback patterns, portfolio positions,
// trade opportunities and recommendations, and the interfaces of the
// external collaborators (market data, news, language model).
package domain

import "context"

// Event type names for system-generated events. User-triggered events use
// the "user_action:" prefix, e.g. "user_action:accepted".
const (
	EventPortfolioSummary = "portfolio_summary"
	EventRecommendation   = "recommendation"

	UserActionPrefix = "user_action:"

	UserActionAccepted    = UserActionPrefix + "accepted"
	UserActionRejected    = UserActionPrefix + "rejected"
	UserActionBuy         = UserActionPrefix + "buy"
	UserActionSell        = UserActionPrefix + "sell"
	UserActionPerformance = UserActionPrefix + "performance_indicators"
)

// Event is one immutable record of the append-only log. The on-disk format
// is one JSON object per line with exactly these three fields; ordering is
// append order, which is chronological.
type Event struct {
	Timestamp string         `json:"timestamp"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// IsFeedback reports whether the event is an accept/reject decision that
// the pattern miner should consider.
func (e Event) IsFeedback() bool {
	return e.EventType == UserActionAccepted || e.EventType == UserActionRejected
}

// EventStore is the append-only record of analysis events and user actions.
// Append never fails silently: I/O errors surface wrapped in ErrStorage.
// ReadAll returns events in append order and an empty slice (not an error)
// when no storage exists yet. Clear is idempotent and exists for test
// isolation and explicit resets only.
type EventStore interface {
	Append(ctx context.Context, eventType string, data map[string]any) error
	ReadAll(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}
