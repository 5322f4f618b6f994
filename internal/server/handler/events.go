package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
)

// EventsHandler serves the event-log history endpoints.
type EventsHandler struct {
	store  domain.EventStore
	logger *slog.Logger
}

// NewEventsHandler creates an EventsHandler over the given event store.
func NewEventsHandler(store domain.EventStore, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{store: store, logger: logger}
}

// listEventsResponse wraps the list events response.
type listEventsResponse struct {
	Events []domain.Event `json:"events"`
	Total  int            `json:"total"`
}

// ListEvents returns log events, newest first, optionally filtered by event
// type and by a case-insensitive substring search over the serialized event.
// GET /api/events?type=user_action:accepted&q=INFY&limit=100
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ReadAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list events failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read event log")
		return
	}

	typeFilter := r.URL.Query().Get("type")
	query := strings.ToLower(r.URL.Query().Get("q"))
	limit := parseLimit(r, 100, 1000)

	filtered := make([]domain.Event, 0, len(events))
	// Walk backwards so the newest events come first.
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if typeFilter != "" && ev.EventType != typeFilter {
			continue
		}
		if query != "" && !eventMatches(ev, query) {
			continue
		}
		filtered = append(filtered, ev)
		if len(filtered) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Events: filtered,
		Total:  len(filtered),
	})
}

// eventMatches reports whether the serialized event contains the lowercased
// query substring.
func eventMatches(ev domain.Event, query string) bool {
	if strings.Contains(strings.ToLower(ev.EventType), query) {
		return true
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), query)
}
