package handler

import (
	"log/slog"
	"net/http"

	"github.com/sidkap/optadvisor/internal/domain"
)

// RecommendationHandler serves recommendation history from the event log.
type RecommendationHandler struct {
	store  domain.EventStore
	logger *slog.Logger
}

// NewRecommendationHandler creates a RecommendationHandler over the given
// event store.
func NewRecommendationHandler(store domain.EventStore, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{store: store, logger: logger}
}

// listRecommendationsResponse wraps the recommendation list response.
type listRecommendationsResponse struct {
	Recommendations []domain.Event `json:"recommendations"`
}

// ListRecent returns recommendation events, newest first.
// GET /api/recommendations?limit=20
func (h *RecommendationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ReadAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list recommendations failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read event log")
		return
	}

	limit := parseLimit(r, 20, 200)

	recs := make([]domain.Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(recs) < limit; i-- {
		if events[i].EventType == domain.EventRecommendation {
			recs = append(recs, events[i])
		}
	}

	writeJSON(w, http.StatusOK, listRecommendationsResponse{Recommendations: recs})
}
