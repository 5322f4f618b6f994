package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/eventlog"
)

// FeedbackHandler records accept/reject decisions on recommendations. The
// resulting user_action events feed the next run's pattern mining.
type FeedbackHandler struct {
	store  domain.EventStore
	logger *slog.Logger
}

// NewFeedbackHandler creates a FeedbackHandler over the given event store.
func NewFeedbackHandler(store domain.EventStore, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{store: store, logger: logger}
}

// feedbackRequest is the POST body for a feedback submission.
type feedbackRequest struct {
	Action         string                     `json:"action"` // "accepted" or "rejected"
	Reason         string                     `json:"reason"`
	Recommendation domain.TradeRecommendation `json:"recommendation"`
}

// SubmitFeedback records a user decision on a recommendation.
// POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var eventType string
	switch req.Action {
	case "accepted":
		eventType = domain.UserActionAccepted
	case "rejected":
		eventType = domain.UserActionRejected
	default:
		writeError(w, http.StatusBadRequest, `action must be "accepted" or "rejected"`)
		return
	}

	if req.Recommendation.Symbol == "" {
		writeError(w, http.StatusBadRequest, "recommendation.symbol is required")
		return
	}

	if err := eventlog.LogUserAction(r.Context(), h.store, eventType, req.Recommendation, req.Reason); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: record feedback failed",
			slog.String("symbol", req.Recommendation.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record feedback")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status": "recorded",
		"action": req.Action,
		"symbol": req.Recommendation.Symbol,
	})
}
