package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// AnalyzeHandler serves the analysis-run trigger endpoint.
type AnalyzeHandler struct {
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending triggers one analysis run
}

// NewAnalyzeHandler creates an AnalyzeHandler with the given logger.
func NewAnalyzeHandler(logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger}
}

// WithTriggerChannel sets the channel to send on when a run is requested.
// The serve loop must receive from this channel to run one analysis cycle.
func (h *AnalyzeHandler) WithTriggerChannel(ch chan<- struct{}) *AnalyzeHandler {
	h.triggerCh = ch
	return h
}

// TriggerRun enqueues one analysis run. A non-blocking send means a request
// while a trigger is already pending is a no-op, not a queue.
// POST /api/analyze
func (h *AnalyzeHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "handler: analysis run requested")
	if h.triggerCh != nil {
		select {
		case h.triggerCh <- struct{}{}:
		default:
			// already triggered and not yet consumed
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"message":      "analysis run enqueued",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
