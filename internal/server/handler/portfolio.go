package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sidkap/optadvisor/internal/analytics"
	"github.com/sidkap/optadvisor/internal/domain"
)

// marginAlertThreshold is the utilization fraction above which the margin
// alert flips to HIGH.
const marginAlertThreshold = 0.7

// PortfolioSource defines the provider methods the portfolio handler needs.
type PortfolioSource interface {
	Portfolio(ctx context.Context) (domain.Portfolio, error)
	Margins(ctx context.Context) (domain.MarginSummary, error)
}

// PortfolioHandler serves on-demand portfolio analysis.
type PortfolioHandler struct {
	provider PortfolioSource
	logger   *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler over the given provider.
func NewPortfolioHandler(provider PortfolioSource, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{provider: provider, logger: logger}
}

// portfolioAnalysisResponse aggregates the portfolio analytics payload.
type portfolioAnalysisResponse struct {
	Analysis    analytics.PortfolioAnalysis `json:"analysis"`
	Greeks      domain.Greeks               `json:"greeks"`
	MarginAlert *analytics.MarginAlert      `json:"margin_alert,omitempty"`
}

// Analyze returns the full analytics view of the live portfolio.
// GET /api/portfolio/analysis
func (h *PortfolioHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.provider.Portfolio(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: fetch portfolio failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to fetch portfolio")
		return
	}

	resp := portfolioAnalysisResponse{
		Analysis: analytics.AnalyzePortfolio(portfolio),
		Greeks:   analytics.PortfolioGreeks(portfolio.Positions),
	}

	// Margins are best effort; the analysis is still useful without them.
	if margins, err := h.provider.Margins(r.Context()); err == nil {
		alert := analytics.MarginUtilizationAlert(margins, marginAlertThreshold)
		resp.MarginAlert = &alert
	} else {
		h.logger.WarnContext(r.Context(), "handler: fetch margins failed",
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, http.StatusOK, resp)
}
