package eventlog

import (
	"context"

	"github.com/sidkap/optadvisor/internal/domain"
)

// LogPortfolioSummary records a coarse portfolio snapshot: aggregate margins,
// exposure, risk score, and per-position risk indicators. Positions are
// reduced to the fields the pattern miner consumes.
func LogPortfolioSummary(ctx context.Context, store domain.EventStore, p domain.Portfolio) error {
	positions := make([]map[string]any, 0, len(p.Positions))
	for _, pos := range p.Positions {
		positions = append(positions, map[string]any{
			"symbol":         pos.Symbol,
			"option_type":    pos.OptionType,
			"quantity":       pos.Quantity,
			"rom":            pos.ROM,
			"ssr":            pos.SSR,
			"risk_indicator": pos.RiskIndicator,
		})
	}
	data := map[string]any{
		"total_margin":    p.TotalMargin,
		"available_cash":  p.AvailableCash,
		"total_exposure":  p.TotalExposure,
		"risk_score":      p.RiskScore,
		"position_count":  len(p.Positions),
		"positions":       positions,
		"sector_exposure": p.SectorExposure,
	}
	return store.Append(ctx, domain.EventPortfolioSummary, data)
}

// LogRecommendation records one emitted recommendation. The rationale text is
// kept verbatim so later pattern mining can tokenize it.
func LogRecommendation(ctx context.Context, store domain.EventStore, rec domain.TradeRecommendation) error {
	data := map[string]any{
		"id":              rec.ID,
		"type":            string(rec.RecommendationType),
		"symbol":          rec.Symbol,
		"option_type":     rec.OptionType,
		"strike_price":    rec.StrikePrice,
		"expiry":          rec.Expiry,
		"quantity":        rec.Quantity,
		"confidence":      rec.Confidence,
		"expected_rom":    rec.ExpectedROM,
		"expected_ssr":    rec.ExpectedSSR,
		"risk_assessment": rec.RiskAssessment,
		"rationale":       rec.Reasoning,
	}
	return store.Append(ctx, domain.EventRecommendation, data)
}

// LogUserAction records an explicit user verdict on a recommendation. The
// action is a full "user_action:" event type such as domain.UserActionAccepted
// so feedback events stay selectable by prefix.
func LogUserAction(ctx context.Context, store domain.EventStore, action string, rec domain.TradeRecommendation, reason string) error {
	data := map[string]any{
		"recommendation_id": rec.ID,
		"symbol":            rec.Symbol,
		"option_type":       rec.OptionType,
		"risk_assessment":   rec.RiskAssessment,
		"rationale":         rec.Reasoning,
		"reason":            reason,
	}
	return store.Append(ctx, action, data)
}
