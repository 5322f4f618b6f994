package domain

import (
	"fmt"
	"time"
)

// PositionType distinguishes long from short holdings.
type PositionType string

const (
	PositionLong  PositionType = "long"
	PositionShort PositionType = "short"
)

// Position is one portfolio holding with its trading indicators. Quantity is
// signed: negative means short. ROM and SSR are percentages; RiskIndicator is
// a 1-10 integer with 1 the minimum risk.
type Position struct {
	Symbol           string       `json:"symbol"`
	Quantity         int          `json:"quantity"`
	AveragePrice     float64      `json:"average_price"`
	CurrentPrice     float64      `json:"current_price"`
	MarketValue      float64      `json:"market_value"`
	PnL              float64      `json:"pnl"`
	MarginUsed       float64      `json:"margin_used"`
	PremiumCollected float64      `json:"premium_collected"`
	ROM              float64      `json:"rom"`
	SSR              float64      `json:"ssr"`
	RiskIndicator    int          `json:"risk_indicator"`
	RewardRiskRatio  float64      `json:"reward_risk_ratio"`
	PositionType     PositionType `json:"position_type"`
	Expiry           time.Time    `json:"expiry"`
	StrikePrice      float64      `json:"strike_price"`
	OptionType       string       `json:"option_type"` // CE or PE
	Sector           string       `json:"sector,omitempty"`
}

// Validate rejects malformed position values at the model boundary so they
// never enter the data model.
func (p Position) Validate() error {
	if p.RiskIndicator < 1 || p.RiskIndicator > 10 {
		return fmt.Errorf("domain: position %s: risk indicator %d outside [1,10]: %w",
			p.Symbol, p.RiskIndicator, ErrValidation)
	}
	if p.MarginUsed < 0 || p.PremiumCollected < 0 {
		return fmt.Errorf("domain: position %s: negative monetary field: %w",
			p.Symbol, ErrValidation)
	}
	return nil
}

// Portfolio aggregates positions with account-level margin figures.
// SectorExposure is fractional and sums to at most 1.0.
type Portfolio struct {
	TotalMargin    float64            `json:"total_margin"`
	AvailableCash  float64            `json:"available_cash"`
	TotalExposure  float64            `json:"total_exposure"`
	Positions      []Position         `json:"positions"`
	SectorExposure map[string]float64 `json:"sector_exposure"`
	RiskScore      float64            `json:"risk_score"`
	MarginUsed     float64            `json:"margin_used"`
	MarginTotal    float64            `json:"margin_total"`
}

// Validate checks aggregate invariants: monetary fields are non-negative and
// the risk score stays within its 0-10 scale.
func (p Portfolio) Validate() error {
	if p.TotalMargin < 0 || p.AvailableCash < 0 || p.TotalExposure < 0 {
		return fmt.Errorf("domain: portfolio: negative monetary field: %w", ErrValidation)
	}
	if p.RiskScore < 0 || p.RiskScore > 10 {
		return fmt.Errorf("domain: portfolio: risk score %.2f outside [0,10]: %w",
			p.RiskScore, ErrValidation)
	}
	for _, pos := range p.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
	}
	return nil
}
