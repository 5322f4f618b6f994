package domain

import "fmt"

// RecommendationType classifies a trade recommendation.
type RecommendationType string

const (
	NewTrade   RecommendationType = "new trade"
	SwapTrade  RecommendationType = "swap trade"
	HedgeTrade RecommendationType = "hedge trade"
)

// PriceRange is an inclusive low/high entry band. Low must not exceed High.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Validate rejects inverted price bands.
func (r PriceRange) Validate() error {
	if r.Low > r.High {
		return fmt.Errorf("domain: price range low %.2f above high %.2f: %w",
			r.Low, r.High, ErrValidation)
	}
	return nil
}

// TradeOpportunity is a candidate trade derived from an option-chain entry
// before recommendation-quality scoring. Metrics are filled in by the
// engine's metrics stage.
type TradeOpportunity struct {
	Symbol        string      `json:"symbol"`
	Option        OptionQuote `json:"option"`
	Quote         Quote       `json:"quote"`
	ROM           float64     `json:"rom"`
	SSR           float64     `json:"ssr"`
	RiskIndicator int         `json:"risk_indicator"`
	HasMetrics    bool        `json:"metrics_calculated"`
}

// TradeRecommendation is a finalized trade suggestion. Confidence is on a
// 0-10 scale and is rescaled once during the engine's self-review pass.
type TradeRecommendation struct {
	ID                     string             `json:"id"`
	RecommendationType     RecommendationType `json:"recommendation_type"`
	Symbol                 string             `json:"symbol"`
	OptionType             string             `json:"option_type"` // CE or PE
	StrikePrice            float64            `json:"strike_price"`
	Expiry                 string             `json:"expiry"`
	Quantity               int                `json:"quantity"`
	PriceRange             PriceRange         `json:"price_range"`
	Confidence             float64            `json:"confidence"`
	TradeDriver            string             `json:"trade_driver"`
	RiskAssessment         string             `json:"risk_assessment"`
	ExpectedROM            float64            `json:"expected_rom"`
	ExpectedSSR            float64            `json:"expected_ssr"`
	Reasoning              string             `json:"reasoning"`
	PortfolioImpact        string             `json:"portfolio_impact"`
	ComparisonWithExisting string             `json:"comparison_with_existing,omitempty"`
}

// Validate checks recommendation bounds at construction.
func (t TradeRecommendation) Validate() error {
	if t.Confidence < 0 || t.Confidence > 10 {
		return fmt.Errorf("domain: recommendation %s: confidence %.2f outside [0,10]: %w",
			t.Symbol, t.Confidence, ErrValidation)
	}
	return t.PriceRange.Validate()
}

// ChainFilter holds the numeric thresholds the opportunity scanner applies
// to raw option-chain entries. All fields are inclusive bounds.
type ChainFilter struct {
	MinPremium   float64 `json:"min_premium" toml:"min_premium"`
	MaxRisk      float64 `json:"max_risk" toml:"max_risk"` // fraction of margin
	MinLiquidity float64 `json:"min_liquidity" toml:"min_liquidity"`
	MinTimeDecay float64 `json:"min_time_decay" toml:"min_time_decay"`
}

// FilterConstraints holds the engine-level thresholds applied to computed
// opportunity metrics before recommendation generation.
type FilterConstraints struct {
	MinSSR     float64 `json:"min_ssr" toml:"min_ssr"`
	MinPremium float64 `json:"min_premium" toml:"min_premium"`
	MinROM     float64 `json:"min_rom" toml:"min_rom"`
	MaxRisk    int     `json:"max_risk" toml:"max_risk"`
}

// Validate rejects out-of-range filter constraints.
func (f FilterConstraints) Validate() error {
	if f.MinSSR < 0 || f.MinPremium < 0 || f.MinROM < 0 {
		return fmt.Errorf("domain: filter constraints: negative threshold: %w", ErrValidation)
	}
	if f.MaxRisk < 1 || f.MaxRisk > 10 {
		return fmt.Errorf("domain: filter constraints: max risk %d outside [1,10]: %w",
			f.MaxRisk, ErrValidation)
	}
	return nil
}
