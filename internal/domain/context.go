package domain

// ContextBundle is the structured multi-source context assembled for one
// analysis run. Per-symbol maps hold placeholder zero values for symbols
// whose fetch failed; the failure itself is recorded in Errors so callers
// can surface partial results instead of a blank screen.
type ContextBundle struct {
	Portfolio           Portfolio                   `json:"portfolio"`
	PortfolioGreeks     Greeks                      `json:"portfolio_greeks"`
	PerPositionGreeks   []PositionGreeks            `json:"per_position_greeks"`
	Margin              MarginSummary               `json:"margin"`
	NewsIndia           NewsBundle                  `json:"news_india"`
	NewsUSA             NewsBundle                  `json:"news_usa"`
	UserNewsLinks       []string                    `json:"user_news_links,omitempty"`
	TechnicalIndicators map[string]MarketIndicators `json:"technical_indicators"`
	OptionChains        map[string][]OptionQuote    `json:"option_chains"`
	Quotes              map[string]Quote            `json:"quotes"`
	NewsSentiment       map[string]string           `json:"news_sentiment"`
	SectorSentiment     map[string]string           `json:"sector_sentiment"`
	RecentFeedback      string                      `json:"recent_feedback,omitempty"`
	PreferenceSummary   string                      `json:"preference_summary"`
	Errors              []string                    `json:"errors,omitempty"`
}
