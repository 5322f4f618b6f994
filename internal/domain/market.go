package domain

// Quote is a point-in-time price snapshot for an underlying.
type Quote struct {
	Symbol        string  `json:"symbol"`
	LastPrice     float64 `json:"last_price"`
	Open          float64 `json:"open,omitempty"`
	High          float64 `json:"high,omitempty"`
	Low           float64 `json:"low,omitempty"`
	Close         float64 `json:"close,omitempty"`
	Volume        int64   `json:"volume,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
}

// OptionQuote is one option-chain entry as supplied by the market data
// provider. Risk is the provider's risk fraction of margin for the contract;
// Theta is the daily time decay.
type OptionQuote struct {
	Symbol         string  `json:"symbol"`
	StrikePrice    float64 `json:"strike_price"`
	OptionType     string  `json:"option_type"` // CE or PE
	Expiry         string  `json:"expiry"`
	LastPrice      float64 `json:"last_price"`
	BidPrice       float64 `json:"bid_price"`
	AskPrice       float64 `json:"ask_price"`
	OpenInterest   float64 `json:"open_interest"`
	Theta          float64 `json:"theta"`
	Risk           float64 `json:"risk"`
	LotSize        int     `json:"lot_size"`
	Premium        float64 `json:"premium"`
	MarginRequired float64 `json:"margin_required"`
}

// MarketIndicators carries the technical indicator snapshot for a symbol.
// Values is kept open-ended because the provider's indicator set varies.
type MarketIndicators struct {
	Symbol string             `json:"symbol"`
	Values map[string]float64 `json:"values"`
}

// Greeks are option price sensitivities. The pipeline's Greeks are
// illustrative placeholders, not production pricing output.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// PositionGreeks pairs a position's symbol and quantity with its Greeks.
type PositionGreeks struct {
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
	Greeks
}

// MarginSummary is the account margin snapshot.
type MarginSummary struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// SentimentAnalysis is a market analyst verdict for one symbol. Sentiment is
// free text from the analyst ("Bullish", "Moderately Negative", ...); the
// engine only inspects it for "Positive"/"Negative" flavoring.
type SentimentAnalysis struct {
	Symbol     string   `json:"symbol"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"` // 0-10
	KeyDrivers []string `json:"key_drivers,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

// NewsArticle is one headline from the news provider.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Description string `json:"description,omitempty"`
}

// MacroIndicator is a named link to a macroeconomic data series.
type MacroIndicator struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewsBundle aggregates headlines and macro indicator links for one region.
type NewsBundle struct {
	Country         string           `json:"country"`
	News            []NewsArticle    `json:"news"`
	MacroIndicators []MacroIndicator `json:"macro_indicators"`
}
