package domain

// OutcomeCounts pairs accept and reject tallies for one stats key.
type OutcomeCounts struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// AverageRisk carries per-outcome mean risk values. A field is nil when no
// feedback event of that outcome carried a numeric risk value.
type AverageRisk struct {
	Accepted *float64 `json:"accepted"`
	Rejected *float64 `json:"rejected"`
}

// FeedbackPattern is the derived, non-persisted preference summary mined
// from the tail of the event log. It is recomputed on every call; counts
// across any single map value sum to at most the number of feedback events
// considered.
type FeedbackPattern struct {
	SymbolStats       map[string]*OutcomeCounts `json:"symbol_stats"`
	OptionTypeStats   map[string]*OutcomeCounts `json:"option_type_stats"`
	RationaleKeywords map[string]*OutcomeCounts `json:"rationale_keywords"`
	AvgRisk           AverageRisk               `json:"avg_risk"`
	TotalFeedback     int                       `json:"total_feedback"`
}
