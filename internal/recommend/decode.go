package recommend

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonArrayPattern finds the first bracketed JSON array in free-form model
// output, across newlines.
var jsonArrayPattern = regexp.MustCompile(`(?s)(\[.*?\])`)

// ModelRecommendation is one recommendation as emitted by the language
// model in the full-context flow.
type ModelRecommendation struct {
	Action          string  `json:"action"`
	Symbol          string  `json:"symbol"`
	OptionType      string  `json:"option_type"`
	Strike          float64 `json:"strike"`
	Expiry          string  `json:"expiry"`
	Rationale       string  `json:"rationale"`
	ExpectedOutcome string  `json:"expected_outcome"`
	RiskManagement  string  `json:"risk_management"`
}

// DecodedOutput is the result of parsing model output. When Structured is
// false the model's text did not contain a parseable JSON array and Raw
// holds the full output for display as-is.
type DecodedOutput struct {
	Recommendations []ModelRecommendation `json:"recommendations"`
	PortfolioImpact string                `json:"portfolio_impact,omitempty"`
	Raw             string                `json:"raw,omitempty"`
	Structured      bool                  `json:"structured"`
}

// DecodeModelOutput extracts the first JSON array from model output and any
// trailing prose, which the prompt asks the model to use for portfolio
// impact. Output with no array, or an array that fails to parse, degrades
// to the raw text rather than an error.
func DecodeModelOutput(output string) DecodedOutput {
	loc := jsonArrayPattern.FindStringIndex(output)
	if loc == nil {
		return DecodedOutput{Raw: output}
	}

	var recs []ModelRecommendation
	if err := json.Unmarshal([]byte(output[loc[0]:loc[1]]), &recs); err != nil {
		return DecodedOutput{Raw: output}
	}

	return DecodedOutput{
		Recommendations: recs,
		PortfolioImpact: strings.TrimSpace(output[loc[1]:]),
		Structured:      true,
	}
}
