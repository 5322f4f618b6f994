package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
)

// SystemMessage frames the model's role for full-context generation.
const SystemMessage = `You are an expert options trading analyst.
Analyze the provided market context, portfolio, and user preferences, and
produce actionable option trade recommendations.`

// BuildPrompt renders the context bundle into the full-context
// recommendation prompt. The instructions pin the output to a JSON array so
// DecodeModelOutput can extract structured recommendations; any trailing
// text is treated as a portfolio impact assessment.
func BuildPrompt(bundle domain.ContextBundle) string {
	var b strings.Builder

	b.WriteString("You are an expert options trading assistant.\n\n")

	section(&b, "USER PREFERENCES (from recent feedback)", bundle.PreferenceSummary)
	section(&b, "Here is the latest news and sentiment (India)", toJSON(bundle.NewsIndia))
	section(&b, "Here is the latest news and sentiment (USA)", toJSON(bundle.NewsUSA))
	section(&b, "User-submitted news links", toJSON(bundle.UserNewsLinks))
	section(&b, "News sentiment for each stock in the scan list", toJSON(bundle.NewsSentiment))
	section(&b, "Sector-wise sentiment", toJSON(bundle.SectorSentiment))
	section(&b, "Current portfolio positions", toJSON(bundle.Portfolio))
	section(&b, "Portfolio-level Greeks", toJSON(bundle.PortfolioGreeks))
	section(&b, "Per-position Greeks", toJSON(bundle.PerPositionGreeks))
	section(&b, "Margin used", fmt.Sprintf("%.2f / %.2f", bundle.Margin.Used, bundle.Margin.Total))
	section(&b, "Technical indicators for tracked stocks", toJSON(bundle.TechnicalIndicators))
	section(&b, "Option chains for tracked stocks", toJSON(bundle.OptionChains))
	section(&b, "Quotes for underlying stocks", toJSON(bundle.Quotes))
	section(&b, "Recent user feedback on recommendations", bundle.RecentFeedback)

	b.WriteString(`Based on all of the above, generate new option trade recommendations.
Respond with a JSON array where each element has exactly these keys:
"action", "symbol", "option_type", "strike", "expiry", "rationale",
"expected_outcome", "risk_management".
After the JSON array, add a short portfolio impact assessment as plain text.
`)

	return b.String()
}

func section(b *strings.Builder, title, body string) {
	if body == "" {
		body = "none"
	}
	fmt.Fprintf(b, "%s:\n%s\n\n", title, body)
}

// toJSON renders a context section compactly. Marshal failures fall back to
// fmt so a single odd value never empties a section.
func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
