package analysis

import (
	"context"
	"fmt"
	"strings"

	"carsight/internal/llm"
)

// Sentinel strings substituted when upstream gives us nothing usable.
// Fixed values so the UI can render something instead of a blank field.
const (
	SummaryUnavailableSentinel = "Could not retrieve current market data for this vehicle."
	defaultSourceTitle         = "Source"
)

const retrieverTemperature = 0.2

const marketFacets = `Cover all of the following:
1. Typical market price range
2. Common defects and weak points reported by owners
3. Expected annual maintenance cost
4. Real-world fuel consumption
5. How it compares against its closest competitors`

// MarketRetriever performs the grounded fact-retrieval stage: a single
// search-enabled call at low temperature, returning plain text plus the
// citations the provider attached.
type MarketRetriever struct {
	llm   llm.Client
	model string
}

func NewMarketRetriever(client llm.Client, model string) *MarketRetriever {
	return &MarketRetriever{llm: client, model: model}
}

// Retrieve runs stage 1. A transport failure is wrapped in RetrievalError;
// a successful call with empty text yields the fixed sentinel summary.
func (r *MarketRetriever) Retrieve(ctx context.Context, query VehicleQuery) (MarketFacts, error) {
	resp, err := r.llm.Generate(ctx, llm.Request{
		Model:           r.model,
		Messages:        []llm.Message{{Role: llm.RoleUser, Text: buildMarketPrompt(query)}},
		EnableGrounding: true,
		Temperature:     llm.Ptr(float32(retrieverTemperature)),
	})
	if err != nil {
		return MarketFacts{}, &RetrievalError{Err: err}
	}

	facts := MarketFacts{Summary: strings.TrimSpace(resp.Text)}
	if facts.Summary == "" {
		facts.Summary = SummaryUnavailableSentinel
	}
	for _, c := range resp.Citations {
		if strings.TrimSpace(c.URI) == "" {
			continue
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = defaultSourceTitle
		}
		facts.Sources = append(facts.Sources, GroundingSource{URI: c.URI, Title: title})
	}
	return facts, nil
}

func buildMarketPrompt(q VehicleQuery) string {
	var sb strings.Builder
	if q.IsGeneral() {
		fmt.Fprintf(&sb, "Search for up-to-date reliability and market value information about the %s in general.\n", q.Label())
	} else {
		fmt.Fprintf(&sb, "Search for up-to-date market information about a %s listed with %.0f km on the odometer at a price of %.0f %s.\n",
			q.Label(), q.Mileage, q.Price, currencyOrDefault(q.Currency))
		sb.WriteString("Assess whether this specific listing is priced fairly for its mileage.\n")
	}
	if q.FuelType != "" {
		fmt.Fprintf(&sb, "Fuel type: %s.\n", q.FuelType)
	}
	sb.WriteString("\n")
	sb.WriteString(marketFacets)
	return sb.String()
}

func currencyOrDefault(cur string) string {
	cur = strings.TrimSpace(cur)
	if cur == "" {
		return "EUR"
	}
	return cur
}
