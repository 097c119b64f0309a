package analysis

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"carsight/internal/llm"
)

// maxThinkingBudget asks the model for its deepest deliberation tier when
// synthesizing the structured report.
const maxThinkingBudget int32 = 32768

const analystPersona = "You are an automotive expert and financial analyst. " +
	"You produce precise, data-driven vehicle assessments."

// reportSchema is the exact JSON shape stage 2 must return. Field names are
// the wire contract shared with ReportDraft; keep both in sync.
const reportSchema = `{
  "reasoningAnalysis": "string, thorough verdict on the vehicle (and the listing price when one is given)",
  "priceRange": {"min": number, "max": number},
  "depreciationData": [{"year": "string label", "value": number}],
  "commonIssues": [{"issue": "string", "description": "string", "estimatedRepairCost": "string"}],
  "pros": ["string"],
  "cons": ["string"],
  "maintenanceCost": "string, estimated annual cost",
  "maintenanceSchedule": [{"interval": "string", "task": "string", "estimatedCost": "string"}],
  "maintenanceCostBreakdown": [{"component": "string", "costPercentage": number}],
  "fuelEfficiency": {"city": "string", "highway": "string", "combined": "string", "averageCombined": "string", "verdict": "string"},
  "similarListings": [{"description": "string", "price": "string", "source": "string", "url": "string"}],
  "reliabilityScore": {"score": number, "rating": "string", "details": "string"},
  "vehicleImageUrl": "string"
}`

// Synthesizer performs the structured reasoning stage: it embeds the
// grounded market facts into an analyst prompt and parses the single JSON
// object the model returns.
type Synthesizer struct {
	llm   llm.Client
	model string
}

func NewSynthesizer(client llm.Client, model string) *Synthesizer {
	return &Synthesizer{llm: client, model: model}
}

// Synthesize runs stage 2. Transport errors propagate undecorated; a
// malformed payload yields FormatError; an empty response is not an error
// and comes back as an empty draft for Normalize to complete.
func (s *Synthesizer) Synthesize(ctx context.Context, query VehicleQuery, marketSummary string, sources []GroundingSource) (*ReportDraft, error) {
	prompt := buildReasoningPrompt(query, marketSummary, sources)
	resp, err := s.llm.Generate(ctx, llm.Request{
		Model:          s.model,
		System:         analystPersona,
		Messages:       []llm.Message{{Role: llm.RoleUser, Text: prompt}},
		ThinkingBudget: llm.Ptr(maxThinkingBudget),
		ResponseJSON:   true,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return &ReportDraft{}, nil
	}
	return DecodeDraft(resp.Text)
}

func buildReasoningPrompt(q VehicleQuery, marketSummary string, sources []GroundingSource) string {
	var buf bytes.Buffer

	writeSection(&buf, "VEHICLE", formatVehicle(q))
	if q.IsGeneral() {
		writeSection(&buf, "MODE", "General model analysis: no specific listing is attached. "+
			"Analyze the model and year overall rather than one offer.")
	}
	writeSection(&buf, "MARKET_SUMMARY", marketSummary)
	writeSection(&buf, "SOURCES", formatSources(sources))
	writeSection(&buf, "TASK", "Using the market summary above, produce a complete analysis of this vehicle. "+
		"Estimate the depreciation curve, list the issues most likely to occur, weigh pros against cons, "+
		"and lay out a maintenance plan with realistic costs.")
	writeSection(&buf, "OUTPUT", "Return exactly one JSON object with this shape and nothing else:\n"+reportSchema)
	writeSection(&buf, "RULES", strings.Join([]string{
		`- depreciationData must hold exactly 6 points labeled "Current", "+1 Year", "+2 Years", "+3 Years", "+4 Years", "+5 Years", in that order`,
		"- reliabilityScore.score is a number between 0 and 100",
		"- monetary values use " + currencyOrDefault(q.Currency),
		"- do not invent sources; only rely on the market summary",
	}, "\n"))

	return strings.TrimSpace(buf.String()) + "\n"
}

func formatVehicle(q VehicleQuery) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Make: %s\nModel: %s\nYear: %d\n", q.Make, q.Model, q.Year)
	if q.FuelType != "" {
		fmt.Fprintf(&sb, "Fuel: %s\n", q.FuelType)
	}
	if !q.IsGeneral() {
		fmt.Fprintf(&sb, "Mileage: %.0f km\nAsking price: %.0f %s\n", q.Mileage, q.Price, currencyOrDefault(q.Currency))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSources(sources []GroundingSource) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&sb, "- %s (%s)\n", src.Title, src.URI)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
