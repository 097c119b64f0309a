package analysis

import (
	"encoding/json"
	"strings"
)

// ReportDraft is the stage-2 payload as the model produced it. Pointer and
// slice fields distinguish "absent" from "zero"; Normalize fills in every
// default. Field names are part of the wire contract and must stay in sync
// with the prompt template that requests them.
type ReportDraft struct {
	ReasoningAnalysis        *string              `json:"reasoningAnalysis"`
	PriceRange               *PriceRange          `json:"priceRange"`
	DepreciationData         []DepreciationPoint  `json:"depreciationData"`
	CommonIssues             []CommonIssue        `json:"commonIssues"`
	Pros                     []string             `json:"pros"`
	Cons                     []string             `json:"cons"`
	MaintenanceCost          *string              `json:"maintenanceCost"`
	MaintenanceSchedule      []MaintenanceItem    `json:"maintenanceSchedule"`
	MaintenanceCostBreakdown []CostBreakdownEntry `json:"maintenanceCostBreakdown"`
	FuelEfficiency           *FuelEfficiency      `json:"fuelEfficiency"`
	SimilarListings          []SimilarListing     `json:"similarListings"`
	ReliabilityScore         *ReliabilityScore    `json:"reliabilityScore"`
	VehicleImageURL          *string              `json:"vehicleImageUrl"`
}

// DecodeDraft parses the raw model text into a ReportDraft after stripping
// any markdown code fence. A payload that does not parse as the expected
// object yields a FormatError; no repair heuristic is attempted.
func DecodeDraft(raw string) (*ReportDraft, error) {
	payload := stripCodeFence(raw)
	var draft ReportDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, &FormatError{Err: err, Raw: raw}
	}
	return &draft, nil
}

// stripCodeFence unwraps a ```json ... ``` (or bare ```) block, tolerating
// prose around the fence. Only a fence at the start of a line counts, so
// backticks inside JSON string values are left alone. Text without a fence
// is returned trimmed.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	start := fenceIndex(s)
	if start < 0 {
		return s
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the optional language tag line.
		rest = rest[nl+1:]
	} else {
		rest = strings.TrimPrefix(rest, "json")
	}
	if end := strings.LastIndex(rest, "\n```"); end >= 0 {
		rest = rest[:end]
	} else {
		rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	}
	return strings.TrimSpace(rest)
}

// fenceIndex returns the offset of the first line-leading ``` marker, or -1.
func fenceIndex(s string) int {
	if strings.HasPrefix(s, "```") {
		return 0
	}
	if i := strings.Index(s, "\n```"); i >= 0 {
		return i + 1
	}
	return -1
}
