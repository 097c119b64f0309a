package analysis

import "strings"

// Sentinels for required free-text fields the model failed to produce.
const (
	AnalysisIncompleteSentinel = "Analysis incomplete. Please try again."
	MaintenanceUnknownSentinel = "Not available"
)

// Normalize merges the stage-1 facts and the stage-2 draft into a complete
// AnalysisResult. Pure and total: every required field gets either the
// draft's value or its documented default, so consumers never branch on
// presence except for the deliberately optional fields.
//
// Out-of-range upstream values are repaired rather than rejected:
// reliabilityScore.score is clamped into [0,100] and an inverted price
// range is swapped so min <= max always holds. The depreciation sequence is
// passed through in the order produced.
func Normalize(marketSummary string, sources []GroundingSource, draft *ReportDraft) AnalysisResult {
	if draft == nil {
		draft = &ReportDraft{}
	}

	res := AnalysisResult{
		SearchSummary:     marketSummary,
		ReasoningAnalysis: stringOr(draft.ReasoningAnalysis, AnalysisIncompleteSentinel),
		Sources:           sliceOr(sources),
		PriceRange:        normalizePriceRange(draft.PriceRange),
		DepreciationData:  sliceOr(draft.DepreciationData),
		CommonIssues:      sliceOr(draft.CommonIssues),
		Pros:              sliceOr(draft.Pros),
		Cons:              sliceOr(draft.Cons),
		MaintenanceCost:   stringOr(draft.MaintenanceCost, MaintenanceUnknownSentinel),
		MaintenanceSched:  sliceOr(draft.MaintenanceSchedule),
	}

	// Optional fields: absence stays meaningful, only the values are repaired.
	res.MaintenanceCostBreakdown = draft.MaintenanceCostBreakdown
	res.FuelEfficiency = draft.FuelEfficiency
	res.SimilarListings = draft.SimilarListings
	if draft.ReliabilityScore != nil {
		rs := *draft.ReliabilityScore
		rs.Score = clamp(rs.Score, 0, 100)
		res.ReliabilityScore = &rs
	}
	if draft.VehicleImageURL != nil {
		res.VehicleImageURL = strings.TrimSpace(*draft.VehicleImageURL)
	}
	return res
}

func normalizePriceRange(pr *PriceRange) PriceRange {
	if pr == nil {
		return PriceRange{}
	}
	out := *pr
	if out.Min > out.Max {
		out.Min, out.Max = out.Max, out.Min
	}
	return out
}

func stringOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func sliceOr[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
