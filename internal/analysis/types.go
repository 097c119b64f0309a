package analysis

import (
	"strconv"
	"strings"
)

// Fuel type values accepted in a VehicleQuery.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelHybrid   = "Hybrid"
	FuelElectric = "Electric"
	FuelLPG      = "LPG"
)

// VehicleQuery describes the vehicle under analysis. It is immutable once
// submitted to the pipeline. Price == 0 and Mileage == 0 together denote a
// "general model" query with no specific listing attached.
type VehicleQuery struct {
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Mileage  float64 `json:"mileage"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	FuelType string  `json:"fuelType"`
}

// IsGeneral reports whether the query targets the model in general rather
// than a concrete listing.
func (q VehicleQuery) IsGeneral() bool {
	return q.Price == 0 && q.Mileage == 0
}

// Label renders the vehicle as "2018 Audi A4" for prompts and logs.
func (q VehicleQuery) Label() string {
	parts := []string{}
	if q.Year > 0 {
		parts = append(parts, strconv.Itoa(q.Year))
	}
	if strings.TrimSpace(q.Make) != "" {
		parts = append(parts, strings.TrimSpace(q.Make))
	}
	if strings.TrimSpace(q.Model) != "" {
		parts = append(parts, strings.TrimSpace(q.Model))
	}
	return strings.Join(parts, " ")
}

// GroundingSource is one citation from the grounded retrieval stage.
// Duplicates are kept; order is the upstream citation order.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// PriceRange is the estimated market range. Min <= Max after normalization.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DepreciationPoint is one point of the projected value curve. Year is a
// label ("Current", "+1 Year", ...), not a number; chronological order is
// significant and preserved as produced.
type DepreciationPoint struct {
	Year  string  `json:"year"`
	Value float64 `json:"value"`
}

// CommonIssue is one known defect with a textual repair-cost estimate.
type CommonIssue struct {
	Issue               string `json:"issue"`
	Description         string `json:"description"`
	EstimatedRepairCost string `json:"estimatedRepairCost"`
}

// MaintenanceItem is one scheduled service task.
type MaintenanceItem struct {
	Interval      string `json:"interval"`
	Task          string `json:"task"`
	EstimatedCost string `json:"estimatedCost"`
}

// CostBreakdownEntry splits the annual maintenance cost by component.
// Percentages are advisory; they are not required to sum to 100.
type CostBreakdownEntry struct {
	Component      string  `json:"component"`
	CostPercentage float64 `json:"costPercentage"`
}

// FuelEfficiency holds free-text consumption figures plus a category
// baseline and a verdict against it.
type FuelEfficiency struct {
	City            string `json:"city"`
	Highway         string `json:"highway"`
	Combined        string `json:"combined"`
	AverageCombined string `json:"averageCombined"`
	Verdict         string `json:"verdict"`
}

// SimilarListing is one comparable offer found upstream. Price is text as
// produced by the model ("~ 18 500 EUR").
type SimilarListing struct {
	Description string `json:"description"`
	Price       string `json:"price"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
}

// ReliabilityScore is a 0-100 score with a label and supporting text.
type ReliabilityScore struct {
	Score   float64 `json:"score"`
	Rating  string  `json:"rating"`
	Details string  `json:"details"`
}

// AnalysisResult is the pipeline's complete output. Every required field is
// populated after normalization; only the pointer-typed fields remain
// optional, where absence means "no data elicited".
type AnalysisResult struct {
	SearchSummary     string              `json:"searchSummary"`
	ReasoningAnalysis string              `json:"reasoningAnalysis"`
	Sources           []GroundingSource   `json:"sources"`
	PriceRange        PriceRange          `json:"priceRange"`
	DepreciationData  []DepreciationPoint `json:"depreciationData"`
	CommonIssues      []CommonIssue       `json:"commonIssues"`
	Pros              []string            `json:"pros"`
	Cons              []string            `json:"cons"`
	MaintenanceCost   string              `json:"maintenanceCost"`
	MaintenanceSched  []MaintenanceItem   `json:"maintenanceSchedule"`

	MaintenanceCostBreakdown []CostBreakdownEntry `json:"maintenanceCostBreakdown,omitempty"`
	FuelEfficiency           *FuelEfficiency      `json:"fuelEfficiency,omitempty"`
	SimilarListings          []SimilarListing     `json:"similarListings,omitempty"`
	ReliabilityScore         *ReliabilityScore    `json:"reliabilityScore,omitempty"`
	VehicleImageURL          string               `json:"vehicleImageUrl,omitempty"`
}

// MarketFacts is the grounded retrieval stage output.
type MarketFacts struct {
	Summary string
	Sources []GroundingSource
}
