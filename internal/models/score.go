package models

import "time"

// MarketStatus classifies a keyword's market by opportunity score.
type MarketStatus string

const (
	StatusBlueOcean MarketStatus = "Blue Ocean"
	StatusRedOcean  MarketStatus = "Red Ocean"
	StatusNeutral   MarketStatus = "Neutral"
)

// Tier buckets the weighted niche score for recommendation strength.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// ForecastPoint is one day of the demand forecast with its uncertainty band.
type ForecastPoint struct {
	Day       int     `json:"day"`
	Predicted float64 `json:"predicted"`
	Lower     int     `json:"lower"`
	Upper     int     `json:"upper"`
}

// ScoredResult is the full analysis for one keyword. It is derived from a
// RawSignalRecord on demand and never stored independently.
type ScoredResult struct {
	Keyword          string          `json:"keyword"`
	DemandScore      int             `json:"demand_score"`
	SupplyCount      int             `json:"supply_count"`
	OpportunityScore int             `json:"opportunity_score"`
	Status           MarketStatus    `json:"status"`
	GrowthPct        float64         `json:"growth_pct"`
	Trend            string          `json:"trend"`      // rising, stable, falling
	Volatility       float64         `json:"volatility"` // stddev of the demand series
	DemandSource     string          `json:"demand_source"`
	SourcesAvailable int             `json:"sources_available"`
	SupplyReadings   []SourceReading `json:"supply_readings"`
	Forecast         []ForecastPoint `json:"forecast"`
	FetchedAt        time.Time       `json:"fetched_at"`
}

// NicheResult extends a ScoredResult with the four-factor weighted score
// used by discovery.
type NicheResult struct {
	ScoredResult

	Category         string  `json:"category"`
	OpportunityNorm  float64 `json:"opportunity_norm"`
	GrowthScore      float64 `json:"growth_score"`
	CompetitionScore float64 `json:"competition_score"`
	MarketGapScore   float64 `json:"market_gap_score"`
	FinalScore       float64 `json:"final_score"`
	Confidence       float64 `json:"confidence"`
	Tier             Tier    `json:"tier"`
	Recommendation   string  `json:"recommendation"`
}

// DiscoveryResponse is the ranked output of a niche discovery run.
type DiscoveryResponse struct {
	Niches        []*NicheResult `json:"niches"`
	TotalAnalyzed int            `json:"total_analyzed"`
	Failed        int            `json:"failed"`
	AverageScore  float64        `json:"average_score"`
	TopCategory   string         `json:"top_category"`
	Categories    []string       `json:"categories"`
}
