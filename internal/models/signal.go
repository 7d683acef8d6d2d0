// Package models defines the core data types for StockVision.
package models

import (
	"strings"
	"time"
)

// Demand source labels. Synthetic series are generated deterministically
// from the keyword when the demand provider is unavailable, and are always
// labeled so callers can tell them apart from live data.
const (
	DemandSourceLive      = "google_trends"
	DemandSourceSynthetic = "synthetic"
)

// SourceReading is the outcome of a single supply-source fetch.
// Unavailable sources keep their config but carry no count and are
// excluded from the weighted supply average.
type SourceReading struct {
	SourceID  string  `bson:"source_id" json:"source_id"`
	Name      string  `bson:"name" json:"name"`
	Weight    float64 `bson:"weight" json:"weight"`
	Count     int     `bson:"count" json:"count"`
	Available bool    `bson:"available" json:"available"`
}

// RawSignalRecord is the merged demand/supply signal for one keyword.
// Records are immutable once stored; a refresh produces a new record.
type RawSignalRecord struct {
	Keyword string `bson:"keyword" json:"keyword"`

	// Demand (search interest, 0-100 index)
	DemandSeries  []float64 `bson:"demand_series" json:"demand_series"`
	CurrentDemand float64   `bson:"current_demand" json:"current_demand"`
	AverageDemand float64   `bson:"average_demand" json:"average_demand"`
	MaxDemand     float64   `bson:"max_demand" json:"max_demand"`
	MinDemand     float64   `bson:"min_demand" json:"min_demand"`
	DemandSource  string    `bson:"demand_source" json:"demand_source"`

	// Supply (stock catalog counts)
	SupplyReadings   []SourceReading `bson:"supply_readings" json:"supply_readings"`
	WeightedSupply   float64         `bson:"weighted_supply" json:"weighted_supply"`
	SourcesAvailable int             `bson:"sources_available" json:"sources_available"`

	FetchedAt time.Time `bson:"fetched_at" json:"fetched_at"`
}

// HistoryEntry is one line of the recent-lookups log.
type HistoryEntry struct {
	Keyword          string    `bson:"keyword" json:"keyword"`
	OpportunityScore int       `bson:"opportunity_score" json:"opportunity_score"`
	LookedUpAt       time.Time `bson:"looked_up_at" json:"looked_up_at"`
}

// NormalizeKeyword trims, case-folds, and collapses inner whitespace.
// All cache keys and lookups use the normalized form.
func NormalizeKeyword(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
