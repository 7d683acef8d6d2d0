// Package scoring turns raw signal records into opportunity scores, market
// status, niche scores, and demand forecasts. Everything here is a pure
// function of its inputs.
package scoring

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/stockvision/stockvision/internal/models"
)

// Market status thresholds on the opportunity score. 1000 is Blue Ocean,
// 300 is Neutral.
const (
	BlueOceanMin = 1000
	RedOceanMax  = 300
)

// Four-factor niche score weights.
const (
	weightOpportunity = 0.40
	weightGrowth      = 0.25
	weightCompetition = 0.20
	weightMarketGap   = 0.15
)

// Sub-score scaling constants. The contract is monotonicity: more
// opportunity and growth raise the score, more supply lowers it.
const (
	// opportunityNormDivisor maps the zero-supply ceiling (10000) to 100.
	opportunityNormDivisor = 100.0
	// growthSlope: +/-40% growth spans the full 0-100 scale around 50.
	growthSlope = 1.25
	// competitionScale: 500k assets saturates the competition scale.
	competitionScale = 5000.0
	// gapSourcePenalty: each responding catalog reduces the gap by 20.
	gapSourcePenalty = 20.0
	// Gap blend between source coverage and demand.
	gapCoverageWeight = 0.6
	gapDemandWeight   = 0.4
)

// Tier thresholds on the final niche score.
const (
	tierSMin = 75
	tierAMin = 60
	tierBMin = 45
	tierCMin = 30
)

var recommendations = map[models.Tier]string{
	models.TierS: "Hot opportunity - act now",
	models.TierA: "Highly recommended",
	models.TierB: "Worth exploring",
	models.TierC: "Moderate potential",
	models.TierD: "Low priority",
}

// Score derives the opportunity analysis for a raw signal record.
func Score(rec *models.RawSignalRecord) *models.ScoredResult {
	demandScore := int(math.Round(clamp(rec.CurrentDemand, 0, 100)))
	supplyCount := int(math.Round(rec.WeightedSupply))
	opportunity := OpportunityScore(demandScore, supplyCount)

	volatility := 0.0
	if sd, err := stats.StandardDeviation(rec.DemandSeries); err == nil {
		volatility = round1(sd)
	}

	return &models.ScoredResult{
		Keyword:          rec.Keyword,
		DemandScore:      demandScore,
		SupplyCount:      supplyCount,
		OpportunityScore: opportunity,
		Status:           StatusFor(opportunity),
		GrowthPct:        GrowthPct(rec.DemandSeries),
		Trend:            trendLabel(rec.DemandSeries),
		Volatility:       volatility,
		DemandSource:     rec.DemandSource,
		SourcesAvailable: rec.SourcesAvailable,
		SupplyReadings:   rec.SupplyReadings,
		FetchedAt:        rec.FetchedAt,
	}
}

// OpportunityScore is the demand-to-supply ratio scaled by 10000. Supply
// is floored at 1 to avoid division by zero, so zero supply yields the
// 10000 ceiling.
func OpportunityScore(demandScore, supplyCount int) int {
	if supplyCount < 1 {
		supplyCount = 1
	}
	return int(math.Round(float64(demandScore) / float64(supplyCount) * 10000))
}

// StatusFor classifies an opportunity score.
func StatusFor(opportunityScore int) models.MarketStatus {
	switch {
	case opportunityScore >= BlueOceanMin:
		return models.StatusBlueOcean
	case opportunityScore < RedOceanMax:
		return models.StatusRedOcean
	default:
		return models.StatusNeutral
	}
}

// GrowthPct is the percent change between the last and first points of the
// series, rounded to one decimal. The first point is floored at 1 so a
// series starting at zero does not explode.
func GrowthPct(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	first := series[0]
	if first < 1 {
		first = 1
	}
	return round1((series[len(series)-1] - series[0]) / first * 100)
}

// NicheScore derives the four-factor weighted score for discovery.
// growthFactor is the category's growth multiplier (1.0 = neutral).
func NicheScore(rec *models.RawSignalRecord, category string, growthFactor float64) *models.NicheResult {
	scored := Score(rec)

	opportunityNorm := math.Min(100, float64(scored.OpportunityScore)/opportunityNormDivisor)

	if growthFactor <= 0 {
		growthFactor = 1.0
	}
	growthScore := clamp((50+scored.GrowthPct*growthSlope)*growthFactor, 0, 100)

	competitionScore := 100 - math.Min(100, float64(scored.SupplyCount)/competitionScale)

	coverage := clamp(100-float64(rec.SourcesAvailable)*gapSourcePenalty, 0, 100)
	marketGapScore := clamp(coverage*gapCoverageWeight+float64(scored.DemandScore)*gapDemandWeight, 0, 100)

	finalScore := round1(opportunityNorm*weightOpportunity +
		growthScore*weightGrowth +
		competitionScore*weightCompetition +
		marketGapScore*weightMarketGap)

	tier := TierFor(finalScore)

	return &models.NicheResult{
		ScoredResult:     *scored,
		Category:         category,
		OpportunityNorm:  round1(opportunityNorm),
		GrowthScore:      round1(growthScore),
		CompetitionScore: round1(competitionScore),
		MarketGapScore:   round1(marketGapScore),
		FinalScore:       finalScore,
		Confidence:       confidence(rec, scored.DemandScore),
		Tier:             tier,
		Recommendation:   recommendations[tier],
	}
}

// TierFor buckets a final score: S >= 75, A >= 60, B >= 45, C >= 30,
// D below.
func TierFor(finalScore float64) models.Tier {
	switch {
	case finalScore >= tierSMin:
		return models.TierS
	case finalScore >= tierAMin:
		return models.TierA
	case finalScore >= tierBMin:
		return models.TierB
	case finalScore >= tierCMin:
		return models.TierC
	default:
		return models.TierD
	}
}

// confidence reflects data quality: live demand data and more responding
// catalogs raise it. Capped at 95 since scraped counts are estimates.
func confidence(rec *models.RawSignalRecord, demandScore int) float64 {
	base := 55.0
	if rec.DemandSource == models.DemandSourceLive {
		base = 80.0
	}
	c := base + float64(demandScore)/10 + float64(rec.SourcesAvailable)*2
	return round1(clamp(c, 0, 95))
}

// trendLabel compares the recent third of the series against the first
// third: rising above +10%, falling below -10%, stable between.
func trendLabel(series []float64) string {
	if len(series) < 6 {
		return "stable"
	}
	third := len(series) / 3
	older, err1 := stats.Mean(series[:third])
	recent, err2 := stats.Mean(series[len(series)-third:])
	if err1 != nil || err2 != nil {
		return "stable"
	}
	if older < 1 {
		older = 1
	}
	momentum := (recent - older) / older * 100
	switch {
	case momentum > 10:
		return "rising"
	case momentum < -10:
		return "falling"
	default:
		return "stable"
	}
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

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
