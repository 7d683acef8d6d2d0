package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockvision/stockvision/internal/models"
)

func sampleRecord() *models.RawSignalRecord {
	return &models.RawSignalRecord{
		Keyword:       "mountain sunset",
		DemandSeries:  []float64{40, 42, 45, 44, 46, 48, 50, 52, 51, 53, 55, 50},
		CurrentDemand: 50,
		AverageDemand: 48,
		MaxDemand:     55,
		MinDemand:     40,
		DemandSource:  models.DemandSourceLive,
		SupplyReadings: []models.SourceReading{
			{SourceID: "adobe_stock", Name: "Adobe Stock", Weight: 0.4, Count: 100, Available: true},
			{SourceID: "shutterstock", Name: "Shutterstock", Weight: 0.6, Count: 50, Available: true},
		},
		WeightedSupply:   70,
		SourcesAvailable: 2,
		FetchedAt:        time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestScore(t *testing.T) {
	result := Score(sampleRecord())

	assert.Equal(t, 50, result.DemandScore)
	assert.Equal(t, 70, result.SupplyCount)
	// round(50 / 70 * 10000)
	assert.Equal(t, 7143, result.OpportunityScore)
	assert.Equal(t, models.StatusBlueOcean, result.Status)
	assert.Equal(t, 25.0, result.GrowthPct)
	assert.Equal(t, 2, result.SourcesAvailable)
	assert.Equal(t, models.DemandSourceLive, result.DemandSource)
}

func TestScoreClampsDemand(t *testing.T) {
	rec := sampleRecord()
	rec.CurrentDemand = 140
	assert.Equal(t, 100, Score(rec).DemandScore)

	rec.CurrentDemand = -5
	assert.Equal(t, 0, Score(rec).DemandScore)
}

func TestOpportunityScoreZeroSupply(t *testing.T) {
	// Supply floored at 1, so zero supply hits the 10000 ceiling.
	assert.Equal(t, 10000, OpportunityScore(1, 0))
	assert.Equal(t, 500000, OpportunityScore(50, 0)) // floor means demand*10000
}

func TestOpportunityScoreFormula(t *testing.T) {
	cases := []struct {
		demand, supply, want int
	}{
		{50, 70, 7143},
		{50, 500, 1000},
		{30, 1000, 300},
		{0, 100, 0},
		{100, 1, 1000000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OpportunityScore(tc.demand, tc.supply),
			"demand=%d supply=%d", tc.demand, tc.supply)
	}
}

func TestStatusBoundaries(t *testing.T) {
	assert.Equal(t, models.StatusBlueOcean, StatusFor(1000))
	assert.Equal(t, models.StatusNeutral, StatusFor(999))
	assert.Equal(t, models.StatusNeutral, StatusFor(300))
	assert.Equal(t, models.StatusRedOcean, StatusFor(299))
	assert.Equal(t, models.StatusRedOcean, StatusFor(0))
	assert.Equal(t, models.StatusBlueOcean, StatusFor(10000))
}

func TestGrowthPct(t *testing.T) {
	assert.Equal(t, 25.0, GrowthPct([]float64{40, 45, 50}))
	assert.Equal(t, -50.0, GrowthPct([]float64{80, 60, 40}))
	assert.Equal(t, 0.0, GrowthPct([]float64{50}))
	assert.Equal(t, 0.0, GrowthPct(nil))
	// First point floored at 1.
	assert.Equal(t, 5000.0, GrowthPct([]float64{0, 50}))
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Tier
	}{
		{75, models.TierS},
		{74.999, models.TierA},
		{60, models.TierA},
		{59.999, models.TierB},
		{45, models.TierB},
		{44.999, models.TierC},
		{30, models.TierC},
		{29.999, models.TierD},
		{0, models.TierD},
		{100, models.TierS},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.score), "score=%v", tc.score)
	}
}

func TestNicheScoreComposition(t *testing.T) {
	niche := NicheScore(sampleRecord(), "Technology", 1.0)

	require.NotNil(t, niche)
	assert.Equal(t, "Technology", niche.Category)
	assert.Equal(t, TierFor(niche.FinalScore), niche.Tier)
	assert.NotEmpty(t, niche.Recommendation)

	// Every sub-score stays in range.
	for name, v := range map[string]float64{
		"opportunity": niche.OpportunityNorm,
		"growth":      niche.GrowthScore,
		"competition": niche.CompetitionScore,
		"gap":         niche.MarketGapScore,
		"final":       niche.FinalScore,
		"confidence":  niche.Confidence,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}

	// Weighted sum reproduces the final score.
	want := niche.OpportunityNorm*0.40 + niche.GrowthScore*0.25 +
		niche.CompetitionScore*0.20 + niche.MarketGapScore*0.15
	assert.InDelta(t, want, niche.FinalScore, 0.35)
}

func TestNicheScoreMonotonicity(t *testing.T) {
	low := sampleRecord()
	low.WeightedSupply = 1000

	high := sampleRecord()
	high.WeightedSupply = 200000

	// More supply means more competition, a lower competition sub-score.
	assert.Greater(t,
		NicheScore(low, "x", 1.0).CompetitionScore,
		NicheScore(high, "x", 1.0).CompetitionScore)

	rising := sampleRecord()
	rising.DemandSeries = []float64{30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85}

	falling := sampleRecord()
	falling.DemandSeries = []float64{85, 80, 75, 70, 65, 60, 55, 50, 45, 40, 35, 30}

	assert.Greater(t,
		NicheScore(rising, "x", 1.0).GrowthScore,
		NicheScore(falling, "x", 1.0).GrowthScore)
}

func TestConfidencePrefersLiveData(t *testing.T) {
	live := sampleRecord()
	synthetic := sampleRecord()
	synthetic.DemandSource = models.DemandSourceSynthetic

	assert.Greater(t,
		NicheScore(live, "x", 1.0).Confidence,
		NicheScore(synthetic, "x", 1.0).Confidence)
}

func TestTrendLabel(t *testing.T) {
	assert.Equal(t, "rising", trendLabel([]float64{10, 10, 10, 10, 50, 50, 50, 50}))
	assert.Equal(t, "falling", trendLabel([]float64{50, 50, 50, 50, 10, 10, 10, 10}))
	assert.Equal(t, "stable", trendLabel([]float64{50, 51, 49, 50, 50, 51, 50, 49}))
	assert.Equal(t, "stable", trendLabel([]float64{1, 2}))
}
