package sources

import (
	"hash/fnv"

	"github.com/stockvision/stockvision/internal/models"
)

// SyntheticDemand builds a deterministic placeholder series for a keyword
// when the demand provider is unavailable. The series is a pure function
// of the keyword (FNV-1a seeded), so repeated calls and tests reproduce
// the same values, and records are labeled so fallback data is never
// mistaken for live data.
func SyntheticDemand(keyword string) DemandSignal {
	h := fnv.New64a()
	h.Write([]byte(keyword))
	state := h.Sum64()

	// Base interest in [35, 65], jitter in [-8, 8] per point.
	base := 35 + float64(state%31)

	series := make([]float64, DemandPoints)
	for i := range series {
		state = state*6364136223846793005 + 1442695040888963407
		jitter := float64(int64(state>>33)%17) - 8
		v := base + jitter
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		series[i] = v
	}

	return DemandSignal{
		Series: series,
		Source: models.DemandSourceSynthetic,
	}
}
