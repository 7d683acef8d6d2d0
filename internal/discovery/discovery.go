// Package discovery ranks niche candidates from a static category catalog
// by the four-factor weighted score.
package discovery

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/models"
	"github.com/stockvision/stockvision/internal/scoring"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers caps concurrent candidate analyses so discovery
	// respects external rate limits.
	DefaultWorkers = 5

	// DefaultLimit is the result count when the caller does not set one.
	DefaultLimit = 20

	// maxPerCategory keeps an unfiltered run to a bounded candidate set.
	maxPerCategory = 4
)

// RecordAnalyzer is the single-keyword pipeline discovery runs per
// candidate; cache hits make repeated runs cheap.
type RecordAnalyzer interface {
	AnalyzeRecord(ctx context.Context, keyword string) (*models.RawSignalRecord, error)
}

// Orchestrator runs discovery over the candidate catalog.
type Orchestrator struct {
	analyzer RecordAnalyzer
	catalog  []Category
	workers  int
}

// NewOrchestrator creates a discovery orchestrator over the given catalog.
func NewOrchestrator(analyzer RecordAnalyzer, catalog []Category, workers int) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Orchestrator{analyzer: analyzer, catalog: catalog, workers: workers}
}

type candidate struct {
	keyword      string
	category     string
	growthFactor float64
}

// Discover analyzes candidates (optionally filtered to one category),
// ranks them by final score descending, and truncates to limit.
// Per-candidate failures are dropped and counted, never fatal.
func (o *Orchestrator) Discover(ctx context.Context, category string, limit int) (*models.DiscoveryResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	candidates := o.candidates(category)

	var (
		mu      sync.Mutex
		results []*models.NicheResult
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, cand := range candidates {
		cand := cand
		g.Go(func() error {
			record, err := o.analyzer.AnalyzeRecord(gctx, cand.keyword)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("keyword", cand.keyword).Msg("Discovery candidate failed")
				failed++
				return nil
			}
			results = append(results, scoring.NicheScore(record, cand.category, cand.growthFactor))
			return nil
		})
	}
	// Workers never return errors; Wait only orders the collection.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	response := &models.DiscoveryResponse{
		TotalAnalyzed: len(results),
		Failed:        failed,
		AverageScore:  averageScore(results),
		TopCategory:   topCategory(results),
		Categories:    o.CategoryNames(),
	}
	if len(results) > limit {
		results = results[:limit]
	}
	response.Niches = results

	log.Info().
		Int("analyzed", response.TotalAnalyzed).
		Int("failed", failed).
		Str("top_category", response.TopCategory).
		Msg("Discovery complete")

	return response, nil
}

// candidates selects the candidate set, filtered to one category when
// requested (case-insensitive). An unfiltered run takes the first
// maxPerCategory keywords of every category.
func (o *Orchestrator) candidates(category string) []candidate {
	var out []candidate
	for _, cat := range o.catalog {
		if category != "" && !strings.EqualFold(cat.Name, category) {
			continue
		}
		keywords := cat.Keywords
		if category == "" && len(keywords) > maxPerCategory {
			keywords = keywords[:maxPerCategory]
		}
		for _, kw := range keywords {
			out = append(out, candidate{keyword: kw, category: cat.Name, growthFactor: cat.GrowthFactor})
		}
	}
	return out
}

// CategoryNames lists the catalog's category names in order.
func (o *Orchestrator) CategoryNames() []string {
	names := make([]string, len(o.catalog))
	for i, cat := range o.catalog {
		names[i] = cat.Name
	}
	return names
}

func averageScore(results []*models.NicheResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.FinalScore
	}
	return math.Round(sum/float64(len(results))*10) / 10
}

// topCategory is the category with the highest mean final score among all
// analyzed candidates.
func topCategory(results []*models.NicheResult) string {
	if len(results) == 0 {
		return ""
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range results {
		sums[r.Category] += r.FinalScore
		counts[r.Category]++
	}

	best := ""
	bestMean := -1.0
	for cat, sum := range sums {
		mean := sum / float64(counts[cat])
		if mean > bestMean {
			best = cat
			bestMean = mean
		}
	}
	return best
}
