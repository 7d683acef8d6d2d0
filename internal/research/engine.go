package research

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/cache"
	"github.com/stockvision/stockvision/internal/models"
	"github.com/stockvision/stockvision/internal/scoring"
)

// DefaultAnalyzeTimeout bounds the whole single-keyword path. When it
// expires mid-aggregation, in-flight source calls fail over to
// unavailable/synthetic readings and the caller gets a best-effort
// partial record rather than a hang.
const DefaultAnalyzeTimeout = 45 * time.Second

// Engine is the single-keyword analysis pipeline: cache lookup, aggregation
// on miss, then scoring and forecasting over the record.
type Engine struct {
	aggregator *Aggregator
	cache      *cache.Cache
	timeout    time.Duration
}

// NewEngine creates the analysis engine. The cache is injected and owned
// by the caller.
func NewEngine(aggregator *Aggregator, c *cache.Cache, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultAnalyzeTimeout
	}
	return &Engine{aggregator: aggregator, cache: c, timeout: timeout}
}

// AnalyzeRecord returns the raw signal record for a keyword, from cache
// when valid. ErrInvalidKeyword is the only possible error.
func (e *Engine) AnalyzeRecord(ctx context.Context, keyword string) (*models.RawSignalRecord, error) {
	normalized := models.NormalizeKeyword(keyword)
	if normalized == "" {
		return nil, ErrInvalidKeyword
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.cache.GetOrCompute(ctx, normalized, func(ctx context.Context) (*models.RawSignalRecord, error) {
		return e.aggregator.Aggregate(ctx, normalized)
	})
}

// Analyze runs the full pipeline for one keyword and logs the lookup.
func (e *Engine) Analyze(ctx context.Context, keyword string) (*models.ScoredResult, error) {
	record, err := e.AnalyzeRecord(ctx, keyword)
	if err != nil {
		return nil, err
	}

	result := scoring.Score(record)
	result.Forecast = scoring.Forecast(record.DemandSeries)

	e.cache.RecordLookup(record.Keyword, result.OpportunityScore)
	return result, nil
}

// AnalyzeBatch analyzes a comma-separated keyword list, deduplicated by
// normalized form. Entries that normalize to empty are skipped; an
// all-empty input is rejected.
func (e *Engine) AnalyzeBatch(ctx context.Context, keywords string) ([]*models.ScoredResult, error) {
	seen := make(map[string]bool)
	var candidates []string
	for _, raw := range strings.Split(keywords, ",") {
		normalized := models.NormalizeKeyword(raw)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		candidates = append(candidates, normalized)
	}
	if len(candidates) == 0 {
		return nil, ErrInvalidKeyword
	}

	results := make([]*models.ScoredResult, 0, len(candidates))
	for _, keyword := range candidates {
		result, err := e.Analyze(ctx, keyword)
		if err != nil {
			log.Warn().Err(err).Str("keyword", keyword).Msg("Batch keyword skipped")
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Cache exposes the engine's cache for export, history, and clearing.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}
