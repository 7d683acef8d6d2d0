// Package research runs the per-keyword analysis pipeline: concurrent
// source aggregation, cached memoization, scoring, and forecasting.
package research

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/models"
	"github.com/stockvision/stockvision/internal/sources"
)

// ErrInvalidKeyword is the only failure surfaced to callers; everything
// source-side is absorbed into a degraded record.
var ErrInvalidKeyword = errors.New("keyword is empty after normalization")

// Aggregator fans out to the demand provider and every enabled supply
// provider and merges their readings into one raw signal record.
type Aggregator struct {
	demand   sources.DemandProvider
	supplies []sources.SupplyProvider
}

// NewAggregator creates an aggregator over the configured providers.
func NewAggregator(demand sources.DemandProvider, supplies []sources.SupplyProvider) *Aggregator {
	return &Aggregator{demand: demand, supplies: supplies}
}

// Aggregate queries all sources concurrently for the keyword. Unavailable
// supply sources are excluded from the weighted average entirely (count
// and weight both dropped); an unavailable demand provider falls back to
// a deterministic synthetic series. The keyword must already be normalized
// and non-empty.
func (a *Aggregator) Aggregate(ctx context.Context, keyword string) (*models.RawSignalRecord, error) {
	if keyword == "" {
		return nil, ErrInvalidKeyword
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		demand   sources.DemandSignal
		readings []models.SourceReading
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		signal, err := a.demand.FetchDemand(ctx, keyword)
		if err != nil {
			log.Warn().Err(err).Str("keyword", keyword).Msg("Demand unavailable, using synthetic series")
			signal = sources.SyntheticDemand(keyword)
		}
		mu.Lock()
		demand = signal
		mu.Unlock()
	}()

	for _, provider := range a.supplies {
		cfg := provider.Config()
		if !cfg.Enabled {
			continue
		}

		wg.Add(1)
		go func(p sources.SupplyProvider, cfg sources.SourceConfig) {
			defer wg.Done()
			reading := models.SourceReading{
				SourceID: cfg.ID,
				Name:     cfg.Name,
				Weight:   cfg.Weight,
			}
			count, err := p.FetchSupply(ctx, keyword)
			if err == nil {
				reading.Count = count
				reading.Available = true
			}
			mu.Lock()
			readings = append(readings, reading)
			mu.Unlock()
		}(provider, cfg)
	}

	wg.Wait()

	record := &models.RawSignalRecord{
		Keyword:        keyword,
		DemandSeries:   demand.Series,
		DemandSource:   demand.Source,
		SupplyReadings: readings,
		FetchedAt:      time.Now(),
	}
	fillDemandStats(record)
	fillWeightedSupply(record)

	log.Info().
		Str("keyword", keyword).
		Str("demand_source", record.DemandSource).
		Float64("weighted_supply", record.WeightedSupply).
		Int("sources_available", record.SourcesAvailable).
		Msg("Aggregation complete")

	return record, nil
}

func fillDemandStats(rec *models.RawSignalRecord) {
	if len(rec.DemandSeries) == 0 {
		return
	}
	rec.CurrentDemand = rec.DemandSeries[len(rec.DemandSeries)-1]
	if mean, err := stats.Mean(rec.DemandSeries); err == nil {
		rec.AverageDemand = mean
	}
	if max, err := stats.Max(rec.DemandSeries); err == nil {
		rec.MaxDemand = max
	}
	if min, err := stats.Min(rec.DemandSeries); err == nil {
		rec.MinDemand = min
	}
}

// fillWeightedSupply computes the weight-normalized average over available
// sources only, so a missing provider redistributes its weight instead of
// dragging the average toward zero.
func fillWeightedSupply(rec *models.RawSignalRecord) {
	var weighted, totalWeight float64
	available := 0
	for _, r := range rec.SupplyReadings {
		if !r.Available {
			continue
		}
		weighted += float64(r.Count) * r.Weight
		totalWeight += r.Weight
		available++
	}
	rec.SourcesAvailable = available
	if totalWeight > 0 {
		rec.WeightedSupply = weighted / totalWeight
	}
}
