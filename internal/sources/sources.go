// Package sources provides the external data providers for StockVision:
// a demand provider (search interest) and the stock-catalog supply providers.
package sources

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by any provider that could not produce a
// reading (network failure, bad status, unparseable response, timeout).
// It is always absorbed by the aggregator, never surfaced to callers.
var ErrUnavailable = errors.New("source unavailable")

// DemandPoints is the fixed length of every demand series.
const DemandPoints = 12

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 12 * time.Second

// SourceConfig is the static configuration for one supply source, loaded
// once at process start. URL holds a {query} placeholder for the keyword.
type SourceConfig struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// DemandSignal is a normalized search-interest series (0-100 per point).
type DemandSignal struct {
	Series []float64
	Source string
}

// DemandProvider fetches search-interest data for a keyword.
type DemandProvider interface {
	FetchDemand(ctx context.Context, keyword string) (DemandSignal, error)
}

// SupplyProvider fetches the asset count for a keyword from one catalog.
type SupplyProvider interface {
	Config() SourceConfig
	FetchSupply(ctx context.Context, keyword string) (int, error)
}

// DefaultSources returns the built-in stock catalog configuration.
// Weights reflect relative market importance and need not sum to 1;
// the aggregator renormalizes over the sources that respond.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{ID: "adobe_stock", Name: "Adobe Stock", URL: "https://stock.adobe.com/search?k={query}", Weight: 0.40, Enabled: true},
		{ID: "shutterstock", Name: "Shutterstock", URL: "https://www.shutterstock.com/search/{query}", Weight: 0.35, Enabled: true},
		{ID: "pexels", Name: "Pexels (Free)", URL: "https://www.pexels.com/search/{query}", Weight: 0.15, Enabled: true},
		{ID: "unsplash", Name: "Unsplash (Free)", URL: "https://unsplash.com/s/photos/{query}", Weight: 0.10, Enabled: true},
	}
}
