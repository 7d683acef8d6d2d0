package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/models"
)

const (
	TrendsAPIBase = "https://trends.google.com"

	trendsTimeframe = "today 12-m"
	trendsLocale    = "en-US"
	trendsTimezone  = "360"
)

// TrendsClient fetches search-interest series from Google Trends.
// The API is unofficial: an explore call issues a widget token, then the
// widgetdata endpoint returns the timeline. Both responses carry an XSSI
// prefix that must be stripped before JSON parsing.
type TrendsClient struct {
	client *resty.Client
}

// NewTrendsClient creates a new demand provider.
func NewTrendsClient(timeout time.Duration) *TrendsClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TrendsClient{
		client: resty.New().
			SetBaseURL(TrendsAPIBase).
			SetTimeout(timeout).
			SetRetryCount(1).
			SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0").
			SetHeader("Accept-Language", "en-US,en;q=0.9"),
	}
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string    `json:"time"`
			Value []float64 `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// FetchDemand returns a fixed-length interest series for the keyword over
// the last 12 months. Any failure maps to ErrUnavailable; the aggregator
// substitutes a synthetic series instead of failing the request.
func (c *TrendsClient) FetchDemand(ctx context.Context, keyword string) (DemandSignal, error) {
	token, request, err := c.explore(ctx, keyword)
	if err != nil {
		log.Warn().Err(err).Str("keyword", keyword).Msg("Trends explore failed")
		return DemandSignal{}, fmt.Errorf("trends explore: %w", ErrUnavailable)
	}

	values, err := c.timeline(ctx, token, request)
	if err != nil {
		log.Warn().Err(err).Str("keyword", keyword).Msg("Trends timeline failed")
		return DemandSignal{}, fmt.Errorf("trends timeline: %w", ErrUnavailable)
	}

	if len(values) == 0 {
		return DemandSignal{}, fmt.Errorf("trends: empty timeline: %w", ErrUnavailable)
	}

	log.Debug().
		Str("keyword", keyword).
		Int("points", len(values)).
		Msg("Demand fetched")

	return DemandSignal{
		Series: Resample(values, DemandPoints),
		Source: models.DemandSourceLive,
	}, nil
}

// explore requests a widget token for the interest-over-time timeseries.
func (c *TrendsClient) explore(ctx context.Context, keyword string) (string, json.RawMessage, error) {
	req := map[string]interface{}{
		"comparisonItem": []map[string]string{
			{"keyword": keyword, "geo": "", "time": trendsTimeframe},
		},
		"category": 0,
		"property": "",
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":  trendsLocale,
			"tz":  trendsTimezone,
			"req": string(reqJSON),
		}).
		Get("/trends/api/explore")

	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode() != 200 {
		return "", nil, fmt.Errorf("explore returned %d", resp.StatusCode())
	}

	var explore exploreResponse
	if err := json.Unmarshal(stripXSSIPrefix(resp.Body()), &explore); err != nil {
		return "", nil, fmt.Errorf("failed to parse explore response: %w", err)
	}

	for _, w := range explore.Widgets {
		if w.ID == "TIMESERIES" {
			return w.Token, w.Request, nil
		}
	}
	return "", nil, fmt.Errorf("no timeseries widget in explore response")
}

// timeline fetches the interest-over-time values using a widget token.
func (c *TrendsClient) timeline(ctx context.Context, token string, request json.RawMessage) ([]float64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"hl":    trendsLocale,
			"tz":    trendsTimezone,
			"req":   string(request),
			"token": token,
		}).
		Get("/trends/api/widgetdata/multiline")

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("widgetdata returned %d", resp.StatusCode())
	}

	var multiline multilineResponse
	if err := json.Unmarshal(stripXSSIPrefix(resp.Body()), &multiline); err != nil {
		return nil, fmt.Errorf("failed to parse widgetdata response: %w", err)
	}

	values := make([]float64, 0, len(multiline.Default.TimelineData))
	for _, p := range multiline.Default.TimelineData {
		if len(p.Value) > 0 {
			values = append(values, p.Value[0])
		}
	}
	return values, nil
}

// stripXSSIPrefix removes the ")]}'," guard Google prepends to API bodies.
func stripXSSIPrefix(body []byte) []byte {
	s := string(body)
	if idx := strings.IndexAny(s, "{["); idx > 0 {
		s = s[idx:]
	}
	return []byte(s)
}

// Resample reduces a series to n points by averaging equal buckets.
// Shorter inputs are padded by repeating the first value.
func Resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	if len(values) <= n {
		out := make([]float64, n)
		pad := n - len(values)
		for i := 0; i < pad; i++ {
			out[i] = values[0]
		}
		copy(out[pad:], values)
		return out
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i * len(values) / n
		hi := (i + 1) * len(values) / n
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
