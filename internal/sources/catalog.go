package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Result-count patterns tried in order against the search page text.
// Catalogs render counts as "1,234 results", "showing 1,234", etc.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d,]+)\s*(?:results?|images?|photos?|assets?|items?)`),
	regexp.MustCompile(`(?i)(?:found|showing|of)\s*([\d,]+)`),
	regexp.MustCompile(`(?i)([\d,]+)\s*(?:stock|free|premium)`),
	regexp.MustCompile(`(?i)([\d,]+)\s*matching`),
}

// minPlausibleCount filters out navigation and pagination numbers.
const minPlausibleCount = 50

// CatalogClient scrapes the result count for a keyword from one stock
// catalog's search page. One client per configured source; clients share
// no mutable state.
type CatalogClient struct {
	client *resty.Client
	config SourceConfig
}

// NewCatalogClient creates a supply provider for the given source config.
func NewCatalogClient(config SourceConfig, timeout time.Duration) *CatalogClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CatalogClient{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(1).
			SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0").
			SetHeader("Accept-Language", "en-US,en;q=0.9").
			SetHeader("Accept", "text/html,application/xhtml+xml"),
		config: config,
	}
}

// Config returns the static source configuration.
func (c *CatalogClient) Config() SourceConfig {
	return c.config
}

// FetchSupply fetches the search page and extracts the asset count.
// Any failure maps to ErrUnavailable.
func (c *CatalogClient) FetchSupply(ctx context.Context, keyword string) (int, error) {
	query := url.QueryEscape(keyword)
	searchURL := strings.ReplaceAll(c.config.URL, "{query}", query)

	resp, err := c.client.R().
		SetContext(ctx).
		Get(searchURL)

	if err != nil {
		log.Warn().Err(err).Str("source", c.config.ID).Str("keyword", keyword).Msg("Supply fetch failed")
		return 0, fmt.Errorf("%s: %w", c.config.ID, ErrUnavailable)
	}

	if resp.StatusCode() != 200 {
		log.Warn().Int("status", resp.StatusCode()).Str("source", c.config.ID).Msg("Supply fetch bad status")
		return 0, fmt.Errorf("%s returned %d: %w", c.config.ID, resp.StatusCode(), ErrUnavailable)
	}

	count, ok := extractCount(resp.String())
	if !ok {
		return 0, fmt.Errorf("%s: no count found: %w", c.config.ID, ErrUnavailable)
	}

	log.Debug().
		Str("source", c.config.ID).
		Str("keyword", keyword).
		Int("count", count).
		Msg("Supply fetched")

	return count, nil
}

// extractCount scans page text for a plausible result count.
func extractCount(body string) (int, bool) {
	for _, pattern := range countPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			numStr := strings.ReplaceAll(match[1], ",", "")
			n, err := strconv.Atoi(numStr)
			if err == nil && n > minPlausibleCount {
				return n, true
			}
		}
	}
	return 0, false
}
