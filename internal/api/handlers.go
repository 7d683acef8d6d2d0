package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/cache"
	"github.com/stockvision/stockvision/internal/discovery"
	"github.com/stockvision/stockvision/internal/research"
	"github.com/stockvision/stockvision/internal/scoring"
	"github.com/stockvision/stockvision/internal/sources"
)

// Handlers holds the API handlers.
type Handlers struct {
	engine   *research.Engine
	disc     *discovery.Orchestrator
	sources  []sources.SourceConfig
	cacheTTL time.Duration
}

// NewHandlers creates new API handlers.
func NewHandlers(engine *research.Engine, disc *discovery.Orchestrator, srcs []sources.SourceConfig, cacheTTL time.Duration) *Handlers {
	return &Handlers{engine: engine, disc: disc, sources: srcs, cacheTTL: cacheTTL}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func getLimit(r *http.Request, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	return limit
}

// ============================================================================
// ANALYSIS HANDLERS
// ============================================================================

// Analyze runs the full analysis pipeline for one keyword.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	result, err := h.engine.Analyze(r.Context(), keyword)
	if err != nil {
		if errors.Is(err, research.ErrInvalidKeyword) {
			respondError(w, http.StatusBadRequest, "Keyword is required")
			return
		}
		respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// AnalyzeBatch analyzes a comma-separated keyword list, deduplicated by
// normalized form.
func (h *Handlers) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	keywords := r.URL.Query().Get("keywords")

	results, err := h.engine.AnalyzeBatch(r.Context(), keywords)
	if err != nil {
		if errors.Is(err, research.ErrInvalidKeyword) {
			respondError(w, http.StatusBadRequest, "At least one keyword is required")
			return
		}
		respondError(w, http.StatusInternalServerError, "Batch analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// Discover ranks niche candidates, optionally filtered by category.
func (h *Handlers) Discover(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	limit := getLimit(r, discovery.DefaultLimit, 100)

	response, err := h.disc.Discover(r.Context(), category, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Discovery failed")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// ============================================================================
// CACHE & HISTORY HANDLERS
// ============================================================================

// GetHistory returns recent lookups, newest first.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := getLimit(r, 50, cache.DefaultHistoryCap)

	history := h.engine.Cache().History(limit)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

// ExportCSV streams all cached analyses as CSV rows.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records := h.engine.Cache().Export()

	filename := fmt.Sprintf("stockvision_export_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(w)

	writer.Write([]string{
		"Keyword", "Demand Score", "Supply Count", "Opportunity Score",
		"Status", "Growth %", "Demand Source", "Fetched At",
	})

	for _, rec := range records {
		result := scoring.Score(rec)
		writer.Write([]string{
			result.Keyword,
			strconv.Itoa(result.DemandScore),
			strconv.Itoa(result.SupplyCount),
			strconv.Itoa(result.OpportunityScore),
			string(result.Status),
			strconv.FormatFloat(result.GrowthPct, 'f', 1, 64),
			result.DemandSource,
			result.FetchedAt.Format(time.RFC3339),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Warn().Err(err).Int("records", len(records)).Msg("CSV export truncated")
	}
}

// ClearCache drops all cached analyses and the lookup history.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.engine.Cache().Clear()

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Cache and history cleared",
	})
}

// ============================================================================
// CONFIG HANDLERS
// ============================================================================

// GetSources returns the per-source configuration.
func (h *Handlers) GetSources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sources":            h.sources,
		"cache_expiry_hours": h.cacheTTL.Hours(),
		"niche_categories":   h.disc.CategoryNames(),
	})
}

// HealthCheck returns service health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stockvision",
	})
}
