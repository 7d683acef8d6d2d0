// Package cache provides the time-boxed research cache for StockVision.
// It memoizes raw signal records per normalized keyword, collapses
// concurrent computes for the same key into one in-flight call, and keeps
// a bounded log of recent lookups.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/models"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is the cache entry validity window.
	DefaultTTL = 24 * time.Hour

	// DefaultHistoryCap bounds the recent-lookups log; oldest entries
	// are evicted first.
	DefaultHistoryCap = 500

	// DegradedTTL caps how long a record with no live data is kept, so a
	// transient outage does not poison a keyword for the full TTL.
	DegradedTTL = 5 * time.Minute
)

// ComputeFn produces a fresh record on cache miss.
type ComputeFn func(ctx context.Context) (*models.RawSignalRecord, error)

type entry struct {
	record    *models.RawSignalRecord
	expiresAt time.Time
}

// Cache is the only mutable shared state in the engine. All map and log
// mutations happen under the mutex; records themselves are immutable once
// stored, so readers share them freely.
type Cache struct {
	ttl        time.Duration
	historyCap int

	mu      sync.RWMutex
	entries map[string]entry
	history []models.HistoryEntry

	group singleflight.Group

	// store is the optional persistence mirror. Any store failure is
	// absorbed: the cache keeps operating memory-only for that call.
	store *Store

	now func() time.Time
}

// New creates a cache with the given TTL and an optional persistent store.
// A nil store means memory-only operation.
func New(ttl time.Duration, store *Store) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:        ttl,
		historyCap: DefaultHistoryCap,
		entries:    make(map[string]entry),
		store:      store,
		now:        time.Now,
	}
	c.warmStart()
	return c
}

// warmStart reloads persisted entries and history from the store.
func (c *Cache) warmStart() {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	persisted, err := c.store.LoadEntries(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Cache warm start failed, starting empty")
		return
	}
	now := c.now()
	loaded := 0
	for _, p := range persisted {
		if now.Before(p.ExpiresAt) {
			rec := p.Record
			c.entries[p.Record.Keyword] = entry{record: &rec, expiresAt: p.ExpiresAt}
			loaded++
		}
	}

	history, err := c.store.LoadHistory(ctx, c.historyCap)
	if err != nil {
		log.Warn().Err(err).Msg("History warm start failed")
	} else {
		c.history = history
	}

	log.Info().Int("entries", loaded).Int("history", len(c.history)).Msg("Cache warm start complete")
}

// GetOrCompute returns the cached record for keyword if still valid,
// otherwise computes a fresh one and stores it. Concurrent callers for the
// same uncached keyword share a single compute; all receive the same record.
func (c *Cache) GetOrCompute(ctx context.Context, keyword string, compute ComputeFn) (*models.RawSignalRecord, error) {
	if rec, ok := c.lookup(keyword); ok {
		return rec, nil
	}

	v, err, _ := c.group.Do(keyword, func() (interface{}, error) {
		// A racing caller may have stored an entry between the lookup
		// and this closure running.
		if rec, ok := c.lookup(keyword); ok {
			return rec, nil
		}

		rec, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.put(keyword, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.RawSignalRecord), nil
}

func (c *Cache) lookup(keyword string) (*models.RawSignalRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[keyword]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.record, true
}

// put stores a fresh entry; the previous entry (if any) is replaced whole.
// A fully degraded record (synthetic demand, no catalogs responding) gets
// the short DegradedTTL and is never persisted, so the keyword is retried
// soon after an outage.
func (c *Cache) put(keyword string, rec *models.RawSignalRecord) {
	ttl := c.ttl
	degraded := rec.SourcesAvailable == 0 && rec.DemandSource == models.DemandSourceSynthetic
	if degraded && ttl > DegradedTTL {
		ttl = DegradedTTL
	}
	expiresAt := c.now().Add(ttl)

	c.mu.Lock()
	c.entries[keyword] = entry{record: rec, expiresAt: expiresAt}
	c.mu.Unlock()

	if c.store != nil && !degraded {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := c.store.PutEntry(ctx, rec, expiresAt); err != nil {
			log.Warn().Err(err).Str("keyword", keyword).Msg("Cache persist failed, entry is memory-only")
		}
	}
}

// Clear drops all cached entries and the lookup history.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.history = nil
	c.mu.Unlock()

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := c.store.ClearAll(ctx); err != nil {
			log.Warn().Err(err).Msg("Persistent cache clear failed")
		}
	}
	log.Info().Msg("Cache cleared")
}

// ClearKeyword drops a single entry. Other keywords are unaffected.
func (c *Cache) ClearKeyword(keyword string) {
	c.mu.Lock()
	delete(c.entries, keyword)
	c.mu.Unlock()

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := c.store.DeleteEntry(ctx, keyword); err != nil {
			log.Warn().Err(err).Str("keyword", keyword).Msg("Persistent cache delete failed")
		}
	}
}

// Export returns every currently valid cached record, newest first.
func (c *Cache) Export() []*models.RawSignalRecord {
	c.mu.RLock()
	now := c.now()
	records := make([]*models.RawSignalRecord, 0, len(c.entries))
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			records = append(records, e.record)
		}
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].FetchedAt.After(records[j].FetchedAt)
	})
	return records
}

// RecordLookup appends to the recent-lookups log, evicting oldest first
// past the cap.
func (c *Cache) RecordLookup(keyword string, opportunityScore int) {
	e := models.HistoryEntry{
		Keyword:          keyword,
		OpportunityScore: opportunityScore,
		LookedUpAt:       c.now(),
	}

	c.mu.Lock()
	c.history = append(c.history, e)
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}
	c.mu.Unlock()

	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := c.store.AppendHistory(ctx, e); err != nil {
			log.Warn().Err(err).Msg("History persist failed")
		}
	}
}

// History returns up to limit recent lookups, newest first.
func (c *Cache) History(limit int) []models.HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 || limit > len(c.history) {
		limit = len(c.history)
	}
	out := make([]models.HistoryEntry, limit)
	for i := 0; i < limit; i++ {
		out[i] = c.history[len(c.history)-1-i]
	}
	return out
}

// Len returns the number of entries currently held (expired included
// until replaced).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
