package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockvision/stockvision/internal/models"
)

func testRecord(keyword string, fetchedAt time.Time) *models.RawSignalRecord {
	return &models.RawSignalRecord{
		Keyword:       keyword,
		DemandSeries:  []float64{40, 50, 60},
		CurrentDemand: 60,
		DemandSource:  models.DemandSourceLive,
		FetchedAt:     fetchedAt,
	}
}

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New(time.Hour, nil)
	ctx := context.Background()

	var computes int32
	compute := func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		return testRecord("sunset", time.Now()), nil
	}

	first, err := c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)

	second, err := c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computes))
	assert.Equal(t, 1, c.Len())
}

func TestGetOrComputeExpiry(t *testing.T) {
	c := New(time.Hour, nil)
	current := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	ctx := context.Background()
	var computes int32
	compute := func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		return testRecord("sunset", current), nil
	}

	_, err := c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)

	// Still inside the TTL window.
	current = current.Add(59 * time.Minute)
	_, err = c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computes))

	// Past the TTL the entry is stale and recomputed.
	current = current.Add(2 * time.Minute)
	_, err = c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&computes))
}

func TestDegradedRecordShortTTL(t *testing.T) {
	c := New(24*time.Hour, nil)
	current := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	ctx := context.Background()
	var computes int32
	compute := func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		return &models.RawSignalRecord{
			Keyword:      "sunset",
			DemandSeries: []float64{40, 50, 60},
			DemandSource: models.DemandSourceSynthetic,
			FetchedAt:    current,
		}, nil
	}

	_, err := c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)

	// Still fresh within the degraded window.
	current = current.Add(4 * time.Minute)
	_, err = c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computes))

	// Retried long before the regular TTL.
	current = current.Add(2 * time.Minute)
	_, err = c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&computes))
}

func TestHealthyRecordKeepsFullTTL(t *testing.T) {
	c := New(24*time.Hour, nil)
	current := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	ctx := context.Background()
	var computes int32
	compute := func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		rec := testRecord("sunset", current)
		rec.SourcesAvailable = 2
		return rec, nil
	}

	_, err := c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)

	current = current.Add(23 * time.Hour)
	_, err = c.GetOrCompute(ctx, "sunset", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computes))
}

func TestGetOrComputeError(t *testing.T) {
	c := New(time.Hour, nil)
	wantErr := errors.New("all sources down")

	_, err := c.GetOrCompute(context.Background(), "sunset", func(ctx context.Context) (*models.RawSignalRecord, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// Failures are not cached.
	assert.Equal(t, 0, c.Len())
}

func TestGetOrComputeCollapsesConcurrent(t *testing.T) {
	c := New(time.Hour, nil)
	ctx := context.Background()

	var computes int32
	compute := func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		time.Sleep(50 * time.Millisecond)
		return testRecord("aerial city", time.Now()), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*models.RawSignalRecord, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := c.GetOrCompute(ctx, "aerial city", compute)
			assert.NoError(t, err)
			results[i] = rec
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&computes))
	for _, rec := range results {
		assert.Same(t, results[0], rec)
	}
}

func TestClear(t *testing.T) {
	c := New(time.Hour, nil)
	ctx := context.Background()

	for _, kw := range []string{"a", "b", "c"} {
		kw := kw
		_, err := c.GetOrCompute(ctx, kw, func(ctx context.Context) (*models.RawSignalRecord, error) {
			return testRecord(kw, time.Now()), nil
		})
		require.NoError(t, err)
		c.RecordLookup(kw, 1000)
	}
	require.Equal(t, 3, c.Len())
	require.Len(t, c.History(0), 3)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.History(0))
}

func TestClearKeyword(t *testing.T) {
	c := New(time.Hour, nil)
	ctx := context.Background()

	for _, kw := range []string{"sunset", "sunrise"} {
		kw := kw
		_, err := c.GetOrCompute(ctx, kw, func(ctx context.Context) (*models.RawSignalRecord, error) {
			return testRecord(kw, time.Now()), nil
		})
		require.NoError(t, err)
	}

	c.ClearKeyword("sunset")
	assert.Equal(t, 1, c.Len())

	// The surviving keyword does not recompute.
	var computes int32
	_, err := c.GetOrCompute(ctx, "sunrise", func(ctx context.Context) (*models.RawSignalRecord, error) {
		atomic.AddInt32(&computes, 1)
		return testRecord("sunrise", time.Now()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&computes))
}

func TestExportNewestFirst(t *testing.T) {
	c := New(time.Hour, nil)
	ctx := context.Background()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i, kw := range []string{"old", "mid", "new"} {
		kw, at := kw, base.Add(time.Duration(i)*time.Minute)
		_, err := c.GetOrCompute(ctx, kw, func(ctx context.Context) (*models.RawSignalRecord, error) {
			return testRecord(kw, at), nil
		})
		require.NoError(t, err)
	}

	records := c.Export()
	require.Len(t, records, 3)
	assert.Equal(t, "new", records[0].Keyword)
	assert.Equal(t, "mid", records[1].Keyword)
	assert.Equal(t, "old", records[2].Keyword)
}

func TestExportSkipsExpired(t *testing.T) {
	c := New(time.Hour, nil)
	current := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	_, err := c.GetOrCompute(context.Background(), "stale", func(ctx context.Context) (*models.RawSignalRecord, error) {
		return testRecord("stale", current), nil
	})
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	assert.Empty(t, c.Export())
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	c := New(time.Hour, nil)
	c.historyCap = 5

	for i := 0; i < 8; i++ {
		c.RecordLookup(fmt.Sprintf("kw-%d", i), i*100)
	}

	all := c.History(0)
	require.Len(t, all, 5)
	assert.Equal(t, "kw-7", all[0].Keyword)
	assert.Equal(t, "kw-3", all[4].Keyword)

	limited := c.History(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "kw-7", limited[0].Keyword)
	assert.Equal(t, "kw-6", limited[1].Keyword)
}
