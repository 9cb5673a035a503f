package histcache

import (
	"context"
	"testing"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/pkg/cache"
	"StockPull/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCache wraps MemoryCache and remembers the TTL of every Set.
type recordingCache struct {
	cache.Service
	ttls map[string]time.Duration
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		Service: cache.NewMemoryCache(),
		ttls:    make(map[string]time.Duration),
	}
}

func (r *recordingCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.ttls[key] = expiration
	return r.Service.Set(ctx, key, value, expiration)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := util.ParseISODate(s)
	require.NoError(t, err)
	return d
}

func fixedNow(s string) func() time.Time {
	d, _ := util.ParseISODate(s)
	return func() time.Time { return d }
}

func TestStoreMonthSegmentPastMonthHasNoExpiry(t *testing.T) {
	rc := newRecordingCache()
	hc := New(rc, fixedNow("2025-06-15"))

	month := mustDate(t, "2025-03-01")
	err := hc.StoreMonthSegment(context.Background(), "AAPL", month, []models.HistoryRecord{
		{Symbol: "AAPL", Date: "2025-03-03", Close: 172.5},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), rc.ttls["history:AAPL:2025-03"])
}

func TestStoreMonthSegmentCurrentMonthExpires(t *testing.T) {
	rc := newRecordingCache()
	hc := New(rc, fixedNow("2025-06-15"))

	month := mustDate(t, "2025-06-01")
	err := hc.StoreMonthSegment(context.Background(), "AAPL", month, []models.HistoryRecord{
		{Symbol: "AAPL", Date: "2025-06-02", Close: 190.1},
	})
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, rc.ttls["history:AAPL:2025-06"])
}

func TestMonthSegmentKeyIgnoresDayOfMonth(t *testing.T) {
	hc := New(cache.NewMemoryCache(), fixedNow("2025-06-15"))
	ctx := context.Background()

	stored := []models.HistoryRecord{{Symbol: "TSLA", Date: "2025-02-10", Close: 201.0}}
	require.NoError(t, hc.StoreMonthSegment(ctx, "TSLA", mustDate(t, "2025-02-01"), stored))

	got, ok, err := hc.GetMonthSegment(ctx, "TSLA", mustDate(t, "2025-02-27"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestFindMissingMonthsPreservesOrder(t *testing.T) {
	hc := New(cache.NewMemoryCache(), fixedNow("2025-06-15"))
	ctx := context.Background()

	require.NoError(t, hc.StoreMonthSegment(ctx, "MSFT", mustDate(t, "2025-02-01"),
		[]models.HistoryRecord{{Symbol: "MSFT", Date: "2025-02-03"}}))

	months := []time.Time{
		mustDate(t, "2025-01-01"),
		mustDate(t, "2025-02-01"),
		mustDate(t, "2025-03-01"),
	}

	missing, err := hc.FindMissingMonths(ctx, "MSFT", months)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "2025-01-01", util.FormatISODate(missing[0]))
	assert.Equal(t, "2025-03-01", util.FormatISODate(missing[1]))
}

func TestRequestCacheRoundTrip(t *testing.T) {
	hc := New(cache.NewMemoryCache(), fixedNow("2025-06-15"))
	ctx := context.Background()

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-04", EndDate: "2025-02-15"}

	_, ok, err := hc.GetRequest(ctx, rng)
	require.NoError(t, err)
	assert.False(t, ok)

	records := []models.HistoryRecord{{Symbol: "AAPL", Date: "2025-01-06", Close: 180.0}}
	require.NoError(t, hc.SaveRequest(ctx, rng, records))

	got, ok, err := hc.GetRequest(ctx, rng)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records, got)

	// A different range is a different entry even when it overlaps.
	other := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-04", EndDate: "2025-02-16"}
	_, ok, err = hc.GetRequest(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreMonthSegmentOverwriteIsIdempotent(t *testing.T) {
	hc := New(cache.NewMemoryCache(), fixedNow("2025-06-15"))
	ctx := context.Background()

	month := mustDate(t, "2025-04-01")
	records := []models.HistoryRecord{{Symbol: "NVDA", Date: "2025-04-07", Close: 95.5}}

	require.NoError(t, hc.StoreMonthSegment(ctx, "NVDA", month, records))
	require.NoError(t, hc.StoreMonthSegment(ctx, "NVDA", month, records))

	got, ok, err := hc.GetMonthSegment(ctx, "NVDA", month)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records, got)
}
