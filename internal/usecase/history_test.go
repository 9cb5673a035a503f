package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/internal/service/histcache"
	"StockPull/pkg/cache"
	"StockPull/pkg/logger"
	"StockPull/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchSpan struct {
	from, to string
}

// fakeFetcher serves pre-seeded records and records every span requested.
type fakeFetcher struct {
	records []models.HistoryRecord
	spans   []fetchSpan
	err     error
}

func (f *fakeFetcher) FetchHistoricalData(_ context.Context, _ string, from, to time.Time) ([]models.HistoryRecord, error) {
	f.spans = append(f.spans, fetchSpan{
		from: util.FormatISODate(from),
		to:   util.FormatISODate(to),
	})
	if f.err != nil {
		return nil, f.err
	}

	fromStr, toStr := util.FormatISODate(from), util.FormatISODate(to)
	var out []models.HistoryRecord
	for _, rec := range f.records {
		if rec.Date >= fromStr && rec.Date <= toStr {
			out = append(out, rec)
		}
	}
	return out, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(string)     {}
func (noopMetrics) RecordCacheMiss(string)    {}
func (noopMetrics) RecordFetch(string, string) {}
func (noopMetrics) RecordEmail(string)        {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func fixedNow(s string) func() time.Time {
	d, _ := util.ParseISODate(s)
	return func() time.Time { return d }
}

func quotes(symbol string, dates ...string) []models.HistoryRecord {
	recs := make([]models.HistoryRecord, 0, len(dates))
	for i, d := range dates {
		recs = append(recs, models.HistoryRecord{
			Symbol: symbol,
			Date:   d,
			Open:   100 + float64(i),
			High:   101 + float64(i),
			Low:    99 + float64(i),
			Close:  100.5 + float64(i),
			Volume: 1000,
		})
	}
	return recs
}

func newService(t *testing.T, f *fakeFetcher, c cache.Service) (*HistoryService, *histcache.HistoryCache) {
	t.Helper()
	hc := histcache.New(c, fixedNow("2025-06-15"))
	return NewHistoryService(f, hc, testLogger(t), noopMetrics{}), hc
}

func TestGetHistoricalDataFetchesBoundingSpan(t *testing.T) {
	fetcher := &fakeFetcher{
		records: quotes("AAPL", "2025-01-06", "2025-01-20", "2025-02-03", "2025-02-14", "2025-02-28"),
	}
	svc, _ := newService(t, fetcher, cache.NewMemoryCache())

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-04", EndDate: "2025-02-15"}
	records, err := svc.GetHistoricalData(context.Background(), rng)
	require.NoError(t, err)

	require.Len(t, fetcher.spans, 1)
	assert.Equal(t, "2025-01-01", fetcher.spans[0].from)
	assert.Equal(t, "2025-02-28", fetcher.spans[0].to)

	// 2025-02-28 falls outside the requested range and must be filtered out.
	want := []string{"2025-01-06", "2025-01-20", "2025-02-03", "2025-02-14"}
	require.Len(t, records, len(want))
	for i, w := range want {
		assert.Equal(t, w, records[i].Date)
	}
}

func TestGetHistoricalDataSkipsCachedMonths(t *testing.T) {
	mem := cache.NewMemoryCache()
	fetcher := &fakeFetcher{
		records: quotes("AAPL", "2025-02-03", "2025-02-14"),
	}
	svc, hc := newService(t, fetcher, mem)
	ctx := context.Background()

	jan, _ := util.ParseISODate("2025-01-01")
	require.NoError(t, hc.StoreMonthSegment(ctx, "AAPL", jan, quotes("AAPL", "2025-01-06", "2025-01-20")))

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-04", EndDate: "2025-02-15"}
	records, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)

	// Only February was missing, so the fetch covers February alone.
	require.Len(t, fetcher.spans, 1)
	assert.Equal(t, "2025-02-01", fetcher.spans[0].from)
	assert.Equal(t, "2025-02-28", fetcher.spans[0].to)

	want := []string{"2025-01-06", "2025-01-20", "2025-02-03", "2025-02-14"}
	require.Len(t, records, len(want))
	for i, w := range want {
		assert.Equal(t, w, records[i].Date)
	}
}

func TestGetHistoricalDataNonContiguousGapsFetchOneSpan(t *testing.T) {
	mem := cache.NewMemoryCache()
	fetcher := &fakeFetcher{
		records: quotes("AAPL", "2025-01-06", "2025-03-05"),
	}
	svc, hc := newService(t, fetcher, mem)
	ctx := context.Background()

	// Only the middle month is cached, so January and March are missing.
	feb, _ := util.ParseISODate("2025-02-01")
	require.NoError(t, hc.StoreMonthSegment(ctx, "AAPL", feb, quotes("AAPL", "2025-02-10")))

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-01", EndDate: "2025-03-31"}
	records, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)

	// One fetch covers the bounding span, even though February inside it
	// was already cached.
	require.Len(t, fetcher.spans, 1)
	assert.Equal(t, "2025-01-01", fetcher.spans[0].from)
	assert.Equal(t, "2025-03-31", fetcher.spans[0].to)

	want := []string{"2025-01-06", "2025-02-10", "2025-03-05"}
	require.Len(t, records, len(want))
	for i, w := range want {
		assert.Equal(t, w, records[i].Date)
	}
}

func TestGetHistoricalDataAllMonthsCachedNoFetch(t *testing.T) {
	mem := cache.NewMemoryCache()
	fetcher := &fakeFetcher{}
	svc, hc := newService(t, fetcher, mem)
	ctx := context.Background()

	mar, _ := util.ParseISODate("2025-03-01")
	require.NoError(t, hc.StoreMonthSegment(ctx, "TSLA", mar, quotes("TSLA", "2025-03-03", "2025-03-10")))

	rng := models.DateRange{Symbol: "TSLA", StartDate: "2025-03-01", EndDate: "2025-03-31"}
	records, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)

	assert.Empty(t, fetcher.spans)
	assert.Len(t, records, 2)
}

func TestGetHistoricalDataServedFromRequestCache(t *testing.T) {
	mem := cache.NewMemoryCache()
	fetcher := &fakeFetcher{records: quotes("AAPL", "2025-04-07")}
	svc, _ := newService(t, fetcher, mem)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-04-01", EndDate: "2025-04-30"}

	first, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)
	require.Len(t, fetcher.spans, 1)

	second, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)
	assert.Len(t, fetcher.spans, 1, "second call must be served from the request cache")
	assert.Equal(t, first, second)
}

func TestGetHistoricalDataFetchFailureDegradesGracefully(t *testing.T) {
	mem := cache.NewMemoryCache()
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	svc, hc := newService(t, fetcher, mem)
	ctx := context.Background()

	jan, _ := util.ParseISODate("2025-01-01")
	require.NoError(t, hc.StoreMonthSegment(ctx, "AAPL", jan, quotes("AAPL", "2025-01-06")))

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-01-04", EndDate: "2025-02-15"}

	records, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err, "cached months still produce a result")
	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-06", records[0].Date)

	// The partial result must not be pinned: a later call retries the fetch.
	_, ok, err := hc.GetRequest(ctx, rng)
	require.NoError(t, err)
	assert.False(t, ok, "request cache must not hold a degraded result")

	fetcher.err = nil
	fetcher.records = quotes("AAPL", "2025-02-03")
	records, err = svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)
	assert.Len(t, fetcher.spans, 2)
	assert.Len(t, records, 2)
}

// failingStoreCache rejects month-segment writes while leaving reads intact.
type failingStoreCache struct {
	cache.Service
}

func (f *failingStoreCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if strings.HasPrefix(key, "history:") {
		return errors.New("redis: connection refused")
	}
	return f.Service.Set(ctx, key, value, expiration)
}

type fetchMetrics struct {
	noopMetrics
	outcomes []string
}

func (m *fetchMetrics) RecordFetch(_ string, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func TestGetHistoricalDataStoreFailureIsFatalNotAFetchError(t *testing.T) {
	fetcher := &fakeFetcher{records: quotes("AAPL", "2025-02-03")}
	hc := histcache.New(&failingStoreCache{Service: cache.NewMemoryCache()}, fixedNow("2025-06-15"))
	m := &fetchMetrics{}
	svc := NewHistoryService(fetcher, hc, testLogger(t), m)

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-02-01", EndDate: "2025-02-28"}

	_, err := svc.GetHistoricalData(context.Background(), rng)
	require.Error(t, err, "a cache write failure must not be swallowed")

	// The fetch itself succeeded; only the storage failed afterwards.
	assert.Equal(t, []string{"ok"}, m.outcomes)
}

func TestGetHistoricalDataEmptyMonthsStayUncached(t *testing.T) {
	mem := cache.NewMemoryCache()
	// The provider has no quotes in January (e.g. pre-listing).
	fetcher := &fakeFetcher{records: quotes("IPO", "2025-02-10")}
	svc, hc := newService(t, fetcher, mem)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "IPO", StartDate: "2025-01-01", EndDate: "2025-02-28"}
	records, err := svc.GetHistoricalData(ctx, rng)
	require.NoError(t, err)
	require.Len(t, records, 1)

	jan, _ := util.ParseISODate("2025-01-01")
	_, ok, err := hc.GetMonthSegment(ctx, "IPO", jan)
	require.NoError(t, err)
	assert.False(t, ok, "a month the provider returned nothing for is not cached")
}

func TestSegmentByMonthGroupsAndOrders(t *testing.T) {
	records := quotes("AAPL", "2025-01-06", "2025-02-03", "2025-01-20", "2025-03-05")

	segments := segmentByMonth(records)
	require.Len(t, segments, 3)
	assert.Equal(t, "2025-01-01", util.FormatISODate(segments[0].month))
	assert.Len(t, segments[0].records, 2)
	assert.Equal(t, "2025-02-01", util.FormatISODate(segments[1].month))
	assert.Equal(t, "2025-03-01", util.FormatISODate(segments[2].month))
}
