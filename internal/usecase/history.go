package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/internal/service/histcache"
	"StockPull/pkg/logger"
	"StockPull/pkg/util"
)

// Fetcher retrieves historical quotes from the upstream market-data provider.
type Fetcher interface {
	FetchHistoricalData(ctx context.Context, symbol string, from, to time.Time) ([]models.HistoryRecord, error)
}

// Metrics receives counters from the history flow.
type Metrics interface {
	RecordCacheHit(layer string)
	RecordCacheMiss(layer string)
	RecordFetch(symbol, outcome string)
	RecordEmail(outcome string)
}

// HistoryService answers historical-quote queries from the month-segmented
// cache, fetching only the span of months not yet cached.
type HistoryService struct {
	fetcher Fetcher
	cache   *histcache.HistoryCache
	logger  *logger.Logger
	metrics Metrics
}

func NewHistoryService(fetcher Fetcher, cache *histcache.HistoryCache, lgr *logger.Logger, m Metrics) *HistoryService {
	return &HistoryService{
		fetcher: fetcher,
		cache:   cache,
		logger:  lgr,
		metrics: m,
	}
}

// GetHistoricalData returns the daily quotes for rng, inclusive on both ends.
//
// Months already cached are never re-fetched. When some months are missing,
// a single upstream request covers the span from the first missing month to
// the end of the last missing month, and the response is split back into
// per-month segments before assembling the answer. If the upstream fetch
// fails, whatever months are cached still produce a (possibly partial)
// result, but the request-level cache is not written so the next call tries
// the fetch again.
func (s *HistoryService) GetHistoricalData(ctx context.Context, rng models.DateRange) ([]models.HistoryRecord, error) {
	if cached, ok, err := s.cache.GetRequest(ctx, rng); err != nil {
		return nil, err
	} else if ok {
		s.metrics.RecordCacheHit("request")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("request")

	start, err := rng.Start()
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := rng.End()
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	months := util.MonthRange(start, end)

	missing, err := s.cache.FindMissingMonths(ctx, rng.Symbol, months)
	if err != nil {
		return nil, err
	}

	refreshRequestCache := true
	if len(missing) > 0 {
		spanStart := missing[0]
		spanEnd := util.LastDayOfMonth(missing[len(missing)-1])

		fetched, err := s.fetcher.FetchHistoricalData(ctx, rng.Symbol, spanStart, spanEnd)
		if err != nil {
			s.logger.Error("upstream fetch failed, serving cached months only",
				logger.String("symbol", rng.Symbol),
				logger.String("from", util.FormatISODate(spanStart)),
				logger.String("to", util.FormatISODate(spanEnd)),
				logger.Error(err))
			s.metrics.RecordFetch(rng.Symbol, "error")
			refreshRequestCache = false
		} else {
			s.metrics.RecordFetch(rng.Symbol, "ok")
			// Cache storage failures are fatal, unlike fetch failures.
			if err := s.storeFetched(ctx, rng.Symbol, fetched); err != nil {
				return nil, err
			}
		}
	}

	result, err := s.combineMonths(ctx, rng, months)
	if err != nil {
		return nil, err
	}

	if refreshRequestCache {
		if err := s.cache.SaveRequest(ctx, rng, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// storeFetched writes a fetched span back month by month. Months the provider
// returned no records for are left uncached, so weekends-only or pre-listing
// months are retried on the next request instead of being pinned empty.
func (s *HistoryService) storeFetched(ctx context.Context, symbol string, records []models.HistoryRecord) error {
	for _, seg := range segmentByMonth(records) {
		if err := s.cache.StoreMonthSegment(ctx, symbol, seg.month, seg.records); err != nil {
			return err
		}
	}
	return nil
}

// combineMonths reassembles the answer from the per-month segments, keeping
// only records inside the requested range. ISO dates compare correctly as
// strings.
func (s *HistoryService) combineMonths(ctx context.Context, rng models.DateRange, months []time.Time) ([]models.HistoryRecord, error) {
	result := make([]models.HistoryRecord, 0)
	for _, month := range months {
		segment, ok, err := s.cache.GetMonthSegment(ctx, rng.Symbol, month)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, rec := range segment {
			if rec.Date >= rng.StartDate && rec.Date <= rng.EndDate {
				result = append(result, rec)
			}
		}
	}
	return result, nil
}

type monthSegment struct {
	month   time.Time
	records []models.HistoryRecord
}

// segmentByMonth groups records by calendar month, preserving first-seen
// order. Records with unparseable dates are dropped.
func segmentByMonth(records []models.HistoryRecord) []monthSegment {
	var segments []monthSegment
	index := make(map[string]int)

	for _, rec := range records {
		d, err := util.ParseISODate(rec.Date)
		if err != nil {
			continue
		}
		month := util.FirstDayOfMonth(d)
		key := util.FormatISODate(month)

		i, ok := index[key]
		if !ok {
			i = len(segments)
			index[key] = i
			segments = append(segments, monthSegment{month: month})
		}
		segments[i].records = append(segments[i].records, rec)
	}

	return segments
}
