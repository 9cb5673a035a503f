package histcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/pkg/cache"
	"StockPull/pkg/util"
)

// shortTTL applies to request-level entries and to segments of the month
// still in progress. Completed months never change, so they are stored
// without expiry.
const shortTTL = 24 * time.Hour

// HistoryCache stores historical quotes in two layers: exact request results
// keyed by symbol and date range, and per-month segments keyed by symbol and
// calendar month.
type HistoryCache struct {
	cache cache.Service
	now   func() time.Time
}

// New builds a HistoryCache. now is injectable for tests; nil means time.Now.
func New(c cache.Service, now func() time.Time) *HistoryCache {
	if now == nil {
		now = time.Now
	}
	return &HistoryCache{cache: c, now: now}
}

func requestKey(rng models.DateRange) string {
	return fmt.Sprintf("request:%s:%s-%s", rng.Symbol, rng.StartDate, rng.EndDate)
}

func monthKey(symbol string, month time.Time) string {
	return fmt.Sprintf("history:%s:%04d-%02d", symbol, month.Year(), int(month.Month()))
}

// GetRequest returns the cached result for an exact request, if present.
func (h *HistoryCache) GetRequest(ctx context.Context, rng models.DateRange) ([]models.HistoryRecord, bool, error) {
	var records []models.HistoryRecord
	err := h.cache.Get(ctx, requestKey(rng), &records)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get request cache: %w", err)
	}
	return records, true, nil
}

// SaveRequest stores the assembled result for an exact request.
func (h *HistoryCache) SaveRequest(ctx context.Context, rng models.DateRange, records []models.HistoryRecord) error {
	if err := h.cache.Set(ctx, requestKey(rng), records, shortTTL); err != nil {
		return fmt.Errorf("save request cache: %w", err)
	}
	return nil
}

// GetMonthSegment returns the cached records for one calendar month.
func (h *HistoryCache) GetMonthSegment(ctx context.Context, symbol string, month time.Time) ([]models.HistoryRecord, bool, error) {
	var records []models.HistoryRecord
	err := h.cache.Get(ctx, monthKey(symbol, month), &records)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get month segment: %w", err)
	}
	return records, true, nil
}

// StoreMonthSegment stores the records for one calendar month. The current
// month gets a short TTL because new trading days keep arriving; past months
// are immutable and stored without expiry.
func (h *HistoryCache) StoreMonthSegment(ctx context.Context, symbol string, month time.Time, records []models.HistoryRecord) error {
	var ttl time.Duration
	if util.SameMonth(month, h.now()) {
		ttl = shortTTL
	}
	if err := h.cache.Set(ctx, monthKey(symbol, month), records, ttl); err != nil {
		return fmt.Errorf("store month segment: %w", err)
	}
	return nil
}

// FindMissingMonths reports which of the given months have no cached segment,
// preserving input order.
func (h *HistoryCache) FindMissingMonths(ctx context.Context, symbol string, months []time.Time) ([]time.Time, error) {
	var missing []time.Time
	for _, month := range months {
		ok, err := h.cache.Exists(ctx, monthKey(symbol, month))
		if err != nil {
			return nil, fmt.Errorf("check month segment: %w", err)
		}
		if !ok {
			missing = append(missing, month)
		}
	}
	return missing, nil
}
