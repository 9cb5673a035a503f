package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"StockPull/internal/domain/models"
	xhttp "StockPull/pkg/http"
	"StockPull/pkg/logger"
	"StockPull/pkg/util"
)

// Config holds the upstream provider settings.
type Config struct {
	BaseURL    string
	APIKey     string
	APIHost    string
	MaxRetries int
	RetryDelay time.Duration
}

// Client fetches daily historical quotes from the Yahoo Finance API behind
// RapidAPI.
type Client struct {
	http       *xhttp.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	apiHost    string
	maxRetries int
	retryDelay time.Duration
}

func NewClient(hc *xhttp.Client, lgr *logger.Logger, cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	return &Client{
		http:       hc,
		logger:     lgr,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// chartResponse mirrors the provider's chart payload. Only the fields the
// transform needs are declared.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []float64 `json:"open"`
			High   []float64 `json:"high"`
			Low    []float64 `json:"low"`
			Close  []float64 `json:"close"`
			Volume []float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchHistoricalData returns the daily quotes for symbol between from and to
// inclusive. Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff; client errors and malformed payloads abort
// immediately.
func (c *Client) FetchHistoricalData(ctx context.Context, symbol string, from, to time.Time) ([]models.HistoryRecord, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying upstream fetch",
				logger.String("symbol", symbol),
				logger.Int("attempt", attempt+1),
				logger.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		records, retryable, err := c.doFetch(ctx, symbol, from, to)
		if err == nil {
			return records, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetch %s: retries exhausted: %w", symbol, lastErr)
}

func (c *Client) doFetch(ctx context.Context, symbol string, from, to time.Time) ([]models.HistoryRecord, bool, error) {
	// period2 is exclusive upstream, so push it past the end of the last day.
	period1 := from.Unix()
	period2 := to.AddDate(0, 0, 1).Unix()

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/v3/get-chart",
		Headers: map[string]string{
			"X-RapidAPI-Key":  c.apiKey,
			"X-RapidAPI-Host": c.apiHost,
		},
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(period1, 10)},
			"period2":  {strconv.FormatInt(period2, 10)},
			"events":   {"history"},
		},
	})
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		return nil, true, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("upstream status %d: %s", resp.StatusCode, body)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, false, fmt.Errorf("upstream error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}

	records, err := transform(symbol, payload)
	if err != nil {
		return nil, false, err
	}
	return records, false, nil
}

func transform(symbol string, payload chartResponse) ([]models.HistoryRecord, error) {
	if len(payload.Chart.Result) == 0 {
		return []models.HistoryRecord{}, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []models.HistoryRecord{}, nil
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("malformed chart response for %s: series length mismatch", symbol)
	}

	if result.Meta.Symbol != "" {
		symbol = result.Meta.Symbol
	}

	records := make([]models.HistoryRecord, 0, n)
	for i, ts := range result.Timestamp {
		records = append(records, models.HistoryRecord{
			Symbol: symbol,
			Date:   util.FormatISODate(time.Unix(ts, 0).UTC()),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	return records, nil
}
