package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"StockPull/internal/domain/models"
	"StockPull/internal/service/histcache"
	"StockPull/internal/service/symbols"
	"StockPull/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	recipient string
	subject   string
	body      string
	filename  string
	content   []byte
	err       error
}

func (f *fakeMailer) SendCSV(recipient, subject, body, filename string, csvContent []byte) error {
	f.recipient = recipient
	f.subject = subject
	f.body = body
	f.filename = filename
	f.content = csvContent
	return f.err
}

type fakeDirectory struct {
	infos []models.SymbolInfo
}

func (f *fakeDirectory) FetchSymbolInfo(context.Context) ([]models.SymbolInfo, error) {
	return f.infos, nil
}

func newEmailJob(t *testing.T, mailer *fakeMailer) (*SendHistoryEmailJob, *histcache.HistoryCache) {
	t.Helper()
	mem := cache.NewMemoryCache()
	hc := histcache.New(mem, fixedNow("2025-06-15"))
	sym := symbols.NewService(mem, &fakeDirectory{infos: []models.SymbolInfo{
		{Symbol: "AAPL", CompanyName: "Apple Inc."},
	}})
	job := NewSendHistoryEmailJob(sym, hc, mailer, testLogger(t), noopMetrics{})
	return job, hc
}

func TestSendHistoryEmail(t *testing.T) {
	mailer := &fakeMailer{}
	job, hc := newEmailJob(t, mailer)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-02-01", EndDate: "2025-02-28"}
	require.NoError(t, hc.SaveRequest(ctx, rng, quotes("AAPL", "2025-02-03", "2025-02-04")))

	err := job.Handle(ctx, SendHistoryEmailPayload{
		Symbol:    "AAPL",
		StartDate: "2025-02-01",
		EndDate:   "2025-02-28",
		Email:     "trader@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "trader@example.com", mailer.recipient)
	assert.Equal(t, "Apple Inc.", mailer.subject)
	assert.Equal(t, "From 2025-02-01 to 2025-02-28", mailer.body)
	assert.Equal(t, "historical_data.csv", mailer.filename)

	lines := strings.Split(strings.TrimSpace(string(mailer.content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Open,High,Low,Close,Volume", lines[0])
}

func TestSendHistoryEmailUnknownSymbolFallsBackToTicker(t *testing.T) {
	mailer := &fakeMailer{}
	job, hc := newEmailJob(t, mailer)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "ZZZZ", StartDate: "2025-02-01", EndDate: "2025-02-28"}
	require.NoError(t, hc.SaveRequest(ctx, rng, quotes("ZZZZ", "2025-02-03")))

	err := job.Handle(ctx, SendHistoryEmailPayload{
		Symbol:    "ZZZZ",
		StartDate: "2025-02-01",
		EndDate:   "2025-02-28",
		Email:     "trader@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ", mailer.subject)
}

func TestSendHistoryEmailMissingResultFails(t *testing.T) {
	mailer := &fakeMailer{}
	job, _ := newEmailJob(t, mailer)

	err := job.Handle(context.Background(), SendHistoryEmailPayload{
		Symbol:    "AAPL",
		StartDate: "2025-02-01",
		EndDate:   "2025-02-28",
		Email:     "trader@example.com",
	})
	require.Error(t, err, "expired cache entries must surface so the queue retries")
	assert.Empty(t, mailer.recipient)
}

func TestSendHistoryEmailMailerErrorPropagates(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp refused")}
	job, hc := newEmailJob(t, mailer)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-02-01", EndDate: "2025-02-28"}
	require.NoError(t, hc.SaveRequest(ctx, rng, quotes("AAPL", "2025-02-03")))

	err := job.Handle(ctx, SendHistoryEmailPayload{
		Symbol:    "AAPL",
		StartDate: "2025-02-01",
		EndDate:   "2025-02-28",
		Email:     "trader@example.com",
	})
	require.Error(t, err)
}

func TestSendHistoryEmailPayloadFromWire(t *testing.T) {
	mailer := &fakeMailer{}
	job, hc := newEmailJob(t, mailer)
	ctx := context.Background()

	rng := models.DateRange{Symbol: "AAPL", StartDate: "2025-02-01", EndDate: "2025-02-28"}
	require.NoError(t, hc.SaveRequest(ctx, rng, quotes("AAPL", "2025-02-03")))

	// Payloads that crossed Redis arrive as generic maps.
	err := job.Handle(ctx, map[string]interface{}{
		"symbol":    "AAPL",
		"startDate": "2025-02-01",
		"endDate":   "2025-02-28",
		"email":     "trader@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "trader@example.com", mailer.recipient)
}
