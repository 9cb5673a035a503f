package usecase

import (
	"context"
	"fmt"

	"StockPull/internal/domain/models"
	"StockPull/internal/service/export"
	"StockPull/internal/service/symbols"
	"StockPull/pkg/logger"
	"StockPull/pkg/queue"
)

// SendHistoryEmailType is the queue message type for CSV report delivery.
const SendHistoryEmailType = "send_history_email"

// SendHistoryEmailPayload is the queue payload for a report email.
type SendHistoryEmailPayload struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Email     string `json:"email"`
}

// CSVMailer sends a message with a CSV attachment.
type CSVMailer interface {
	SendCSV(recipient, subject, body, filename string, csvContent []byte) error
}

// RequestResultReader reads the cached result for an exact request.
type RequestResultReader interface {
	GetRequest(ctx context.Context, rng models.DateRange) ([]models.HistoryRecord, bool, error)
}

// SendHistoryEmailJob emails the requested quotes as a CSV attachment. It
// reads the result from the request-level cache, which the HTTP handler
// populated just before enqueueing, so the job never re-fetches upstream.
type SendHistoryEmailJob struct {
	symbols *symbols.Service
	cache   RequestResultReader
	mailer  CSVMailer
	logger  *logger.Logger
	metrics Metrics
}

func NewSendHistoryEmailJob(sym *symbols.Service, cache RequestResultReader, mailer CSVMailer, lgr *logger.Logger, m Metrics) *SendHistoryEmailJob {
	return &SendHistoryEmailJob{
		symbols: sym,
		cache:   cache,
		mailer:  mailer,
		logger:  lgr,
		metrics: m,
	}
}

func (j *SendHistoryEmailJob) Name() string { return "send-history-email" }

func (j *SendHistoryEmailJob) Type() string { return SendHistoryEmailType }

func (j *SendHistoryEmailJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[SendHistoryEmailPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	rng := models.DateRange{
		Symbol:    p.Symbol,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
	}

	records, ok, err := j.cache.GetRequest(ctx, rng)
	if err != nil {
		return err
	}
	if !ok {
		// The cached result may have expired before the worker got to the
		// message; fail so the queue retries.
		return fmt.Errorf("no cached result for %s %s-%s", p.Symbol, p.StartDate, p.EndDate)
	}

	subject := p.Symbol
	if info, err := j.symbols.GetSymbolInfo(ctx, p.Symbol); err == nil && info != nil {
		subject = info.CompanyName
	}

	content, err := export.BuildCSV(records)
	if err != nil {
		j.metrics.RecordEmail("error")
		return err
	}

	body := fmt.Sprintf("From %s to %s", p.StartDate, p.EndDate)
	if err := j.mailer.SendCSV(p.Email, subject, body, "historical_data.csv", content); err != nil {
		j.metrics.RecordEmail("error")
		return err
	}

	j.metrics.RecordEmail("ok")
	j.logger.Info("history report sent",
		logger.String("symbol", p.Symbol),
		logger.String("recipient", p.Email))
	return nil
}
