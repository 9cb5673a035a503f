package api

import (
	"context"
	"strings"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/internal/usecase"
	xhttp "StockPull/pkg/http"
	"StockPull/pkg/logger"
	"StockPull/pkg/queue"
	"StockPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// SymbolValidator checks a ticker against the listed-companies directory.
type SymbolValidator interface {
	IsValidSymbol(ctx context.Context, symbol string) (bool, error)
}

// StockHandler serves the historical-quotes endpoint.
type StockHandler struct {
	logger  *logger.Logger
	history *usecase.HistoryService
	symbols SymbolValidator
	queue   queue.QueueService
	now     func() time.Time
}

func NewStockHandler(lgr *logger.Logger, history *usecase.HistoryService, symbols SymbolValidator, q queue.QueueService) *StockHandler {
	return &StockHandler{
		logger:  lgr,
		history: history,
		symbols: symbols,
		queue:   q,
		now:     time.Now,
	}
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/stock/:companySymbol/history", h.History)
}

// History returns the daily quotes for a symbol over an inclusive date range
// and queues a CSV copy of the result for email delivery. A queue failure is
// logged but does not fail the response.
func (h *StockHandler) History(c echo.Context) error {
	req := new(models.HistoryRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	symbol := strings.ToUpper(c.Param("companySymbol"))
	ctx := c.Request().Context()

	if errs := h.validateRange(req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	ok, err := h.symbols.IsValidSymbol(ctx, symbol)
	if err != nil {
		h.logger.Error("symbol lookup failed",
			logger.String("symbol", symbol),
			logger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !ok {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_UNKNOWN_SYMBOL",
			Field:   "companySymbol",
			Message: "companySymbol is not a known ticker",
		}})
	}

	rng := models.DateRange{
		Symbol:    symbol,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	records, err := h.history.GetHistoricalData(ctx, rng)
	if err != nil {
		h.logger.Error("history lookup failed",
			logger.String("symbol", symbol),
			logger.String("start", req.StartDate),
			logger.String("end", req.EndDate),
			logger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	payload := usecase.SendHistoryEmailPayload{
		Symbol:    symbol,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Email:     req.Email,
	}
	if err := h.queue.PublishMessage(ctx, usecase.SendHistoryEmailType, payload); err != nil {
		h.logger.Error("enqueue report email failed",
			logger.String("symbol", symbol),
			logger.String("recipient", req.Email),
			logger.Error(err))
	}

	return xhttp.SuccessResponse(c, models.HistoryResponse{HistoricalQuotes: records})
}

// validateRange enforces ordering and rejects future dates. ISO dates compare
// correctly as strings.
func (h *StockHandler) validateRange(req *models.HistoryRequest) []xhttp.ValidationError {
	today := util.FormatISODate(h.now())

	var errs []xhttp.ValidationError
	if req.StartDate > today {
		errs = append(errs, xhttp.ValidationError{
			Code:    "ERR_FUTURE_DATE",
			Field:   "startDate",
			Message: "startDate must not be in the future",
		})
	}
	if req.EndDate > today {
		errs = append(errs, xhttp.ValidationError{
			Code:    "ERR_FUTURE_DATE",
			Field:   "endDate",
			Message: "endDate must not be in the future",
		})
	}
	if req.EndDate < req.StartDate {
		errs = append(errs, xhttp.ValidationError{
			Code:    "ERR_RANGE_ORDER",
			Field:   "endDate",
			Message: "endDate must not be before startDate",
		})
	}
	return errs
}
