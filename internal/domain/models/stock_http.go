package models

// HistoryRequest is the body of POST /api/v1/stock/:companySymbol/history.
type HistoryRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Email     string `json:"email" validate:"required,email"`
}

// HistoryResponse wraps the reassembled records returned to the client.
type HistoryResponse struct {
	HistoricalQuotes []HistoryRecord `json:"historicalQuotes"`
}
