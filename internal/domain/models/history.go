package models

import "time"

// ISODate is the normalized calendar-date layout used everywhere: record
// dates, range bounds and cache keys. Lexicographic comparison of two
// ISODate strings equals chronological comparison.
const ISODate = "2006-01-02"

// HistoryRecord is one trading day of OHLCV data for one symbol.
// Date carries no time component.
type HistoryRecord struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// DateRange identifies one history request. Both bounds are inclusive
// ISO dates; the tuple is the identity of the request-level cache entry.
type DateRange struct {
	Symbol    string
	StartDate string
	EndDate   string
}

// Start parses the inclusive lower bound.
func (r DateRange) Start() (time.Time, error) {
	return time.Parse(ISODate, r.StartDate)
}

// End parses the inclusive upper bound.
func (r DateRange) End() (time.Time, error) {
	return time.Parse(ISODate, r.EndDate)
}

// SymbolInfo is one entry of the listed-symbol directory.
type SymbolInfo struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
}
