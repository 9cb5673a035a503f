package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"StockPull/internal/domain/models"
)

var csvHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// BuildCSV renders quote records as a CSV document with a header row.
func BuildCSV(records []models.HistoryRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Date,
			formatFloat(rec.Open),
			formatFloat(rec.High),
			formatFloat(rec.Low),
			formatFloat(rec.Close),
			formatFloat(rec.Volume),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
