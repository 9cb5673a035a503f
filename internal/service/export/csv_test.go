package export

import (
	"strings"
	"testing"

	"StockPull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCSV(t *testing.T) {
	records := []models.HistoryRecord{
		{Symbol: "AAPL", Date: "2025-02-03", Open: 184.25, High: 186, Low: 183.5, Close: 185.5, Volume: 42000000},
		{Symbol: "AAPL", Date: "2025-02-04", Open: 185.5, High: 187.1, Low: 185, Close: 186, Volume: 39000000},
	}

	out, err := BuildCSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Open,High,Low,Close,Volume", lines[0])
	assert.Equal(t, "2025-02-03,184.25,186,183.5,185.5,42000000", lines[1])
	assert.Equal(t, "2025-02-04,185.5,187.1,185,186,39000000", lines[2])
}

func TestBuildCSVEmpty(t *testing.T) {
	out, err := BuildCSV(nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 1, "only the header row")
}
