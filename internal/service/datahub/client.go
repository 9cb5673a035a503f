package datahub

import (
	"context"

	"StockPull/internal/domain/models"
	xhttp "StockPull/pkg/http"
)

// Client downloads the NASDAQ listed-companies directory.
type Client struct {
	http *xhttp.Client
	url  string
}

func NewClient(hc *xhttp.Client, url string) *Client {
	return &Client{http: hc, url: url}
}

type listedEntry struct {
	Symbol      string `json:"Symbol"`
	CompanyName string `json:"Company Name"`
}

// FetchSymbolInfo returns every listed symbol with its company name.
func (c *Client) FetchSymbolInfo(ctx context.Context) ([]models.SymbolInfo, error) {
	var entries []listedEntry
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.url,
	}, &entries)
	if err != nil {
		return nil, err
	}

	infos := make([]models.SymbolInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, models.SymbolInfo{
			Symbol:      e.Symbol,
			CompanyName: e.CompanyName,
		})
	}
	return infos, nil
}
