package symbols

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/pkg/cache"
)

const (
	symbolsKey = "company_symbols"
	symbolsTTL = 24 * time.Hour
)

// SymbolInfoClient fetches the listed-companies directory.
type SymbolInfoClient interface {
	FetchSymbolInfo(ctx context.Context) ([]models.SymbolInfo, error)
}

// Service resolves ticker symbols to company names, caching the full
// directory for a day.
type Service struct {
	cache  cache.Service
	client SymbolInfoClient
}

func NewService(c cache.Service, client SymbolInfoClient) *Service {
	return &Service{cache: c, client: client}
}

// GetSymbolInfo returns the directory entry for symbol, or nil if the symbol
// is not listed. Matching is case-insensitive.
func (s *Service) GetSymbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error) {
	infos, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range infos {
		if strings.EqualFold(infos[i].Symbol, symbol) {
			return &infos[i], nil
		}
	}
	return nil, nil
}

// IsValidSymbol reports whether symbol appears in the directory.
func (s *Service) IsValidSymbol(ctx context.Context, symbol string) (bool, error) {
	info, err := s.GetSymbolInfo(ctx, symbol)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (s *Service) load(ctx context.Context) ([]models.SymbolInfo, error) {
	var infos []models.SymbolInfo
	err := s.cache.Get(ctx, symbolsKey, &infos)
	if err == nil {
		return infos, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("get symbols cache: %w", err)
	}

	infos, err = s.client.FetchSymbolInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch symbols: %w", err)
	}

	if err := s.cache.Set(ctx, symbolsKey, infos, symbolsTTL); err != nil {
		return nil, fmt.Errorf("cache symbols: %w", err)
	}

	return infos, nil
}
