//go:build wireinject
// +build wireinject

package di

import (
	"StockPull/pkg/config"
	"StockPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRedisCache,
		ProvideCacheService,
		ProvideHTTPClient,
		ProvideMetrics,
		ProvideUsecaseMetrics,

		ProvideHistoryCache,
		ProvideYahooClient,
		ProvideFetcher,
		ProvideDatahubClient,
		ProvideSymbolsService,
		ProvideHistoryService,

		ProvideMailer,
		ProvideEmailJob,
		ProvideQueue,
		ProvideRateLimiter,

		ProvideStockHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
