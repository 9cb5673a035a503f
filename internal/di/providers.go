package di

import (
	"fmt"

	"StockPull/internal/handler/api"
	"StockPull/internal/service/datahub"
	"StockPull/internal/service/histcache"
	"StockPull/internal/service/mail"
	"StockPull/internal/service/ratelimit"
	"StockPull/internal/service/symbols"
	"StockPull/internal/service/yahoo"
	"StockPull/internal/usecase"
	"StockPull/pkg/cache"
	"StockPull/pkg/config"
	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/metrics"
	"StockPull/pkg/queue"
	"StockPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lgr, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr, nil
}

// ProvideRedisCache creates the shared Redis connection.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService exposes the Redis cache through the cache interface.
func ProvideCacheService(rc *cache.RedisCache) cache.Service {
	return rc
}

// ProvideHTTPClient creates the outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Yahoo.Timeout))
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.NewRecorder()
}

// ProvideUsecaseMetrics exposes the recorder through the usecase interface.
func ProvideUsecaseMetrics(r *metrics.Recorder) usecase.Metrics {
	return r
}

// ProvideHistoryCache creates the month-segmented quote cache.
func ProvideHistoryCache(c cache.Service) *histcache.HistoryCache {
	return histcache.New(c, nil)
}

// ProvideYahooClient creates the upstream market-data client.
func ProvideYahooClient(hc *xhttp.Client, lgr *applogger.Logger, cfg *config.Config) *yahoo.Client {
	return yahoo.NewClient(hc, lgr, yahoo.Config{
		BaseURL:    cfg.Yahoo.BaseURL,
		APIKey:     cfg.Yahoo.APIKey,
		APIHost:    cfg.Yahoo.APIHost,
		MaxRetries: cfg.Yahoo.MaxRetries,
		RetryDelay: cfg.Yahoo.RetryDelay,
	})
}

// ProvideFetcher exposes the Yahoo client through the usecase interface.
func ProvideFetcher(c *yahoo.Client) usecase.Fetcher {
	return c
}

// ProvideDatahubClient creates the listed-companies directory client.
func ProvideDatahubClient(hc *xhttp.Client, cfg *config.Config) *datahub.Client {
	return datahub.NewClient(hc, cfg.Datahub.SymbolsURL)
}

// ProvideSymbolsService creates the symbol directory service.
func ProvideSymbolsService(c cache.Service, client *datahub.Client) *symbols.Service {
	return symbols.NewService(c, client)
}

// ProvideHistoryService creates the history use case.
func ProvideHistoryService(f usecase.Fetcher, hc *histcache.HistoryCache, lgr *applogger.Logger, m usecase.Metrics) *usecase.HistoryService {
	return usecase.NewHistoryService(f, hc, lgr, m)
}

// ProvideMailer creates the SMTP mailer.
func ProvideMailer(cfg *config.Config) *mail.Mailer {
	return mail.NewMailer(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
}

// ProvideEmailJob creates the CSV report delivery job.
func ProvideEmailJob(sym *symbols.Service, hc *histcache.HistoryCache, mailer *mail.Mailer, lgr *applogger.Logger, m usecase.Metrics) queue.Job {
	return usecase.NewSendHistoryEmailJob(sym, hc, mailer, lgr, m)
}

// ProvideQueue creates the Redis-backed job queue.
func ProvideQueue(lgr *applogger.Logger, cfg *config.Config, rc *cache.RedisCache) *queue.RedisQueue {
	return queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client())
}

// ProvideRateLimiter creates the fixed-window request limiter.
func ProvideRateLimiter(c cache.Service, cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.NewLimiter(c, int64(cfg.RateLimit.Limit), cfg.RateLimit.Window)
}

// ProvideStockHandler creates the HTTP handler.
func ProvideStockHandler(lgr *applogger.Logger, history *usecase.HistoryService, sym *symbols.Service, q *queue.RedisQueue) xhttp.Handler {
	return api.NewStockHandler(lgr, history, sym, q)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	rc *cache.RedisCache,
	q *queue.RedisQueue,
	emailJob queue.Job,
	limiter *ratelimit.Limiter,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, lgr, rc, q, emailJob, limiter, handler)
}
