package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockPull/internal/service/ratelimit"
	"StockPull/pkg/cache"
	"StockPull/pkg/config"
	xhttp "StockPull/pkg/http"
	"StockPull/pkg/http/middleware"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/queue"
)

// App encapsulates the application lifecycle: the queue workers, the HTTP
// server and the shared Redis connection.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	redisCache *cache.RedisCache
	queue      *queue.RedisQueue
	emailJob   queue.Job
	limiter    *ratelimit.Limiter
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	redisCache *cache.RedisCache,
	q *queue.RedisQueue,
	emailJob queue.Job,
	limiter *ratelimit.Limiter,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:        cfg,
		logger:     lgr,
		redisCache: redisCache,
		queue:      q,
		emailJob:   emailJob,
		limiter:    limiter,
		handler:    handler,
	}
}

// Run starts the queue and HTTP server and blocks until interrupted.
func (a *App) Run() error {
	a.queue.RegisterJob(a.emailJob)
	if err := a.queue.Start(); err != nil {
		return err
	}

	a.httpServer = xhttp.NewServer(
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithMiddleware(
			middleware.Metrics(),
			middleware.APIKeyAuth(a.cfg.Auth.APIKeys, a.logger),
			middleware.RateLimit(a.limiter.Allow, a.logger),
		),
	)
	a.httpServer.Register(a.handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Start()
	}()

	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.logger.Error("http server error", applogger.Error(err))
		a.shutdown()
		return err
	case <-sigCh:
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Warn("http shutdown error", applogger.Error(err))
		}
	}

	if err := a.queue.Stop(ctx); err != nil {
		a.logger.Warn("queue stop error", applogger.Error(err))
	}

	if err := a.redisCache.Close(); err != nil {
		a.logger.Warn("redis close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
