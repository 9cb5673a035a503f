package http

import (
	"context"
	"fmt"
	"time"

	"StockPull/pkg/http/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps echo with lifecycle management.
type Server struct {
	echo        *echo.Echo
	host        string
	port        int
	metricsPath string
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHost sets the listen host.
func WithHost(host string) ServerOption {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the listen port.
func WithPort(port int) ServerOption {
	return func(s *Server) {
		s.port = port
	}
}

// WithTimeouts sets read and write timeouts.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(s *Server) {
		s.echo.Server.ReadTimeout = read
		s.echo.Server.WriteTimeout = write
	}
}

// WithCORS enables CORS with the given config.
func WithCORS(cfg middleware.CORSConfig) ServerOption {
	return func(s *Server) {
		s.echo.Use(middleware.CORS(cfg))
	}
}

// WithMiddleware appends middleware applied before route registration.
func WithMiddleware(mw ...echo.MiddlewareFunc) ServerOption {
	return func(s *Server) {
		s.echo.Use(mw...)
	}
}

// WithMetrics exposes the Prometheus scrape endpoint at path.
func WithMetrics(enabled bool, path string) ServerOption {
	return func(s *Server) {
		if enabled {
			s.metricsPath = path
		}
	}
}

// NewServer builds a server with recovery and request logging installed.
func NewServer(opts ...ServerOption) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo: e,
		host: "0.0.0.0",
		port: 8080,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLogging())

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register mounts a handler's routes.
func (s *Server) Register(handlers ...Handler) {
	for _, h := range handlers {
		h.RegisterRoutes(s.echo)
	}
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	if s.metricsPath != "" {
		s.echo.GET(s.metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	return s.echo.Start(addr)
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
