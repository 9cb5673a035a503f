package middleware

import (
	"context"
	"net/http"

	applogger "StockPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AllowFunc reports whether the request identified by key is within budget.
type AllowFunc func(ctx context.Context, key string) (bool, error)

// RateLimit enforces a per-client request budget. The window key combines the
// client IP with the authenticated API key, so APIKeyAuth must run first.
// Limiter errors do not block the request.
func RateLimit(allow AllowFunc, lgr *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if allow == nil || isOpenPath(path) {
				return next(c)
			}

			apiKey, _ := c.Get(APIKeyContextKey).(string)
			key := c.RealIP() + "_" + apiKey

			ok, err := allow(c.Request().Context(), key)
			if err != nil {
				lgr.Warn("rate limiter unavailable", applogger.Error(err))
				return next(c)
			}
			if !ok {
				lgr.Warn("rate limit exceeded",
					applogger.String("ip", c.RealIP()),
					applogger.String("path", path))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Rate limit exceeded",
				})
			}

			return next(c)
		}
	}
}
