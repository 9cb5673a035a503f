package middleware

import (
	"net/http"
	"strings"

	applogger "StockPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// APIKeyContextKey is where the authenticated key is stored on the echo context.
const APIKeyContextKey = "api_key"

// APIKeyAuth rejects requests that do not present a configured API key in the
// Authorization header or the api_key query parameter. Documentation paths and
// the metrics endpoint stay open.
func APIKeyAuth(keys []string, lgr *applogger.Logger) echo.MiddlewareFunc {
	valid := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		valid[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isOpenPath(path) {
				return next(c)
			}

			key := c.Request().Header.Get(echo.HeaderAuthorization)
			if key == "" {
				key = c.QueryParam("api_key")
			}

			if _, ok := valid[key]; !ok {
				lgr.Warn("unauthorized access attempt",
					applogger.String("ip", c.RealIP()),
					applogger.String("path", path))
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"status":  http.StatusUnauthorized,
					"message": "Unauthorized",
				})
			}

			c.Set(APIKeyContextKey, key)
			return next(c)
		}
	}
}

func isOpenPath(path string) bool {
	return path == "/metrics" || strings.Contains(path, "doc")
}
