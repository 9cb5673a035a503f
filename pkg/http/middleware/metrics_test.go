package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsInFlightGaugeReturnsToZero(t *testing.T) {
	e := echo.New()
	e.Use(Recover(), Metrics())
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestMetricsInFlightGaugeSurvivesPanics(t *testing.T) {
	e := echo.New()
	e.Use(Recover(), Metrics())
	e.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}

	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}
