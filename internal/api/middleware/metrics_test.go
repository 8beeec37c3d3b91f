package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/infrastructure/metrics"
)

func TestRequestMetrics_CountsRenderedStatus(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}
	e.Use(RequestMetrics())
	e.GET("/widgets/:id", func(c echo.Context) error {
		if c.Param("id") == "deny" {
			return domain.ErrUnauthorized
		}
		return c.NoContent(http.StatusNoContent)
	})

	ok := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "204")
	denied := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "401")
	okBefore, deniedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(denied)

	for _, path := range []string{"/widgets/1", "/widgets/deny"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Fatalf("expected one 204, got %v", got)
	}
	if got := testutil.ToFloat64(denied) - deniedBefore; got != 1 {
		t.Fatalf("expected one 401, got %v", got)
	}
}
