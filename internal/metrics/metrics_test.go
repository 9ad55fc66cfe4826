package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	e := echo.New()
	e.Use(c.Middleware())
	e.GET("/api/books/isbn/:isbn", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, []string{})
	})

	for _, isbn := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/books/isbn/"+isbn, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got := testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/api/books/isbn/:isbn", "200"))
	assert.Equal(t, 2.0, got)
}

func TestRecordAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuth("login", "ok")
	c.RecordAuth("login", "ok")
	c.RecordAuth("verify", "denied")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.auth.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.auth.WithLabelValues("verify", "denied")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuth("register", "ok")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "booklist_auth_outcomes_total"))
}
