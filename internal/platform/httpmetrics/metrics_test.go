package httpmetrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("orders")
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", m.Handler())

	for _, path := range []string{"/orders/1", "/orders/2", "/missing"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/orders/:id", "200")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "orders_http_requests_total"))
	require.True(t, strings.Contains(body, "orders_http_request_duration_seconds"))
}
