package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityMover/internal/config"
)

func TestMiddlewareRecordsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(config.MetricsConfig{Namespace: "test"})
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/cities/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/cities/1", "/cities/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues("GET", "/cities/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInfl.WithLabelValues("/cities/:id")))
}

func TestDomainCountersAndHandler(t *testing.T) {
	m := New(config.MetricsConfig{Namespace: "test"})
	m.Login("ok")
	m.Login("denied")
	m.Login("denied")
	m.Published("دمشق")
	m.Rejected("area_not_active")
	m.Searched()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("دمشق")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "test_logins_total"))
	assert.True(t, strings.Contains(body, `test_listing_rejections_total{reason="area_not_active"} 1`))
}
