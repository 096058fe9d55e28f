package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cityMover/internal/config"
)

type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	logins     *prometheus.CounterVec
	published  *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	searches   prometheus.Counter
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "logins_total", Help: "Login attempts by result."}, []string{"result"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "properties_published_total", Help: "Listings stored, by city."}, []string{"city"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "listing_rejections_total", Help: "Listing forms refused, by message id."}, []string{"reason"})
	searches := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "property_searches_total"})
	r.MustRegister(logins, published, rejected, searches)

	return &Metrics{
		registry:   r,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		logins:     logins,
		published:  published,
		rejected:   rejected,
		searches:   searches,
	}
}

// Login records a login attempt; result is "ok", "denied" or "error".
func (m *Metrics) Login(result string) { m.logins.WithLabelValues(result).Inc() }

func (m *Metrics) Published(city string) { m.published.WithLabelValues(city).Inc() }

func (m *Metrics) Rejected(reason string) { m.rejected.WithLabelValues(reason).Inc() }

func (m *Metrics) Searched() { m.searches.Inc() }

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
