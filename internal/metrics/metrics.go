package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Security metrics
	AuthorizationDecisionsTotal *prometheus.CounterVec
	TokenOperationsTotal        *prometheus.CounterVec

	// Lifecycle metrics
	CascadeDeletesTotal *prometheus.CounterVec
}

// New creates and registers all metrics on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workspace_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		AuthorizationDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_authorization_decisions_total",
				Help: "Permission checks by decision",
			},
			[]string{"decision", "role"},
		),
		TokenOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_token_operations_total",
				Help: "Access token operations by result",
			},
			[]string{"operation", "result"},
		),
		CascadeDeletesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_cascade_deletes_total",
				Help: "Cascading deletes by resource and result",
			},
			[]string{"resource", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthorizationDecisionsTotal,
		m.TokenOperationsTotal,
		m.CascadeDeletesTotal,
	)

	return m
}

// ObserveTokenOperation counts an access token operation.
func (m *Metrics) ObserveTokenOperation(operation, result string) {
	m.TokenOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveAuthorization counts a permission decision.
func (m *Metrics) ObserveAuthorization(decision, role string) {
	if role == "" {
		role = "none"
	}
	m.AuthorizationDecisionsTotal.WithLabelValues(decision, role).Inc()
}

// ObserveCascadeDelete counts a cascading delete.
func (m *Metrics) ObserveCascadeDelete(resource string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.CascadeDeletesTotal.WithLabelValues(resource, result).Inc()
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
