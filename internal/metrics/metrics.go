// Package metrics exposes BeHub API client activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "behubadmin"

// Metrics implements apiclient.Observer on its own registry
type Metrics struct {
	registry *prometheus.Registry

	mRequests *prometheus.CounterVec
	mLatency  *prometheus.HistogramVec
	mRefresh  *prometheus.CounterVec
	mRetries  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total", Help: "Calls made to the BeHub API",
		}, []string{"method", "status"}),
		mLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "BeHub API call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		mRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "token_refresh_total", Help: "Refresh token exchanges by outcome",
		}, []string{"outcome"}),
		mRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_retries_total", Help: "Requests replayed after token refresh",
		}),
	}
}

// Status 0 means the call never got a response
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	m.mRequests.WithLabelValues(method, code).Inc()
	m.mLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveRefresh(outcome string) {
	m.mRefresh.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRetry() {
	m.mRetries.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
