// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	TenantConfigCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_config_cache_total",
			Help: "Tenant config cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	FeatureParseFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_features_parse_failures_total",
			Help: "Tenant features_json values that failed to parse",
		},
	)

	BootstrapDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootstrap_last_duration_seconds",
			Help: "Duration of the most recent bootstrap run",
		},
	)

	BootstrapRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootstrap_runs_total",
			Help: "Bootstrap runs by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to reg (the default registerer when nil).
// Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(
			RequestCounter,
			RequestDuration,
			TenantConfigCache,
			FeatureParseFailures,
			BootstrapDuration,
			BootstrapRuns,
		)
	})
}

func CacheHit()   { TenantConfigCache.WithLabelValues("hit").Inc() }
func CacheMiss()  { TenantConfigCache.WithLabelValues("miss").Inc() }
func CacheError() { TenantConfigCache.WithLabelValues("error").Inc() }

func ObserveBootstrap(d time.Duration, err error) {
	BootstrapDuration.Set(d.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	BootstrapRuns.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		RequestCounter.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(rec.status),
		).Inc()
		RequestDuration.WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
