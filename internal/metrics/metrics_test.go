// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/tenants/{code}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(
		RequestCounter.WithLabelValues(http.MethodGet, "/tenants/{code}", "418"),
	)

	for _, code := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/"+code, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(
		RequestCounter.WithLabelValues(http.MethodGet, "/tenants/{code}", "418"),
	)
	assert.Equal(t, float64(3), after-before)
}

func TestCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(TenantConfigCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(TenantConfigCache.WithLabelValues("miss"))

	CacheHit()
	CacheHit()
	CacheMiss()

	assert.Equal(t, hits+2, testutil.ToFloat64(TenantConfigCache.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(TenantConfigCache.WithLabelValues("miss")))
}

func TestObserveBootstrap(t *testing.T) {
	failures := testutil.ToFloat64(BootstrapRuns.WithLabelValues("failure"))

	ObserveBootstrap(1500*time.Millisecond, errors.New("lock timeout"))

	assert.Equal(t, 1.5, testutil.ToFloat64(BootstrapDuration))
	assert.Equal(t, failures+1, testutil.ToFloat64(BootstrapRuns.WithLabelValues("failure")))
}
