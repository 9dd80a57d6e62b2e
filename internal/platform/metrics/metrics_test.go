package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCountsByRoute(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 20*time.Millisecond)
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 40*time.Millisecond)
	c.Record(http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests, time.Millisecond)
	c.Record(http.MethodGet, "", http.StatusInternalServerError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/api/v1/employees", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "unmatched", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rateLimited))

	snap := c.Snapshot()
	assert.Equal(t, uint64(4), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
}

func TestObserveList(t *testing.T) {
	c := New()
	c.ObserveList("employees", 12)
	c.ObserveList("employees", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.listed.WithLabelValues("employees")))

	var nilCollector *Collector
	assert.NotPanics(t, func() { nilCollector.ObserveList("goals", 1) })
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hrmgo_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
