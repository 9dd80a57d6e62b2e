package middleware

import (
	"net/http"
	"time"

	"hrmgo/internal/platform/metrics"
)

// Metrics records every request against the chi route pattern.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			collector.Record(r.Method, routePattern(r), recorder.status, time.Since(start))
		})
	}
}
