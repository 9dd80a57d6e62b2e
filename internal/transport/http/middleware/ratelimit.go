package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/shared"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// fixedWindow counts hits per key in fixed windows. Expired buckets are
// dropped lazily so idle clients do not accumulate.
type fixedWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	key       KeyFunc
	now       func() time.Time
	buckets   map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	hits  int
	reset time.Time
}

type decision struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

func newFixedWindow(limit int, window time.Duration, key KeyFunc) *fixedWindow {
	if key == nil {
		key = ActorOrIP
	}
	return &fixedWindow{limit: limit, window: window, key: key, now: time.Now, buckets: map[string]*bucket{}}
}

func (f *fixedWindow) hit(key string) decision {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	if now.After(f.nextSweep) {
		for k, b := range f.buckets {
			if now.After(b.reset) {
				delete(f.buckets, k)
			}
		}
		f.nextSweep = now.Add(f.window)
	}

	b, ok := f.buckets[key]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(f.window)}
		f.buckets[key] = b
	}
	b.hits++
	return decision{
		allowed:   b.hits <= f.limit,
		remaining: max(f.limit-b.hits, 0),
		resetIn:   b.reset.Sub(now),
	}
}

// admit records the request and writes the rate limit headers. It answers
// 429 and returns false once the bucket is exhausted.
func (f *fixedWindow) admit(w http.ResponseWriter, r *http.Request) bool {
	if f.limit <= 0 {
		return true
	}
	key := f.key(r)
	if key == "" {
		key = shared.ClientIP(r)
	}
	d := f.hit(key)
	resetSec := ceilSeconds(d.resetIn)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(f.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if d.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	zap.L().Warn("rate limit exceeded",
		zap.String("key", key),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", f.limit),
		zap.Duration("window", f.window),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// RateLimit allows limit requests per window for each caller. Callers are
// keyed by user when authenticated and by client IP otherwise.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	fw := newFixedWindow(limit, window, ActorOrIP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fw.admit(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter budgets on top of RateLimit for
// logins (a quarter, per IP and per submitted email) and for bulk or approval
// mutations (half, per actor).
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	loginByIP := newFixedWindow(loginLimit, window, shared.ClientIP)
	loginByEmail := newFixedWindow(loginLimit, window, JSONFieldOrIP("email"))
	byActor := newFixedWindow(max(baseLimit/2, 1), window, ActorOrIP)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !loginByIP.admit(w, r) || !loginByEmail.admit(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !byActor.admit(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorOrIP(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return shared.ClientIP(r)
}

// JSONFieldOrIP keys by a lowercased string field of a JSON body, restoring
// the body for the next handler.
func JSONFieldOrIP(field string) KeyFunc {
	return func(r *http.Request) string {
		if value := peekJSONField(r, field); value != "" {
			return field + ":" + strings.ToLower(value)
		}
		return shared.ClientIP(r)
	}
}

func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

type sensitiveRoute struct {
	prefix string
	suffix string
	scope  sensitiveScope
}

// Paths are relative to /api/v1. An empty suffix means an exact match.
var sensitiveRoutes = []sensitiveRoute{
	{prefix: "/auth/login", scope: sensitiveScopeAuth},
	{prefix: "/employees/import", scope: sensitiveScopeActor},
	{prefix: "/attendance/regularizations/", suffix: "/approve", scope: sensitiveScopeActor},
	{prefix: "/attendance/regularizations/", suffix: "/reject", scope: sensitiveScopeActor},
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	for _, route := range sensitiveRoutes {
		if route.suffix == "" {
			if path == route.prefix {
				return route.scope
			}
			continue
		}
		if strings.HasPrefix(path, route.prefix) && strings.HasSuffix(path, route.suffix) && len(path) > len(route.prefix)+len(route.suffix) {
			return route.scope
		}
	}
	return sensitiveScopeNone
}
