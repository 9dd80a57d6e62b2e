// Package handlertest holds doubles shared by the HTTP handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrmgo/internal/domain/audit"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/transport/http/middleware"
)

// Perms grants permissions by role name.
type Perms map[string][]string

func (p Perms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, granted := range p[roleID] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}

// RolePerms grants every role the permissions of auth.RolePermissions, keyed by role name.
func RolePerms() Perms {
	out := Perms{}
	for role, perms := range auth.RolePermissions {
		out[role] = perms
	}
	return out
}

// Auditor remembers recorded entries.
type Auditor struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (a *Auditor) Record(_ context.Context, e audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, e)
	return nil
}

func (a *Auditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}

// User returns a user of the given role whose RoleID equals the role name,
// so it matches Perms keys.
func User(role string) auth.UserContext {
	return auth.UserContext{UserID: "u-" + role, TenantID: "t1", RoleID: role, RoleName: role}
}

type Registrar interface {
	RegisterRoutes(r chi.Router)
}

// Router mounts h under a chi router that authenticates every request as user.
// A zero user leaves requests anonymous.
func Router(h Registrar, user auth.UserContext) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user.UserID != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	return r
}

// Do serves one request. body is JSON encoded when non-nil.
func Do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Envelope is the decoded API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func Decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// DecodeData decodes the envelope data into out.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()
	env := Decode(t, rec)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return env
}
