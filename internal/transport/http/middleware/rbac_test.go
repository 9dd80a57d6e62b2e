package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrmgo/internal/domain/auth"
)

type stubPermissions struct {
	allowed map[string]bool
	err     error
}

func (s stubPermissions) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[roleID+"|"+permission], nil
}

func TestRequirePermission(t *testing.T) {
	store := stubPermissions{allowed: map[string]bool{"hr|" + auth.PermManageEmployee: true}}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name  string
		user  *auth.UserContext
		store PermissionStore
		want  int
	}{
		{"anonymous", nil, store, http.StatusUnauthorized},
		{"allowed", &auth.UserContext{UserID: "u1", RoleID: "hr"}, store, http.StatusNoContent},
		{"forbidden", &auth.UserContext{UserID: "u2", RoleID: "employee"}, store, http.StatusForbidden},
		{"store error", &auth.UserContext{UserID: "u1", RoleID: "hr"}, stubPermissions{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tt.user))
			}
			rec := httptest.NewRecorder()
			RequirePermission(auth.PermManageEmployee, tt.store)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
