package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"hrmgo/internal/transport/http/api"
)

// PermissionStore answers whether a role holds a named permission.
type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission answers 401 for anonymous requests and 403 when the
// caller's role lacks permission.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user, ok := GetUser(ctx)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(ctx))
				return
			}

			allowed, err := store.HasPermission(ctx, user.RoleID, permission)
			switch {
			case err != nil:
				zap.L().Error("permission check failed",
					zap.String("roleId", user.RoleID), zap.String("permission", permission), zap.Error(err))
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", GetRequestID(ctx))
			case !allowed:
				zap.L().Debug("permission denied",
					zap.String("userId", user.UserID), zap.String("role", user.RoleName), zap.String("permission", permission))
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(ctx))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
