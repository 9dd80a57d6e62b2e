package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hrmgo/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// UserChecker confirms a token subject still exists in its tenant.
type UserChecker interface {
	UserExists(ctx context.Context, tenantID, userID string) (bool, error)
}

// Auth attaches the bearer token's user to the request context. Requests
// without a valid token pass through anonymous; RequirePermission rejects
// them. When users is non-nil, tokens of deleted users are ignored.
func Auth(secret string, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := authenticate(r, secret, users); ok {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, secret string, users UserChecker) (auth.UserContext, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return auth.UserContext{}, false
	}
	claims, err := auth.ParseToken(secret, token)
	if err != nil {
		zap.L().Debug("bearer token rejected", zap.Error(err))
		return auth.UserContext{}, false
	}
	if users == nil {
		return claims.User(), true
	}
	exists, err := users.UserExists(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		zap.L().Warn("token user lookup failed", zap.String("userId", claims.UserID), zap.Error(err))
		return auth.UserContext{}, false
	}
	return claims.User(), exists
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
