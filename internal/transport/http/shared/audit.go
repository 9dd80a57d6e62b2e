package shared

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"hrmgo/internal/domain/audit"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/platform/requestctx"
)

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit stores an audit event for a change made by user. Failures are
// logged and never fail the request. A nil auditor records nothing.
func RecordAudit(r *http.Request, a Auditor, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if a == nil {
		return
	}
	err := a.Record(r.Context(), audit.Entry{
		TenantID:   user.TenantID,
		ActorID:    user.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(r.Context()),
		IP:         ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		zap.L().Warn("audit record failed", zap.String("action", action), zap.String("entityId", entityID), zap.Error(err))
	}
}
