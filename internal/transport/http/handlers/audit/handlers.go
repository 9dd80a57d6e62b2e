package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/audit"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Lister interface {
	List(ctx context.Context, tenantID string, filter audit.Filter, includeDetails bool) ([]audit.Event, error)
}

type Handler struct {
	Service Lister
	Perms   middleware.PermissionStore
	Metrics *metrics.Collector
	Limits  shared.PageLimits
}

func NewHandler(service Lister, perms middleware.PermissionStore, collector *metrics.Collector, limits shared.PageLimits) *Handler {
	return &Handler{Service: service, Perms: perms, Metrics: collector, Limits: limits}
}

var EventTable = shared.TableSpec[audit.Event]{
	Title:            "Audit Log",
	SearchFields:     []string{"action", "entityType", "entityId", "actorId", "ip"},
	DefaultSort:      "createdAt",
	DefaultDirection: datatable.Descending,
	Columns: []datatable.Column[audit.Event]{
		{Key: "createdAt", Label: "Created At", Sortable: true},
		{Key: "action", Label: "Action", Sortable: true},
		{Key: "entityType", Label: "Entity", Sortable: true},
		{Key: "entityId", Label: "ID"},
		{Key: "actorId", Label: "Actor", Sortable: true},
		{Key: "ip", Label: "IP Address"},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermManageAuditLog, h.Perms))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
		r.Get("/events/export.pdf", h.handleExportPDF)
	})
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) ([]audit.Event, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}

	q := r.URL.Query()
	filter := audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), ActorUser: q.Get("actorUserId")}
	events, err := h.Service.List(r.Context(), user.TenantID, filter, q.Get("includeDetails") == "true")
	if err != nil {
		zap.L().Error("audit list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return events, true
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, ok := h.events(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, events, EventTable, h.Limits)
	h.Metrics.ObserveList("audit_events", meta.Filtered)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	events, ok := h.events(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, events, EventTable, h.Limits, "audit-events.pdf")
}

// handleExportEvents streams every matching event as CSV, ignoring paging.
func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	events, ok := h.events(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		zap.L().Warn("audit export header failed", zap.Error(err))
	}
	for _, evt := range events {
		row := []string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			zap.L().Warn("audit export row failed", zap.Error(err))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		zap.L().Warn("audit export flush failed", zap.Error(err))
	}
}
