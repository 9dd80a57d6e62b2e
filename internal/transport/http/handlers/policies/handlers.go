package policieshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/policies"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Store interface {
	ListPolicies(ctx context.Context, tenantID string) ([]policies.Policy, error)
	CreatePolicy(ctx context.Context, tenantID string, p policies.Policy) (string, error)
	ListRegulations(ctx context.Context, tenantID string) ([]policies.Regulation, error)
	CreateRegulation(ctx context.Context, tenantID string, r policies.Regulation) (string, error)
}

type Handler struct {
	Store   Store
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Metrics *metrics.Collector
	Limits  shared.PageLimits
}

func NewHandler(store Store, perms middleware.PermissionStore, auditor shared.Auditor, collector *metrics.Collector, limits shared.PageLimits) *Handler {
	return &Handler{Store: store, Perms: perms, Audit: auditor, Metrics: collector, Limits: limits}
}

var PolicyTable = shared.TableSpec[policies.Policy]{
	Title:            "Company Policy",
	SearchFields:     []string{"branch", "title", "description"},
	DefaultSort:      "title",
	DefaultDirection: datatable.Ascending,
	Columns: []datatable.Column[policies.Policy]{
		{Key: "branch", Label: "Branch", Sortable: true},
		{Key: "title", Label: "Title", Sortable: true},
		{Key: "description", Label: "Description"},
		{Key: "attachment", Label: "Attachment"},
	},
}

var RegulationTable = shared.TableSpec[policies.Regulation]{
	Title:            "Regulations",
	SearchFields:     []string{"title", "category", "description"},
	DefaultSort:      "effectiveDate",
	DefaultDirection: datatable.Descending,
	Columns: []datatable.Column[policies.Regulation]{
		{Key: "title", Label: "Title", Sortable: true},
		{Key: "category", Label: "Category", Sortable: true},
		{Key: "description", Label: "Description"},
		{Key: "effectiveDate", Label: "Effective Date", Sortable: true},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageCompanyPolicy, h.Perms)).Get("/", h.handleListPolicies)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportPolicies)
		r.With(middleware.RequirePermission(auth.PermCreateCompanyPolicy, h.Perms)).Post("/", h.handleCreatePolicy)
	})
	r.Route("/regulations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageRegulation, h.Perms)).Get("/", h.handleListRegulations)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportRegulations)
		r.With(middleware.RequirePermission(auth.PermCreateRegulation, h.Perms)).Post("/", h.handleCreateRegulation)
	})
}

func (h *Handler) policies(w http.ResponseWriter, r *http.Request) ([]policies.Policy, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	items, err := h.Store.ListPolicies(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("policy list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "policy_list_failed", "failed to list policies", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	items, ok := h.policies(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, PolicyTable, h.Limits)
	h.Metrics.ObserveList("policies", meta.Filtered)
}

func (h *Handler) handleExportPolicies(w http.ResponseWriter, r *http.Request) {
	items, ok := h.policies(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, PolicyTable, h.Limits, "policies.pdf")
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload policies.Policy
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	p := policies.Policy{
		Branch:      strings.TrimSpace(payload.Branch),
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Attachment:  strings.TrimSpace(payload.Attachment),
	}
	id, err := h.Store.CreatePolicy(r.Context(), user.TenantID, p)
	if err != nil {
		zap.L().Error("policy create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "policy_create_failed", "failed to create policy", middleware.GetRequestID(r.Context()))
		return
	}
	p.ID = id
	shared.RecordAudit(r, h.Audit, user, "policies.policy.create", "policy", id, nil, p)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) regulations(w http.ResponseWriter, r *http.Request) ([]policies.Regulation, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	items, err := h.Store.ListRegulations(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("regulation list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "regulation_list_failed", "failed to list regulations", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListRegulations(w http.ResponseWriter, r *http.Request) {
	items, ok := h.regulations(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, RegulationTable, h.Limits)
	h.Metrics.ObserveList("regulations", meta.Filtered)
}

func (h *Handler) handleExportRegulations(w http.ResponseWriter, r *http.Request) {
	items, ok := h.regulations(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, RegulationTable, h.Limits, "regulations.pdf")
}

func (h *Handler) handleCreateRegulation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Title         string `json:"title"`
		Category      string `json:"category"`
		Description   string `json:"description"`
		EffectiveDate string `json:"effectiveDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	reg := policies.Regulation{
		Title:       strings.TrimSpace(payload.Title),
		Category:    strings.TrimSpace(payload.Category),
		Description: strings.TrimSpace(payload.Description),
	}
	if strings.TrimSpace(payload.EffectiveDate) != "" {
		if effective, ok := v.Date("effectiveDate", payload.EffectiveDate); ok {
			reg.EffectiveDate = &effective
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateRegulation(r.Context(), user.TenantID, reg)
	if err != nil {
		zap.L().Error("regulation create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "regulation_create_failed", "failed to create regulation", middleware.GetRequestID(r.Context()))
		return
	}
	reg.ID = id
	shared.RecordAudit(r, h.Audit, user, "policies.regulation.create", "regulation", id, nil, reg)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
