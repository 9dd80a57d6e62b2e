package performancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/performance"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Handler struct {
	Service *performance.Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Metrics *metrics.Collector
	Limits  shared.PageLimits
}

func NewHandler(service *performance.Service, perms middleware.PermissionStore, auditor shared.Auditor, collector *metrics.Collector, limits shared.PageLimits) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor, Metrics: collector, Limits: limits}
}

var GoalTable = shared.TableSpec[performance.Goal]{
	Title:            "Goals",
	SearchFields:     []string{"employee", "goalType", "subject", "target", "status"},
	DefaultSort:      "endDate",
	DefaultDirection: datatable.Ascending,
	Columns: []datatable.Column[performance.Goal]{
		{Key: "employee", Label: "Employee", Sortable: true},
		{Key: "goalType", Label: "Goal Type", Sortable: true},
		{Key: "subject", Label: "Subject", Sortable: true},
		{Key: "target", Label: "Target"},
		{Key: "startDate", Label: "Start Date", Sortable: true},
		{Key: "endDate", Label: "End Date", Sortable: true},
		{Key: "progress", Label: "Progress", Sortable: true, Render: func(v any, _ performance.Goal) string {
			return datatable.Text(v) + "%"
		}},
		{Key: "status", Label: "Status", Sortable: true},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageGoalTracking, h.Perms)).Get("/", h.handleListGoals)
		r.With(middleware.RequirePermission(auth.PermManageGoalTracking, h.Perms)).Get("/summary", h.handleGoalSummary)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportGoals)
		r.With(middleware.RequirePermission(auth.PermCreateGoalTracking, h.Perms)).Post("/", h.handleCreateGoal)
	})
}

// scope returns the employee whose goals user may see. Employees only see
// their own goals; ok is false when that employee cannot be resolved.
func (h *Handler) scope(r *http.Request, user auth.UserContext) (employeeID string, ok bool) {
	if user.RoleName != auth.RoleEmployee {
		return "", true
	}
	id, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		zap.L().Warn("goal scope employee lookup failed", zap.String("userId", user.UserID), zap.Error(err))
		return "", false
	}
	return id, true
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) ([]performance.Goal, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	employeeID, ok := h.scope(r, user)
	if !ok {
		return []performance.Goal{}, true
	}
	goals, err := h.Service.ListGoals(r.Context(), user.TenantID, employeeID)
	if err != nil {
		zap.L().Error("goal list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "goal_list_failed", "failed to list goals", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return goals, true
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, ok := h.goals(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, goals, GoalTable, h.Limits)
	h.Metrics.ObserveList("goals", meta.Filtered)
}

func (h *Handler) handleExportGoals(w http.ResponseWriter, r *http.Request) {
	goals, ok := h.goals(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, goals, GoalTable, h.Limits, "goals.pdf")
}

func (h *Handler) handleGoalSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employeeID, ok := h.scope(r, user)
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "employee profile not found", middleware.GetRequestID(r.Context()))
		return
	}
	if employeeID == "" {
		employeeID = strings.TrimSpace(r.URL.Query().Get("employeeId"))
	}

	summary, err := h.Service.Summary(r.Context(), user.TenantID, employeeID)
	if err != nil {
		zap.L().Error("goal summary failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "goal_summary_failed", "failed to summarize goals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string  `json:"employeeId"`
		GoalType   string  `json:"goalType"`
		Subject    string  `json:"subject"`
		Target     string  `json:"target"`
		StartDate  string  `json:"startDate"`
		EndDate    string  `json:"endDate"`
		Progress   float64 `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.EmployeeID == "" {
		if id, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID); err != nil {
			zap.L().Warn("goal create employee lookup failed", zap.Error(err))
		} else {
			payload.EmployeeID = id
		}
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id required")
	v.Required("subject", payload.Subject, "subject is required")
	v.Required("goalType", payload.GoalType, "goal type is required")
	v.Enum("goalType", payload.GoalType, performance.GoalTypes, "unknown goal type")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Range("progress", payload.Progress, 0, 100)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	goal := performance.Goal{
		EmployeeID: payload.EmployeeID,
		GoalType:   strings.ToLower(strings.TrimSpace(payload.GoalType)),
		Subject:    strings.TrimSpace(payload.Subject),
		Target:     strings.TrimSpace(payload.Target),
		StartDate:  start,
		EndDate:    end,
		Progress:   payload.Progress,
	}
	id, err := h.Service.CreateGoal(r.Context(), user.TenantID, goal)
	if errors.Is(err, performance.ErrInvalidProgress) || errors.Is(err, performance.ErrInvalidRange) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		zap.L().Error("goal create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "goal_create_failed", "failed to create goal", middleware.GetRequestID(r.Context()))
		return
	}
	goal.ID = id
	shared.RecordAudit(r, h.Audit, user, "performance.goal.create", "goal", id, nil, goal)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
