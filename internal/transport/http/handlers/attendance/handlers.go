package attendancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/attendance"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/core"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Store interface {
	ListRecords(ctx context.Context, tenantID, employeeID string) ([]attendance.Record, error)
	MarkAttendance(ctx context.Context, tenantID string, rec attendance.Record) (string, error)
	ListRegularizations(ctx context.Context, tenantID, employeeID string) ([]attendance.Regularization, error)
	CreateRegularization(ctx context.Context, tenantID string, req attendance.Regularization) (string, error)
	Approve(ctx context.Context, tenantID, requestID, reviewerID string) (attendance.Regularization, error)
	Reject(ctx context.Context, tenantID, requestID, reviewerID string) (attendance.Regularization, error)
}

// EmployeeResolver maps a signed-in user to their employee record.
type EmployeeResolver interface {
	GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (core.Employee, error)
}

type Handler struct {
	Store     Store
	Employees EmployeeResolver
	Perms     middleware.PermissionStore
	Audit     shared.Auditor
	Metrics   *metrics.Collector
	Limits    shared.PageLimits
}

func NewHandler(store Store, employees EmployeeResolver, perms middleware.PermissionStore, auditor shared.Auditor, collector *metrics.Collector, limits shared.PageLimits) *Handler {
	return &Handler{Store: store, Employees: employees, Perms: perms, Audit: auditor, Metrics: collector, Limits: limits}
}

var RecordTable = shared.TableSpec[attendance.Record]{
	Title:            "Attendance",
	SearchFields:     []string{"employee", "status"},
	DefaultSort:      "workDate",
	DefaultDirection: datatable.Descending,
	Columns: []datatable.Column[attendance.Record]{
		{Key: "employee", Label: "Employee", Sortable: true},
		{Key: "workDate", Label: "Date", Sortable: true},
		{Key: "status", Label: "Status", Sortable: true},
		{Key: "clockIn", Label: "Clock In", Sortable: true},
		{Key: "clockOut", Label: "Clock Out", Sortable: true},
		{Key: "lateMinutes", Label: "Late", Sortable: true},
	},
}

var RegularizationTable = shared.TableSpec[attendance.Regularization]{
	Title:            "Regularizations",
	SearchFields:     []string{"employee", "reason", "status"},
	DefaultSort:      "createdAt",
	DefaultDirection: datatable.Descending,
	Columns: []datatable.Column[attendance.Regularization]{
		{Key: "employee", Label: "Requested By", Sortable: true},
		{Key: "workDate", Label: "Date", Sortable: true},
		{Key: "clockIn", Label: "Clock In"},
		{Key: "clockOut", Label: "Clock Out"},
		{Key: "reason", Label: "Reason"},
		{Key: "status", Label: "Status", Sortable: true, Render: func(v any, _ attendance.Regularization) string {
			s := datatable.Text(v)
			if s == "" {
				return ""
			}
			return strings.ToUpper(s[:1]) + s[1:]
		}},
		{Key: "reviewedAt", Label: "Reviewed At", Sortable: true},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermManageAttendance, h.Perms)).Get("/", h.handleListRecords)
			r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportRecords)
			r.With(middleware.RequirePermission(auth.PermCreateAttendance, h.Perms)).Post("/", h.handleMarkAttendance)
		})
		r.Route("/regularizations", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermManageRegularization, h.Perms)).Get("/", h.handleListRegularizations)
			r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportRegularizations)
			r.With(middleware.RequirePermission(auth.PermCreateRegularization, h.Perms)).Post("/", h.handleCreateRegularization)
			r.With(middleware.RequirePermission(auth.PermApproveRegularization, h.Perms)).Post("/{requestID}/approve", h.handleApprove)
			r.With(middleware.RequirePermission(auth.PermApproveRegularization, h.Perms)).Post("/{requestID}/reject", h.handleReject)
		})
	})
}

// ownEmployeeID resolves the caller's employee id. Employees are limited to
// their own rows; for them ok is false when no profile exists.
func (h *Handler) ownEmployeeID(r *http.Request, user auth.UserContext) (string, bool) {
	if h.Employees == nil {
		return "", false
	}
	emp, err := h.Employees.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			zap.L().Warn("attendance employee lookup failed", zap.String("userId", user.UserID), zap.Error(err))
		}
		return "", false
	}
	return emp.ID, true
}

func (h *Handler) scope(r *http.Request, user auth.UserContext) (employeeID string, visible bool) {
	if user.RoleName != auth.RoleEmployee {
		return "", true
	}
	return h.ownEmployeeID(r, user)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) ([]attendance.Record, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	employeeID, visible := h.scope(r, user)
	if !visible {
		return []attendance.Record{}, true
	}
	items, err := h.Store.ListRecords(r.Context(), user.TenantID, employeeID)
	if err != nil {
		zap.L().Error("attendance list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	items, ok := h.records(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, RecordTable, h.Limits)
	h.Metrics.ObserveList("attendance_records", meta.Filtered)
}

func (h *Handler) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	items, ok := h.records(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, RecordTable, h.Limits, "attendance.pdf")
}

func (h *Handler) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string `json:"employeeId"`
		WorkDate   string `json:"workDate"`
		Status     string `json:"status"`
		ClockIn    string `json:"clockIn"`
		ClockOut   string `json:"clockOut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	workDate, _ := v.Date("workDate", payload.WorkDate)
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = attendance.StatusPresent
	}
	v.Enum("status", status, []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLeave, attendance.StatusHalfDay}, "unknown attendance status")
	if payload.ClockIn != "" && payload.ClockOut != "" {
		if err := attendance.ValidateClock(payload.ClockIn, payload.ClockOut); err != nil {
			v.Add("clockOut", err.Error())
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rec := attendance.Record{
		EmployeeID: strings.TrimSpace(payload.EmployeeID),
		WorkDate:   workDate,
		Status:     status,
		ClockIn:    strings.TrimSpace(payload.ClockIn),
		ClockOut:   strings.TrimSpace(payload.ClockOut),
	}
	id, err := h.Store.MarkAttendance(r.Context(), user.TenantID, rec)
	if err != nil {
		zap.L().Error("attendance mark failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "attendance_mark_failed", "failed to mark attendance", middleware.GetRequestID(r.Context()))
		return
	}
	rec.ID = id
	shared.RecordAudit(r, h.Audit, user, "attendance.record.mark", "attendance_record", id, nil, rec)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) regularizations(w http.ResponseWriter, r *http.Request) ([]attendance.Regularization, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	employeeID, visible := h.scope(r, user)
	if !visible {
		return []attendance.Regularization{}, true
	}
	items, err := h.Store.ListRegularizations(r.Context(), user.TenantID, employeeID)
	if err != nil {
		zap.L().Error("regularization list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "regularization_list_failed", "failed to list regularization requests", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListRegularizations(w http.ResponseWriter, r *http.Request) {
	items, ok := h.regularizations(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, RegularizationTable, h.Limits)
	h.Metrics.ObserveList("regularizations", meta.Filtered)
}

func (h *Handler) handleExportRegularizations(w http.ResponseWriter, r *http.Request) {
	items, ok := h.regularizations(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, RegularizationTable, h.Limits, "regularizations.pdf")
}

func (h *Handler) handleCreateRegularization(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string `json:"employeeId"`
		WorkDate   string `json:"workDate"`
		ClockIn    string `json:"clockIn"`
		ClockOut   string `json:"clockOut"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	// Employees always file for themselves.
	if user.RoleName == auth.RoleEmployee || payload.EmployeeID == "" {
		payload.EmployeeID, _ = h.ownEmployeeID(r, user)
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("reason", payload.Reason, "reason is required")
	workDate, _ := v.Date("workDate", payload.WorkDate)
	if err := attendance.ValidateClock(payload.ClockIn, payload.ClockOut); err != nil {
		v.Add("clockOut", err.Error())
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	req := attendance.Regularization{
		EmployeeID: payload.EmployeeID,
		WorkDate:   workDate,
		ClockIn:    payload.ClockIn,
		ClockOut:   payload.ClockOut,
		Reason:     strings.TrimSpace(payload.Reason),
		Status:     attendance.RequestPending,
	}
	id, err := h.Store.CreateRegularization(r.Context(), user.TenantID, req)
	if err != nil {
		zap.L().Error("regularization create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "regularization_create_failed", "failed to create regularization request", middleware.GetRequestID(r.Context()))
		return
	}
	req.ID = id
	shared.RecordAudit(r, h.Audit, user, "attendance.regularization.create", "regularization", id, nil, req)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve", h.Store.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject", h.Store.Reject)
}

type reviewFunc func(ctx context.Context, tenantID, requestID, reviewerID string) (attendance.Regularization, error)

func (h *Handler) review(w http.ResponseWriter, r *http.Request, action string, apply reviewFunc) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := apply(r.Context(), user.TenantID, requestID, user.UserID)
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "regularization request not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, attendance.ErrNotPending):
		api.Fail(w, http.StatusConflict, "already_reviewed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		zap.L().Error("regularization review failed", zap.String("action", action), zap.String("requestId", requestID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "regularization_review_failed", "failed to review request", middleware.GetRequestID(r.Context()))
		return
	}

	shared.RecordAudit(r, h.Audit, user, "attendance.regularization."+action, "regularization", requestID,
		map[string]string{"status": attendance.RequestPending}, map[string]string{"status": req.Status})
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}
