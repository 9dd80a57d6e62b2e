package corehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/core"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Store interface {
	ListEmployees(ctx context.Context, tenantID string) ([]core.Employee, error)
	GetEmployee(ctx context.Context, tenantID, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, tenantID string, emp core.Employee) (string, error)
	EmployeeIDByLegacyID(ctx context.Context, tenantID string, legacyID int64) (string, error)
	ListDepartments(ctx context.Context, tenantID string) ([]core.Department, error)
	CreateDepartment(ctx context.Context, tenantID string, dep core.Department) (string, error)
	DepartmentExists(ctx context.Context, tenantID, departmentID string) (bool, error)
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

var EmployeeTable = shared.TableSpec[core.Employee]{
	Title:            "Employees",
	SearchFields:     []string{"name", "email", "employeeNumber", "department"},
	DefaultSort:      "name",
	DefaultDirection: datatable.Ascending,
	Columns: []datatable.Column[core.Employee]{
		{Key: "employeeNumber", Label: "Employee ID", Sortable: true},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "email", Label: "Email", Sortable: true},
		{Key: "phone", Label: "Phone"},
		{Key: "department", Label: "Department", Sortable: true},
		{Key: "designation", Label: "Designation", Sortable: true},
		{Key: "dateOfJoining", Label: "Date Of Joining", Sortable: true},
		{Key: "salary", Label: "Salary", Sortable: true},
		{Key: "status", Label: "Status", Sortable: true},
	},
}

var DepartmentTable = shared.TableSpec[core.Department]{
	Title:            "Departments",
	SearchFields:     []string{"name", "branch"},
	DefaultSort:      "name",
	DefaultDirection: datatable.Ascending,
	Columns: []datatable.Column[core.Department]{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "branch", Label: "Branch", Sortable: true},
		{Key: "employees", Label: "Employees", Sortable: true},
		{Key: "createdAt", Label: "Created At", Sortable: true},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageEmployee, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportEmployees)
		r.With(middleware.RequirePermission(auth.PermCreateEmployee, h.Perms)).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermImportLegacyEmployees, h.Perms)).Post("/import", h.handleImportEmployees)
		r.With(middleware.RequirePermission(auth.PermShowEmployee, h.Perms)).Get("/{employeeID}", h.handleGetEmployee)
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageDepartment, h.Perms)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportDepartments)
		r.With(middleware.RequirePermission(auth.PermCreateDepartment, h.Perms)).Post("/", h.handleCreateDepartment)
	})
}

func (h *Handler) employees(w http.ResponseWriter, r *http.Request) ([]core.Employee, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	items, err := h.Store.ListEmployees(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("employee list failed", zap.String("tenantId", user.TenantID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return core.FilterEmployees(items, user), true
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	items, ok := h.employees(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, EmployeeTable, h.Limits)
	h.Metrics.ObserveList("employees", meta.Filtered)
}

func (h *Handler) handleExportEmployees(w http.ResponseWriter, r *http.Request) {
	items, ok := h.employees(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, EmployeeTable, h.Limits, "employees.pdf")
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		zap.L().Error("employee lookup failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}

	isSelf := emp.UserID != "" && emp.UserID == user.UserID
	if user.RoleName == auth.RoleEmployee && !isSelf {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	core.FilterEmployeeFields(&emp, user, isSelf)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type employeeRequest struct {
	EmployeeNumber string   `json:"employeeNumber"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	DepartmentID   string   `json:"departmentId"`
	Designation    string   `json:"designation"`
	DateOfJoining  string   `json:"dateOfJoining"`
	Salary         *float64 `json:"salary"`
	BankAccount    string   `json:"bankAccount"`
	Status         string   `json:"status"`
	LegacyID       *int64   `json:"legacyId"`
}

// employee validates the payload into v and returns the employee to store.
func (p employeeRequest) employee(ctx context.Context, store Store, tenantID string, v *shared.Validator) core.Employee {
	v.Required("name", p.Name, "name is required")
	v.Required("email", p.Email, "email is required")
	v.Email("email", p.Email)
	v.Enum("status", p.Status, []string{core.EmployeeStatusActive, core.EmployeeStatusInactive}, "must be active or inactive")
	if p.Salary != nil {
		v.NonNegative("salary", *p.Salary)
	}

	emp := core.Employee{
		EmployeeNumber: strings.TrimSpace(p.EmployeeNumber),
		Name:           strings.TrimSpace(p.Name),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:          strings.TrimSpace(p.Phone),
		DepartmentID:   strings.TrimSpace(p.DepartmentID),
		Designation:    strings.TrimSpace(p.Designation),
		Salary:         p.Salary,
		BankAccount:    strings.TrimSpace(p.BankAccount),
		Status:         strings.ToLower(strings.TrimSpace(p.Status)),
		LegacyID:       p.LegacyID,
	}
	if strings.TrimSpace(p.DateOfJoining) != "" {
		if joined, ok := v.Date("dateOfJoining", p.DateOfJoining); ok {
			emp.DateOfJoining = &joined
		}
	}
	if emp.DepartmentID != "" {
		exists, err := store.DepartmentExists(ctx, tenantID, emp.DepartmentID)
		if err != nil {
			zap.L().Warn("department lookup failed", zap.String("departmentId", emp.DepartmentID), zap.Error(err))
		}
		if err != nil || !exists {
			v.Add("departmentId", "unknown department")
		}
	}
	return emp
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	emp := payload.employee(r.Context(), h.Store, user.TenantID, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), user.TenantID, emp)
	if err != nil {
		if isUniqueViolation(err) {
			api.Fail(w, http.StatusConflict, "employee_exists", "employee email already exists", middleware.GetRequestID(r.Context()))
			return
		}
		zap.L().Error("employee create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	emp.ID = id
	emp.BankAccount = ""
	shared.RecordAudit(r, h.Audit, user, "core.employee.create", "employee", id, nil, emp)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type importRequest struct {
	Employees []employeeRequest `json:"employees"`
}

type ImportFailure struct {
	Index    int    `json:"index"`
	LegacyID *int64 `json:"legacyId,omitempty"`
	Reason   string `json:"reason"`
}

type ImportResult struct {
	Created  int             `json:"created"`
	Skipped  int             `json:"skipped"`
	Failures []ImportFailure `json:"failures"`
}

const maxImportBatch = 500

// handleImportEmployees creates a batch of employees read from the legacy
// HRMGO database. Rows whose legacy id was already imported are skipped.
func (h *Handler) handleImportEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload importRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Employees) == 0 || len(payload.Employees) > maxImportBatch {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employees must hold between 1 and 500 rows", middleware.GetRequestID(r.Context()))
		return
	}

	started := time.Now()
	result := ImportResult{Failures: []ImportFailure{}}
	for i, row := range payload.Employees {
		if row.LegacyID == nil {
			result.Failures = append(result.Failures, ImportFailure{Index: i, Reason: "legacyId is required"})
			continue
		}
		if _, err := h.Store.EmployeeIDByLegacyID(r.Context(), user.TenantID, *row.LegacyID); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, core.ErrNotFound) {
			zap.L().Warn("legacy id lookup failed", zap.Int64("legacyId", *row.LegacyID), zap.Error(err))
			result.Failures = append(result.Failures, ImportFailure{Index: i, LegacyID: row.LegacyID, Reason: "lookup failed"})
			continue
		}

		v := shared.NewValidator()
		emp := row.employee(r.Context(), h.Store, user.TenantID, v)
		if v.HasIssues() {
			issue := v.Issues()[0]
			result.Failures = append(result.Failures, ImportFailure{Index: i, LegacyID: row.LegacyID, Reason: issue.Field + ": " + issue.Reason})
			continue
		}
		if _, err := h.Store.CreateEmployee(r.Context(), user.TenantID, emp); err != nil {
			reason := "create failed"
			if isUniqueViolation(err) {
				reason = "email already exists"
			} else {
				zap.L().Warn("legacy employee create failed", zap.Int64("legacyId", *row.LegacyID), zap.Error(err))
			}
			result.Failures = append(result.Failures, ImportFailure{Index: i, LegacyID: row.LegacyID, Reason: reason})
			continue
		}
		result.Created++
	}

	zap.L().Info("legacy import finished",
		zap.String("tenantId", user.TenantID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("took", time.Since(started)),
	)
	shared.RecordAudit(r, h.Audit, user, "core.employee.import", "employee", "", nil, result)
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) departments(w http.ResponseWriter, r *http.Request) ([]core.Department, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	items, err := h.Store.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("department list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	items, ok := h.departments(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, DepartmentTable, h.Limits)
	h.Metrics.ObserveList("departments", meta.Filtered)
}

func (h *Handler) handleExportDepartments(w http.ResponseWriter, r *http.Request) {
	items, ok := h.departments(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, DepartmentTable, h.Limits, "departments.pdf")
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name   string `json:"name"`
		Branch string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	dep := core.Department{Name: strings.TrimSpace(payload.Name), Branch: strings.TrimSpace(payload.Branch)}
	id, err := h.Store.CreateDepartment(r.Context(), user.TenantID, dep)
	if err != nil {
		zap.L().Error("department create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", middleware.GetRequestID(r.Context()))
		return
	}
	dep.ID = id
	shared.RecordAudit(r, h.Audit, user, "core.department.create", "department", id, nil, dep)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
