package recruitmenthandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/domain/auth"
	"hrmgo/internal/domain/recruitment"
	"hrmgo/internal/platform/metrics"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
	"hrmgo/internal/transport/http/shared"
)

type Store interface {
	ListJobs(ctx context.Context, tenantID string) ([]recruitment.Job, error)
	CreateJob(ctx context.Context, tenantID string, job recruitment.Job) (string, error)
	ListInterviews(ctx context.Context, tenantID string) ([]recruitment.Interview, error)
	CreateInterview(ctx context.Context, tenantID string, iv recruitment.Interview) (string, error)
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

var JobTable = shared.TableSpec[recruitment.Job]{
	Title:            "Jobs",
	SearchFields:     []string{"title", "branch", "category", "status"},
	DefaultSort:      "createdAt",
	DefaultDirection: datatable.Descending,
	Columns: []datatable.Column[recruitment.Job]{
		{Key: "title", Label: "Title", Sortable: true},
		{Key: "branch", Label: "Branch", Sortable: true},
		{Key: "category", Label: "Category", Sortable: true},
		{Key: "positions", Label: "Positions", Sortable: true},
		{Key: "interviews", Label: "Interviews", Sortable: true},
		{Key: "startDate", Label: "Start Date", Sortable: true},
		{Key: "endDate", Label: "End Date", Sortable: true},
		{Key: "status", Label: "Status", Sortable: true},
		{Key: "createdAt", Label: "Created At", Sortable: true},
	},
}

var InterviewTable = shared.TableSpec[recruitment.Interview]{
	Title:            "Interview Schedule",
	SearchFields:     []string{"job", "candidate", "interviewer", "comment"},
	DefaultSort:      "scheduledAt",
	DefaultDirection: datatable.Ascending,
	Columns: []datatable.Column[recruitment.Interview]{
		{Key: "candidate", Label: "Candidate", Sortable: true},
		{Key: "job", Label: "Job", Sortable: true},
		{Key: "interviewer", Label: "Interviewer", Sortable: true},
		{Key: "scheduledAt", Label: "Date", Sortable: true},
		{Key: "comment", Label: "Comment"},
	},
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageJob, h.Perms)).Get("/", h.handleListJobs)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportJobs)
		r.With(middleware.RequirePermission(auth.PermCreateJob, h.Perms)).Post("/", h.handleCreateJob)
	})
	r.Route("/interviews", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermManageInterview, h.Perms)).Get("/", h.handleListInterviews)
		r.With(middleware.RequirePermission(auth.PermExportReports, h.Perms)).Get("/export.pdf", h.handleExportInterviews)
		r.With(middleware.RequirePermission(auth.PermCreateInterview, h.Perms)).Post("/", h.handleCreateInterview)
	})
}

func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) ([]recruitment.Job, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	jobs, err := h.Store.ListJobs(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("job list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "job_list_failed", "failed to list jobs", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return jobs, true
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, ok := h.jobs(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, jobs, JobTable, h.Limits)
	h.Metrics.ObserveList("jobs", meta.Filtered)
}

func (h *Handler) handleExportJobs(w http.ResponseWriter, r *http.Request) {
	jobs, ok := h.jobs(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, jobs, JobTable, h.Limits, "jobs.pdf")
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Title     string `json:"title"`
		Branch    string `json:"branch"`
		Category  string `json:"category"`
		Positions int    `json:"positions"`
		Status    string `json:"status"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Enum("status", payload.Status, []string{recruitment.JobStatusActive, recruitment.JobStatusInactive}, "must be active or inactive")
	if payload.Positions < 1 {
		v.Add("positions", "must be at least 1")
	}
	job := recruitment.Job{
		Title:     strings.TrimSpace(payload.Title),
		Branch:    strings.TrimSpace(payload.Branch),
		Category:  strings.TrimSpace(payload.Category),
		Positions: payload.Positions,
		Status:    strings.ToLower(strings.TrimSpace(payload.Status)),
	}
	job.StartDate = optionalDate(v, "startDate", payload.StartDate)
	job.EndDate = optionalDate(v, "endDate", payload.EndDate)
	if job.StartDate != nil && job.EndDate != nil {
		v.DateOrder("startDate", *job.StartDate, "endDate", *job.EndDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateJob(r.Context(), user.TenantID, job)
	if err != nil {
		zap.L().Error("job create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "job_create_failed", "failed to create job", middleware.GetRequestID(r.Context()))
		return
	}
	job.ID = id
	shared.RecordAudit(r, h.Audit, user, "recruitment.job.create", "job", id, nil, job)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func optionalDate(v *shared.Validator, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &parsed
}

func (h *Handler) interviews(w http.ResponseWriter, r *http.Request) ([]recruitment.Interview, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	items, err := h.Store.ListInterviews(r.Context(), user.TenantID)
	if err != nil {
		zap.L().Error("interview list failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "interview_list_failed", "failed to list interviews", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return items, true
}

func (h *Handler) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	items, ok := h.interviews(w, r)
	if !ok {
		return
	}
	meta := shared.WriteTable(w, r, items, InterviewTable, h.Limits)
	h.Metrics.ObserveList("interviews", meta.Filtered)
}

func (h *Handler) handleExportInterviews(w http.ResponseWriter, r *http.Request) {
	items, ok := h.interviews(w, r)
	if !ok {
		return
	}
	shared.WritePDF(w, r, items, InterviewTable, h.Limits, "interviews.pdf")
}

func (h *Handler) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		JobID         string `json:"jobId"`
		Candidate     string `json:"candidate"`
		InterviewerID string `json:"interviewerId"`
		ScheduledAt   string `json:"scheduledAt"`
		Comment       string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("jobId", payload.JobID, "job id is required")
	v.Required("candidate", payload.Candidate, "candidate is required")
	scheduled, err := time.Parse(time.RFC3339, strings.TrimSpace(payload.ScheduledAt))
	if err != nil {
		v.Add("scheduledAt", "must be an RFC3339 timestamp")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	iv := recruitment.Interview{
		JobID:         strings.TrimSpace(payload.JobID),
		Candidate:     strings.TrimSpace(payload.Candidate),
		InterviewerID: strings.TrimSpace(payload.InterviewerID),
		ScheduledAt:   scheduled,
		Comment:       strings.TrimSpace(payload.Comment),
	}
	id, err := h.Store.CreateInterview(r.Context(), user.TenantID, iv)
	switch {
	case errors.Is(err, recruitment.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "job not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, recruitment.ErrJobClosed):
		api.Fail(w, http.StatusConflict, "job_closed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		zap.L().Error("interview create failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "interview_create_failed", "failed to schedule interview", middleware.GetRequestID(r.Context()))
		return
	}
	iv.ID = id
	shared.RecordAudit(r, h.Audit, user, "recruitment.interview.create", "interview", id, nil, iv)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
