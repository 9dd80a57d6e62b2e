package recruitment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrmgo/internal/platform/db"
)

type Store struct {
	DB db.DBTX
}

func NewStore(conn db.DBTX) *Store {
	return &Store{DB: conn}
}

func (s *Store) ListJobs(ctx context.Context, tenantID string) ([]Job, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT j.id, j.title, COALESCE(j.branch, ''), COALESCE(j.category, ''), j.positions, j.status,
           j.start_date, j.end_date, COUNT(i.id), j.created_at
    FROM jobs j
    LEFT JOIN interviews i ON i.job_id = j.id
    WHERE j.tenant_id = $1
    GROUP BY j.id
    ORDER BY j.created_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Branch, &j.Category, &j.Positions, &j.Status,
			&j.StartDate, &j.EndDate, &j.Interviews, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) CreateJob(ctx context.Context, tenantID string, job Job) (string, error) {
	status := job.Status
	if status == "" {
		status = JobStatusActive
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO jobs (tenant_id, title, branch, category, positions, status, start_date, end_date)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
  `, tenantID, job.Title, db.NullIfEmpty(job.Branch), db.NullIfEmpty(job.Category), job.Positions, status,
		job.StartDate, job.EndDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) JobStatus(ctx context.Context, tenantID, jobID string) (string, error) {
	var status string
	err := s.DB.QueryRow(ctx, "SELECT status FROM jobs WHERE tenant_id = $1 AND id = $2", tenantID, jobID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}

func (s *Store) ListInterviews(ctx context.Context, tenantID string) ([]Interview, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT i.id, i.job_id, j.title, i.candidate, COALESCE(i.interviewer_id::text, ''), COALESCE(e.name, ''),
           i.scheduled_at, COALESCE(i.comment, ''), i.created_at
    FROM interviews i
    JOIN jobs j ON j.id = i.job_id
    LEFT JOIN employees e ON e.id = i.interviewer_id
    WHERE i.tenant_id = $1
    ORDER BY i.scheduled_at
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Interview{}
	for rows.Next() {
		var iv Interview
		if err := rows.Scan(&iv.ID, &iv.JobID, &iv.Job, &iv.Candidate, &iv.InterviewerID, &iv.Interviewer,
			&iv.ScheduledAt, &iv.Comment, &iv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// CreateInterview schedules an interview for an active job.
func (s *Store) CreateInterview(ctx context.Context, tenantID string, iv Interview) (string, error) {
	status, err := s.JobStatus(ctx, tenantID, iv.JobID)
	if err != nil {
		return "", err
	}
	if status != JobStatusActive {
		return "", ErrJobClosed
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO interviews (tenant_id, job_id, candidate, interviewer_id, scheduled_at, comment)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, tenantID, iv.JobID, iv.Candidate, db.NullIfEmpty(iv.InterviewerID), iv.ScheduledAt, db.NullIfEmpty(iv.Comment)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
