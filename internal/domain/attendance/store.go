package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrmgo/internal/platform/db"
)

// DefaultOfficeStart is used to compute late minutes when none is configured.
const DefaultOfficeStart = "09:00"

type Store struct {
	DB          db.TxBeginner
	OfficeStart string
}

func NewStore(conn db.TxBeginner) *Store {
	return &Store{DB: conn, OfficeStart: DefaultOfficeStart}
}

func (s *Store) ListRecords(ctx context.Context, tenantID, employeeID string) ([]Record, error) {
	query := `
    SELECT a.id, a.employee_id, e.name, a.work_date, a.status,
           COALESCE(to_char(a.clock_in, 'HH24:MI'), ''), COALESCE(to_char(a.clock_out, 'HH24:MI'), ''),
           a.late_minutes
    FROM attendance_records a
    JOIN employees e ON e.id = a.employee_id
    WHERE a.tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND a.employee_id = $2"
		args = append(args, employeeID)
	}
	query += " ORDER BY a.work_date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Employee, &r.WorkDate, &r.Status, &r.ClockIn, &r.ClockOut, &r.LateMinutes); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkAttendance records one day for an employee, replacing an earlier mark.
func (s *Store) MarkAttendance(ctx context.Context, tenantID string, rec Record) (string, error) {
	rec.LateMinutes = LateMinutes(rec.ClockIn, s.OfficeStart)
	var id string
	err := s.DB.QueryRow(ctx, upsertRecordSQL,
		tenantID, rec.EmployeeID, rec.WorkDate, rec.Status,
		db.NullIfEmpty(rec.ClockIn), db.NullIfEmpty(rec.ClockOut), rec.LateMinutes,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

const upsertRecordSQL = `
    INSERT INTO attendance_records (tenant_id, employee_id, work_date, status, clock_in, clock_out, late_minutes)
    VALUES ($1, $2, $3, $4, $5::time, $6::time, $7)
    ON CONFLICT (tenant_id, employee_id, work_date)
    DO UPDATE SET status = EXCLUDED.status,
                  clock_in = EXCLUDED.clock_in,
                  clock_out = EXCLUDED.clock_out,
                  late_minutes = EXCLUDED.late_minutes
    RETURNING id
  `

func (s *Store) ListRegularizations(ctx context.Context, tenantID, employeeID string) ([]Regularization, error) {
	query := `
    SELECT r.id, r.employee_id, e.name, r.work_date,
           to_char(r.clock_in, 'HH24:MI'), to_char(r.clock_out, 'HH24:MI'),
           r.reason, r.status, COALESCE(r.reviewed_by::text, ''), r.reviewed_at, r.created_at
    FROM regularization_requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND r.employee_id = $2"
		args = append(args, employeeID)
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Regularization{}
	for rows.Next() {
		var r Regularization
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.Employee, &r.WorkDate, &r.ClockIn, &r.ClockOut,
			&r.Reason, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRegularization(ctx context.Context, tenantID string, req Regularization) (string, error) {
	if err := ValidateClock(req.ClockIn, req.ClockOut); err != nil {
		return "", err
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO regularization_requests (tenant_id, employee_id, work_date, clock_in, clock_out, reason, status)
    VALUES ($1, $2, $3, $4::time, $5::time, $6, $7)
    RETURNING id
  `, tenantID, req.EmployeeID, req.WorkDate, req.ClockIn, req.ClockOut, req.Reason, RequestPending).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Approve moves a pending request to approved and writes its clock times to
// the attendance record of that day, in one transaction.
func (s *Store) Approve(ctx context.Context, tenantID, requestID, reviewerID string) (Regularization, error) {
	return s.review(ctx, tenantID, requestID, reviewerID, RequestApproved)
}

func (s *Store) Reject(ctx context.Context, tenantID, requestID, reviewerID string) (Regularization, error) {
	return s.review(ctx, tenantID, requestID, reviewerID, RequestRejected)
}

func (s *Store) review(ctx context.Context, tenantID, requestID, reviewerID, status string) (Regularization, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Regularization{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req Regularization
	err = tx.QueryRow(ctx, `
    SELECT id, employee_id, work_date, to_char(clock_in, 'HH24:MI'), to_char(clock_out, 'HH24:MI'), reason, status
    FROM regularization_requests
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, requestID).Scan(&req.ID, &req.EmployeeID, &req.WorkDate, &req.ClockIn, &req.ClockOut, &req.Reason, &req.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Regularization{}, ErrNotFound
	}
	if err != nil {
		return Regularization{}, err
	}
	if req.Status != RequestPending {
		return Regularization{}, ErrNotPending
	}

	err = tx.QueryRow(ctx, `
    UPDATE regularization_requests
    SET status = $1, reviewed_by = $2, reviewed_at = now()
    WHERE tenant_id = $3 AND id = $4
    RETURNING reviewed_at
  `, status, db.NullIfEmpty(reviewerID), tenantID, requestID).Scan(&req.ReviewedAt)
	if err != nil {
		return Regularization{}, fmt.Errorf("update request: %w", err)
	}
	req.Status = status
	req.ReviewedBy = reviewerID

	if status == RequestApproved {
		late := LateMinutes(req.ClockIn, s.OfficeStart)
		var recordID string
		if err := tx.QueryRow(ctx, upsertRecordSQL,
			tenantID, req.EmployeeID, req.WorkDate, StatusPresent, req.ClockIn, req.ClockOut, late,
		).Scan(&recordID); err != nil {
			return Regularization{}, fmt.Errorf("apply attendance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Regularization{}, err
	}
	return req, nil
}
