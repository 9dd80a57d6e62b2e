package performance

import (
	"context"

	"hrmgo/internal/platform/db"
)

// StoreAPI is the persistence surface the service needs.
type StoreAPI interface {
	EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error)
	ListGoals(ctx context.Context, tenantID, employeeID string) ([]Goal, error)
	CreateGoal(ctx context.Context, tenantID string, goal Goal) (string, error)
}

type Store struct {
	DB db.DBTX
}

func NewStore(conn db.DBTX) *Store {
	return &Store{DB: conn}
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var employeeID string
	if err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&employeeID); err != nil {
		return "", err
	}
	return employeeID, nil
}

// ListGoals returns the tenant's goals, restricted to one employee when
// employeeID is set.
func (s *Store) ListGoals(ctx context.Context, tenantID, employeeID string) ([]Goal, error) {
	query := `
    SELECT g.id, COALESCE(g.employee_id::text, ''), COALESCE(e.name, ''), g.goal_type, g.subject,
           COALESCE(g.target, ''), g.start_date, g.end_date, g.progress, g.status, g.created_at
    FROM goals g
    LEFT JOIN employees e ON e.id = g.employee_id
    WHERE g.tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND g.employee_id = $2"
		args = append(args, employeeID)
	}
	query += " ORDER BY g.end_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.EmployeeID, &g.Employee, &g.GoalType, &g.Subject, &g.Target,
			&g.StartDate, &g.EndDate, &g.Progress, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CreateGoal(ctx context.Context, tenantID string, goal Goal) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO goals (tenant_id, employee_id, goal_type, subject, target, start_date, end_date, progress, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING id
  `, tenantID, db.NullIfEmpty(goal.EmployeeID), goal.GoalType, goal.Subject, db.NullIfEmpty(goal.Target),
		goal.StartDate, goal.EndDate, goal.Progress, goal.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
