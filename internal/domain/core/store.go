package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrmgo/internal/platform/crypto"
	"hrmgo/internal/platform/db"
)

// Store persists employees and departments. Bank accounts are sealed with
// Cipher before they reach the database.
type Store struct {
	DB     db.DBTX
	Cipher *crypto.Cipher
}

func NewStore(conn db.DBTX, cipher *crypto.Cipher) *Store {
	return &Store{DB: conn, Cipher: cipher}
}

const employeeColumns = `
    e.id,
    COALESCE(e.user_id::text, ''),
    COALESCE(e.employee_number, ''),
    e.name, e.email,
    COALESCE(e.phone, ''),
    COALESCE(e.department_id::text, ''),
    COALESCE(d.name, ''),
    COALESCE(e.designation, ''),
    e.date_of_joining,
    e.salary,
    e.bank_account,
    e.status,
    e.legacy_id,
    e.created_at`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var (
		emp  Employee
		bank []byte
	)
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.Name, &emp.Email, &emp.Phone,
		&emp.DepartmentID, &emp.Department, &emp.Designation, &emp.DateOfJoining,
		&emp.Salary, &bank, &emp.Status, &emp.LegacyID, &emp.CreatedAt,
	)
	if err != nil {
		return emp, err
	}
	emp.BankAccount, err = s.Cipher.OpenString(bank)
	if err != nil {
		return emp, fmt.Errorf("open bank account of %s: %w", emp.ID, err)
	}
	return emp, nil
}

// ListEmployees returns every employee of the tenant. Search, sort and paging
// happen in the data table controller.
func (s *Store) ListEmployees(ctx context.Context, tenantID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.tenant_id = $1
    ORDER BY e.name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.tenant_id = $1 AND e.id = $2
  `, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.tenant_id = $1 AND e.user_id = $2
  `, tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	status := emp.Status
	if status == "" {
		status = EmployeeStatusActive
	}
	sealed, err := s.Cipher.SealString(emp.BankAccount)
	if err != nil {
		return "", fmt.Errorf("seal bank account: %w", err)
	}
	var bank any
	if sealed != nil {
		bank = sealed
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, employee_number, name, email, phone, department_id,
      designation, date_of_joining, salary, bank_account, status, legacy_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id
  `,
		tenantID, db.NullIfEmpty(emp.UserID), db.NullIfEmpty(emp.EmployeeNumber), emp.Name, emp.Email,
		db.NullIfEmpty(emp.Phone), db.NullIfEmpty(emp.DepartmentID), db.NullIfEmpty(emp.Designation),
		emp.DateOfJoining, emp.Salary, bank, status, emp.LegacyID,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// EmployeeExists reports whether employeeID belongs to the tenant.
func (s *Store) EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmployeeIDByLegacyID finds an employee imported from the legacy database.
func (s *Store) EmployeeIDByLegacyID(ctx context.Context, tenantID string, legacyID int64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND legacy_id = $2", tenantID, legacyID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COALESCE(d.branch, ''), COUNT(e.id), d.created_at
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id
    WHERE d.tenant_id = $1
    GROUP BY d.id
    ORDER BY d.name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.Branch, &dep.Employees, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID string, dep Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name, branch)
    VALUES ($1, $2, $3)
    RETURNING id
  `, tenantID, dep.Name, db.NullIfEmpty(dep.Branch)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DepartmentExists(ctx context.Context, tenantID, departmentID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM departments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, departmentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
