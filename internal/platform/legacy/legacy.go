// Package legacy reads employees out of an HRMGO MySQL database so they can
// be imported through the API.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Source describes the HRMGO database to read from.
type Source struct {
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
	TLS       string
	CreatedBy int64
}

// DSN builds a go-sql-driver DSN for s. Dates are parsed into time.Time and
// the connection charset is utf8mb4.
func (s Source) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	port := s.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = s.Host + ":" + strconv.Itoa(port)
	cfg.DBName = s.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	switch s.TLS {
	case "required":
		cfg.TLSConfig = "true"
	case "disable", "":
		cfg.TLSConfig = "false"
	default:
		cfg.TLSConfig = s.TLS
	}
	return cfg.FormatDSN()
}

// Open connects and pings. dsn may come from Source.DSN or the operator.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(2)
	conn.SetConnMaxLifetime(10 * time.Minute)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping legacy database: %w", err)
	}
	return conn, nil
}

// Employee is one row of the HRMGO employees table joined with its
// department and designation names.
type Employee struct {
	ID             int64
	EmployeeNumber string
	Name           string
	Email          string
	Phone          sql.NullString
	Department     sql.NullString
	Designation    sql.NullString
	JoinedOn       sql.NullTime
	Salary         sql.NullFloat64
	AccountNumber  sql.NullString
	Active         bool
}

// ImportEmployee is the payload accepted by POST /api/v1/employees/import.
type ImportEmployee struct {
	LegacyID       *int64   `json:"legacyId"`
	EmployeeNumber string   `json:"employeeNumber,omitempty"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Designation    string   `json:"designation,omitempty"`
	DateOfJoining  string   `json:"dateOfJoining,omitempty"`
	Salary         *float64 `json:"salary,omitempty"`
	BankAccount    string   `json:"bankAccount,omitempty"`
	Status         string   `json:"status"`
}

// Import maps the row to the import payload. Department ids do not carry
// over, so the department name is kept in the designation when no
// designation exists.
func (e Employee) Import() ImportEmployee {
	id := e.ID
	out := ImportEmployee{
		LegacyID:       &id,
		EmployeeNumber: strings.TrimSpace(e.EmployeeNumber),
		Name:           strings.TrimSpace(e.Name),
		Email:          strings.ToLower(strings.TrimSpace(e.Email)),
		Phone:          strings.TrimSpace(e.Phone.String),
		Designation:    strings.TrimSpace(e.Designation.String),
		BankAccount:    strings.TrimSpace(e.AccountNumber.String),
		Status:         "inactive",
	}
	if out.Designation == "" {
		out.Designation = strings.TrimSpace(e.Department.String)
	}
	if e.JoinedOn.Valid && !e.JoinedOn.Time.IsZero() {
		out.DateOfJoining = e.JoinedOn.Time.Format(time.DateOnly)
	}
	if e.Salary.Valid && e.Salary.Float64 >= 0 {
		salary := e.Salary.Float64
		out.Salary = &salary
	}
	if e.Active {
		out.Status = "active"
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (Employee, error) {
	var e Employee
	var active sql.NullInt64
	err := row.Scan(&e.ID, &e.EmployeeNumber, &e.Name, &e.Email, &e.Phone, &e.Department,
		&e.Designation, &e.JoinedOn, &e.Salary, &e.AccountNumber, &active)
	e.Active = active.Valid && active.Int64 != 0
	return e, err
}

const employeesQuery = `
    SELECT e.id, COALESCE(e.employee_id, ''), e.name, e.email, e.phone, d.name, g.name,
           e.company_doj, e.salary, e.account_number, e.is_active
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    LEFT JOIN designations g ON g.id = e.designation_id
    WHERE e.id > ? AND (? = 0 OR e.created_by = ?)
    ORDER BY e.id
    LIMIT ?`

// Reader pages through HRMGO employees by id.
type Reader struct {
	DB        *sql.DB
	CreatedBy int64
	BatchSize int
}

func NewReader(conn *sql.DB, createdBy int64, batchSize int) *Reader {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Reader{DB: conn, CreatedBy: createdBy, BatchSize: batchSize}
}

// Employees returns up to BatchSize employees with id greater than afterID.
func (r *Reader) Employees(ctx context.Context, afterID int64) ([]Employee, error) {
	rows, err := r.DB.QueryContext(ctx, employeesQuery, afterID, r.CreatedBy, r.CreatedBy, r.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("query legacy employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan legacy employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Each calls fn with consecutive batches until the table is exhausted or fn
// fails.
func (r *Reader) Each(ctx context.Context, fn func([]ImportEmployee) error) error {
	var after int64
	for {
		rows, err := r.Employees(ctx, after)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(ImportBatch(rows)); err != nil {
			return err
		}
		after = rows[len(rows)-1].ID
		if len(rows) < r.BatchSize {
			return nil
		}
	}
}

func ImportBatch(rows []Employee) []ImportEmployee {
	out := make([]ImportEmployee, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.Import())
	}
	return out
}
