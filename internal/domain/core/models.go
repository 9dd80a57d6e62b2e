package core

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId,omitempty"`
	EmployeeNumber string     `json:"employeeNumber"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	DepartmentID   string     `json:"departmentId"`
	Department     string     `json:"department"`
	Designation    string     `json:"designation"`
	DateOfJoining  *time.Time `json:"dateOfJoining,omitempty"`
	Salary         *float64   `json:"salary,omitempty"`
	BankAccount    string     `json:"bankAccount,omitempty"`
	Status         string     `json:"status"`
	LegacyID       *int64     `json:"legacyId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Field exposes employees to the data table by JSON field name.
func (e Employee) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "employeeNumber":
		return e.EmployeeNumber, true
	case "name":
		return e.Name, true
	case "email":
		return e.Email, true
	case "phone":
		return e.Phone, true
	case "departmentId":
		return e.DepartmentID, true
	case "department":
		return e.Department, true
	case "designation":
		return e.Designation, true
	case "dateOfJoining":
		return e.DateOfJoining, true
	case "salary":
		return e.Salary, true
	case "status":
		return e.Status, true
	case "createdAt":
		return e.CreatedAt, true
	}
	return nil, false
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Branch    string    `json:"branch"`
	Employees int       `json:"employees"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d Department) Field(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "name":
		return d.Name, true
	case "branch":
		return d.Branch, true
	case "employees":
		return d.Employees, true
	case "createdAt":
		return d.CreatedAt, true
	}
	return nil, false
}
