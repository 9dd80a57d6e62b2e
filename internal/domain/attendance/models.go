package attendance

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("regularization request not found")
	ErrNotPending  = errors.New("regularization request already reviewed")
	ErrInvalidTime = errors.New("clock times must be HH:MM with clock out after clock in")
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
	StatusHalfDay = "half_day"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

const clockLayout = "15:04"

type Record struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	Employee    string    `json:"employee"`
	WorkDate    time.Time `json:"workDate"`
	Status      string    `json:"status"`
	ClockIn     string    `json:"clockIn"`
	ClockOut    string    `json:"clockOut"`
	LateMinutes int       `json:"lateMinutes"`
}

func (r Record) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "employeeId":
		return r.EmployeeID, true
	case "employee":
		return r.Employee, true
	case "workDate":
		return r.WorkDate, true
	case "status":
		return r.Status, true
	case "clockIn":
		return r.ClockIn, true
	case "clockOut":
		return r.ClockOut, true
	case "lateMinutes":
		return r.LateMinutes, true
	}
	return nil, false
}

type Regularization struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Employee   string     `json:"employee"`
	WorkDate   time.Time  `json:"workDate"`
	ClockIn    string     `json:"clockIn"`
	ClockOut   string     `json:"clockOut"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy string     `json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r Regularization) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "employeeId":
		return r.EmployeeID, true
	case "employee":
		return r.Employee, true
	case "workDate":
		return r.WorkDate, true
	case "clockIn":
		return r.ClockIn, true
	case "clockOut":
		return r.ClockOut, true
	case "reason":
		return r.Reason, true
	case "status":
		return r.Status, true
	case "reviewedAt":
		return r.ReviewedAt, true
	case "createdAt":
		return r.CreatedAt, true
	}
	return nil, false
}

// ValidateClock checks that both times parse as HH:MM and out is after in.
func ValidateClock(clockIn, clockOut string) error {
	in, err := time.Parse(clockLayout, clockIn)
	if err != nil {
		return ErrInvalidTime
	}
	out, err := time.Parse(clockLayout, clockOut)
	if err != nil {
		return ErrInvalidTime
	}
	if !out.After(in) {
		return ErrInvalidTime
	}
	return nil
}

// LateMinutes is how far clockIn is past officeStart, or 0.
func LateMinutes(clockIn, officeStart string) int {
	in, err := time.Parse(clockLayout, clockIn)
	if err != nil {
		return 0
	}
	start, err := time.Parse(clockLayout, officeStart)
	if err != nil {
		return 0
	}
	if !in.After(start) {
		return 0
	}
	return int(in.Sub(start).Minutes())
}
