package performance

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("goal not found")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidRange    = errors.New("end date must not be before start date")
)

type Goal struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Employee   string    `json:"employee"`
	GoalType   string    `json:"goalType"`
	Subject    string    `json:"subject"`
	Target     string    `json:"target"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Progress   float64   `json:"progress"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (g Goal) Field(name string) (any, bool) {
	switch name {
	case "id":
		return g.ID, true
	case "employeeId":
		return g.EmployeeID, true
	case "employee":
		return g.Employee, true
	case "goalType":
		return g.GoalType, true
	case "subject":
		return g.Subject, true
	case "target":
		return g.Target, true
	case "startDate":
		return g.StartDate, true
	case "endDate":
		return g.EndDate, true
	case "progress":
		return g.Progress, true
	case "status":
		return g.Status, true
	case "createdAt":
		return g.CreatedAt, true
	}
	return nil, false
}

type GoalSummary struct {
	GoalsTotal      int            `json:"goalsTotal"`
	GoalsCompleted  int            `json:"goalsCompleted"`
	AverageProgress float64        `json:"averageProgress"`
	CompletionRate  float64        `json:"completionRate"`
	ByType          map[string]int `json:"byType"`
	Overdue         int            `json:"overdue"`
}
