package recruitment

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrJobClosed = errors.New("job is not accepting interviews")
)

const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
)

type Job struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Branch     string     `json:"branch"`
	Category   string     `json:"category"`
	Positions  int        `json:"positions"`
	Status     string     `json:"status"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Interviews int        `json:"interviews"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (j Job) Field(name string) (any, bool) {
	switch name {
	case "id":
		return j.ID, true
	case "title":
		return j.Title, true
	case "branch":
		return j.Branch, true
	case "category":
		return j.Category, true
	case "positions":
		return j.Positions, true
	case "status":
		return j.Status, true
	case "startDate":
		return j.StartDate, true
	case "endDate":
		return j.EndDate, true
	case "interviews":
		return j.Interviews, true
	case "createdAt":
		return j.CreatedAt, true
	}
	return nil, false
}

type Interview struct {
	ID            string    `json:"id"`
	JobID         string    `json:"jobId"`
	Job           string    `json:"job"`
	Candidate     string    `json:"candidate"`
	InterviewerID string    `json:"interviewerId,omitempty"`
	Interviewer   string    `json:"interviewer"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (i Interview) Field(name string) (any, bool) {
	switch name {
	case "id":
		return i.ID, true
	case "jobId":
		return i.JobID, true
	case "job":
		return i.Job, true
	case "candidate":
		return i.Candidate, true
	case "interviewer":
		return i.Interviewer, true
	case "scheduledAt":
		return i.ScheduledAt, true
	case "comment":
		return i.Comment, true
	case "createdAt":
		return i.CreatedAt, true
	}
	return nil, false
}
