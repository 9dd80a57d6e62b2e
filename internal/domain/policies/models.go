package policies

import (
	"errors"
	"time"
)

var ErrTitleRequired = errors.New("title is required")

// Policy is a company policy document, optionally scoped to one branch.
type Policy struct {
	ID          string    `json:"id"`
	Branch      string    `json:"branch"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Attachment  string    `json:"attachment"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Policy) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "branch":
		return p.Branch, true
	case "title":
		return p.Title, true
	case "description":
		return p.Description, true
	case "attachment":
		return p.Attachment, true
	case "createdAt":
		return p.CreatedAt, true
	}
	return nil, false
}

type Regulation struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (r Regulation) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "title":
		return r.Title, true
	case "category":
		return r.Category, true
	case "description":
		return r.Description, true
	case "effectiveDate":
		return r.EffectiveDate, true
	case "createdAt":
		return r.CreatedAt, true
	}
	return nil, false
}
