package datatable

import "strings"

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc and their long forms. Anything else is Ascending.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

func (d SortDirection) normalize() SortDirection {
	if d == Descending {
		return Descending
	}
	return Ascending
}

// Query is the transport-neutral form of a list request.
type Query struct {
	Search        string
	SortField     string
	SortDirection SortDirection
	Page          int
	PageSize      int
}

type Meta struct {
	Page          int           `json:"page"`
	PageSize      int           `json:"pageSize"`
	TotalPages    int           `json:"totalPages"`
	Total         int           `json:"total"`
	Filtered      int           `json:"filtered"`
	Selected      int           `json:"selected,omitempty"`
	Search        string        `json:"search,omitempty"`
	SortField     string        `json:"sort,omitempty"`
	SortDirection SortDirection `json:"direction,omitempty"`
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}
