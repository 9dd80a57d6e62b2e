package shared

import (
	"net/http"
	"strconv"
	"strings"

	"hrmgo/internal/datatable"
)

// PageLimits bounds the pageSize query parameter.
type PageLimits struct {
	Default int
	Max     int
}

// ParseTableQuery reads search, sort, direction, page and pageSize.
// The page is passed through as given; out-of-range pages yield empty items.
func ParseTableQuery(r *http.Request, limits PageLimits) datatable.Query {
	values := r.URL.Query()
	q := datatable.Query{
		Search:        strings.TrimSpace(values.Get("search")),
		SortField:     strings.TrimSpace(values.Get("sort")),
		SortDirection: datatable.ParseSortDirection(values.Get("direction")),
		Page:          1,
		PageSize:      limits.Default,
	}
	if raw := values.Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.Page = v
		}
	}
	if raw := values.Get("pageSize"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			q.PageSize = v
		}
	}
	if q.PageSize <= 0 {
		q.PageSize = datatable.DefaultPageSize
	}
	if limits.Max > 0 && q.PageSize > limits.Max {
		q.PageSize = limits.Max
	}
	return q
}
