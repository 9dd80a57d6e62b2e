// Package datatable derives searchable, sortable, paginated views over an
// in-memory record slice and tracks a selection set. Every list page in the
// service (employees, goals, jobs, interviews, policies, attendance records,
// regularization requests, regulations) goes through a Controller.
//
// A Controller is owned by a single caller and is not safe for concurrent use.
package datatable

import (
	"fmt"
	"slices"
)

const DefaultPageSize = 10

// Fielder is implemented by records that can be read by field name.
type Fielder interface {
	Field(name string) (any, bool)
}

// Accessor reads one field of a record. The bool reports whether the field exists.
type Accessor[T any] func(item T, field string) (any, bool)

// KeyFunc returns the stable selection key of a record.
type KeyFunc[T any] func(item T) string

type Option[T any] func(*Controller[T])

func WithSearchFields[T any](fields ...string) Option[T] {
	return func(c *Controller[T]) {
		c.searchFields = slices.Clone(fields)
	}
}

func WithInitialSort[T any](field string, dir SortDirection) Option[T] {
	return func(c *Controller[T]) {
		c.sortField = field
		c.sortDir = dir.normalize()
	}
}

// WithPageSize sets the page size. Non-positive values keep the default.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

func WithAccessor[T any](fn Accessor[T]) Option[T] {
	return func(c *Controller[T]) {
		if fn != nil {
			c.accessor = fn
		}
	}
}

func WithKey[T any](fn KeyFunc[T]) Option[T] {
	return func(c *Controller[T]) {
		if fn != nil {
			c.keyOf = fn
		}
	}
}

type Controller[T any] struct {
	data     []T
	accessor Accessor[T]
	keyOf    KeyFunc[T]

	searchFields []string
	searchTerm   string
	sortField    string
	sortDir      SortDirection
	currentPage  int
	pageSize     int

	selected    []T
	selectedIdx map[string]struct{}

	// queryRev changes whenever an input of the filter/sort derivation changes.
	queryRev uint64
	memo     memo[T]
}

type memo[T any] struct {
	rev      uint64
	valid    bool
	filtered []T
	sorted   []T
}

func New[T any](data []T, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		data:        data,
		accessor:    defaultAccessor[T],
		sortDir:     Ascending,
		currentPage: 1,
		pageSize:    DefaultPageSize,
		selectedIdx: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keyOf == nil {
		c.keyOf = c.defaultKey
	}
	return c
}

func defaultAccessor[T any](item T, field string) (any, bool) {
	switch v := any(item).(type) {
	case Fielder:
		return v.Field(field)
	case map[string]any:
		value, ok := v[field]
		return value, ok
	}
	return nil, false
}

func (c *Controller[T]) defaultKey(item T) string {
	if id, ok := c.accessor(item, "id"); ok && id != nil {
		return fmt.Sprint(id)
	}
	return fmt.Sprintf("%#v", item)
}

// SetData replaces the input records. Query state and selection are kept.
func (c *Controller[T]) SetData(data []T) {
	c.data = data
	c.queryRev++
}

func (c *Controller[T]) SetSearchTerm(term string) {
	if term == c.searchTerm {
		return
	}
	c.searchTerm = term
	c.queryRev++
}

// HandleSort sorts by field. Sorting by the active field again flips the
// direction; switching to another field always starts ascending.
func (c *Controller[T]) HandleSort(field string) {
	if field == c.sortField {
		c.sortDir = c.sortDir.Toggle()
	} else {
		c.sortField = field
		c.sortDir = Ascending
	}
	c.queryRev++
}

func (c *Controller[T]) SetSortDirection(dir SortDirection) {
	c.sortDir = dir.normalize()
	c.queryRev++
}

// SetCurrentPage stores page as given. Pages outside [1, TotalPages] render empty.
func (c *Controller[T]) SetCurrentPage(page int) {
	c.currentPage = page
}

// Apply sets search, sort and page from a decoded query in one step.
func (c *Controller[T]) Apply(q Query) {
	c.SetSearchTerm(q.Search)
	if q.SortField != "" {
		c.sortField = q.SortField
		c.sortDir = q.SortDirection.normalize()
		c.queryRev++
	}
	if q.Page != 0 {
		c.currentPage = q.Page
	}
}

func (c *Controller[T]) derive() {
	if c.memo.valid && c.memo.rev == c.queryRev {
		return
	}
	filtered := filterRecords(c.data, c.searchTerm, c.searchFields, c.accessor)
	c.memo = memo[T]{
		rev:      c.queryRev,
		valid:    true,
		filtered: filtered,
		sorted:   sortRecords(filtered, c.sortField, c.sortDir, c.accessor),
	}
}

func (c *Controller[T]) Filtered() []T {
	c.derive()
	return slices.Clone(c.memo.filtered)
}

func (c *Controller[T]) Sorted() []T {
	c.derive()
	return slices.Clone(c.memo.sorted)
}

func (c *Controller[T]) PageItems() []T {
	c.derive()
	return paginate(c.memo.sorted, c.currentPage, c.pageSize)
}

func (c *Controller[T]) TotalPages() int {
	c.derive()
	return totalPages(len(c.memo.sorted), c.pageSize)
}

func (c *Controller[T]) SearchTerm() string           { return c.searchTerm }
func (c *Controller[T]) SearchFields() []string       { return slices.Clone(c.searchFields) }
func (c *Controller[T]) SortField() string            { return c.sortField }
func (c *Controller[T]) SortDirection() SortDirection { return c.sortDir }
func (c *Controller[T]) CurrentPage() int             { return c.currentPage }
func (c *Controller[T]) PageSize() int                { return c.pageSize }
func (c *Controller[T]) TotalCount() int              { return len(c.data) }

func (c *Controller[T]) FilteredCount() int {
	c.derive()
	return len(c.memo.filtered)
}

// Value reads a field through the controller's accessor.
func (c *Controller[T]) Value(item T, field string) (any, bool) {
	return c.accessor(item, field)
}

func (c *Controller[T]) Key(item T) string {
	return c.keyOf(item)
}

// Snapshot returns the current page together with its metadata.
func (c *Controller[T]) Snapshot() Page[T] {
	c.derive()
	return Page[T]{
		Items: paginate(c.memo.sorted, c.currentPage, c.pageSize),
		Meta: Meta{
			Page:          c.currentPage,
			PageSize:      c.pageSize,
			TotalPages:    totalPages(len(c.memo.sorted), c.pageSize),
			Total:         len(c.data),
			Filtered:      len(c.memo.filtered),
			Selected:      len(c.selected),
			Search:        c.searchTerm,
			SortField:     c.sortField,
			SortDirection: c.sortDir,
		},
	}
}

func paginate[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 || page > totalPages(len(items), size) {
		return []T{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return slices.Clone(items[start:end])
}

func totalPages(n, size int) int {
	if n == 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage bounds page to [1, totalPages]. It returns 1 when there are no pages.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	return min(page, totalPages)
}
