package datatable

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec = map[string]any

func people() []rec {
	return []rec{
		{"id": 1, "name": "Alice"},
		{"id": 2, "name": "Bob"},
		{"id": 3, "name": "Alicia"},
	}
}

func ids(items []rec) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, it["id"])
	}
	return out
}

func TestFilterMatchesSubstringCaseInsensitive(t *testing.T) {
	c := New(people(), WithSearchFields[rec]("name"))
	c.SetSearchTerm("ali")

	assert.Equal(t, []any{1, 3}, ids(c.Filtered()))
	assert.Equal(t, 2, c.FilteredCount())
	assert.Equal(t, 3, c.TotalCount())

	c.SetSearchTerm("ALI")
	assert.Equal(t, []any{1, 3}, ids(c.Filtered()))
}

func TestFilterNoop(t *testing.T) {
	data := people()

	t.Run("empty term", func(t *testing.T) {
		c := New(data, WithSearchFields[rec]("name"))
		assert.Equal(t, data, c.Filtered())
	})
	t.Run("no search fields", func(t *testing.T) {
		c := New(data)
		c.SetSearchTerm("zzz")
		assert.Equal(t, data, c.Filtered())
	})
}

func TestFilterPartitionsInput(t *testing.T) {
	data := []rec{
		{"id": 1, "name": "Dana", "email": "dana@acme.io"},
		{"id": 2, "name": "Eli", "email": "eli@corp.io"},
		{"id": 3, "name": "Acme Bot", "email": nil},
		{"id": 4, "name": "", "email": "x@y.z"},
	}
	fields := []string{"name", "email"}
	c := New(data, WithSearchFields[rec](fields...))
	for _, term := range []string{"acme", "io", "e", "nobody", "a"} {
		c.SetSearchTerm(term)
		in := map[any]bool{}
		for _, it := range c.Filtered() {
			in[it["id"]] = true
		}
		for _, it := range data {
			matched := false
			for _, f := range fields {
				if s, ok := it[f].(string); ok && s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(term)) {
					matched = true
				}
			}
			assert.Equal(t, matched, in[it["id"]], "term %q record %v", term, it["id"])
		}
	}
}

func TestFilterFalsyValuesNeverMatch(t *testing.T) {
	data := []rec{
		{"id": 1, "v": nil},
		{"id": 2, "v": false},
		{"id": 3, "v": 0},
		{"id": 4, "v": ""},
		{"id": 5, "v": time.Time{}},
		{"id": 6},
		{"id": 7, "v": true},
		{"id": 8, "v": 10},
	}
	c := New(data, WithSearchFields[rec]("v"))

	c.SetSearchTerm("0")
	assert.Equal(t, []any{8}, ids(c.Filtered()))

	c.SetSearchTerm("false")
	assert.Empty(t, c.Filtered())

	c.SetSearchTerm("true")
	assert.Equal(t, []any{7}, ids(c.Filtered()))
}

func TestSortScenario(t *testing.T) {
	c := New(people(), WithPageSize[rec](2), WithInitialSort[rec]("name", Ascending))

	assert.Equal(t, 2, c.TotalPages())
	assert.Equal(t, []any{1, 3}, ids(c.PageItems()))
	c.SetCurrentPage(2)
	assert.Equal(t, []any{2}, ids(c.PageItems()))
}

func TestSortIsStable(t *testing.T) {
	data := []rec{
		{"id": 1, "dept": "ops"},
		{"id": 2, "dept": "eng"},
		{"id": 3, "dept": "ops"},
		{"id": 4, "dept": "eng"},
		{"id": 5, "dept": "ops"},
	}
	c := New(data, WithInitialSort[rec]("dept", Ascending))
	assert.Equal(t, []any{2, 4, 1, 3, 5}, ids(c.Sorted()))

	c.SetSortDirection(Descending)
	assert.Equal(t, []any{1, 3, 5, 2, 4}, ids(c.Sorted()))
}

func TestSortNaturalOrdering(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		values []any
		want   []any
	}{
		{"numbers", []any{10, 2, 33}, []any{2, 10, 33}},
		{"mixed numbers", []any{2.5, 1, int64(3)}, []any{1, 2.5, int64(3)}},
		{"strings", []any{"b", "B", "a"}, []any{"B", "a", "b"}},
		{"times", []any{day(3), day(1), day(2)}, []any{day(1), day(2), day(3)}},
		{"bools", []any{true, false}, []any{false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]rec, len(tt.values))
			for i, v := range tt.values {
				data[i] = rec{"id": i, "v": v}
			}
			c := New(data, WithInitialSort[rec]("v", Ascending))
			got := make([]any, 0, len(data))
			for _, it := range c.Sorted() {
				got = append(got, it["v"])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortNilLastInBothDirections(t *testing.T) {
	data := []rec{
		{"id": 1, "v": nil},
		{"id": 2, "v": 5},
		{"id": 3},
		{"id": 4, "v": 1},
	}
	c := New(data, WithInitialSort[rec]("v", Ascending))
	assert.Equal(t, []any{4, 2, 1, 3}, ids(c.Sorted()))

	c.SetSortDirection(Descending)
	assert.Equal(t, []any{2, 4, 1, 3}, ids(c.Sorted()))
}

func TestHandleSort(t *testing.T) {
	t.Run("toggles on same field", func(t *testing.T) {
		c := New(people())
		c.HandleSort("name")
		assert.Equal(t, Ascending, c.SortDirection())
		c.HandleSort("name")
		assert.Equal(t, Descending, c.SortDirection())
		assert.Equal(t, []any{2, 3, 1}, ids(c.Sorted()))
		c.HandleSort("name")
		assert.Equal(t, Ascending, c.SortDirection())
	})

	t.Run("switching field resets to ascending", func(t *testing.T) {
		c := New(people(), WithInitialSort[rec]("id", Descending))
		c.HandleSort("name")
		assert.Equal(t, "name", c.SortField())
		assert.Equal(t, Ascending, c.SortDirection())
	})
}

func TestPaginationCoversSortedList(t *testing.T) {
	data := make([]rec, 23)
	for i := range data {
		data[i] = rec{"id": i, "n": (i * 7) % 5}
	}
	for _, size := range []int{1, 4, 5, 10, 23, 50} {
		c := New(data, WithPageSize[rec](size), WithInitialSort[rec]("n", Ascending))
		var all []rec
		for p := 1; p <= c.TotalPages(); p++ {
			c.SetCurrentPage(p)
			all = append(all, c.PageItems()...)
		}
		assert.Equal(t, c.Sorted(), all, "page size %d", size)
	}
}

func TestPaginationOutOfRange(t *testing.T) {
	c := New(people(), WithPageSize[rec](2))
	for _, p := range []int{0, -1, 3, 100} {
		c.SetCurrentPage(p)
		assert.Empty(t, c.PageItems(), "page %d", p)
		assert.NotNil(t, c.PageItems())
		assert.Equal(t, p, c.CurrentPage())
	}
}

func TestEmptyInput(t *testing.T) {
	c := New([]rec{}, WithSearchFields[rec]("name"), WithInitialSort[rec]("name", Descending))
	c.SetSearchTerm("x")

	assert.Equal(t, 0, c.TotalPages())
	assert.Empty(t, c.PageItems())
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Meta.TotalPages)
	assert.Equal(t, 1, snap.Meta.Page)
}

func TestPageNotClampedAfterSearch(t *testing.T) {
	c := New(people(), WithPageSize[rec](1), WithSearchFields[rec]("name"))
	c.SetCurrentPage(3)
	require.Len(t, c.PageItems(), 1)

	c.SetSearchTerm("bob")
	assert.Equal(t, 3, c.CurrentPage())
	assert.Empty(t, c.PageItems())
	assert.Equal(t, 1, ClampPage(c.CurrentPage(), c.TotalPages()))
}

func TestClampPage(t *testing.T) {
	tests := []struct{ page, total, want int }{
		{1, 0, 1},
		{0, 3, 1},
		{-4, 3, 1},
		{2, 3, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPage(tt.page, tt.total), "ClampPage(%d, %d)", tt.page, tt.total)
	}
}

func TestPageSizeDefaults(t *testing.T) {
	assert.Equal(t, DefaultPageSize, New(people()).PageSize())
	assert.Equal(t, DefaultPageSize, New(people(), WithPageSize[rec](0)).PageSize())
	assert.Equal(t, 3, New(people(), WithPageSize[rec](3)).PageSize())
}

func TestDerivationsTrackDataChanges(t *testing.T) {
	c := New(people(), WithSearchFields[rec]("name"))
	c.SetSearchTerm("ali")
	require.Equal(t, 2, c.FilteredCount())

	c.SetData(append(people(), rec{"id": 4, "name": "Malik"}))
	assert.Equal(t, []any{1, 3, 4}, ids(c.Filtered()))
}

func TestOutputsAreCopies(t *testing.T) {
	c := New(people())
	got := c.Sorted()
	got[0] = rec{"id": 99}
	assert.Equal(t, []any{1, 2, 3}, ids(c.Sorted()))
}

func TestApply(t *testing.T) {
	c := New(people(), WithSearchFields[rec]("name"), WithPageSize[rec](1))
	c.Apply(Query{Search: "ali", SortField: "name", SortDirection: Descending, Page: 2})

	snap := c.Snapshot()
	assert.Equal(t, []any{1}, ids(snap.Items))
	assert.Equal(t, Meta{
		Page:          2,
		PageSize:      1,
		TotalPages:    2,
		Total:         3,
		Filtered:      2,
		Search:        "ali",
		SortField:     "name",
		SortDirection: Descending,
	}, snap.Meta)
}

func TestParseSortDirection(t *testing.T) {
	assert.Equal(t, Descending, ParseSortDirection("DESC"))
	assert.Equal(t, Descending, ParseSortDirection("descending"))
	assert.Equal(t, Ascending, ParseSortDirection("asc"))
	assert.Equal(t, Ascending, ParseSortDirection("sideways"))
	assert.Equal(t, Ascending, Descending.Toggle())
}

type employee struct {
	ID    string
	Name  string
	Hired time.Time
}

func (e employee) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "hired":
		return e.Hired, true
	}
	return nil, false
}

func TestFielderRecords(t *testing.T) {
	data := []employee{
		{ID: "e2", Name: "Zoe", Hired: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "e1", Name: "Yan", Hired: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	c := New(data, WithSearchFields[employee]("name", "hired"), WithInitialSort[employee]("hired", Ascending))

	assert.Equal(t, "e1", c.Sorted()[0].ID)
	assert.Equal(t, "e1", c.Key(data[1]))

	c.SetSearchTerm("2021-05")
	require.Len(t, c.Filtered(), 1)
	assert.Equal(t, "Zoe", c.Filtered()[0].Name)
}
