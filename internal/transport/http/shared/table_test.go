package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmgo/internal/datatable"
)

type person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Dept string `json:"department"`
}

func (p person) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "department":
		return p.Dept, true
	}
	return nil, false
}

var peopleSpec = TableSpec[person]{
	Title:        "Employees",
	SearchFields: []string{"name", "department"},
	DefaultSort:  "name",
	Columns: []datatable.Column[person]{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "department", Label: "Department", Sortable: true},
		{Key: "id", Label: "ID"},
	},
}

func staff() []person {
	return []person{
		{ID: "1", Name: "Carol", Dept: "Sales"},
		{ID: "2", Name: "alice", Dept: "Engineering"},
		{ID: "3", Name: "Bob", Dept: "Engineering"},
	}
}

type listResponse struct {
	Success bool           `json:"success"`
	Data    []person       `json:"data"`
	Meta    datatable.Meta `json:"meta"`
}

func TestParseTableQuery(t *testing.T) {
	limits := PageLimits{Default: 10, Max: 50}
	tests := []struct {
		name string
		url  string
		want datatable.Query
	}{
		{"defaults", "/x", datatable.Query{Page: 1, PageSize: 10, SortDirection: datatable.Ascending}},
		{"all params", "/x?search=%20bob%20&sort=name&direction=desc&page=3&pageSize=5",
			datatable.Query{Search: "bob", SortField: "name", SortDirection: datatable.Descending, Page: 3, PageSize: 5}},
		{"page size capped", "/x?pageSize=500", datatable.Query{Page: 1, PageSize: 50, SortDirection: datatable.Ascending}},
		{"bad numbers ignored", "/x?page=abc&pageSize=-1", datatable.Query{Page: 1, PageSize: 10, SortDirection: datatable.Ascending}},
		{"page kept out of range", "/x?page=99", datatable.Query{Page: 99, PageSize: 10, SortDirection: datatable.Ascending}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.want, ParseTableQuery(r, limits))
		})
	}
}

func TestWriteTableSearchSortPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/employees?search=engineering&sort=name&direction=desc&pageSize=1", nil)
	rec := httptest.NewRecorder()

	WriteTable(rec, r, staff(), peopleSpec, PageLimits{Default: 10, Max: 100})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	// byte order: "Bob" < "alice"
	assert.Equal(t, "alice", resp.Data[0].Name)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	assert.Equal(t, 3, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Filtered)
	assert.Equal(t, datatable.Descending, resp.Meta.SortDirection)
}

func TestWriteTableIgnoresUnsortableField(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/employees?sort=id&direction=desc", nil)
	rec := httptest.NewRecorder()

	WriteTable(rec, r, staff(), peopleSpec, PageLimits{Default: 10})

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "name", resp.Meta.SortField)
	assert.Equal(t, []string{"Bob", "Carol", "alice"}, names(resp.Data))
}

func TestWriteTableOutOfRangePage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/employees?page=7", nil)
	rec := httptest.NewRecorder()

	WriteTable(rec, r, staff(), peopleSpec, PageLimits{Default: 10})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Meta.Page)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestWriteTableRenderedView(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/employees?view=table&search=nobody", nil)
	rec := httptest.NewRecorder()

	WriteTable(rec, r, staff(), peopleSpec, PageLimits{Default: 10})

	var resp struct {
		Data datatable.Table `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Employees", resp.Data.Title)
	assert.Len(t, resp.Data.Headers, 3)
	assert.Empty(t, resp.Data.Rows)
	assert.Equal(t, "No data available", resp.Data.Empty)
}

func TestWritePDF(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/employees/export.pdf", nil)
	rec := httptest.NewRecorder()

	WritePDF(rec, r, staff(), peopleSpec, PageLimits{Default: 10}, "employees.pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="employees.pdf"`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func names(items []person) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}
