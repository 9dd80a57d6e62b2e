package datatable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peopleView() *View[rec] {
	data := []rec{
		{"id": 1, "name": "Alice", "dept": "Eng"},
		{"id": 2, "name": "Bob", "dept": nil},
		{"id": 3, "name": "Alicia"},
	}
	c := New(data, WithSearchFields[rec]("name"), WithPageSize[rec](2))
	return NewView(c, []Column[rec]{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "dept", Label: "Department"},
		{Key: "id", Label: "Badge", Render: func(v any, _ rec) string { return "#" + Text(v) }},
	})
}

func TestViewCellsUsePlaceholder(t *testing.T) {
	v := peopleView()
	tbl := v.Table()

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Alice", "Eng", "#1"}, tbl.Rows[0].Cells)
	assert.Equal(t, []string{"Bob", "-", "#2"}, tbl.Rows[1].Cells)
	assert.Equal(t, "1", tbl.Rows[0].Key)
	assert.Empty(t, tbl.Empty)
}

func TestViewSearchResetsPage(t *testing.T) {
	v := peopleView()
	v.GoToPage(2)
	v.Search("ali")

	assert.Equal(t, 1, v.Controller().CurrentPage())
	assert.Equal(t, 2, v.Table().Meta.Filtered)
}

func TestViewClickHeader(t *testing.T) {
	v := peopleView()

	assert.False(t, v.ClickHeader("dept"))
	assert.False(t, v.ClickHeader("missing"))
	assert.Empty(t, v.Controller().SortField())

	assert.True(t, v.ClickHeader("name"))
	assert.True(t, v.ClickHeader("name"))
	tbl := v.Table()
	assert.Equal(t, Descending, tbl.Headers[0].Direction)
	assert.Empty(t, tbl.Headers[1].Direction)
	assert.Equal(t, "Bob", tbl.Rows[0].Cells[0])
}

func TestViewSelection(t *testing.T) {
	v := peopleView()
	v.ToggleAll(true)
	tbl := v.Table()
	assert.True(t, tbl.Rows[0].Selected)
	assert.True(t, tbl.Rows[1].Selected)
	assert.Equal(t, 2, tbl.Meta.Selected)

	v.ToggleRow(rec{"id": 1}, false)
	assert.False(t, v.Table().Rows[0].Selected)
}

func TestViewEmptyAndLoading(t *testing.T) {
	v := peopleView()
	v.Search("nobody")
	assert.Equal(t, "No data available", v.Table().Empty)

	v.Loading = true
	tbl := v.Table()
	assert.True(t, tbl.Loading)
	assert.Empty(t, tbl.Empty)
}

type upper struct{}

func (upper) T(key string) string { return strings.ToUpper(key) }

func TestViewTranslatesLabels(t *testing.T) {
	v := peopleView().WithTranslator(upper{})
	v.Title = "Employees"
	tbl := v.Table()
	assert.Equal(t, "EMPLOYEES", tbl.Title)
	assert.Equal(t, "NAME", tbl.Headers[0].Label)
}

func TestRenderText(t *testing.T) {
	v := peopleView()
	v.ClickHeader("name")
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, v.Table()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Name (asc)  Department  Badge", lines[0])
	assert.Equal(t, "----------  ----------  -----", lines[1])
	assert.Equal(t, "Alice       Eng         #1", lines[2])
	assert.Equal(t, "Alicia      -           #3", lines[3])
	assert.Equal(t, "page 1/2 · 3 of 3 records", lines[4])
}

func TestRenderTextWideRunes(t *testing.T) {
	tbl := Table{
		Headers: []Header{{Key: "name", Label: "Name"}, {Key: "x", Label: "X"}},
		Rows: []Row{
			{Cells: []string{"山田", "a"}},
			{Cells: []string{"Li", "b"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, tbl))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "山田  a", lines[2])
	assert.Equal(t, "Li    b", lines[3])
}

func TestRenderPDF(t *testing.T) {
	v := peopleView()
	v.Title = "Employees"
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, v.Table()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
