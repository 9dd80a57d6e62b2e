package datatable

// Placeholder is rendered for nil or absent cell values.
const Placeholder = "-"

type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	// Render overrides the default text for the cell. value is nil when the
	// field is absent.
	Render func(value any, item T) string
}

// Translator resolves column labels and messages. *i18n.Translator satisfies it.
type Translator interface {
	T(key string) string
}

type Header struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	Sortable  bool          `json:"sortable"`
	Direction SortDirection `json:"direction,omitempty"`
}

type Row struct {
	Key      string   `json:"key"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
}

// Table is the rendered state of a View.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Headers []Header `json:"headers"`
	Rows    []Row    `json:"rows"`
	Loading bool     `json:"loading"`
	Empty   string   `json:"empty,omitempty"`
	Meta    Meta     `json:"meta"`
}

type View[T any] struct {
	ctrl    *Controller[T]
	columns []Column[T]

	Title        string
	Loading      bool
	EmptyMessage string
	tr           Translator
}

func NewView[T any](ctrl *Controller[T], columns []Column[T]) *View[T] {
	return &View[T]{
		ctrl:         ctrl,
		columns:      columns,
		EmptyMessage: "No data available",
	}
}

// WithTranslator makes Table translate labels, the title and the empty message.
func (v *View[T]) WithTranslator(tr Translator) *View[T] {
	v.tr = tr
	return v
}

func (v *View[T]) Controller() *Controller[T] { return v.ctrl }
func (v *View[T]) Columns() []Column[T]       { return v.columns }

// Search updates the search term and returns to the first page.
func (v *View[T]) Search(term string) {
	v.ctrl.SetSearchTerm(term)
	v.ctrl.SetCurrentPage(1)
}

// ClickHeader sorts by the column with the given key. Clicks on unknown or
// non-sortable columns are ignored.
func (v *View[T]) ClickHeader(key string) bool {
	for _, col := range v.columns {
		if col.Key == key {
			if !col.Sortable {
				return false
			}
			v.ctrl.HandleSort(key)
			return true
		}
	}
	return false
}

func (v *View[T]) GoToPage(page int) {
	v.ctrl.SetCurrentPage(page)
}

func (v *View[T]) ToggleRow(item T, checked bool) {
	v.ctrl.SelectItem(item, checked)
}

func (v *View[T]) ToggleAll(checked bool) {
	v.ctrl.SelectAll(checked)
}

// Cell renders one cell of item.
func (v *View[T]) Cell(col Column[T], item T) string {
	value, ok := v.ctrl.Value(item, col.Key)
	if !ok {
		value = nil
	}
	if col.Render != nil {
		return col.Render(value, item)
	}
	if isNil(value) {
		return Placeholder
	}
	return Text(value)
}

func (v *View[T]) Table() Table {
	page := v.ctrl.Snapshot()
	t := Table{
		Title:   v.translate(v.Title),
		Headers: make([]Header, 0, len(v.columns)),
		Rows:    make([]Row, 0, len(page.Items)),
		Loading: v.Loading,
		Meta:    page.Meta,
	}
	for _, col := range v.columns {
		h := Header{Key: col.Key, Label: v.translate(col.Label), Sortable: col.Sortable}
		if col.Key == v.ctrl.SortField() {
			h.Direction = v.ctrl.SortDirection()
		}
		t.Headers = append(t.Headers, h)
	}
	for _, item := range page.Items {
		row := Row{
			Key:      v.ctrl.Key(item),
			Cells:    make([]string, 0, len(v.columns)),
			Selected: v.ctrl.IsSelected(item),
		}
		for _, col := range v.columns {
			row.Cells = append(row.Cells, v.Cell(col, item))
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 && !v.Loading {
		t.Empty = v.translate(v.EmptyMessage)
	}
	return t
}

func (v *View[T]) translate(s string) string {
	if v.tr == nil || s == "" {
		return s
	}
	return v.tr.T(s)
}
