package shared

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"hrmgo/internal/datatable"
	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/platform/requestctx"
	"hrmgo/internal/transport/http/api"
)

// TableSpec describes how one resource is listed: what is searchable, the
// default ordering and the columns used for table and PDF rendering.
type TableSpec[T any] struct {
	Title            string
	SearchFields     []string
	DefaultSort      string
	DefaultDirection datatable.SortDirection
	Columns          []datatable.Column[T]
	Key              datatable.KeyFunc[T]
}

// Controller builds a controller over items with q applied. Sort fields that
// are not sortable columns fall back to the default sort.
func (s TableSpec[T]) Controller(items []T, q datatable.Query) *datatable.Controller[T] {
	opts := []datatable.Option[T]{
		datatable.WithSearchFields[T](s.SearchFields...),
		datatable.WithPageSize[T](q.PageSize),
	}
	if s.DefaultSort != "" {
		opts = append(opts, datatable.WithInitialSort[T](s.DefaultSort, s.DefaultDirection))
	}
	if s.Key != nil {
		opts = append(opts, datatable.WithKey(s.Key))
	}
	ctrl := datatable.New(items, opts...)

	if !s.sortable(q.SortField) {
		q.SortField = ""
	}
	ctrl.Apply(q)
	ctrl.SetCurrentPage(q.Page)
	return ctrl
}

func (s TableSpec[T]) sortable(field string) bool {
	if field == "" {
		return false
	}
	for _, col := range s.Columns {
		if col.Key == field {
			return col.Sortable
		}
	}
	return false
}

// View wraps Controller in a view translated for the request language.
func (s TableSpec[T]) View(r *http.Request, items []T, q datatable.Query) *datatable.View[T] {
	view := datatable.NewView(s.Controller(items, q), s.Columns).
		WithTranslator(i18n.FromContext(r.Context()))
	view.Title = s.Title
	return view
}

// WriteTable answers a list request. The default response carries the page
// items as data and paging state as meta; view=table returns the rendered
// table instead. The returned meta describes what was written.
func WriteTable[T any](w http.ResponseWriter, r *http.Request, items []T, spec TableSpec[T], limits PageLimits) datatable.Meta {
	q := ParseTableQuery(r, limits)
	view := spec.View(r, items, q)
	reqID := requestctx.GetRequestID(r.Context())

	if r.URL.Query().Get("view") == "table" {
		table := view.Table()
		api.SuccessWithMeta(w, table, table.Meta, reqID)
		return table.Meta
	}

	page := view.Controller().Snapshot()
	api.SuccessWithMeta(w, page.Items, page.Meta, reqID)
	return page.Meta
}

// WritePDF renders the requested page of items as a PDF attachment.
func WritePDF[T any](w http.ResponseWriter, r *http.Request, items []T, spec TableSpec[T], limits PageLimits, filename string) {
	q := ParseTableQuery(r, limits)
	view := spec.View(r, items, q)

	var buf bytes.Buffer
	if err := datatable.RenderPDF(&buf, view.Table()); err != nil {
		zap.L().Error("render pdf failed", zap.String("table", spec.Title), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export table", requestctx.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
