package datatable

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfRowHeight = 7.0
	pdfMaxChars  = 60
)

// RenderPDF writes t as a landscape A4 table. Columns share the printable
// width evenly and rows continue onto new pages with the header repeated.
func RenderPDF(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 10, tr(t.Title))
		pdf.Ln(12)
	}

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	cols := max(len(t.Headers), 1)
	colW := (pageW - left - right) / float64(cols)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, pdfRowHeight, tr(sortedLabel(h)), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		fill := row.Selected
		if fill {
			pdf.SetFillColor(220, 235, 252)
		}
		for i := range t.Headers {
			var s string
			if i < len(row.Cells) {
				s = clip(flatten(row.Cells[i]), pdfMaxChars)
			}
			pdf.CellFormat(colW, pdfRowHeight, tr(s), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(t.Rows) == 0 && t.Empty != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, pdfRowHeight, tr(t.Empty), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.Cell(0, 6, fmt.Sprintf("Page %d of %d - %d of %d records", t.Meta.Page, t.Meta.TotalPages, t.Meta.Filtered, t.Meta.Total))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func sortedLabel(h Header) string {
	switch h.Direction {
	case Ascending:
		return h.Label + " (asc)"
	case Descending:
		return h.Label + " (desc)"
	}
	return h.Label
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
