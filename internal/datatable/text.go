package datatable

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxTextCellWidth = 40

// RenderText writes t as a fixed-width table. Widths are measured in terminal
// cells so CJK text stays aligned.
func RenderText(w io.Writer, t Table) error {
	if len(t.Headers) == 0 {
		return nil
	}
	widths := make([]int, len(t.Headers))
	labels := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		labels[i] = sortedLabel(h)
		widths[i] = runewidth.StringWidth(labels[i])
	}
	cells := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = make([]string, len(t.Headers))
		for i := range t.Headers {
			var s string
			if i < len(row.Cells) {
				s = runewidth.Truncate(flatten(row.Cells[i]), maxTextCellWidth, "…")
			}
			cells[r][i] = s
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteByte('\n')
	}
	writeLine(&b, labels, widths)
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	writeLine(&b, sep, widths)
	for _, row := range cells {
		writeLine(&b, row, widths)
	}
	switch {
	case t.Loading:
		b.WriteString("Loading…\n")
	case len(t.Rows) == 0 && t.Empty != "":
		b.WriteString(t.Empty)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "page %d/%d · %d of %d records", t.Meta.Page, t.Meta.TotalPages, t.Meta.Filtered, t.Meta.Total)
	if t.Meta.Selected > 0 {
		fmt.Fprintf(&b, " · %d selected", t.Meta.Selected)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLine(b *strings.Builder, cols []string, widths []int) {
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(cols)-1 {
			b.WriteString(c)
			continue
		}
		b.WriteString(runewidth.FillRight(c, widths[i]))
	}
	b.WriteByte('\n')
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
