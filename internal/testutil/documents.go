package testutil

import (
	"strings"

	"github.com/MeKo-Tech/sheetscan/internal/document"
)

// DocumentBuilder assembles a document.Document from plain cell strings. Every
// cell is written to one shared text buffer, newline separated, and anchored
// with a single segment.
type DocumentBuilder struct {
	text  strings.Builder
	pages []document.Page
}

// NewDocument starts an empty document.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{}
}

// Page appends a page holding one table per argument. Each table is a list of
// body rows.
func (b *DocumentBuilder) Page(tables ...[][]string) *DocumentBuilder {
	page := document.Page{Number: len(b.pages) + 1}
	for _, rows := range tables {
		var table document.Table
		for _, cells := range rows {
			table.BodyRows = append(table.BodyRows, b.row(cells))
		}
		page.Tables = append(page.Tables, table)
	}
	b.pages = append(b.pages, page)
	return b
}

// EmptyPage appends a page without tables.
func (b *DocumentBuilder) EmptyPage() *DocumentBuilder {
	b.pages = append(b.pages, document.Page{Number: len(b.pages) + 1})
	return b
}

// Build returns the assembled document.
func (b *DocumentBuilder) Build() *document.Document {
	return &document.Document{
		Text:  b.text.String(),
		Pages: b.pages,
	}
}

func (b *DocumentBuilder) row(cells []string) document.Row {
	row := document.Row{Cells: make([]document.Cell, 0, len(cells))}
	for _, c := range cells {
		start := int64(b.text.Len())
		b.text.WriteString(c)
		end := int64(b.text.Len())
		b.text.WriteString("\n")
		row.Cells = append(row.Cells, document.Cell{
			Anchor: &document.TextAnchor{Segments: []document.Segment{{StartIndex: start, EndIndex: end}}},
		})
	}
	return row
}

// DemandTable converts fixed-width rows in the demand sheet layout
// (serial, item, unit, quantity) into table body rows.
func DemandTable(rows ...[4]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r[0], r[1], r[2], r[3]})
	}
	return out
}
