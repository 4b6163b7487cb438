package document

import (
	"unicode/utf8"

	documentai "google.golang.org/api/documentai/v1"
)

// FromDocumentAI converts a Document AI REST document into a Document.
// Missing pages, tables, rows, layouts or anchors are tolerated; absent
// segment offsets are zero. Document AI counts offsets in characters, they
// are rewritten to byte offsets into Text.
func FromDocumentAI(src *documentai.GoogleCloudDocumentaiV1Document) *Document {
	if src == nil {
		return &Document{}
	}
	offsets := newOffsetTable(src.Text)

	doc := &Document{
		Text:  src.Text,
		Pages: make([]Page, 0, len(src.Pages)),
	}
	for i, p := range src.Pages {
		if p == nil {
			continue
		}
		page := Page{Number: int(p.PageNumber)}
		if page.Number == 0 {
			page.Number = i + 1
		}
		for _, t := range p.Tables {
			if t == nil {
				continue
			}
			page.Tables = append(page.Tables, Table{
				HeaderRows: convertRows(t.HeaderRows, offsets),
				BodyRows:   convertRows(t.BodyRows, offsets),
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func convertRows(rows []*documentai.GoogleCloudDocumentaiV1DocumentPageTableTableRow, offsets offsetTable) []Row {
	if len(rows) == 0 {
		return nil
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			out = append(out, Row{})
			continue
		}
		row := Row{Cells: make([]Cell, 0, len(r.Cells))}
		for _, c := range r.Cells {
			row.Cells = append(row.Cells, convertCell(c, offsets))
		}
		out = append(out, row)
	}
	return out
}

func convertCell(c *documentai.GoogleCloudDocumentaiV1DocumentPageTableTableCell, offsets offsetTable) Cell {
	if c == nil || c.Layout == nil || c.Layout.TextAnchor == nil {
		return Cell{}
	}
	segs := c.Layout.TextAnchor.TextSegments
	anchor := &TextAnchor{Segments: make([]Segment, 0, len(segs))}
	for _, s := range segs {
		if s == nil {
			anchor.Segments = append(anchor.Segments, Segment{})
			continue
		}
		anchor.Segments = append(anchor.Segments, Segment{
			StartIndex: offsets.byteOffset(s.StartIndex),
			EndIndex:   offsets.byteOffset(s.EndIndex),
		})
	}
	return Cell{Anchor: anchor}
}

// offsetTable maps character offsets to byte offsets. A nil table means the
// text is ASCII and both coincide.
type offsetTable []int64

func newOffsetTable(text string) offsetTable {
	if utf8.RuneCountInString(text) == len(text) {
		return nil
	}
	t := make(offsetTable, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		t = append(t, int64(i))
	}
	return append(t, int64(len(text)))
}

// byteOffset clamps out-of-range offsets to the text bounds.
func (t offsetTable) byteOffset(chars int64) int64 {
	if t == nil || chars <= 0 {
		return chars
	}
	if chars >= int64(len(t)) {
		return t[len(t)-1]
	}
	return t[chars]
}
