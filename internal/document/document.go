// Package document holds the table-oriented view of an OCR result: a shared text
// buffer plus pages, tables, rows and cells whose text lives in that buffer.
package document

// Document is the OCR output for one submitted image or file.
type Document struct {
	Text  string
	Pages []Page
}

// Page holds the tables recognized on a single page.
type Page struct {
	Number int
	Tables []Table
}

// Table is a recognized table. Only body rows carry demand data.
type Table struct {
	HeaderRows []Row
	BodyRows   []Row
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell
}

// Cell points into the document text through its anchor.
type Cell struct {
	Anchor *TextAnchor
}

// TextAnchor lists the byte ranges of Document.Text that make up a piece of text.
type TextAnchor struct {
	Segments []Segment
}

// Segment is a half-open byte range [StartIndex, EndIndex).
type Segment struct {
	StartIndex int64
	EndIndex   int64
}

// Text returns the resolved text of the cell within doc.
func (c Cell) Text(doc *Document) string {
	if doc == nil {
		return ""
	}
	return ResolveText(doc.Text, c.Anchor)
}

// TableCount returns the number of tables across all pages.
func (d *Document) TableCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Tables)
	}
	return n
}
