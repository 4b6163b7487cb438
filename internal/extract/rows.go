// Package extract turns the tables of an OCR document into demand rows.
package extract

import (
	"iter"

	"github.com/MeKo-Tech/sheetscan/internal/document"
)

// Column positions of the demand sheet template.
const (
	ColumnSerial   = 0
	ColumnItem     = 1
	ColumnUnit     = 2
	ColumnQuantity = 3

	// MinCells is the smallest row that carries both item and quantity.
	MinCells = 4
)

// Candidate is the raw text of one table row before catalog validation.
type Candidate struct {
	Page     int
	Table    int
	Row      int
	Item     string
	Quantity string
}

// Candidates yields one candidate per body row with at least MinCells cells,
// in page, table, row order. Shorter rows (section headers and the like) are
// skipped without error.
func Candidates(doc *document.Document) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if doc == nil {
			return
		}
		for pi, page := range doc.Pages {
			for ti, table := range page.Tables {
				for ri, row := range table.BodyRows {
					if len(row.Cells) < MinCells {
						continue
					}
					c := Candidate{
						Page:     pi,
						Table:    ti,
						Row:      ri,
						Item:     row.Cells[ColumnItem].Text(doc),
						Quantity: row.Cells[ColumnQuantity].Text(doc),
					}
					if !yield(c) {
						return
					}
				}
			}
		}
	}
}
