package extract

import (
	"github.com/MeKo-Tech/sheetscan/internal/catalog"
	"github.com/MeKo-Tech/sheetscan/internal/document"
)

// DemandRow is one normalized line of a demand sheet.
type DemandRow struct {
	Date     string `json:"date"`
	StoreID  string `json:"store_id"`
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

// Values returns the row in sheet column order: date, store, item, quantity.
func (r DemandRow) Values() []string {
	return []string{r.Date, r.StoreID, r.Item, r.Quantity}
}

// Stats counts what happened to the body rows of a document.
type Stats struct {
	Candidates    int `json:"candidates"`
	Accepted      int `json:"accepted"`
	UnknownItem   int `json:"unknown_item"`
	EmptyQuantity int `json:"empty_quantity"`
}

// Assemble attaches submission context to accepted items, keeping their order.
func Assemble(items []Item, date, storeID string) []DemandRow {
	rows := make([]DemandRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, DemandRow{
			Date:     date,
			StoreID:  storeID,
			Item:     it.Name,
			Quantity: it.Quantity,
		})
	}
	return rows
}

// Rows runs extraction, catalog filtering and assembly over doc.
func Rows(doc *document.Document, cat *catalog.Catalog, date, storeID string) []DemandRow {
	rows, _ := RowsWithStats(doc, cat, date, storeID)
	return rows
}

// RowsWithStats is Rows plus per-outcome counters.
func RowsWithStats(doc *document.Document, cat *catalog.Catalog, date, storeID string) ([]DemandRow, Stats) {
	var (
		items []Item
		stats Stats
	)
	for c := range Candidates(doc) {
		stats.Candidates++
		item, reason := classify(cat, c)
		switch reason {
		case Accepted:
			stats.Accepted++
			items = append(items, item)
		case UnknownItem:
			stats.UnknownItem++
		case EmptyQuantity:
			stats.EmptyQuantity++
		}
	}
	return Assemble(items, date, storeID), stats
}

// Values converts rows into the sink's cell layout.
func Values(rows []DemandRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Values())
	}
	return out
}
