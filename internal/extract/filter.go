package extract

import (
	"strings"

	"github.com/MeKo-Tech/sheetscan/internal/catalog"
)

// Item is a candidate that passed catalog validation.
type Item struct {
	Name     string
	Quantity string
}

// Rejection describes why a candidate was dropped.
type Rejection int

const (
	Accepted Rejection = iota
	UnknownItem
	EmptyQuantity
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case UnknownItem:
		return "unknown_item"
	case EmptyQuantity:
		return "empty_quantity"
	default:
		return "unknown"
	}
}

// NormalizeQuantity trims s and removes every non-digit character. Leading
// zeros are kept and the result is never parsed; "1.5" becomes "15".
func NormalizeQuantity(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Accept validates a candidate: the trimmed item text must exactly equal a
// catalog entry and the normalized quantity must be non-empty.
func Accept(cat *catalog.Catalog, c Candidate) (Item, bool) {
	item, reason := classify(cat, c)
	return item, reason == Accepted
}

func classify(cat *catalog.Catalog, c Candidate) (Item, Rejection) {
	name := strings.TrimSpace(c.Item)
	if !cat.Contains(name) {
		return Item{}, UnknownItem
	}
	qty := NormalizeQuantity(c.Quantity)
	if qty == "" {
		return Item{}, EmptyQuantity
	}
	return Item{Name: name, Quantity: qty}, Accepted
}
