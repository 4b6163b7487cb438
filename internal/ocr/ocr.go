// Package ocr calls the external OCR/table extraction service.
package ocr

import (
	"context"
	"errors"

	"github.com/MeKo-Tech/sheetscan/internal/document"
)

// ErrNoSource is returned when a Source carries neither bytes nor a URI.
var ErrNoSource = errors.New("ocr source has neither content nor uri")

// Source is the input to one OCR call: inline bytes or a storage reference.
type Source struct {
	Content  []byte
	URI      string
	MimeType string
}

// Inline reports whether the source carries the bytes directly.
func (s Source) Inline() bool {
	return len(s.Content) > 0
}

// Processor turns an image or document into a Document graph.
type Processor interface {
	Process(ctx context.Context, src Source) (*document.Document, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, src Source) (*document.Document, error)

func (f ProcessorFunc) Process(ctx context.Context, src Source) (*document.Document, error) {
	return f(ctx, src)
}
