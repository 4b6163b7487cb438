// Package blob stages submitted files in object storage for the OCR service.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when deleting a key that does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a put/delete object store. Keys are request scoped and never reused.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URI returns the reference the OCR service uses to read key.
	URI(key string) string
}
