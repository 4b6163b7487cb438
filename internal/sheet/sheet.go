// Package sheet appends demand rows to the shared spreadsheet.
package sheet

import "context"

// Sink is an append-only table. Append returns the number of rows the
// spreadsheet reports as written.
type Sink interface {
	Append(ctx context.Context, rng string, values [][]string) (int64, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rng string, values [][]string) (int64, error)

func (f SinkFunc) Append(ctx context.Context, rng string, values [][]string) (int64, error) {
	return f(ctx, rng, values)
}
