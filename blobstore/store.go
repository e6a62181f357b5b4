package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for storing immutable checkpoint blobs.
//
// Checkpoints are written once and read sequentially, so the interface is
// stream-oriented. Implementations must be safe for concurrent use.
type Store interface {
	// Put writes a blob atomically. A blob never becomes visible to Get or
	// List until the whole write has succeeded.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens a blob for reading. The caller owns the returned reader.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
