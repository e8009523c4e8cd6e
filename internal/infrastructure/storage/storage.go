// Package storage provides blob storage backends for uploaded documents.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no blob exists under the key
var ErrNotFound = errors.New("blob not found")

// BlobStore reads and writes document bytes. The database keeps the
// metadata; this keeps the content, addressed by storage key.
type BlobStore interface {
	// Put stores the content under the given key
	Put(ctx context.Context, key string, contentType string, content io.Reader) error

	// Get opens the content stored under the given key. The caller
	// must close the returned reader. Returns an error wrapping
	// ErrNotFound when no blob exists under the key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content stored under the given key. Deleting
	// a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
