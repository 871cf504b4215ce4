// Package driven defines secondary port interfaces for external adapters.
package driven

import "context"

// BlobStore defines the driven port for persisting named opaque blobs.
// The key collection is written as a single blob after every mutation.
type BlobStore interface {
	// Load returns the blob stored under name. Returns (nil, nil) if no blob
	// exists for that name.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save stores or replaces the blob under name.
	Save(ctx context.Context, name string, data []byte) error
}
