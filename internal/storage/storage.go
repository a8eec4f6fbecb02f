package storage

import (
	"context"
	"io"
)

// BlobStore persists uploaded video binaries. Save returns the public
// location for the stored name; Delete must tolerate names that no longer
// exist.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}
