package storage

import "context"

// BlobStore is the durable holding area for original uploaded bytes.
// Every document is written here before any parsing begins, so a failed
// document can always be re-downloaded for retry.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
