package domain

import (
	"context"
	"io"
)

// BlobWriter writes objects to cold storage. Used to archive cycle snapshots
// for replay and debugging.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	// PutMultipart uploads in parts of partSize bytes; implementations may
	// clamp partSize to a backend minimum.
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
