package storage

import (
	"context"
	"time"
)

// Default expiry for presigned URLs.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage abstracts the object store holding workout demo videos. The
// app never proxies the bytes; clients upload and download directly through
// presigned URLs.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL allowing a PUT of
	// the object straight to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL allowing a GET
	// of the object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
