package storage

import (
	"context"
	"io"
	"time"
)

// StorageInterface is the object store for inspection photos.
// The local implementation serves its own presigned URLs; a cloud backend
// (S3, Azure) would return provider URLs instead.
type StorageInterface interface {
	// GeneratePresignedUploadURL generates a URL the client PUTs the file to
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL generates a URL for downloading
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error

	// SaveFile and ReadFile back the upload/download HTTP routes of the
	// local implementation.
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
}
