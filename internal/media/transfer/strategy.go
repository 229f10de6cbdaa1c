// Package transfer moves file content to the remote object store. Two
// strategies exist, selected by size: a single-request direct upload
// and a segmented multipart upload. Both report progress through the
// same callback contract so callers stay agnostic.
package transfer

import (
	"context"
	"io"

	"github.com/socialhub/mediaup/internal/media/models"
)

const (
	// DefaultDirectLimit is the size at or below which a file goes up in
	// one request.
	DefaultDirectLimit = 80 << 20

	// DefaultPartSize is the segment size for multipart uploads.
	DefaultPartSize = 16 << 20
)

// ProgressFunc receives the transfer completion percent, 0-100.
type ProgressFunc func(percent int)

// Strategy uploads one file and returns its remote URL.
type Strategy interface {
	Upload(ctx context.Context, f models.FileRef, onProgress ProgressFunc) (string, error)
}

// ObjectStore is the remote end both strategies talk to.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader, size int64) error
	CreateMultipart(ctx context.Context, key string, contentType string) (uploadID string, err error)
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, r io.Reader, size int64) (etag string, err error)
	CompleteMultipart(ctx context.Context, key, uploadID string, etags []string) error
	AbortMultipart(ctx context.Context, key, uploadID string) error
	Delete(ctx context.Context, url string) error
	URLFor(key string) string
}

// Selector picks a strategy for a file by its byte size.
type Selector struct {
	store       ObjectStore
	directLimit int64
	partSize    int64
}

func NewSelector(store ObjectStore, directLimit, partSize int64) *Selector {
	if directLimit <= 0 {
		directLimit = DefaultDirectLimit
	}
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	return &Selector{store: store, directLimit: directLimit, partSize: partSize}
}

// For returns the strategy for a file of the given size: direct at or
// below the limit, segmented above it.
func (s *Selector) For(size int64) Strategy {
	if size <= s.directLimit {
		return &Direct{store: s.store}
	}
	return &Segmented{store: s.store, partSize: s.partSize}
}

// Store exposes the underlying object store for deletion paths.
func (s *Selector) Store() ObjectStore { return s.store }
