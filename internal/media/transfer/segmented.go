package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/socialhub/mediaup/internal/media/models"
)

// Segmented splits the file into ordered parts and uploads them through
// the store's multipart surface; the remote end reassembles. Progress
// is the byte-weighted completion across all parts.
type Segmented struct {
	store    ObjectStore
	partSize int64
}

func (s *Segmented) Upload(ctx context.Context, f models.FileRef, onProgress ProgressFunc) (string, error) {
	rc, err := f.Blob.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	key := StorageKey()

	uploadID, err := s.store.CreateMultipart(ctx, key, f.MIME)
	if err != nil {
		return "", fmt.Errorf("create multipart for %s: %w", f.Name, err)
	}

	etags, err := s.uploadParts(ctx, key, uploadID, f, rc, onProgress)
	if err != nil {
		if aerr := s.store.AbortMultipart(context.WithoutCancel(ctx), key, uploadID); aerr != nil {
			return "", fmt.Errorf("%w (abort also failed: %v)", err, aerr)
		}
		return "", err
	}

	if err := s.store.CompleteMultipart(ctx, key, uploadID, etags); err != nil {
		return "", fmt.Errorf("complete multipart for %s: %w", f.Name, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return s.store.URLFor(key), nil
}

func (s *Segmented) uploadParts(ctx context.Context, key, uploadID string, f models.FileRef, r io.Reader, onProgress ProgressFunc) ([]string, error) {
	var etags []string
	var sent int64

	for part := int32(1); sent < f.Size; part++ {
		n := s.partSize
		if remaining := f.Size - sent; remaining < n {
			n = remaining
		}

		body := newProgressReader(io.LimitReader(r, n), sent, f.Size, onProgress)
		etag, err := s.store.UploadPart(ctx, key, uploadID, part, body, n)
		if err != nil {
			return nil, fmt.Errorf("upload part %d of %s: %w", part, f.Name, err)
		}

		etags = append(etags, etag)
		sent += n
	}

	return etags, nil
}
