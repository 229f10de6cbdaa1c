package transfer

import (
	"context"
	"fmt"

	"github.com/socialhub/mediaup/internal/media/models"
)

// Direct uploads the whole file in a single request. Progress is driven
// by the bytes the request body reader hands to the store.
type Direct struct {
	store ObjectStore
}

func (d *Direct) Upload(ctx context.Context, f models.FileRef, onProgress ProgressFunc) (string, error) {
	rc, err := f.Blob.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	key := StorageKey()
	body := newProgressReader(rc, 0, f.Size, onProgress)

	if err := d.store.Put(ctx, key, f.MIME, body, f.Size); err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}

	if onProgress != nil {
		onProgress(100)
	}
	return d.store.URLFor(key), nil
}
