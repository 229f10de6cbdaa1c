// Package cleanup releases what a removed upload owns: its local
// preview artifact and, best-effort, its remote object. Remote failures
// are logged and never block local removal.
package cleanup

import (
	"context"
	"sync"

	"github.com/socialhub/mediaup/internal/filex"
	"github.com/socialhub/mediaup/internal/logging"
	"github.com/socialhub/mediaup/internal/media/models"
)

// RemoteDeleter deletes a remote object by its URL.
type RemoteDeleter interface {
	Delete(ctx context.Context, url string) error
}

type Coordinator struct {
	remote RemoteDeleter
	log    logging.Logger
}

func NewCoordinator(remote RemoteDeleter, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Coordinator{remote: remote, log: log}
}

// Release frees everything the entry owns. Local preview artifacts are
// removed directly with no network call; an uploaded object gets a
// best-effort remote delete. The caller drops the entry from its
// collection regardless of the outcome reported here.
func (c *Coordinator) Release(ctx context.Context, e *models.Entry) {
	if e.LocalPreview != "" {
		if _, err := filex.RemoveQuiet(e.LocalPreview); err != nil {
			c.log.Warn(ctx, "failed to remove local preview", "id", e.ID, "path", e.LocalPreview, "error", err)
		}
	}

	if !e.Uploaded() || c.remote == nil {
		return
	}
	if err := c.remote.Delete(ctx, e.RemoteURL); err != nil {
		c.log.Warn(ctx, "remote delete failed", "id", e.ID, "url", e.RemoteURL, "error", err)
	}
}

// ReleaseAll releases every entry, running the applicable remote
// deletes concurrently and waiting for all attempts to settle.
func (c *Coordinator) ReleaseAll(ctx context.Context, entries []*models.Entry) {
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *models.Entry) {
			defer wg.Done()
			c.Release(ctx, e)
		}(e)
	}
	wg.Wait()
}
