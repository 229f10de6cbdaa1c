// Package persist keeps the metadata-only projection of successful
// uploads across process restarts. Content bytes are never persisted.
package persist

import (
	"context"

	"github.com/socialhub/mediaup/internal/media/models"
)

// Store holds the persisted placeholder set. Replace swaps the whole
// set atomically; Load returns it in position order.
type Store interface {
	Replace(ctx context.Context, placeholders []models.StorablePlaceholder) error
	Load(ctx context.Context) ([]models.StorablePlaceholder, error)
	Clear(ctx context.Context) error
}
