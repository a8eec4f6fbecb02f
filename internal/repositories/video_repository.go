package repositories

import (
	"context"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/models"
)

// VideoRepository exposes data access for shared video records.
type VideoRepository interface {
	Insert(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Video, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	UpdateTitle(ctx context.Context, id, ownerID, title string) (models.Video, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (string, error)
}
