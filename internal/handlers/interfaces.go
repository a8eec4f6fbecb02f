package handlers

import (
	"context"
	"io"

	"github.com/ravalmohit390-eng/vidlink/internal/models"
	"github.com/ravalmohit390-eng/vidlink/internal/videos"
)

// AccountStore captures the persistence operations required by the auth handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByUsername(ctx context.Context, username string) (models.Account, error)
}

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID, username string) (models.AuthToken, error)
}

// VideoRegistry captures the record lifecycle operations behind the video endpoints.
type VideoRegistry interface {
	Create(ctx context.Context, params videos.CreateParams) (models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	GetForView(ctx context.Context, id string) (models.Video, bool, error)
	Verify(ctx context.Context, id, password string) (models.Video, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	UpdateTitle(ctx context.Context, id, ownerID, title string) (models.Video, error)
}

// BlobStore persists and serves uploaded binaries for the upload handler.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}
