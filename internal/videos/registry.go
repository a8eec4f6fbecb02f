package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/logging"
	"github.com/ravalmohit390-eng/vidlink/internal/models"
	"github.com/ravalmohit390-eng/vidlink/internal/repositories"
)

// Store captures the persistence operations the registry needs. Implemented
// by repositories.PostgresVideoRepository.
type Store interface {
	Insert(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Video, error)
	// IncrementViews must be atomic at the storage layer so concurrent
	// disclosures never lose updates. It returns the new counter value.
	IncrementViews(ctx context.Context, id string) (int64, error)
	UpdateTitle(ctx context.Context, id, ownerID, title string) (models.Video, error)
	// DeleteOwned removes the record matching both id and owner and returns
	// the stored file name so the backing blob can be removed.
	DeleteOwned(ctx context.Context, id, ownerID string) (string, error)
}

// BlobDeleter removes stored binaries when their records are deleted.
// Deleting a blob that no longer exists must not be an error.
type BlobDeleter interface {
	Delete(ctx context.Context, name string) error
}

// createAttempts bounds id-generation retries when an insert collides with an
// existing identifier. With a 64^8 id space a single retry is already
// overwhelmingly unlikely.
const createAttempts = 3

// Registry owns the collection of video-link records: it applies mutations
// and consults the access gate for every read.
type Registry struct {
	store Store
	blobs BlobDeleter

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewRegistry constructs a Registry over the provided store and blob store.
func NewRegistry(store Store, blobs BlobDeleter) *Registry {
	if store == nil {
		panic("videos: registry store must not be nil")
	}
	return &Registry{store: store, blobs: blobs}
}

// CreateParams carries the upload handler's inputs for a new record. The
// binary is already stored under FileName by the time Create runs.
type CreateParams struct {
	OwnerID      string
	FileName     string
	OriginalName string
	Title        string
	SizeBytes    int64
	Password     string
	ExpiryHours  int
}

// Create registers a freshly uploaded video and returns the stored record.
func (r *Registry) Create(ctx context.Context, p CreateParams) (models.Video, error) {
	if p.OwnerID == "" || p.FileName == "" || p.OriginalName == "" {
		return models.Video{}, fmt.Errorf("%w: owner, file name, and original name are required", ErrValidation)
	}
	if p.SizeBytes < 0 {
		return models.Video{}, fmt.Errorf("%w: negative size", ErrValidation)
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = p.OriginalName
	}

	now := r.now()
	video := models.Video{
		OwnerID:      p.OwnerID,
		FileName:     p.FileName,
		OriginalName: p.OriginalName,
		Title:        title,
		UploadedAt:   now,
		SizeBytes:    p.SizeBytes,
	}
	if p.Password != "" {
		password := p.Password
		video.Password = &password
	}
	if p.ExpiryHours > 0 {
		expiresAt := now.Add(time.Duration(p.ExpiryHours) * time.Hour)
		video.ExpiresAt = &expiresAt
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		id, err := NewID()
		if err != nil {
			return models.Video{}, err
		}
		video.ID = id

		err = r.store.Insert(ctx, video)
		if err == nil {
			return sanitize(video, true), nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return models.Video{}, fmt.Errorf("insert video: %w", err)
		}
		logging.FromContext(ctx).Warn("video id collision, regenerating", "id", id)
	}

	return models.Video{}, fmt.Errorf("insert video: exhausted %d id attempts", createAttempts)
}

// ListByOwner returns the owner's unexpired uploads, most recent first.
func (r *Registry) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	list, err := r.store.ListByOwner(ctx, ownerID, r.now())
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	out := make([]models.Video, 0, len(list))
	for _, v := range list {
		out = append(out, sanitize(v, true))
	}
	return out, nil
}

// GetForView resolves a share link for an anonymous caller. For protected
// videos it returns visible=false with the file reference withheld and does
// not count a view; for unprotected videos it counts the view and discloses
// the file reference.
func (r *Registry) GetForView(ctx context.Context, id string) (models.Video, bool, error) {
	video, err := r.fetch(ctx, id)
	if err != nil {
		return models.Video{}, false, err
	}

	switch Decide(&video, r.now(), nil) {
	case DecisionExpired:
		return models.Video{}, false, ErrExpired
	case DecisionPasswordRequired:
		return sanitize(video, false), false, nil
	}

	views, err := r.store.IncrementViews(ctx, id)
	if err != nil {
		return models.Video{}, false, fmt.Errorf("count view: %w", err)
	}
	video.Views = views

	return sanitize(video, true), true, nil
}

// Verify checks a submitted password against a protected video. Existence
// and expiry take precedence over the password check; a wrong password, or
// any submission against an unprotected video, is Unauthorized. A successful
// match counts a view and discloses the file reference.
func (r *Registry) Verify(ctx context.Context, id, submitted string) (models.Video, error) {
	video, err := r.fetch(ctx, id)
	if err != nil {
		return models.Video{}, err
	}

	switch Decide(&video, r.now(), &submitted) {
	case DecisionExpired:
		return models.Video{}, ErrExpired
	case DecisionPasswordRequired:
		return models.Video{}, ErrUnauthorized
	}

	views, err := r.store.IncrementViews(ctx, id)
	if err != nil {
		return models.Video{}, fmt.Errorf("count view: %w", err)
	}
	video.Views = views

	return sanitize(video, true), nil
}

// DeleteOwned removes a record owned by ownerID along with its stored
// binary. Deletion is immediate and irreversible.
func (r *Registry) DeleteOwned(ctx context.Context, id, ownerID string) error {
	fileName, err := r.store.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete video: %w", err)
	}

	if r.blobs == nil || fileName == "" {
		return nil
	}
	if err := r.blobs.Delete(ctx, fileName); err != nil {
		return fmt.Errorf("delete video file %s: %w", fileName, err)
	}
	return nil
}

// UpdateTitle renames a video after an ownership check.
func (r *Registry) UpdateTitle(ctx context.Context, id, ownerID, title string) (models.Video, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Video{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	video, err := r.store.UpdateTitle(ctx, id, ownerID, title)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update title: %w", err)
	}

	return sanitize(video, true), nil
}

func (r *Registry) fetch(ctx context.Context, id string) (models.Video, error) {
	video, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("find video: %w", err)
	}
	return video, nil
}

func (r *Registry) now() time.Time {
	if r.NowFunc != nil {
		return r.NowFunc()
	}
	return time.Now().UTC()
}

// sanitize returns a copy safe to hand to the response layer: the gate
// password never leaves the registry, and the file reference is withheld
// unless visibility was granted.
func sanitize(video models.Video, visible bool) models.Video {
	video.Password = nil
	if !visible {
		video.FileName = ""
	}
	return video
}
