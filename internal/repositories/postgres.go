package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ravalmohit390-eng/vidlink/internal/db"
	"github.com/ravalmohit390-eng/vidlink/internal/models"
)

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, password_hash, created_at)
        VALUES ($1, $2, $3, $4)
    `, account.ID, account.Username, account.Password, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// FindByUsername fetches an account by its unique username.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, password_hash, created_at
        FROM accounts
        WHERE username = $1
    `, username)

	var account models.Account
	if err := row.Scan(&account.ID, &account.Username, &account.Password, &account.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account by username: %w", err)
	}

	return account, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for video records.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, file_name, original_name, title, uploaded_at, views, size_bytes, password, expires_at`

// Insert stores a new video record.
func (r *PostgresVideoRepository) Insert(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, file_name, original_name, title, uploaded_at, views, size_bytes, password, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.FileName, video.OriginalName, video.Title,
		video.UploadedAt, video.Views, video.SizeBytes, nullString(video.Password), nullTime(video.ExpiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a single video record by its share id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// ListByOwner returns the owner's records that have not expired at the given
// instant, most recent upload first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
          AND (expires_at IS NULL OR expires_at > $2)
        ORDER BY uploaded_at DESC
    `, ownerID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// IncrementViews bumps the view counter in a single statement so concurrent
// disclosures cannot lose updates. It returns the new counter value.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
        RETURNING views
    `, id)

	var views int64
	if err := row.Scan(&views); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

// UpdateTitle replaces the title for a record matching both id and owner.
func (r *PostgresVideoRepository) UpdateTitle(ctx context.Context, id, ownerID, title string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos
        SET title = $3
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns+`
    `, id, ownerID, title)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("update video title: %w", err)
	}

	return video, nil
}

// DeleteOwned removes a record matching both id and owner, returning the
// stored file name for blob cleanup.
func (r *PostgresVideoRepository) DeleteOwned(ctx context.Context, id, ownerID string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        DELETE FROM videos
        WHERE id = $1 AND owner_id = $2
        RETURNING file_name
    `, id, ownerID)

	var fileName string
	if err := row.Scan(&fileName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("delete video: %w", err)
	}

	return fileName, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video     models.Video
		password  sql.NullString
		expiresAt sql.NullTime
	)

	if err := row.Scan(&video.ID, &video.OwnerID, &video.FileName, &video.OriginalName, &video.Title,
		&video.UploadedAt, &video.Views, &video.SizeBytes, &password, &expiresAt); err != nil {
		return models.Video{}, err
	}

	if password.Valid {
		p := password.String
		video.Password = &p
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		video.ExpiresAt = &t
	}

	return video, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{Valid: true, String: *s}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Valid: true, Time: t.UTC()}
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
