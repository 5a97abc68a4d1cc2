package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/database"
	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// PostgreSQLPostRepository implements Post persistence for PostgreSQL databases.
type PostgreSQLPostRepository struct {
	db *sql.DB
}

// Create inserts a new post.
func (p *PostgreSQLPostRepository) Create(ctx context.Context, post *publishingDomain.Post) error {
	querier := database.GetTx(ctx, p.db)

	content, err := marshalContent(post.Content)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (` + postColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(
		ctx,
		query,
		post.ID,
		post.WorkspaceID,
		post.Status,
		content,
		post.ScheduledAt,
		post.Timezone,
		post.SubmittedAt,
		post.ApprovedAt,
		post.RejectedAt,
		post.RejectionReason,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create post")
	}
	return nil
}

// Get retrieves a post by ID.
func (p *PostgreSQLPostRepository) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return p.getOne(ctx, query, postID)
}

// GetForUpdate retrieves a post by ID and row-locks it until the surrounding transaction
// ends. It must be called inside TxManager.WithTx.
func (p *PostgreSQLPostRepository) GetForUpdate(
	ctx context.Context,
	postID uuid.UUID,
) (*publishingDomain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 FOR UPDATE`
	return p.getOne(ctx, query, postID)
}

// Update persists every mutable column of the post.
func (p *PostgreSQLPostRepository) Update(ctx context.Context, post *publishingDomain.Post) error {
	querier := database.GetTx(ctx, p.db)

	content, err := marshalContent(post.Content)
	if err != nil {
		return err
	}

	query := `UPDATE posts
			  SET status = $1, content = $2, scheduled_at = $3, timezone = $4, submitted_at = $5,
			      approved_at = $6, rejected_at = $7, rejection_reason = $8, published_at = $9, updated_at = $10
			  WHERE id = $11`

	result, err := querier.ExecContext(
		ctx,
		query,
		post.Status,
		content,
		post.ScheduledAt,
		post.Timezone,
		post.SubmittedAt,
		post.ApprovedAt,
		post.RejectedAt,
		post.RejectionReason,
		post.PublishedAt,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return publishingDomain.ErrPostNotFound
	}
	return nil
}

// Delete removes a post. Targets are removed by the ON DELETE CASCADE constraint.
func (p *PostgreSQLPostRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete post")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return publishingDomain.ErrPostNotFound
	}
	return nil
}

// ListDueScheduled returns up to limit SCHEDULED posts whose scheduled time is at or
// before now, oldest first.
func (p *PostgreSQLPostRepository) ListDueScheduled(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*publishingDomain.Post, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postColumns + `
			  FROM posts
			  WHERE status = $1 AND scheduled_at <= $2
			  ORDER BY scheduled_at ASC, id ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, publishingDomain.PostStatusScheduled, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due scheduled posts")
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]*publishingDomain.Post, 0)
	for rows.Next() {
		post, err := scanPostgreSQLPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate posts")
	}

	return posts, nil
}

func (p *PostgreSQLPostRepository) getOne(
	ctx context.Context,
	query string,
	postID uuid.UUID,
) (*publishingDomain.Post, error) {
	querier := database.GetTx(ctx, p.db)

	post, err := scanPostgreSQLPost(querier.QueryRowContext(ctx, query, postID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, publishingDomain.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func scanPostgreSQLPost(row rowScanner) (*publishingDomain.Post, error) {
	var post publishingDomain.Post
	var content []byte

	err := row.Scan(
		&post.ID,
		&post.WorkspaceID,
		&post.Status,
		&content,
		&post.ScheduledAt,
		&post.Timezone,
		&post.SubmittedAt,
		&post.ApprovedAt,
		&post.RejectedAt,
		&post.RejectionReason,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan post")
	}

	if err := unmarshalContent(content, &post.Content); err != nil {
		return nil, err
	}
	return &post, nil
}

// NewPostgreSQLPostRepository creates a new PostgreSQL Post repository instance.
func NewPostgreSQLPostRepository(db *sql.DB) *PostgreSQLPostRepository {
	return &PostgreSQLPostRepository{db: db}
}
