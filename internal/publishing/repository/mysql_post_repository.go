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

// MySQLPostRepository implements Post persistence for MySQL databases.
// Uses BINARY(16) for UUID storage.
type MySQLPostRepository struct {
	db *sql.DB
}

// Create inserts a new post.
func (m *MySQLPostRepository) Create(ctx context.Context, post *publishingDomain.Post) error {
	querier := database.GetTx(ctx, m.db)

	id, err := post.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal post id")
	}
	workspaceID, err := post.WorkspaceID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal workspace id")
	}
	content, err := marshalContent(post.Content)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (` + postColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		workspaceID,
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
func (m *MySQLPostRepository) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	return m.getOne(ctx, query, postID)
}

// GetForUpdate retrieves a post by ID and row-locks it until the surrounding transaction
// ends. It must be called inside TxManager.WithTx.
func (m *MySQLPostRepository) GetForUpdate(
	ctx context.Context,
	postID uuid.UUID,
) (*publishingDomain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ? FOR UPDATE`
	return m.getOne(ctx, query, postID)
}

// Update persists every mutable column of the post.
func (m *MySQLPostRepository) Update(ctx context.Context, post *publishingDomain.Post) error {
	querier := database.GetTx(ctx, m.db)

	id, err := post.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal post id")
	}
	content, err := marshalContent(post.Content)
	if err != nil {
		return err
	}

	query := `UPDATE posts
			  SET status = ?, content = ?, scheduled_at = ?, timezone = ?, submitted_at = ?,
			      approved_at = ?, rejected_at = ?, rejection_reason = ?, published_at = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post")
	}
	return nil
}

// Delete removes a post. Targets are removed by the ON DELETE CASCADE constraint.
func (m *MySQLPostRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal post id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
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
func (m *MySQLPostRepository) ListDueScheduled(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*publishingDomain.Post, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + postColumns + `
			  FROM posts
			  WHERE status = ? AND scheduled_at <= ?
			  ORDER BY scheduled_at ASC, id ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, publishingDomain.PostStatusScheduled, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due scheduled posts")
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]*publishingDomain.Post, 0)
	for rows.Next() {
		post, err := scanMySQLPost(rows)
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

func (m *MySQLPostRepository) getOne(
	ctx context.Context,
	query string,
	postID uuid.UUID,
) (*publishingDomain.Post, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal post id")
	}

	post, err := scanMySQLPost(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, publishingDomain.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func scanMySQLPost(row rowScanner) (*publishingDomain.Post, error) {
	var post publishingDomain.Post
	var id, workspaceID, content []byte

	err := row.Scan(
		&id,
		&workspaceID,
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

	if err := post.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal post id")
	}
	if err := post.WorkspaceID.UnmarshalBinary(workspaceID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal workspace id")
	}
	if err := unmarshalContent(content, &post.Content); err != nil {
		return nil, err
	}
	return &post, nil
}

// NewMySQLPostRepository creates a new MySQL Post repository instance.
func NewMySQLPostRepository(db *sql.DB) *MySQLPostRepository {
	return &MySQLPostRepository{db: db}
}
