package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/postflow/internal/database"
	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// pqUniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const pqUniqueViolation = "23505"

// PostgreSQLTargetRepository implements PostTarget persistence for PostgreSQL databases.
type PostgreSQLTargetRepository struct {
	db *sql.DB
}

// Create inserts a new target. A second target for the same (post, account) pair
// returns ErrDuplicateTarget.
func (p *PostgreSQLTargetRepository) Create(ctx context.Context, target *publishingDomain.PostTarget) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO post_targets (` + targetColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		target.ID,
		target.PostID,
		target.AccountID,
		target.Platform,
		target.Status,
		target.ExternalPostID,
		target.ExternalPostURL,
		target.ErrorCode,
		target.ErrorMessage,
		target.RetryCount,
		target.PublishedAt,
		target.CreatedAt,
		target.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return publishingDomain.ErrDuplicateTarget
		}
		return apperrors.Wrap(err, "failed to create post target")
	}
	return nil
}

// Get retrieves a target by ID.
func (p *PostgreSQLTargetRepository) Get(
	ctx context.Context,
	targetID uuid.UUID,
) (*publishingDomain.PostTarget, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + targetColumns + ` FROM post_targets WHERE id = $1`

	target, err := scanPostgreSQLTarget(querier.QueryRowContext(ctx, query, targetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, publishingDomain.ErrTargetNotFound
		}
		return nil, err
	}
	return target, nil
}

// ListByPost returns every target of the post in creation order.
func (p *PostgreSQLTargetRepository) ListByPost(
	ctx context.Context,
	postID uuid.UUID,
) ([]*publishingDomain.PostTarget, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + targetColumns + `
			  FROM post_targets
			  WHERE post_id = $1
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list post targets")
	}
	defer func() {
		_ = rows.Close()
	}()

	targets := make([]*publishingDomain.PostTarget, 0)
	for rows.Next() {
		target, err := scanPostgreSQLTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate post targets")
	}

	return targets, nil
}

// CountByPost returns the number of targets of the post.
func (p *PostgreSQLTargetRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_targets WHERE post_id = $1`, postID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count post targets")
	}
	return count, nil
}

// Update persists the delivery state of the target.
func (p *PostgreSQLTargetRepository) Update(ctx context.Context, target *publishingDomain.PostTarget) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE post_targets
			  SET status = $1, external_post_id = $2, external_post_url = $3, error_code = $4,
			      error_message = $5, retry_count = $6, published_at = $7, updated_at = $8
			  WHERE id = $9`

	result, err := querier.ExecContext(
		ctx,
		query,
		target.Status,
		target.ExternalPostID,
		target.ExternalPostURL,
		target.ErrorCode,
		target.ErrorMessage,
		target.RetryCount,
		target.PublishedAt,
		target.UpdatedAt,
		target.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post target")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return publishingDomain.ErrTargetNotFound
	}
	return nil
}

// Delete removes a target.
func (p *PostgreSQLTargetRepository) Delete(ctx context.Context, targetID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM post_targets WHERE id = $1`, targetID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete post target")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return publishingDomain.ErrTargetNotFound
	}
	return nil
}

// DeleteByPost removes every target of the post.
func (p *PostgreSQLTargetRepository) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM post_targets WHERE post_id = $1`, postID); err != nil {
		return apperrors.Wrap(err, "failed to delete post targets")
	}
	return nil
}

func scanPostgreSQLTarget(row rowScanner) (*publishingDomain.PostTarget, error) {
	var target publishingDomain.PostTarget

	err := row.Scan(
		&target.ID,
		&target.PostID,
		&target.AccountID,
		&target.Platform,
		&target.Status,
		&target.ExternalPostID,
		&target.ExternalPostURL,
		&target.ErrorCode,
		&target.ErrorMessage,
		&target.RetryCount,
		&target.PublishedAt,
		&target.CreatedAt,
		&target.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan post target")
	}
	return &target, nil
}

// NewPostgreSQLTargetRepository creates a new PostgreSQL PostTarget repository instance.
func NewPostgreSQLTargetRepository(db *sql.DB) *PostgreSQLTargetRepository {
	return &PostgreSQLTargetRepository{db: db}
}
