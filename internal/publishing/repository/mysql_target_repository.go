package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/database"
	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// mysqlDuplicateEntry is the MySQL error number for duplicate key violations.
const mysqlDuplicateEntry = 1062

// MySQLTargetRepository implements PostTarget persistence for MySQL databases.
// Uses BINARY(16) for UUID storage.
type MySQLTargetRepository struct {
	db *sql.DB
}

// Create inserts a new target. A second target for the same (post, account) pair
// returns ErrDuplicateTarget.
func (m *MySQLTargetRepository) Create(ctx context.Context, target *publishingDomain.PostTarget) error {
	querier := database.GetTx(ctx, m.db)

	id, err := target.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal target id")
	}
	postID, err := target.PostID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal post id")
	}
	accountID, err := target.AccountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	query := `INSERT INTO post_targets (` + targetColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		postID,
		accountID,
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return publishingDomain.ErrDuplicateTarget
		}
		return apperrors.Wrap(err, "failed to create post target")
	}
	return nil
}

// Get retrieves a target by ID.
func (m *MySQLTargetRepository) Get(
	ctx context.Context,
	targetID uuid.UUID,
) (*publishingDomain.PostTarget, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := targetID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal target id")
	}

	query := `SELECT ` + targetColumns + ` FROM post_targets WHERE id = ?`

	target, err := scanMySQLTarget(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, publishingDomain.ErrTargetNotFound
		}
		return nil, err
	}
	return target, nil
}

// ListByPost returns every target of the post in creation order.
func (m *MySQLTargetRepository) ListByPost(
	ctx context.Context,
	postID uuid.UUID,
) ([]*publishingDomain.PostTarget, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal post id")
	}

	query := `SELECT ` + targetColumns + `
			  FROM post_targets
			  WHERE post_id = ?
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list post targets")
	}
	defer func() {
		_ = rows.Close()
	}()

	targets := make([]*publishingDomain.PostTarget, 0)
	for rows.Next() {
		target, err := scanMySQLTarget(rows)
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
func (m *MySQLTargetRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal post id")
	}

	var count int
	err = querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_targets WHERE post_id = ?`, id).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count post targets")
	}
	return count, nil
}

// Update persists the delivery state of the target.
func (m *MySQLTargetRepository) Update(ctx context.Context, target *publishingDomain.PostTarget) error {
	querier := database.GetTx(ctx, m.db)

	id, err := target.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal target id")
	}

	query := `UPDATE post_targets
			  SET status = ?, external_post_id = ?, external_post_url = ?, error_code = ?,
			      error_message = ?, retry_count = ?, published_at = ?, updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post target")
	}
	return nil
}

// Delete removes a target.
func (m *MySQLTargetRepository) Delete(ctx context.Context, targetID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := targetID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal target id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM post_targets WHERE id = ?`, id)
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
func (m *MySQLTargetRepository) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal post id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM post_targets WHERE post_id = ?`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete post targets")
	}
	return nil
}

func scanMySQLTarget(row rowScanner) (*publishingDomain.PostTarget, error) {
	var target publishingDomain.PostTarget
	var id, postID, accountID []byte

	err := row.Scan(
		&id,
		&postID,
		&accountID,
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

	if err := target.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal target id")
	}
	if err := target.PostID.UnmarshalBinary(postID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal post id")
	}
	if err := target.AccountID.UnmarshalBinary(accountID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal account id")
	}
	return &target, nil
}

// NewMySQLTargetRepository creates a new MySQL PostTarget repository instance.
func NewMySQLTargetRepository(db *sql.DB) *MySQLTargetRepository {
	return &MySQLTargetRepository{db: db}
}
