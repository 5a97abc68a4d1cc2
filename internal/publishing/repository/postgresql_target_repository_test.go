package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

var targetRowColumns = []string{
	"id", "post_id", "account_id", "platform", "status", "external_post_id", "external_post_url",
	"error_code", "error_message", "retry_count", "published_at", "created_at", "updated_at",
}

func TestPostgreSQLTargetRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "mastodon", now)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_targets")).
			WithArgs(
				target.ID, target.PostID, target.AccountID, "mastodon", publishingDomain.TargetStatusPending,
				nil, nil, nil, nil, 0, nil, now, now,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.Create(ctx, target))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "mastodon", now)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_targets")).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

		assert.ErrorIs(t, repo.Create(ctx, target), publishingDomain.ErrDuplicateTarget)
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "mastodon", now)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_targets")).WillReturnError(sql.ErrConnDone)

		err = repo.Create(ctx, target)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NotErrorIs(t, err, publishingDomain.ErrDuplicateTarget)
	})
}

func TestPostgreSQLTargetRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Failed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		targetID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM post_targets WHERE id = $1")).
			WithArgs(targetID).
			WillReturnRows(sqlmock.NewRows(targetRowColumns).AddRow(
				targetID.String(), uuid.NewString(), uuid.NewString(), "twitter", "failed",
				nil, nil, "RATE_LIMIT", "slow down", 2, nil, now, now,
			))

		target, err := repo.Get(ctx, targetID)

		require.NoError(t, err)
		assert.Equal(t, targetID, target.ID)
		assert.Equal(t, publishingDomain.TargetStatusFailed, target.Status)
		require.NotNil(t, target.ErrorCode)
		assert.Equal(t, "RATE_LIMIT", *target.ErrorCode)
		require.NotNil(t, target.ErrorMessage)
		assert.Equal(t, "slow down", *target.ErrorMessage)
		assert.Nil(t, target.ExternalPostID)
		assert.Equal(t, 2, target.RetryCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM post_targets")).WillReturnError(sql.ErrNoRows)

		target, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))

		assert.Nil(t, target)
		assert.ErrorIs(t, err, publishingDomain.ErrTargetNotFound)
	})
}

func TestPostgreSQLTargetRepository_ListByPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLTargetRepository(db)
	postID := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE post_id = $1")).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows(targetRowColumns).
			AddRow(uuid.NewString(), postID.String(), uuid.NewString(), "twitter", "published",
				"123", "https://x.com/i/web/status/123", nil, nil, 0, now, now, now).
			AddRow(uuid.NewString(), postID.String(), uuid.NewString(), "mastodon", "publishing",
				nil, nil, nil, nil, 0, nil, now, now))

	targets, err := repo.ListByPost(context.Background(), postID)

	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, publishingDomain.TargetStatusPublished, targets[0].Status)
	require.NotNil(t, targets[0].ExternalPostID)
	assert.Equal(t, "123", *targets[0].ExternalPostID)
	assert.Equal(t, publishingDomain.TargetStatusPublishing, targets[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTargetRepository_CountByPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLTargetRepository(db)
	postID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM post_targets WHERE post_id = $1")).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByPost(context.Background(), postID)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTargetRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "mastodon", now)
		target.Status = publishingDomain.TargetStatusPublishing
		_, err = target.ApplyOutcome(publishingDomain.Failed("RATE_LIMIT", "slow down"), now)
		require.NoError(t, err)

		code, message := "RATE_LIMIT", "slow down"
		mock.ExpectExec(regexp.QuoteMeta("UPDATE post_targets")).
			WithArgs(publishingDomain.TargetStatusFailed, nil, nil, &code, &message, 0, nil, now, target.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, target))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "mastodon", now)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE post_targets")).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, target), publishingDomain.ErrTargetNotFound)
	})
}

func TestPostgreSQLTargetRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		targetID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_targets WHERE id = $1")).
			WithArgs(targetID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, targetID))
	})

	t.Run("Success_ByPost", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)
		postID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_targets WHERE post_id = $1")).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		assert.NoError(t, repo.DeleteByPost(ctx, postID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLTargetRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_targets")).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, uuid.Must(uuid.NewV7())), publishingDomain.ErrTargetNotFound)
	})
}

func TestMySQLTargetRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewMySQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "twitter", now)
		id, _ := target.ID.MarshalBinary()
		postID, _ := target.PostID.MarshalBinary()
		accountID, _ := target.AccountID.MarshalBinary()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_targets")).
			WithArgs(id, postID, accountID, "twitter", publishingDomain.TargetStatusPending,
				nil, nil, nil, nil, 0, nil, now, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.Create(ctx, target))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewMySQLTargetRepository(db)
		target := publishingDomain.NewPostTarget(uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), "twitter", now)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_targets")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		assert.ErrorIs(t, repo.Create(ctx, target), publishingDomain.ErrDuplicateTarget)
	})
}

func TestMySQLTargetRepository_ListByPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewMySQLTargetRepository(db)
	postID := uuid.Must(uuid.NewV7())
	targetID := uuid.Must(uuid.NewV7())
	accountID := uuid.Must(uuid.NewV7())
	postIDBytes, _ := postID.MarshalBinary()
	targetIDBytes, _ := targetID.MarshalBinary()
	accountIDBytes, _ := accountID.MarshalBinary()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE post_id = ?")).
		WithArgs(postIDBytes).
		WillReturnRows(sqlmock.NewRows(targetRowColumns).AddRow(
			targetIDBytes, postIDBytes, accountIDBytes, "twitter", "pending",
			nil, nil, nil, nil, 1, nil, now, now,
		))

	targets, err := repo.ListByPost(context.Background(), postID)

	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, targetID, targets[0].ID)
	assert.Equal(t, postID, targets[0].PostID)
	assert.Equal(t, accountID, targets[0].AccountID)
	assert.Equal(t, 1, targets[0].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
