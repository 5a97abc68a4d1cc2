package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
)

var accountColumns = []string{
	"id", "workspace_id", "platform", "external_account_id", "name", "status",
	"integration_enabled", "encrypted_credentials", "token_expires_at", "created_at", "updated_at",
}

func TestPostgreSQLAccountRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLAccountRepository(db)

		accountID := uuid.Must(uuid.NewV7())
		workspaceID := uuid.Must(uuid.NewV7())
		expiresAt := time.Now().UTC().Add(time.Hour)
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM linked_accounts")).
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(
				accountID.String(), workspaceID.String(), "mastodon", "109", "Acme",
				"connected", true, []byte("ciphertext"), expiresAt, now, now,
			))

		account, err := repo.Get(ctx, accountID)

		require.NoError(t, err)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, workspaceID, account.WorkspaceID)
		assert.Equal(t, "mastodon", account.Platform)
		assert.Equal(t, accountDomain.AccountStatusConnected, account.Status)
		assert.True(t, account.IntegrationEnabled)
		assert.Equal(t, []byte("ciphertext"), account.EncryptedCredentials)
		require.NotNil(t, account.TokenExpiresAt)
		assert.Equal(t, expiresAt, *account.TokenExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLAccountRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM linked_accounts")).
			WillReturnError(sql.ErrNoRows)

		account, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))

		assert.Nil(t, account)
		assert.ErrorIs(t, err, accountDomain.ErrAccountNotFound)
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLAccountRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM linked_accounts")).
			WillReturnError(assert.AnError)

		_, err = repo.Get(ctx, uuid.Must(uuid.NewV7()))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to get linked account")
	})
}

func TestPostgreSQLAccountRepository_MarkTokenExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLAccountRepository(db)
		accountID := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE linked_accounts")).
			WithArgs("token_expired", accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkTokenExpired(ctx, accountID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck

		repo := NewPostgreSQLAccountRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE linked_accounts")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.MarkTokenExpired(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, accountDomain.ErrAccountNotFound)
	})
}

func TestMySQLAccountRepository_Get(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewMySQLAccountRepository(db)

	accountID := uuid.Must(uuid.NewV7())
	workspaceID := uuid.Must(uuid.NewV7())
	idBytes, _ := accountID.MarshalBinary()
	workspaceBytes, _ := workspaceID.MarshalBinary()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM linked_accounts")).
		WithArgs(idBytes).
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(
			idBytes, workspaceBytes, "twitter", "42", "Acme", "revoked",
			false, []byte("ct"), nil, now, now,
		))

	account, err := repo.Get(ctx, accountID)

	require.NoError(t, err)
	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, workspaceID, account.WorkspaceID)
	assert.Equal(t, accountDomain.AccountStatusRevoked, account.Status)
	assert.False(t, account.IntegrationEnabled)
	assert.Nil(t, account.TokenExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
