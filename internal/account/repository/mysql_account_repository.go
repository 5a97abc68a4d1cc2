package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	"github.com/allisson/postflow/internal/database"
	apperrors "github.com/allisson/postflow/internal/errors"
)

// MySQLAccountRepository implements LinkedAccount persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLAccountRepository struct {
	db *sql.DB
}

// Get retrieves a linked account by ID.
func (m *MySQLAccountRepository) Get(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.LinkedAccount, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, workspace_id, platform, external_account_id, name, status,
			  integration_enabled, encrypted_credentials, token_expires_at, created_at, updated_at
			  FROM linked_accounts
			  WHERE id = ?`

	id, err := accountID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal account id")
	}

	var account accountDomain.LinkedAccount
	var idBytes, workspaceIDBytes []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
		&workspaceIDBytes,
		&account.Platform,
		&account.ExternalAccountID,
		&account.Name,
		&account.Status,
		&account.IntegrationEnabled,
		&account.EncryptedCredentials,
		&account.TokenExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountDomain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get linked account")
	}

	if err := account.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal account id")
	}
	if err := account.WorkspaceID.UnmarshalBinary(workspaceIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal workspace id")
	}

	return &account, nil
}

// MarkTokenExpired flags the account's token as expired.
func (m *MySQLAccountRepository) MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE linked_accounts
			  SET status = ?, updated_at = NOW()
			  WHERE id = ?`

	id, err := accountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account id")
	}

	// MySQL reports changed rows rather than matched rows, so an account that is already
	// flagged would look missing; the affected row count is not checked here.
	_, err = querier.ExecContext(ctx, query, accountDomain.AccountStatusTokenExpired, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark linked account token as expired")
	}

	return nil
}

// NewMySQLAccountRepository creates a new MySQL linked account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}
