// Package repository implements read access to linked accounts for the publishing pipeline.
// Repositories support both PostgreSQL and MySQL.
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

// PostgreSQLAccountRepository implements LinkedAccount persistence for PostgreSQL.
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// Get retrieves a linked account by ID.
func (p *PostgreSQLAccountRepository) Get(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.LinkedAccount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, workspace_id, platform, external_account_id, name, status,
			  integration_enabled, encrypted_credentials, token_expires_at, created_at, updated_at
			  FROM linked_accounts
			  WHERE id = $1`

	var account accountDomain.LinkedAccount
	err := querier.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID,
		&account.WorkspaceID,
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

	return &account, nil
}

// MarkTokenExpired flags the account's token as expired so the account subsystem can
// prompt for reconnection.
func (p *PostgreSQLAccountRepository) MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE linked_accounts
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, accountDomain.AccountStatusTokenExpired, accountID)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark linked account token as expired")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return accountDomain.ErrAccountNotFound
	}

	return nil
}

// NewPostgreSQLAccountRepository creates a new PostgreSQL linked account repository.
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{db: db}
}
