// Package service implements the account-side collaborators of the publishing pipeline:
// the Account Health Gate and credential decryption.
package service

import (
	"context"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
)

// AccountRepository defines the linked account operations needed by the pipeline.
type AccountRepository interface {
	Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.LinkedAccount, error)
	MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error
}

// Keeper decrypts credential blobs. *secrets.Keeper from gocloud.dev implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
