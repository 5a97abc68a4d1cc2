package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gocloud.dev/secrets"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	apperrors "github.com/allisson/postflow/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials keeper: %w", err)
	}
	return keeper, nil
}

// CredentialsService loads and decrypts the credentials of linked accounts.
type CredentialsService struct {
	accountRepo AccountRepository
	keeper      Keeper
}

// NewCredentialsService creates a new CredentialsService.
func NewCredentialsService(accountRepo AccountRepository, keeper Keeper) *CredentialsService {
	return &CredentialsService{
		accountRepo: accountRepo,
		keeper:      keeper,
	}
}

// Credentials returns the decrypted credentials of the account.
func (s *CredentialsService) Credentials(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.Credentials, error) {
	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.keeper.Decrypt(ctx, account.EncryptedCredentials)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt account credentials")
	}

	var credentials accountDomain.Credentials
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode account credentials")
	}
	credentials.AccountID = account.ID
	credentials.ExternalAccountID = account.ExternalAccountID

	return &credentials, nil
}

// Seal encrypts credentials into the blob stored on a linked account.
func (s *CredentialsService) Seal(ctx context.Context, credentials accountDomain.Credentials) ([]byte, error) {
	return SealCredentials(ctx, s.keeper, credentials)
}

// SealCredentials encrypts credentials with keeper into a blob for
// LinkedAccount.EncryptedCredentials.
func SealCredentials(ctx context.Context, keeper Keeper, credentials accountDomain.Credentials) ([]byte, error) {
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode account credentials")
	}

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt account credentials")
	}
	return ciphertext, nil
}
