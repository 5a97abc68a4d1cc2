package commands

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	accountService "github.com/allisson/postflow/internal/account/service"
)

// RunSealCredentials encrypts platform credentials with the configured keeper and prints
// the base64 blob to store in linked_accounts.encrypted_credentials.
func RunSealCredentials(
	ctx context.Context,
	keeper accountService.Keeper,
	writer io.Writer,
	accessToken string,
	accessTokenSecret string,
) error {
	if accessToken == "" {
		return errors.New("access token is required")
	}

	blob, err := accountService.SealCredentials(ctx, keeper, accountDomain.Credentials{
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to seal credentials: %w", err)
	}

	_, err = fmt.Fprintln(writer, base64.StdEncoding.EncodeToString(blob))
	return err
}
