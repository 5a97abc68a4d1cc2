// Package domain defines the linked external accounts that posts are delivered to, as
// seen by the publishing pipeline. Accounts are owned by the account subsystem; the
// pipeline only reads them and flags expired tokens.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/errors"
)

// ErrAccountNotFound indicates the linked account does not exist.
var ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "linked account not found")

// AccountStatus represents the connection status of a linked account.
type AccountStatus string

const (
	AccountStatusConnected    AccountStatus = "connected"
	AccountStatusTokenExpired AccountStatus = "token_expired"
	AccountStatusDisconnected AccountStatus = "disconnected"
	AccountStatusRevoked      AccountStatus = "revoked"
)

// LinkedAccount is an external social-media account connected to a workspace.
type LinkedAccount struct {
	ID                 uuid.UUID
	WorkspaceID        uuid.UUID
	Platform           string
	ExternalAccountID  string
	Name               string
	Status             AccountStatus
	IntegrationEnabled bool
	// EncryptedCredentials holds the Credentials JSON encrypted by the credentials keeper.
	EncryptedCredentials []byte
	TokenExpiresAt       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HealthVerdict is the Account Health Gate's decision for one delivery attempt.
type HealthVerdict string

const (
	VerdictAllowed      HealthVerdict = "allowed"
	VerdictDisabled     HealthVerdict = "disabled"
	VerdictTokenExpired HealthVerdict = "token_expired"
	VerdictUnavailable  HealthVerdict = "unavailable"
)

// Evaluate decides whether the account can be published to at the given instant.
// It makes no network calls.
func (a *LinkedAccount) Evaluate(now time.Time) HealthVerdict {
	if !a.IntegrationEnabled {
		return VerdictDisabled
	}
	if a.Status == AccountStatusTokenExpired {
		return VerdictTokenExpired
	}
	if a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(now) {
		return VerdictTokenExpired
	}
	if a.Status != AccountStatusConnected {
		return VerdictUnavailable
	}
	return VerdictAllowed
}

// Credentials are the decrypted secrets handed to a platform adapter.
type Credentials struct {
	AccountID         uuid.UUID `json:"-"`
	ExternalAccountID string    `json:"-"`
	AccessToken       string    `json:"access_token"`
	// AccessTokenSecret is only used by OAuth1 platforms.
	AccessTokenSecret string `json:"access_token_secret,omitempty"`
}
