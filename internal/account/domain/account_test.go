package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkedAccount_Evaluate(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		account  LinkedAccount
		expected HealthVerdict
	}{
		{
			name:     "connected with valid token",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusConnected, TokenExpiresAt: &future},
			expected: VerdictAllowed,
		},
		{
			name:     "connected without expiry",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusConnected},
			expected: VerdictAllowed,
		},
		{
			name:     "integration disabled wins over everything",
			account:  LinkedAccount{IntegrationEnabled: false, Status: AccountStatusRevoked, TokenExpiresAt: &past},
			expected: VerdictDisabled,
		},
		{
			name:     "token expired by timestamp",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusConnected, TokenExpiresAt: &past},
			expected: VerdictTokenExpired,
		},
		{
			name:     "token expiring exactly now",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusConnected, TokenExpiresAt: &now},
			expected: VerdictTokenExpired,
		},
		{
			name:     "token already flagged expired",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusTokenExpired},
			expected: VerdictTokenExpired,
		},
		{
			name:     "disconnected",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusDisconnected},
			expected: VerdictUnavailable,
		},
		{
			name:     "revoked",
			account:  LinkedAccount{IntegrationEnabled: true, Status: AccountStatusRevoked, TokenExpiresAt: &future},
			expected: VerdictUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.Evaluate(now))
		})
	}
}
