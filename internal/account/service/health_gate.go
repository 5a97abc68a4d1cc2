package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	apperrors "github.com/allisson/postflow/internal/errors"
)

// HealthGate decides whether a linked account may be published to. It only reads stored
// account facts and never calls the external platform.
type HealthGate struct {
	accountRepo AccountRepository
	logger      *slog.Logger
}

// NewHealthGate creates a new HealthGate.
func NewHealthGate(accountRepo AccountRepository, logger *slog.Logger) *HealthGate {
	return &HealthGate{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Check returns the verdict for the given account. A missing account is reported as
// unavailable rather than as an error so that the target is failed instead of aborting
// the fan-out.
func (g *HealthGate) Check(ctx context.Context, accountID uuid.UUID) (accountDomain.HealthVerdict, error) {
	account, err := g.accountRepo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, accountDomain.ErrAccountNotFound) {
			return accountDomain.VerdictUnavailable, nil
		}
		return "", apperrors.Wrap(err, "failed to load linked account")
	}

	verdict := account.Evaluate(time.Now().UTC())
	if verdict != accountDomain.VerdictAllowed && g.logger != nil {
		g.logger.Debug("account blocked by health gate",
			slog.String("account_id", accountID.String()),
			slog.String("verdict", string(verdict)),
		)
	}
	return verdict, nil
}

// MarkTokenExpired records on the account that its token has expired.
func (g *HealthGate) MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error {
	return g.accountRepo.MarkTokenExpired(ctx, accountID)
}
