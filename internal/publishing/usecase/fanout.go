package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	"github.com/allisson/postflow/internal/metrics"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// FanOutExecutor delivers a post to each of its PUBLISHING targets independently. One
// target's failure, error or panic never affects its siblings.
type FanOutExecutor struct {
	healthGate  AccountHealthGate
	credentials CredentialsProvider
	adapters    AdapterResolver
	aggregator  *StatusAggregator
	metrics     metrics.BusinessMetrics
	logger      *slog.Logger
	concurrency int
}

// NewFanOutExecutor creates a new FanOutExecutor. concurrency bounds the number of
// simultaneous platform calls per post; values below 1 mean one at a time.
func NewFanOutExecutor(
	healthGate AccountHealthGate,
	credentials CredentialsProvider,
	adapters AdapterResolver,
	aggregator *StatusAggregator,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
	concurrency int,
) *FanOutExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &FanOutExecutor{
		healthGate:  healthGate,
		credentials: credentials,
		adapters:    adapters,
		aggregator:  aggregator,
		metrics:     businessMetrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Execute delivers every target in targets that is PUBLISHING and records each outcome
// through the aggregator. It waits for all attempts and returns the first error raised
// while recording an outcome.
//
// Attempts run on a context detached from ctx's cancellation: once a platform call has
// been made its outcome must be recorded.
func (e *FanOutExecutor) Execute(
	ctx context.Context,
	post *publishingDomain.Post,
	targets []*publishingDomain.PostTarget,
) error {
	attemptCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for _, target := range targets {
		if target.Status != publishingDomain.TargetStatusPublishing {
			continue
		}
		g.Go(func() error {
			return e.attempt(attemptCtx, post, target)
		})
	}

	return g.Wait()
}

func (e *FanOutExecutor) attempt(
	ctx context.Context,
	post *publishingDomain.Post,
	target *publishingDomain.PostTarget,
) error {
	start := time.Now()
	outcome := e.deliver(ctx, post, target)

	status := "published"
	if !outcome.Success {
		status = "failed"
	}
	e.metrics.RecordOperation(ctx, "publishing", "target_publish", status)
	e.metrics.RecordDuration(ctx, "publishing", "target_publish", time.Since(start), status)
	e.metrics.RecordDelivery(ctx, target.Platform, outcome.ErrorCode)

	if _, err := e.aggregator.RecordOutcome(ctx, post.ID, target.ID, outcome); err != nil {
		if e.logger != nil {
			e.logger.Error("failed to record delivery outcome",
				slog.String("post_id", post.ID.String()),
				slog.String("target_id", target.ID.String()),
				slog.Any("error", err),
			)
		}
		return err
	}

	if e.logger != nil {
		attrs := []any{
			slog.String("post_id", post.ID.String()),
			slog.String("target_id", target.ID.String()),
			slog.String("platform", target.Platform),
			slog.Bool("success", outcome.Success),
		}
		if !outcome.Success {
			attrs = append(attrs, slog.String("error_code", outcome.ErrorCode))
		}
		e.logger.Info("target delivery finished", attrs...)
	}
	return nil
}

// deliver runs the health gate, credentials lookup and adapter call for one target and
// converts every failure mode, panics included, into a failed outcome.
func (e *FanOutExecutor) deliver(
	ctx context.Context,
	post *publishingDomain.Post,
	target *publishingDomain.PostTarget,
) (outcome publishingDomain.PublishOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = publishingDomain.Failed(publishingDomain.ErrorCodeException, fmt.Sprintf("panic: %v", r))
		}
	}()

	verdict, err := e.healthGate.Check(ctx, target.AccountID)
	if err != nil {
		return publishingDomain.Failed(publishingDomain.ErrorCodeException, err.Error())
	}

	switch verdict {
	case accountDomain.VerdictAllowed:
	case accountDomain.VerdictDisabled:
		return publishingDomain.Failed(
			publishingDomain.ErrorCodeIntegrationDisabled,
			"integration is disabled for this account",
		)
	case accountDomain.VerdictTokenExpired:
		if err := e.healthGate.MarkTokenExpired(ctx, target.AccountID); err != nil && e.logger != nil {
			e.logger.Warn("failed to mark account token as expired",
				slog.String("account_id", target.AccountID.String()),
				slog.Any("error", err),
			)
		}
		return publishingDomain.Failed(publishingDomain.ErrorCodeTokenExpired, "account token has expired")
	default:
		return publishingDomain.Failed(publishingDomain.ErrorCodeAccountUnavailable, "account is not connected")
	}

	credentials, err := e.credentials.Credentials(ctx, target.AccountID)
	if err != nil {
		return publishingDomain.Failed(publishingDomain.ErrorCodeCredentialsUnavailable, err.Error())
	}

	adapter, err := e.adapters.Adapter(target.Platform)
	if err != nil {
		return publishingDomain.Failed(publishingDomain.ErrorCodeUnsupportedPlatform, err.Error())
	}

	outcome, err = adapter.Publish(ctx, post.Content, credentials)
	if err != nil {
		return publishingDomain.Failed(publishingDomain.ErrorCodeException, err.Error())
	}
	if !outcome.Success && outcome.ErrorCode == "" {
		outcome.ErrorCode = publishingDomain.ErrorCodeException
	}
	return outcome
}
