package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/database"
	apperrors "github.com/allisson/postflow/internal/errors"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// StatusAggregator applies target status changes and keeps the post status equal to the
// aggregate of its targets. Each change runs in its own transaction with the post row
// locked, so concurrent outcomes for sibling targets are serialized and the last writer
// always sees every committed sibling.
type StatusAggregator struct {
	txManager  database.TxManager
	postRepo   PostRepository
	targetRepo TargetRepository
	policy     publishingDomain.SuccessPolicy
	logger     *slog.Logger
}

// NewStatusAggregator creates a new StatusAggregator.
func NewStatusAggregator(
	txManager database.TxManager,
	postRepo PostRepository,
	targetRepo TargetRepository,
	policy publishingDomain.SuccessPolicy,
	logger *slog.Logger,
) *StatusAggregator {
	return &StatusAggregator{
		txManager:  txManager,
		postRepo:   postRepo,
		targetRepo: targetRepo,
		policy:     policy,
		logger:     logger,
	}
}

// RecordOutcome stores a delivery outcome on a PUBLISHING target and recomputes the post.
func (a *StatusAggregator) RecordOutcome(
	ctx context.Context,
	postID, targetID uuid.UUID,
	outcome publishingDomain.PublishOutcome,
) (*publishingDomain.Post, error) {
	apply := func(_ *publishingDomain.Post, t *publishingDomain.PostTarget, now time.Time) (bool, error) {
		return t.ApplyOutcome(outcome, now)
	}

	var post *publishingDomain.Post
	err := a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		post, _, err = a.applyLocked(txCtx, postID, targetID, apply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateTargetStatus applies a manual target status change and recomputes the post.
func (a *StatusAggregator) UpdateTargetStatus(
	ctx context.Context,
	targetID uuid.UUID,
	status publishingDomain.TargetStatus,
	attrs publishingDomain.TargetAttributes,
) (*publishingDomain.PostTarget, error) {
	// The post id never changes, so it can be read before taking the lock.
	current, err := a.targetRepo.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	apply := func(post *publishingDomain.Post, t *publishingDomain.PostTarget, now time.Time) (bool, error) {
		if status == publishingDomain.TargetStatusPending {
			if err := post.AcceptsRequeue(); err != nil {
				return false, err
			}
		}
		return t.UpdateStatus(status, attrs, now)
	}

	var target *publishingDomain.PostTarget
	err = a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		_, target, err = a.applyLocked(txCtx, current.PostID, targetID, apply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// applyLocked locks the post, applies change to the target and recomputes the post
// status. It must run inside a transaction.
func (a *StatusAggregator) applyLocked(
	ctx context.Context,
	postID, targetID uuid.UUID,
	change func(post *publishingDomain.Post, t *publishingDomain.PostTarget, now time.Time) (bool, error),
) (*publishingDomain.Post, *publishingDomain.PostTarget, error) {
	post, err := a.postRepo.GetForUpdate(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := post.AcceptsTargetUpdates(); err != nil {
		return nil, nil, err
	}

	target, err := a.targetRepo.Get(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if target.PostID != post.ID {
		return nil, nil, apperrors.Wrapf(
			publishingDomain.ErrTargetNotFound,
			"target %s does not belong to post %s",
			targetID,
			postID,
		)
	}

	now := time.Now().UTC()
	changed, err := change(post, target, now)
	if err != nil {
		return nil, nil, err
	}
	if !changed {
		return post, target, nil
	}
	if err := a.targetRepo.Update(ctx, target); err != nil {
		return nil, nil, err
	}

	if err := a.recompute(ctx, post, now); err != nil {
		return nil, nil, err
	}
	return post, target, nil
}

// recompute re-reads every target of the locked post and stores the aggregate status.
func (a *StatusAggregator) recompute(ctx context.Context, post *publishingDomain.Post, now time.Time) error {
	targets, err := a.targetRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return err
	}

	previous := post.Status
	status := publishingDomain.AggregateStatus(publishingDomain.TargetStatuses(targets), a.policy)
	if !post.ApplyDerivedStatus(status, now) {
		return nil
	}
	if err := a.postRepo.Update(ctx, post); err != nil {
		return err
	}

	if a.logger != nil {
		a.logger.Info("post status changed",
			slog.String("post_id", post.ID.String()),
			slog.String("from", string(previous)),
			slog.String("to", string(status)),
		)
	}
	return nil
}
