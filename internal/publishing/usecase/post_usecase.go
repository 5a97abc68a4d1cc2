package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/database"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// postUseCase implements the PostUseCase interface.
type postUseCase struct {
	txManager         database.TxManager
	postRepo          PostRepository
	targetRepo        TargetRepository
	accountRepo       AccountRepository
	dispatcher        Dispatcher
	aggregator        *StatusAggregator
	allowSkipApproval bool
	logger            *slog.Logger
}

// Create stores a new draft post.
func (p *postUseCase) Create(
	ctx context.Context,
	workspaceID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	post := publishingDomain.NewPost(workspaceID, content, time.Now().UTC())
	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get retrieves a post by ID.
func (p *postUseCase) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return p.postRepo.Get(ctx, postID)
}

// ListTargets returns the targets of a post.
func (p *postUseCase) ListTargets(ctx context.Context, postID uuid.UUID) ([]*publishingDomain.PostTarget, error) {
	if _, err := p.postRepo.Get(ctx, postID); err != nil {
		return nil, err
	}
	return p.targetRepo.ListByPost(ctx, postID)
}

// EditContent replaces the content of a draft or rejected post.
func (p *postUseCase) EditContent(
	ctx context.Context,
	postID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(_ context.Context, post *publishingDomain.Post, now time.Time) error {
		return post.Edit(content, now)
	})
}

// AddTarget attaches a linked account of the post's workspace as a new PENDING target.
func (p *postUseCase) AddTarget(
	ctx context.Context,
	postID, accountID uuid.UUID,
) (*publishingDomain.PostTarget, error) {
	account, err := p.accountRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var target *publishingDomain.PostTarget
	err = p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		post, err := p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		if !post.IsEditable() {
			return publishingDomain.ErrPostNotEditable
		}
		if account.WorkspaceID != post.WorkspaceID {
			return publishingDomain.ErrAccountWorkspaceMismatch
		}

		target = publishingDomain.NewPostTarget(post.ID, account.ID, account.Platform, time.Now().UTC())
		return p.targetRepo.Create(txCtx, target)
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// RemoveTarget detaches a target from a draft or rejected post.
func (p *postUseCase) RemoveTarget(ctx context.Context, postID, targetID uuid.UUID) error {
	return p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		post, err := p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		if !post.IsEditable() {
			return publishingDomain.ErrPostNotEditable
		}

		target, err := p.targetRepo.Get(txCtx, targetID)
		if err != nil {
			return err
		}
		if target.PostID != post.ID {
			return publishingDomain.ErrTargetNotFound
		}
		if target.Status == publishingDomain.TargetStatusPublishing {
			return publishingDomain.ErrTargetInFlight
		}

		return p.targetRepo.Delete(txCtx, targetID)
	})
}

// Submit sends a draft for approval.
func (p *postUseCase) Submit(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(txCtx context.Context, post *publishingDomain.Post, now time.Time) error {
		count, err := p.targetRepo.CountByPost(txCtx, post.ID)
		if err != nil {
			return err
		}
		return post.Submit(count, now)
	})
}

// Approve accepts a submitted post.
func (p *postUseCase) Approve(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(_ context.Context, post *publishingDomain.Post, now time.Time) error {
		return post.Approve(now)
	})
}

// Reject refuses a submitted post.
func (p *postUseCase) Reject(ctx context.Context, postID uuid.UUID, reason string) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(_ context.Context, post *publishingDomain.Post, now time.Time) error {
		return post.Reject(reason, now)
	})
}

// Schedule sets the publication time of an approved post, or of a draft when approval
// may be skipped.
func (p *postUseCase) Schedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(txCtx context.Context, post *publishingDomain.Post, now time.Time) error {
		count, err := p.targetRepo.CountByPost(txCtx, post.ID)
		if err != nil {
			return err
		}
		return post.Schedule(at, timezone, count, p.allowSkipApproval, now)
	})
}

// Reschedule moves a scheduled post to a new time.
func (p *postUseCase) Reschedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(_ context.Context, post *publishingDomain.Post, now time.Time) error {
		return post.Reschedule(at, timezone, now)
	})
}

// Cancel stops a post before publishing begins.
func (p *postUseCase) Cancel(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(_ context.Context, post *publishingDomain.Post, now time.Time) error {
		return post.Cancel(now)
	})
}

// PublishNow moves the post and every target to PUBLISHING, commits, and then delivers.
// Nothing is sent to a platform unless the transition committed.
func (p *postUseCase) PublishNow(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	var post *publishingDomain.Post
	var targets []*publishingDomain.PostTarget

	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		post, err = p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		targets, err = p.targetRepo.ListByPost(txCtx, postID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := post.StartPublishing(len(targets), now); err != nil {
			return err
		}
		if err := p.postRepo.Update(txCtx, post); err != nil {
			return err
		}
		return p.markPublishing(txCtx, targets, now)
	})
	if err != nil {
		return nil, err
	}

	return p.dispatch(ctx, post, targets)
}

// RetryFailed resets every FAILED target to PENDING and moves the post back to
// PUBLISHING. PUBLISHED targets are left untouched.
func (p *postUseCase) RetryFailed(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	return p.transition(ctx, postID, func(txCtx context.Context, post *publishingDomain.Post, now time.Time) error {
		targets, err := p.targetRepo.ListByPost(txCtx, post.ID)
		if err != nil {
			return err
		}
		if err := post.ResumePublishing(now); err != nil {
			return err
		}

		retried := 0
		for _, target := range targets {
			if target.Status != publishingDomain.TargetStatusFailed {
				continue
			}
			if err := target.ResetForRetry(now); err != nil {
				return err
			}
			if err := p.targetRepo.Update(txCtx, target); err != nil {
				return err
			}
			retried++
		}
		if retried == 0 {
			return publishingDomain.ErrNothingToRetry
		}

		if p.logger != nil {
			p.logger.Info("post targets reset for retry",
				slog.String("post_id", post.ID.String()),
				slog.Int("targets", retried),
			)
		}
		return nil
	})
}

// PublishPending moves the PENDING targets of a PUBLISHING post to PUBLISHING and
// delivers them. Targets already PUBLISHING are left to the attempt that owns them.
func (p *postUseCase) PublishPending(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	var post *publishingDomain.Post
	var pending []*publishingDomain.PostTarget

	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		post, err = p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		if err := post.RequirePublishing(); err != nil {
			return err
		}

		targets, err := p.targetRepo.ListByPost(txCtx, postID)
		if err != nil {
			return err
		}
		for _, target := range targets {
			if target.Status == publishingDomain.TargetStatusPending {
				pending = append(pending, target)
			}
		}
		return p.markPublishing(txCtx, pending, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return post, nil
	}

	return p.dispatch(ctx, post, pending)
}

// Delete removes a draft or cancelled post together with its targets.
func (p *postUseCase) Delete(ctx context.Context, postID uuid.UUID) error {
	return p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		post, err := p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		if err := post.CanDelete(); err != nil {
			return err
		}
		if err := p.targetRepo.DeleteByPost(txCtx, postID); err != nil {
			return err
		}
		return p.postRepo.Delete(txCtx, postID)
	})
}

// UpdateTargetStatus applies a manual target status change and recomputes the post status.
func (p *postUseCase) UpdateTargetStatus(
	ctx context.Context,
	targetID uuid.UUID,
	status publishingDomain.TargetStatus,
	attrs publishingDomain.TargetAttributes,
) (*publishingDomain.PostTarget, error) {
	return p.aggregator.UpdateTargetStatus(ctx, targetID, status, attrs)
}

// transition loads and locks the post, applies fn and persists the post when fn succeeds.
func (p *postUseCase) transition(
	ctx context.Context,
	postID uuid.UUID,
	fn func(txCtx context.Context, post *publishingDomain.Post, now time.Time) error,
) (*publishingDomain.Post, error) {
	var post *publishingDomain.Post
	err := p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		post, err = p.postRepo.GetForUpdate(txCtx, postID)
		if err != nil {
			return err
		}
		if err := fn(txCtx, post, time.Now().UTC()); err != nil {
			return err
		}
		return p.postRepo.Update(txCtx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (p *postUseCase) markPublishing(
	ctx context.Context,
	targets []*publishingDomain.PostTarget,
	now time.Time,
) error {
	for _, target := range targets {
		_, err := target.UpdateStatus(publishingDomain.TargetStatusPublishing, publishingDomain.TargetAttributes{}, now)
		if err != nil {
			return err
		}
		if err := p.targetRepo.Update(ctx, target); err != nil {
			return err
		}
	}
	return nil
}

// dispatch delivers the targets and returns the post as stored after every outcome
// has been recorded.
func (p *postUseCase) dispatch(
	ctx context.Context,
	post *publishingDomain.Post,
	targets []*publishingDomain.PostTarget,
) (*publishingDomain.Post, error) {
	if err := p.dispatcher.Execute(ctx, post, targets); err != nil {
		return nil, err
	}
	return p.postRepo.Get(ctx, post.ID)
}

// NewPostUseCase creates a new PostUseCase. allowSkipApproval lets drafts be scheduled
// without going through submit and approve.
func NewPostUseCase(
	txManager database.TxManager,
	postRepo PostRepository,
	targetRepo TargetRepository,
	accountRepo AccountRepository,
	dispatcher Dispatcher,
	aggregator *StatusAggregator,
	allowSkipApproval bool,
	logger *slog.Logger,
) PostUseCase {
	return &postUseCase{
		txManager:         txManager,
		postRepo:          postRepo,
		targetRepo:        targetRepo,
		accountRepo:       accountRepo,
		dispatcher:        dispatcher,
		aggregator:        aggregator,
		allowSkipApproval: allowSkipApproval,
		logger:            logger,
	}
}
