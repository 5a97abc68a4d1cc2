package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/postflow/internal/errors"
	"github.com/allisson/postflow/internal/metrics"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// postUseCaseWithMetrics decorates PostUseCase with metrics instrumentation.
type postUseCaseWithMetrics struct {
	next    PostUseCase
	metrics metrics.BusinessMetrics
}

// NewPostUseCaseWithMetrics wraps a PostUseCase with metrics recording.
func NewPostUseCaseWithMetrics(useCase PostUseCase, m metrics.BusinessMetrics) PostUseCase {
	return &postUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *postUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = apperrors.Kind(err)
	}

	p.metrics.RecordOperation(ctx, "publishing", operation, status)
	p.metrics.RecordDuration(ctx, "publishing", operation, time.Since(start), status)
}

// Create records metrics for post creation.
func (p *postUseCaseWithMetrics) Create(
	ctx context.Context,
	workspaceID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Create(ctx, workspaceID, content)
	p.record(ctx, "post_create", start, err)
	return post, err
}

// Get records metrics for post retrieval.
func (p *postUseCaseWithMetrics) Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Get(ctx, postID)
	p.record(ctx, "post_get", start, err)
	return post, err
}

// ListTargets records metrics for target listing.
func (p *postUseCaseWithMetrics) ListTargets(
	ctx context.Context,
	postID uuid.UUID,
) ([]*publishingDomain.PostTarget, error) {
	start := time.Now()
	targets, err := p.next.ListTargets(ctx, postID)
	p.record(ctx, "target_list", start, err)
	return targets, err
}

// EditContent records metrics for content edits.
func (p *postUseCaseWithMetrics) EditContent(
	ctx context.Context,
	postID uuid.UUID,
	content publishingDomain.Content,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.EditContent(ctx, postID, content)
	p.record(ctx, "post_edit", start, err)
	return post, err
}

// AddTarget records metrics for target creation.
func (p *postUseCaseWithMetrics) AddTarget(
	ctx context.Context,
	postID, accountID uuid.UUID,
) (*publishingDomain.PostTarget, error) {
	start := time.Now()
	target, err := p.next.AddTarget(ctx, postID, accountID)
	p.record(ctx, "target_add", start, err)
	return target, err
}

// RemoveTarget records metrics for target removal.
func (p *postUseCaseWithMetrics) RemoveTarget(ctx context.Context, postID, targetID uuid.UUID) error {
	start := time.Now()
	err := p.next.RemoveTarget(ctx, postID, targetID)
	p.record(ctx, "target_remove", start, err)
	return err
}

// Submit records metrics for submissions.
func (p *postUseCaseWithMetrics) Submit(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Submit(ctx, postID)
	p.record(ctx, "post_submit", start, err)
	return post, err
}

// Approve records metrics for approvals.
func (p *postUseCaseWithMetrics) Approve(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Approve(ctx, postID)
	p.record(ctx, "post_approve", start, err)
	return post, err
}

// Reject records metrics for rejections.
func (p *postUseCaseWithMetrics) Reject(
	ctx context.Context,
	postID uuid.UUID,
	reason string,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Reject(ctx, postID, reason)
	p.record(ctx, "post_reject", start, err)
	return post, err
}

// Schedule records metrics for scheduling.
func (p *postUseCaseWithMetrics) Schedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Schedule(ctx, postID, at, timezone)
	p.record(ctx, "post_schedule", start, err)
	return post, err
}

// Reschedule records metrics for rescheduling.
func (p *postUseCaseWithMetrics) Reschedule(
	ctx context.Context,
	postID uuid.UUID,
	at time.Time,
	timezone string,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Reschedule(ctx, postID, at, timezone)
	p.record(ctx, "post_reschedule", start, err)
	return post, err
}

// Cancel records metrics for cancellations.
func (p *postUseCaseWithMetrics) Cancel(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.Cancel(ctx, postID)
	p.record(ctx, "post_cancel", start, err)
	return post, err
}

// PublishNow records metrics for immediate publication.
func (p *postUseCaseWithMetrics) PublishNow(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.PublishNow(ctx, postID)
	p.record(ctx, "post_publish", start, err)
	return post, err
}

// RetryFailed records metrics for retries.
func (p *postUseCaseWithMetrics) RetryFailed(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.RetryFailed(ctx, postID)
	p.record(ctx, "post_retry", start, err)
	return post, err
}

// PublishPending records metrics for pending target dispatch.
func (p *postUseCaseWithMetrics) PublishPending(
	ctx context.Context,
	postID uuid.UUID,
) (*publishingDomain.Post, error) {
	start := time.Now()
	post, err := p.next.PublishPending(ctx, postID)
	p.record(ctx, "post_publish_pending", start, err)
	return post, err
}

// Delete records metrics for deletions.
func (p *postUseCaseWithMetrics) Delete(ctx context.Context, postID uuid.UUID) error {
	start := time.Now()
	err := p.next.Delete(ctx, postID)
	p.record(ctx, "post_delete", start, err)
	return err
}

// UpdateTargetStatus records metrics for manual target status changes.
func (p *postUseCaseWithMetrics) UpdateTargetStatus(
	ctx context.Context,
	targetID uuid.UUID,
	status publishingDomain.TargetStatus,
	attrs publishingDomain.TargetAttributes,
) (*publishingDomain.PostTarget, error) {
	start := time.Now()
	target, err := p.next.UpdateTargetStatus(ctx, targetID, status, attrs)
	p.record(ctx, "target_update_status", start, err)
	return target, err
}
