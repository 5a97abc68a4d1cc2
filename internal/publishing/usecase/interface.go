// Package usecase implements the publishing pipeline: the post lifecycle, the fan-out of a
// post to its targets, the aggregation of target outcomes into the post status and the
// scheduler that dispatches due posts.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/postflow/internal/account/domain"
	"github.com/allisson/postflow/internal/lock"
	"github.com/allisson/postflow/internal/platform"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// PostRepository defines the interface for Post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *publishingDomain.Post) error
	Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	// GetForUpdate row-locks the post until the surrounding transaction ends. Every
	// transaction that touches targets locks their post first.
	GetForUpdate(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	Update(ctx context.Context, post *publishingDomain.Post) error
	Delete(ctx context.Context, postID uuid.UUID) error
	ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*publishingDomain.Post, error)
}

// TargetRepository defines the interface for PostTarget persistence operations.
type TargetRepository interface {
	Create(ctx context.Context, target *publishingDomain.PostTarget) error
	Get(ctx context.Context, targetID uuid.UUID) (*publishingDomain.PostTarget, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*publishingDomain.PostTarget, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
	Update(ctx context.Context, target *publishingDomain.PostTarget) error
	Delete(ctx context.Context, targetID uuid.UUID) error
	DeleteByPost(ctx context.Context, postID uuid.UUID) error
}

// AccountRepository reads linked accounts.
type AccountRepository interface {
	Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.LinkedAccount, error)
}

// AccountHealthGate decides whether an account may be published to.
type AccountHealthGate interface {
	Check(ctx context.Context, accountID uuid.UUID) (accountDomain.HealthVerdict, error)
	MarkTokenExpired(ctx context.Context, accountID uuid.UUID) error
}

// CredentialsProvider returns the decrypted credentials of a linked account.
type CredentialsProvider interface {
	Credentials(ctx context.Context, accountID uuid.UUID) (*accountDomain.Credentials, error)
}

// AdapterResolver resolves the platform adapter for a platform code.
type AdapterResolver interface {
	Adapter(platform string) (platform.Adapter, error)
}

// Locker acquires a named distributed lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (lock.ReleaseFunc, error)
}

// Dispatcher delivers publishing targets and records their outcomes.
type Dispatcher interface {
	Execute(ctx context.Context, post *publishingDomain.Post, targets []*publishingDomain.PostTarget) error
}

// PostUseCase defines the interface for post lifecycle operations.
type PostUseCase interface {
	Create(ctx context.Context, workspaceID uuid.UUID, content publishingDomain.Content) (*publishingDomain.Post, error)
	Get(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	ListTargets(ctx context.Context, postID uuid.UUID) ([]*publishingDomain.PostTarget, error)
	EditContent(
		ctx context.Context,
		postID uuid.UUID,
		content publishingDomain.Content,
	) (*publishingDomain.Post, error)
	AddTarget(ctx context.Context, postID, accountID uuid.UUID) (*publishingDomain.PostTarget, error)
	RemoveTarget(ctx context.Context, postID, targetID uuid.UUID) error
	Submit(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	Approve(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	Reject(ctx context.Context, postID uuid.UUID, reason string) (*publishingDomain.Post, error)
	Schedule(ctx context.Context, postID uuid.UUID, at time.Time, timezone string) (*publishingDomain.Post, error)
	Reschedule(
		ctx context.Context,
		postID uuid.UUID,
		at time.Time,
		timezone string,
	) (*publishingDomain.Post, error)
	Cancel(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	// PublishNow moves the post and all of its targets to PUBLISHING in one transaction
	// and then delivers every target.
	PublishNow(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	// RetryFailed resets FAILED targets to PENDING and the post to PUBLISHING. It never
	// calls platform adapters.
	RetryFailed(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	// PublishPending moves the PENDING targets of a PUBLISHING post to PUBLISHING and
	// delivers them.
	PublishPending(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error)
	Delete(ctx context.Context, postID uuid.UUID) error
	UpdateTargetStatus(
		ctx context.Context,
		targetID uuid.UUID,
		status publishingDomain.TargetStatus,
		attrs publishingDomain.TargetAttributes,
	) (*publishingDomain.PostTarget, error)
}

// SchedulerUseCase defines the interface for the due-post scheduler.
type SchedulerUseCase interface {
	// RunDueScheduled dispatches SCHEDULED posts whose time has come. A failure on one
	// post is logged and counted and never prevents the others from being processed.
	RunDueScheduled(ctx context.Context) (*RunResult, error)
	// Start runs RunDueScheduled on the configured schedule until ctx is cancelled.
	Start(ctx context.Context) error
}

// RunResult summarizes one scheduler run.
type RunResult struct {
	Selected   int
	Dispatched int
	Failed     int
	// Skipped is true when another replica held the scheduler lock.
	Skipped bool
}
