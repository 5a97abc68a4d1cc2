package domain

import (
	"github.com/allisson/postflow/internal/errors"
)

// Post and target error definitions.
var (
	// ErrPostNotFound indicates the post does not exist.
	ErrPostNotFound = errors.Wrap(errors.ErrNotFound, "post not found")

	// ErrTargetNotFound indicates the post target does not exist.
	ErrTargetNotFound = errors.Wrap(errors.ErrNotFound, "post target not found")

	// ErrInvalidPostTransition indicates the requested operation is not allowed from the post's current status.
	ErrInvalidPostTransition = errors.Wrap(errors.ErrConflict, "invalid post status transition")

	// ErrInvalidTargetTransition indicates the requested target status change is not allowed.
	ErrInvalidTargetTransition = errors.Wrap(errors.ErrConflict, "invalid target status transition")

	// ErrPostNotEditable indicates the post is not in an editable status (draft or rejected).
	ErrPostNotEditable = errors.Wrap(errors.ErrConflict, "post is not editable")

	// ErrDuplicateTarget indicates the linked account is already a target of the post.
	ErrDuplicateTarget = errors.Wrap(errors.ErrConflict, "account is already a target of this post")

	// ErrTargetInFlight indicates the target is currently being published.
	ErrTargetInFlight = errors.Wrap(errors.ErrConflict, "target is being published")

	// ErrNothingToRetry indicates the post has no failed targets to retry.
	ErrNothingToRetry = errors.Wrap(errors.ErrConflict, "post has no failed targets")

	// ErrEmptyContent indicates the post has no text and no media.
	ErrEmptyContent = errors.Wrap(errors.ErrInvalidInput, "post content is empty")

	// ErrNoTargets indicates the post has no targets.
	ErrNoTargets = errors.Wrap(errors.ErrInvalidInput, "post has no targets")

	// ErrScheduleNotInFuture indicates the scheduled time is not strictly after now.
	ErrScheduleNotInFuture = errors.Wrap(errors.ErrInvalidInput, "scheduled time must be in the future")

	// ErrInvalidTimezone indicates the timezone is not a valid IANA location name.
	ErrInvalidTimezone = errors.Wrap(errors.ErrInvalidInput, "invalid timezone")

	// ErrRejectionReasonRequired indicates a rejection without a reason.
	ErrRejectionReasonRequired = errors.Wrap(errors.ErrInvalidInput, "rejection reason is required")

	// ErrAccountWorkspaceMismatch indicates the linked account belongs to another workspace.
	ErrAccountWorkspaceMismatch = errors.Wrap(errors.ErrInvalidInput, "account belongs to another workspace")

	// ErrUnexpectedTargetAttributes indicates attributes were supplied for a status that does not accept them.
	ErrUnexpectedTargetAttributes = errors.Wrap(
		errors.ErrInvalidInput,
		"attributes are only accepted for published and failed statuses",
	)

	// ErrErrorCodeRequired indicates a failed status update without an error code.
	ErrErrorCodeRequired = errors.Wrap(errors.ErrInvalidInput, "error code is required for failed targets")
)

// IsGuardViolation reports whether err is a precondition failure raised by the post or
// target state machines (wrong status, missing content or targets, past timestamp).
// Guard violations are surfaced to the caller and never retried automatically.
func IsGuardViolation(err error) bool {
	return errors.Is(err, errors.ErrConflict) || errors.Is(err, errors.ErrInvalidInput)
}
