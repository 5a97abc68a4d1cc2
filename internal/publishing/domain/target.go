package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/errors"
)

// TargetStatus represents the delivery status of a post to one linked account.
type TargetStatus string

const (
	TargetStatusPending    TargetStatus = "pending"
	TargetStatusPublishing TargetStatus = "publishing"
	TargetStatusPublished  TargetStatus = "published"
	TargetStatusFailed     TargetStatus = "failed"
)

// IsValid reports whether s is a known target status.
func (s TargetStatus) IsValid() bool {
	switch s {
	case TargetStatusPending, TargetStatusPublishing, TargetStatusPublished, TargetStatusFailed:
		return true
	}
	return false
}

// PostTarget is one delivery attempt of a post to one linked external account.
// ErrorCode and ErrorMessage are set if and only if Status is FAILED.
type PostTarget struct {
	ID              uuid.UUID
	PostID          uuid.UUID
	AccountID       uuid.UUID
	Platform        string
	Status          TargetStatus
	ExternalPostID  *string
	ExternalPostURL *string
	ErrorCode       *string
	ErrorMessage    *string
	RetryCount      int
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TargetAttributes carries the outcome data accepted by UpdateStatus.
type TargetAttributes struct {
	ExternalPostID  string
	ExternalPostURL string
	ErrorCode       string
	ErrorMessage    string
}

func (a TargetAttributes) isEmpty() bool {
	return a == TargetAttributes{}
}

// NewPostTarget creates a pending target for the given post and account.
func NewPostTarget(postID, accountID uuid.UUID, platform string, now time.Time) *PostTarget {
	return &PostTarget{
		ID:        uuid.Must(uuid.NewV7()),
		PostID:    postID,
		AccountID: accountID,
		Platform:  platform,
		Status:    TargetStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateStatus applies a target status transition and returns whether the target changed.
//
// PENDING -> PUBLISHING -> {PUBLISHED, FAILED}; FAILED -> PENDING (retry).
// Updating an already published target to PUBLISHED is a no-op, so a re-delivered
// success never rewrites the external identifiers.
func (t *PostTarget) UpdateStatus(status TargetStatus, attrs TargetAttributes, now time.Time) (bool, error) {
	switch status {
	case TargetStatusPublished:
		if t.Status == TargetStatusPublished {
			return false, nil
		}
		if t.Status != TargetStatusPublishing {
			return false, t.transitionError(status)
		}
		if attrs.ErrorCode != "" || attrs.ErrorMessage != "" {
			return false, ErrUnexpectedTargetAttributes
		}
		t.Status = TargetStatusPublished
		t.ExternalPostID = optionalString(attrs.ExternalPostID)
		t.ExternalPostURL = optionalString(attrs.ExternalPostURL)
		t.ErrorCode = nil
		t.ErrorMessage = nil
		t.PublishedAt = &now

	case TargetStatusFailed:
		if t.Status != TargetStatusPublishing {
			return false, t.transitionError(status)
		}
		if attrs.ExternalPostID != "" || attrs.ExternalPostURL != "" {
			return false, ErrUnexpectedTargetAttributes
		}
		if attrs.ErrorCode == "" {
			return false, ErrErrorCodeRequired
		}
		message := attrs.ErrorMessage
		t.Status = TargetStatusFailed
		t.ErrorCode = &attrs.ErrorCode
		t.ErrorMessage = &message

	case TargetStatusPublishing:
		if !attrs.isEmpty() {
			return false, ErrUnexpectedTargetAttributes
		}
		if t.Status != TargetStatusPending {
			return false, t.transitionError(status)
		}
		t.Status = TargetStatusPublishing

	case TargetStatusPending:
		if !attrs.isEmpty() {
			return false, ErrUnexpectedTargetAttributes
		}
		if err := t.ResetForRetry(now); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, errors.Wrapf(ErrInvalidTargetTransition, "unknown status %q", status)
	}

	t.UpdatedAt = now
	return true, nil
}

// ResetForRetry moves a failed target back to PENDING, increments the retry count and
// clears the error.
func (t *PostTarget) ResetForRetry(now time.Time) error {
	if t.Status != TargetStatusFailed {
		return t.transitionError(TargetStatusPending)
	}
	t.Status = TargetStatusPending
	t.RetryCount++
	t.ErrorCode = nil
	t.ErrorMessage = nil
	t.UpdatedAt = now
	return nil
}

// ApplyOutcome records an adapter verdict on a publishing target.
func (t *PostTarget) ApplyOutcome(outcome PublishOutcome, now time.Time) (bool, error) {
	if outcome.Success {
		return t.UpdateStatus(TargetStatusPublished, TargetAttributes{
			ExternalPostID:  outcome.ExternalID,
			ExternalPostURL: outcome.ExternalURL,
		}, now)
	}
	return t.UpdateStatus(TargetStatusFailed, TargetAttributes{
		ErrorCode:    outcome.ErrorCode,
		ErrorMessage: outcome.ErrorMessage,
	}, now)
}

func (t *PostTarget) transitionError(to TargetStatus) error {
	return errors.Wrapf(ErrInvalidTargetTransition, "%s -> %s", t.Status, to)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
