// Package domain defines the publishing domain: posts, their delivery targets and the
// state machines that move them from authoring through approval, scheduling and delivery.
//
// Once a post enters PUBLISHING its status is no longer set directly; it is derived from
// the statuses of its targets by AggregateStatus.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/errors"
)

// PostStatus represents the lifecycle status of a post.
type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusSubmitted  PostStatus = "submitted"
	PostStatusApproved   PostStatus = "approved"
	PostStatusRejected   PostStatus = "rejected"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
	PostStatusCancelled  PostStatus = "cancelled"
)

// IsValid reports whether s is a known post status.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusSubmitted, PostStatusApproved, PostStatusRejected,
		PostStatusScheduled, PostStatusPublishing, PostStatusPublished, PostStatusFailed,
		PostStatusCancelled:
		return true
	}
	return false
}

// Content is the payload delivered to every target. It is opaque to the pipeline apart
// from the emptiness check performed on submit.
type Content struct {
	Text      string   `json:"text"`
	Link      string   `json:"link,omitempty"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// IsEmpty reports whether the content has neither text nor media.
func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" && len(c.MediaURLs) == 0
}

// Post is a unit of content authored once and delivered to one or more targets.
type Post struct {
	ID              uuid.UUID
	WorkspaceID     uuid.UUID
	Status          PostStatus
	Content         Content
	ScheduledAt     *time.Time
	Timezone        string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason *string
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPost creates a draft post.
func NewPost(workspaceID uuid.UUID, content Content, now time.Time) *Post {
	return &Post{
		ID:          uuid.Must(uuid.NewV7()),
		WorkspaceID: workspaceID,
		Status:      PostStatusDraft,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsEditable reports whether content and targets may be changed.
func (p *Post) IsEditable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusRejected
}

// Edit replaces the content. Editing a rejected post moves it back to draft and clears
// the rejection reason.
func (p *Post) Edit(content Content, now time.Time) error {
	if !p.IsEditable() {
		return errors.Wrapf(ErrPostNotEditable, "status %s", p.Status)
	}
	p.Content = content
	if p.Status == PostStatusRejected {
		p.Status = PostStatusDraft
		p.RejectionReason = nil
		p.RejectedAt = nil
	}
	p.UpdatedAt = now
	return nil
}

// Submit sends a draft for approval.
func (p *Post) Submit(targetCount int, now time.Time) error {
	if err := p.requireStatus("submit", PostStatusDraft); err != nil {
		return err
	}
	if p.Content.IsEmpty() {
		return ErrEmptyContent
	}
	if targetCount < 1 {
		return ErrNoTargets
	}
	p.Status = PostStatusSubmitted
	p.SubmittedAt = &now
	p.UpdatedAt = now
	return nil
}

// Approve accepts a submitted post.
func (p *Post) Approve(now time.Time) error {
	if err := p.requireStatus("approve", PostStatusSubmitted); err != nil {
		return err
	}
	p.Status = PostStatusApproved
	p.ApprovedAt = &now
	p.UpdatedAt = now
	return nil
}

// Reject refuses a submitted post with a reason.
func (p *Post) Reject(reason string, now time.Time) error {
	if err := p.requireStatus("reject", PostStatusSubmitted); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReasonRequired
	}
	p.Status = PostStatusRejected
	p.RejectedAt = &now
	p.RejectionReason = &reason
	p.UpdatedAt = now
	return nil
}

// Schedule sets the publication time of an approved post. When allowDraft is true a
// draft may be scheduled directly, skipping approval.
func (p *Post) Schedule(at time.Time, timezone string, targetCount int, allowDraft bool, now time.Time) error {
	allowed := []PostStatus{PostStatusApproved}
	if allowDraft {
		allowed = append(allowed, PostStatusDraft)
	}
	if err := p.requireStatus("schedule", allowed...); err != nil {
		return err
	}
	if err := validateSchedule(at, timezone, now); err != nil {
		return err
	}
	if targetCount < 1 {
		return ErrNoTargets
	}
	at = at.UTC()
	p.Status = PostStatusScheduled
	p.ScheduledAt = &at
	p.Timezone = timezone
	p.UpdatedAt = now
	return nil
}

// Reschedule moves a scheduled post to a new time. An empty timezone keeps the current one.
func (p *Post) Reschedule(at time.Time, timezone string, now time.Time) error {
	if err := p.requireStatus("reschedule", PostStatusScheduled); err != nil {
		return err
	}
	if timezone == "" {
		timezone = p.Timezone
	}
	if err := validateSchedule(at, timezone, now); err != nil {
		return err
	}
	at = at.UTC()
	p.ScheduledAt = &at
	p.Timezone = timezone
	p.UpdatedAt = now
	return nil
}

// Cancel stops a post before publishing begins.
func (p *Post) Cancel(now time.Time) error {
	err := p.requireStatus(
		"cancel",
		PostStatusDraft,
		PostStatusSubmitted,
		PostStatusApproved,
		PostStatusScheduled,
	)
	if err != nil {
		return err
	}
	p.Status = PostStatusCancelled
	p.UpdatedAt = now
	return nil
}

// StartPublishing moves an approved or scheduled post into PUBLISHING. The caller must
// move every target to PUBLISHING in the same transaction.
func (p *Post) StartPublishing(targetCount int, now time.Time) error {
	if err := p.requireStatus("publish", PostStatusApproved, PostStatusScheduled); err != nil {
		return err
	}
	if targetCount < 1 {
		return ErrNoTargets
	}
	p.Status = PostStatusPublishing
	p.UpdatedAt = now
	return nil
}

// ResumePublishing re-enters PUBLISHING for a retry.
func (p *Post) ResumePublishing(now time.Time) error {
	if err := p.requireStatus("retry", PostStatusFailed, PostStatusPublishing); err != nil {
		return err
	}
	p.Status = PostStatusPublishing
	p.UpdatedAt = now
	return nil
}

// AcceptsRequeue returns an error unless a failed target may be moved back to PENDING.
// PUBLISHED is terminal, so only FAILED and PUBLISHING posts qualify.
func (p *Post) AcceptsRequeue() error {
	return p.requireStatus("requeue targets of", PostStatusFailed, PostStatusPublishing)
}

// RequirePublishing returns an error unless the post is PUBLISHING.
func (p *Post) RequirePublishing() error {
	return p.requireStatus("dispatch", PostStatusPublishing)
}

// AcceptsTargetUpdates returns an error unless target statuses currently drive the post
// status. Targets of posts that never started publishing cannot be moved.
func (p *Post) AcceptsTargetUpdates() error {
	if !p.IsDerived() {
		return errors.Wrapf(ErrInvalidTargetTransition, "post in status %s has not started publishing", p.Status)
	}
	return nil
}

// CanDelete returns an error unless the post is a draft or cancelled.
func (p *Post) CanDelete() error {
	return p.requireStatus("delete", PostStatusDraft, PostStatusCancelled)
}

// IsDerived reports whether the status is computed from targets.
func (p *Post) IsDerived() bool {
	switch p.Status {
	case PostStatusPublishing, PostStatusPublished, PostStatusFailed:
		return true
	}
	return false
}

// ApplyDerivedStatus stores the status computed by AggregateStatus. It returns true when
// the status changed.
func (p *Post) ApplyDerivedStatus(status PostStatus, now time.Time) bool {
	if p.Status == status {
		return false
	}
	p.Status = status
	if status == PostStatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.UpdatedAt = now
	return true
}

func (p *Post) requireStatus(operation string, allowed ...PostStatus) error {
	for _, s := range allowed {
		if p.Status == s {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidPostTransition, "cannot %s post in status %s", operation, p.Status)
}

func validateSchedule(at time.Time, timezone string, now time.Time) error {
	if !at.After(now) {
		return ErrScheduleNotInFuture
	}
	if timezone == "" {
		return nil
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return errors.Wrapf(ErrInvalidTimezone, "%q", timezone)
	}
	return nil
}
