// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
	customValidation "github.com/allisson/postflow/internal/validation"
)

// ContentRequest is the post payload accepted by create and edit.
type ContentRequest struct {
	Text      string   `json:"text"`
	Link      string   `json:"link"`
	MediaURLs []string `json:"media_urls"`
}

// Validate checks the content fields. Emptiness is enforced on submit, not here, so
// drafts may be saved without text.
func (r ContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Length(0, 10000)),
		validation.Field(&r.Link, customValidation.HTTPURL),
		validation.Field(&r.MediaURLs,
			validation.Length(0, 10),
			validation.Each(validation.Required, customValidation.HTTPURL),
		),
	)
}

// ToDomain converts the request into domain content.
func (r ContentRequest) ToDomain() publishingDomain.Content {
	return publishingDomain.Content{
		Text:      r.Text,
		Link:      r.Link,
		MediaURLs: r.MediaURLs,
	}
}

// CreatePostRequest contains the parameters for creating a draft post.
type CreatePostRequest struct {
	WorkspaceID string         `json:"workspace_id"`
	Content     ContentRequest `json:"content"`
}

// Validate checks if the create post request is valid.
func (r *CreatePostRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WorkspaceID, validation.Required, customValidation.UUID),
		validation.Field(&r.Content),
	)
}

// ParsedWorkspaceID returns the workspace ID. Call Validate first.
func (r *CreatePostRequest) ParsedWorkspaceID() uuid.UUID {
	return uuid.MustParse(r.WorkspaceID)
}

// AddTargetRequest contains the linked account to add as a target.
type AddTargetRequest struct {
	AccountID string `json:"account_id"`
}

// Validate checks if the add target request is valid.
func (r *AddTargetRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AccountID, validation.Required, customValidation.UUID),
	)
}

// ParsedAccountID returns the account ID. Call Validate first.
func (r *AddTargetRequest) ParsedAccountID() uuid.UUID {
	return uuid.MustParse(r.AccountID)
}

// RejectPostRequest contains the reason for rejecting a submitted post.
type RejectPostRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the reject request is valid.
func (r *RejectPostRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1000)),
	)
}

// ScheduleRequest contains the publication time for schedule and reschedule. The
// timezone is informational; scheduled_at is an absolute instant.
type ScheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Timezone    string    `json:"timezone"`
}

// Validate checks if the schedule request is valid. Whether the time lies in the
// future is decided by the post state machine.
func (r *ScheduleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ScheduledAt, validation.Required),
		validation.Field(&r.Timezone, customValidation.Timezone),
	)
}

// UpdateTargetStatusRequest contains a manual target status change.
type UpdateTargetStatusRequest struct {
	Status          string `json:"status"`
	ExternalPostID  string `json:"external_post_id"`
	ExternalPostURL string `json:"external_post_url"`
	ErrorCode       string `json:"error_code"`
	ErrorMessage    string `json:"error_message"`
}

// Validate checks if the update target status request is valid.
func (r *UpdateTargetStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(
				string(publishingDomain.TargetStatusPending),
				string(publishingDomain.TargetStatusPublishing),
				string(publishingDomain.TargetStatusPublished),
				string(publishingDomain.TargetStatusFailed),
			),
		),
		validation.Field(&r.ExternalPostURL, customValidation.HTTPURL),
		validation.Field(&r.ErrorCode, customValidation.NoWhitespace, validation.Length(0, 64)),
	)
}

// Attributes returns the optional attributes of the status change.
func (r *UpdateTargetStatusRequest) Attributes() publishingDomain.TargetAttributes {
	return publishingDomain.TargetAttributes{
		ExternalPostID:  r.ExternalPostID,
		ExternalPostURL: r.ExternalPostURL,
		ErrorCode:       r.ErrorCode,
		ErrorMessage:    r.ErrorMessage,
	}
}
