package dto

import (
	"time"

	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
)

// ContentResponse represents post content in API responses.
type ContentResponse struct {
	Text      string   `json:"text"`
	Link      string   `json:"link,omitempty"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID              string          `json:"id"`
	WorkspaceID     string          `json:"workspace_id"`
	Status          string          `json:"status"`
	Content         ContentResponse `json:"content"`
	ScheduledAt     *time.Time      `json:"scheduled_at,omitempty"`
	Timezone        string          `json:"timezone,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TargetResponse represents a post target in API responses.
type TargetResponse struct {
	ID              string     `json:"id"`
	PostID          string     `json:"post_id"`
	AccountID       string     `json:"account_id"`
	Platform        string     `json:"platform"`
	Status          string     `json:"status"`
	ExternalPostID  *string    `json:"external_post_id,omitempty"`
	ExternalPostURL *string    `json:"external_post_url,omitempty"`
	ErrorCode       *string    `json:"error_code,omitempty"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	RetryCount      int        `json:"retry_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ListTargetsResponse represents the targets of a post in API responses.
type ListTargetsResponse struct {
	Data []TargetResponse `json:"data"`
}

// MapPostToResponse converts a domain post to an API response.
func MapPostToResponse(post *publishingDomain.Post) PostResponse {
	return PostResponse{
		ID:          post.ID.String(),
		WorkspaceID: post.WorkspaceID.String(),
		Status:      string(post.Status),
		Content: ContentResponse{
			Text:      post.Content.Text,
			Link:      post.Content.Link,
			MediaURLs: post.Content.MediaURLs,
		},
		ScheduledAt:     post.ScheduledAt,
		Timezone:        post.Timezone,
		SubmittedAt:     post.SubmittedAt,
		ApprovedAt:      post.ApprovedAt,
		RejectedAt:      post.RejectedAt,
		RejectionReason: post.RejectionReason,
		PublishedAt:     post.PublishedAt,
		CreatedAt:       post.CreatedAt,
		UpdatedAt:       post.UpdatedAt,
	}
}

// MapTargetToResponse converts a domain target to an API response.
func MapTargetToResponse(target *publishingDomain.PostTarget) TargetResponse {
	return TargetResponse{
		ID:              target.ID.String(),
		PostID:          target.PostID.String(),
		AccountID:       target.AccountID.String(),
		Platform:        target.Platform,
		Status:          string(target.Status),
		ExternalPostID:  target.ExternalPostID,
		ExternalPostURL: target.ExternalPostURL,
		ErrorCode:       target.ErrorCode,
		ErrorMessage:    target.ErrorMessage,
		RetryCount:      target.RetryCount,
		PublishedAt:     target.PublishedAt,
		CreatedAt:       target.CreatedAt,
		UpdatedAt:       target.UpdatedAt,
	}
}

// MapTargetsToListResponse converts domain targets to a list response.
func MapTargetsToListResponse(targets []*publishingDomain.PostTarget) ListTargetsResponse {
	data := make([]TargetResponse, 0, len(targets))
	for _, target := range targets {
		data = append(data, MapTargetToResponse(target))
	}
	return ListTargetsResponse{Data: data}
}
