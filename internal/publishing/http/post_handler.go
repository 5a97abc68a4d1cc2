// Package http provides HTTP handlers for the publishing pipeline: post lifecycle,
// targets and manual target status updates.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/postflow/internal/httputil"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
	"github.com/allisson/postflow/internal/publishing/http/dto"
	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
	customValidation "github.com/allisson/postflow/internal/validation"
)

// PostHandler handles HTTP requests for posts and their targets.
type PostHandler struct {
	postUseCase publishingUseCase.PostUseCase
	logger      *slog.Logger
}

// NewPostHandler creates a new post handler with required dependencies.
func NewPostHandler(postUseCase publishingUseCase.PostUseCase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// CreateHandler creates a draft post.
// POST /v1/posts - Returns 201 Created.
func (h *PostHandler) CreateHandler(c *gin.Context) {
	var req dto.CreatePostRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.postUseCase.Create(c.Request.Context(), req.ParsedWorkspaceID(), req.Content.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPostToResponse(post))
}

// GetHandler retrieves a post.
// GET /v1/posts/:id - Returns 200 OK.
func (h *PostHandler) GetHandler(c *gin.Context) {
	h.postAction(c, h.postUseCase.Get)
}

// EditContentHandler replaces the content of a draft or rejected post.
// PUT /v1/posts/:id/content - Returns 200 OK.
func (h *PostHandler) EditContentHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ContentRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.postUseCase.EditContent(c.Request.Context(), postID, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(post))
}

// DeleteHandler removes a draft or cancelled post.
// DELETE /v1/posts/:id - Returns 204 No Content.
func (h *PostHandler) DeleteHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.postUseCase.Delete(c.Request.Context(), postID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListTargetsHandler lists the targets of a post.
// GET /v1/posts/:id/targets - Returns 200 OK.
func (h *PostHandler) ListTargetsHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	targets, err := h.postUseCase.ListTargets(c.Request.Context(), postID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTargetsToListResponse(targets))
}

// AddTargetHandler attaches a linked account to a post.
// POST /v1/posts/:id/targets - Returns 201 Created.
func (h *PostHandler) AddTargetHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.AddTargetRequest
	if !h.bind(c, &req) {
		return
	}

	target, err := h.postUseCase.AddTarget(c.Request.Context(), postID, req.ParsedAccountID())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTargetToResponse(target))
}

// RemoveTargetHandler detaches a target from a post.
// DELETE /v1/posts/:id/targets/:target_id - Returns 204 No Content.
func (h *PostHandler) RemoveTargetHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	targetID, ok := h.parseID(c, "target_id")
	if !ok {
		return
	}

	if err := h.postUseCase.RemoveTarget(c.Request.Context(), postID, targetID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// SubmitHandler sends a draft for approval.
// POST /v1/posts/:id/submit - Returns 200 OK.
func (h *PostHandler) SubmitHandler(c *gin.Context) {
	h.postAction(c, h.postUseCase.Submit)
}

// ApproveHandler approves a submitted post.
// POST /v1/posts/:id/approve - Returns 200 OK.
func (h *PostHandler) ApproveHandler(c *gin.Context) {
	h.postAction(c, h.postUseCase.Approve)
}

// RejectHandler rejects a submitted post with a reason.
// POST /v1/posts/:id/reject - Returns 200 OK.
func (h *PostHandler) RejectHandler(c *gin.Context) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectPostRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := h.postUseCase.Reject(c.Request.Context(), postID, req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(post))
}

// ScheduleHandler schedules an approved post.
// POST /v1/posts/:id/schedule - Returns 200 OK.
func (h *PostHandler) ScheduleHandler(c *gin.Context) {
	h.scheduleAction(c, h.postUseCase.Schedule)
}

// RescheduleHandler moves a scheduled post to a new time.
// POST /v1/posts/:id/reschedule - Returns 200 OK.
func (h *PostHandler) RescheduleHandler(c *gin.Context) {
	h.scheduleAction(c, h.postUseCase.Reschedule)
}

// CancelHandler cancels a post that has not started publishing.
// POST /v1/posts/:id/cancel - Returns 200 OK.
func (h *PostHandler) CancelHandler(c *gin.Context) {
	h.postAction(c, h.postUseCase.Cancel)
}

// PublishHandler publishes an approved or scheduled post immediately and waits for
// every target to settle.
// POST /v1/posts/:id/publish - Returns 200 OK with the aggregated post.
func (h *PostHandler) PublishHandler(c *gin.Context) {
	h.postAction(c, h.postUseCase.PublishNow)
}

// RetryHandler resets the failed targets of a post and delivers them again.
// POST /v1/posts/:id/retry - Returns 200 OK with the aggregated post.
func (h *PostHandler) RetryHandler(c *gin.Context) {
	h.postAction(c, func(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error) {
		if _, err := h.postUseCase.RetryFailed(ctx, postID); err != nil {
			return nil, err
		}
		return h.postUseCase.PublishPending(ctx, postID)
	})
}

// UpdateTargetStatusHandler applies a manual target status change.
// PUT /v1/targets/:id/status - Returns 200 OK.
func (h *PostHandler) UpdateTargetStatusHandler(c *gin.Context) {
	targetID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTargetStatusRequest
	if !h.bind(c, &req) {
		return
	}

	target, err := h.postUseCase.UpdateTargetStatus(
		c.Request.Context(),
		targetID,
		publishingDomain.TargetStatus(req.Status),
		req.Attributes(),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTargetToResponse(target))
}

func (h *PostHandler) postAction(
	c *gin.Context,
	fn func(ctx context.Context, postID uuid.UUID) (*publishingDomain.Post, error),
) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	post, err := fn(c.Request.Context(), postID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(post))
}

func (h *PostHandler) scheduleAction(
	c *gin.Context,
	fn func(ctx context.Context, postID uuid.UUID, at time.Time, timezone string) (*publishingDomain.Post, error),
) {
	postID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if !h.bind(c, &req) {
		return
	}

	post, err := fn(c.Request.Context(), postID, req.ScheduledAt, req.Timezone)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(post))
}

// parseID reads a UUID path parameter and writes a validation error when it is invalid.
func (h *PostHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid %s: must be a valid UUID", param), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

type validatable interface {
	Validate() error
}

// bind decodes the JSON body into req and validates it.
func (h *PostHandler) bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}
