package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
)

// RunRetryPost retries the failed targets of a post and publishes them again. With
// pendingOnly it skips the reset and only publishes targets already PENDING, which
// recovers a post whose delivery was interrupted.
func RunRetryPost(
	ctx context.Context,
	postUseCase publishingUseCase.PostUseCase,
	logger *slog.Logger,
	writer io.Writer,
	postIDStr string,
	pendingOnly bool,
	format string,
) error {
	postID, err := uuid.Parse(postIDStr)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	logger.Info("retrying post",
		slog.String("post_id", postID.String()),
		slog.Bool("pending_only", pendingOnly),
	)

	if !pendingOnly {
		if _, err := postUseCase.RetryFailed(ctx, postID); err != nil {
			return fmt.Errorf("failed to reset failed targets: %w", err)
		}
	}

	post, err := postUseCase.PublishPending(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to publish pending targets: %w", err)
	}

	targets, err := postUseCase.ListTargets(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if format == "json" {
		if err := outputRetryPostJSON(writer, post, targets); err != nil {
			return err
		}
	} else {
		outputRetryPostText(writer, post, targets)
	}

	logger.Info("post retry completed",
		slog.String("post_id", post.ID.String()),
		slog.String("status", string(post.Status)),
	)

	return nil
}

// outputRetryPostText outputs the post and target statuses in human-readable text format.
func outputRetryPostText(writer io.Writer, post *publishingDomain.Post, targets []*publishingDomain.PostTarget) {
	_, _ = fmt.Fprintf(writer, "Post %s is %s\n", post.ID, post.Status)
	for _, target := range targets {
		line := fmt.Sprintf("  %s (%s): %s", target.ID, target.Platform, target.Status)
		if target.ErrorCode != nil {
			line += " " + *target.ErrorCode
		}
		_, _ = fmt.Fprintln(writer, line)
	}
}

// outputRetryPostJSON outputs the post and target statuses in JSON format.
func outputRetryPostJSON(writer io.Writer, post *publishingDomain.Post, targets []*publishingDomain.PostTarget) error {
	items := make([]map[string]any, 0, len(targets))
	for _, target := range targets {
		item := map[string]any{
			"id":       target.ID.String(),
			"platform": target.Platform,
			"status":   string(target.Status),
		}
		if target.ErrorCode != nil {
			item["error_code"] = *target.ErrorCode
		}
		items = append(items, item)
	}

	return writeJSON(writer, map[string]any{
		"id":      post.ID.String(),
		"status":  string(post.Status),
		"targets": items,
	})
}
