package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
)

// RunDueScheduled performs a single scheduler run and reports how many due posts were
// selected, dispatched and failed. Supports text and JSON output formats.
func RunDueScheduled(
	ctx context.Context,
	scheduler publishingUseCase.SchedulerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("running due scheduled posts")

	result, err := scheduler.RunDueScheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to run due scheduled posts: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"selected":   result.Selected,
			"dispatched": result.Dispatched,
			"failed":     result.Failed,
			"skipped":    result.Skipped,
		}); err != nil {
			return err
		}
	} else {
		outputRunResultText(writer, result)
	}

	logger.Info("scheduler run completed",
		slog.Int("selected", result.Selected),
		slog.Int("dispatched", result.Dispatched),
		slog.Int("failed", result.Failed),
		slog.Bool("skipped", result.Skipped),
	)

	return nil
}

// outputRunResultText outputs the run result in human-readable text format.
func outputRunResultText(writer io.Writer, result *publishingUseCase.RunResult) {
	if result.Skipped {
		_, _ = fmt.Fprintln(writer, "Skipped: another scheduler run holds the lock")
		return
	}
	_, _ = fmt.Fprintf(writer, "Selected %d due post(s): %d dispatched, %d failed\n",
		result.Selected, result.Dispatched, result.Failed)
}
