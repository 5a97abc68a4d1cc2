package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
)

// mockSchedulerUseCase is a mock implementation of SchedulerUseCase.
type mockSchedulerUseCase struct {
	mock.Mock
}

func (m *mockSchedulerUseCase) RunDueScheduled(ctx context.Context) (*publishingUseCase.RunResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*publishingUseCase.RunResult), args.Error(1)
}

func (m *mockSchedulerUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestRunDueScheduled(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		scheduler := &mockSchedulerUseCase{}
		scheduler.On("RunDueScheduled", ctx).
			Return(&publishingUseCase.RunResult{Selected: 3, Dispatched: 2, Failed: 1}, nil)

		var out bytes.Buffer
		err := RunDueScheduled(ctx, scheduler, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Selected 3 due post(s): 2 dispatched, 1 failed")
		scheduler.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		scheduler := &mockSchedulerUseCase{}
		scheduler.On("RunDueScheduled", ctx).
			Return(&publishingUseCase.RunResult{Selected: 5, Dispatched: 5}, nil)

		var out bytes.Buffer
		err := RunDueScheduled(ctx, scheduler, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"selected": 5`)
		require.Contains(t, out.String(), `"dispatched": 5`)
		require.Contains(t, out.String(), `"skipped": false`)
		scheduler.AssertExpectations(t)
	})

	t.Run("skipped-by-lock", func(t *testing.T) {
		scheduler := &mockSchedulerUseCase{}
		scheduler.On("RunDueScheduled", ctx).Return(&publishingUseCase.RunResult{Skipped: true}, nil)

		var out bytes.Buffer
		err := RunDueScheduled(ctx, scheduler, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Skipped")
	})

	t.Run("run-error", func(t *testing.T) {
		scheduler := &mockSchedulerUseCase{}
		scheduler.On("RunDueScheduled", ctx).Return(nil, errors.New("database unavailable"))

		err := RunDueScheduled(ctx, scheduler, logger, &bytes.Buffer{}, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to run due scheduled posts")
	})
}

func TestRunScheduler(t *testing.T) {
	logger := slog.Default()

	t.Run("cancelled-is-clean-stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		scheduler := &mockSchedulerUseCase{}
		scheduler.On("Start", ctx).Return(context.Canceled)

		require.NoError(t, runScheduler(ctx, scheduler, logger))
		scheduler.AssertExpectations(t)
	})

	t.Run("invalid-schedule", func(t *testing.T) {
		ctx := context.Background()
		scheduler := &mockSchedulerUseCase{}
		scheduler.On("Start", ctx).Return(errors.New("invalid scheduler cron expression"))

		err := runScheduler(ctx, scheduler, logger)

		require.Error(t, err)
		require.Contains(t, err.Error(), "scheduler stopped")
	})
}
