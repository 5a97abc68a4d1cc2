package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/postflow/internal/app"
	"github.com/allisson/postflow/internal/config"
	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
)

// RunWorker starts the scheduler loop, and the metrics server when enabled, and blocks
// until SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker", slog.String("version", version))

	defer closeContainer(container, logger)

	scheduler, err := container.SchedulerUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server error", slog.Any("error", err))
				cancel()
			}
		}()
		defer func() {
			if err := shutdownServers(map[string]shutdowner{"metrics server": metricsServer}, cfg.DBConnMaxLifetime); err != nil {
				logger.Error("failed to shutdown metrics server", slog.Any("error", err))
			}
		}()
	}

	return runScheduler(ctx, scheduler, logger)
}

// runScheduler blocks on the scheduler loop. Cancellation of ctx is a clean stop.
func runScheduler(ctx context.Context, scheduler publishingUseCase.SchedulerUseCase, logger *slog.Logger) error {
	err := scheduler.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler stopped: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}
