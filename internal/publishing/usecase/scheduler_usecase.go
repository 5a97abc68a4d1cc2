package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/allisson/postflow/internal/lock"
	"github.com/allisson/postflow/internal/metrics"
)

// schedulerLockKey names the lock that keeps scheduler runs from overlapping.
const schedulerLockKey = "scheduler:run-due-scheduled"

// cronParser accepts standard five-field expressions, an optional seconds field and
// descriptors such as @every 1m.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Schedule is the cron expression that triggers RunDueScheduled.
	Schedule string
	// BatchSize caps the number of posts dispatched per run.
	BatchSize int
	// LockTTL bounds how long a crashed run can hold the scheduler lock.
	LockTTL time.Duration
}

// schedulerUseCase implements the SchedulerUseCase interface.
type schedulerUseCase struct {
	config   SchedulerConfig
	postRepo PostRepository
	posts    PostUseCase
	locker   Locker
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
}

// NewSchedulerUseCase creates a new SchedulerUseCase. locker may be nil, in which case
// runs are not coordinated across replicas.
func NewSchedulerUseCase(
	config SchedulerConfig,
	postRepo PostRepository,
	posts PostUseCase,
	locker Locker,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) SchedulerUseCase {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &schedulerUseCase{
		config:   config,
		postRepo: postRepo,
		posts:    posts,
		locker:   locker,
		metrics:  businessMetrics,
		logger:   logger,
	}
}

// RunDueScheduled selects up to BatchSize due posts, oldest first, and publishes each one.
func (s *schedulerUseCase) RunDueScheduled(ctx context.Context) (*RunResult, error) {
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, schedulerLockKey, s.config.LockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrNotAcquired) {
				if s.logger != nil {
					s.logger.Info("scheduler run skipped, lock held by another replica")
				}
				return &RunResult{Skipped: true}, nil
			}
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil && s.logger != nil {
				s.logger.Warn("failed to release scheduler lock", slog.Any("error", err))
			}
		}()
	}

	start := time.Now()
	posts, err := s.postRepo.ListDueScheduled(ctx, start.UTC(), s.config.BatchSize)
	if err != nil {
		s.metrics.RecordOperation(ctx, "publishing", "scheduler_run", "error")
		s.metrics.RecordDuration(ctx, "publishing", "scheduler_run", time.Since(start), "error")
		return nil, err
	}

	result := &RunResult{Selected: len(posts)}
	for _, post := range posts {
		if _, err := s.posts.PublishNow(ctx, post.ID); err != nil {
			result.Failed++
			if s.logger != nil {
				s.logger.Error("failed to publish scheduled post",
					slog.String("post_id", post.ID.String()),
					slog.Any("error", err),
				)
			}
			continue
		}
		result.Dispatched++
	}

	status := "success"
	if result.Failed > 0 {
		status = "partial"
	}
	s.metrics.RecordOperation(ctx, "publishing", "scheduler_run", status)
	s.metrics.RecordDuration(ctx, "publishing", "scheduler_run", time.Since(start), status)

	if s.logger != nil && result.Selected > 0 {
		s.logger.Info("scheduler run finished",
			slog.Int("selected", result.Selected),
			slog.Int("dispatched", result.Dispatched),
			slog.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// Start triggers RunDueScheduled on the configured cron schedule until ctx is cancelled.
// A run still in progress when the next trigger fires causes that trigger to be skipped.
func (s *schedulerUseCase) Start(ctx context.Context) error {
	schedule, err := ParseSchedule(s.config.Schedule)
	if err != nil {
		return err
	}

	logger := s.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cronLog := &cronLogger{logger: logger}

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := s.RunDueScheduled(ctx); err != nil {
			logger.Error("scheduler run failed", slog.Any("error", err))
		}
	}))

	logger.Info("starting scheduler",
		slog.String("schedule", s.config.Schedule),
		slog.Int("batch_size", s.config.BatchSize),
	)
	c.Start()

	<-ctx.Done()
	logger.Info("stopping scheduler")
	<-c.Stop().Done()

	return ctx.Err()
}

// ParseSchedule validates a scheduler cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler cron expression %q: %w", spec, err)
	}
	return schedule, nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
