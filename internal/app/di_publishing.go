package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/allisson/postflow/internal/lock"
	"github.com/allisson/postflow/internal/platform"
	publishingDomain "github.com/allisson/postflow/internal/publishing/domain"
	publishingHTTP "github.com/allisson/postflow/internal/publishing/http"
	publishingRepository "github.com/allisson/postflow/internal/publishing/repository"
	publishingUseCase "github.com/allisson/postflow/internal/publishing/usecase"
)

// schedulerLockPrefix namespaces the scheduler lock keys in Redis.
const schedulerLockPrefix = "postflow:lock:"

// PlatformRegistry returns the registry of configured platform adapters.
func (c *Container) PlatformRegistry() *platform.Registry {
	c.platformRegistryInit.Do(func() {
		c.platformRegistry = c.initPlatformRegistry()
	})
	return c.platformRegistry
}

// PostRepository returns the post repository based on database driver.
func (c *Container) PostRepository() (publishingUseCase.PostRepository, error) {
	var err error
	c.postRepositoryInit.Do(func() {
		c.postRepository, err = c.initPostRepository()
		if err != nil {
			c.initErrors["postRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["postRepository"]; exists {
		return nil, storedErr
	}
	return c.postRepository, nil
}

// TargetRepository returns the post target repository based on database driver.
func (c *Container) TargetRepository() (publishingUseCase.TargetRepository, error) {
	var err error
	c.targetRepositoryInit.Do(func() {
		c.targetRepository, err = c.initTargetRepository()
		if err != nil {
			c.initErrors["targetRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["targetRepository"]; exists {
		return nil, storedErr
	}
	return c.targetRepository, nil
}

// StatusAggregator returns the aggregator that derives post status from its targets.
func (c *Container) StatusAggregator() (*publishingUseCase.StatusAggregator, error) {
	var err error
	c.statusAggregatorInit.Do(func() {
		c.statusAggregator, err = c.initStatusAggregator()
		if err != nil {
			c.initErrors["statusAggregator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["statusAggregator"]; exists {
		return nil, storedErr
	}
	return c.statusAggregator, nil
}

// FanOutExecutor returns the executor that delivers a post to its targets.
func (c *Container) FanOutExecutor(ctx context.Context) (*publishingUseCase.FanOutExecutor, error) {
	var err error
	c.fanOutExecutorInit.Do(func() {
		c.fanOutExecutor, err = c.initFanOutExecutor(ctx)
		if err != nil {
			c.initErrors["fanOutExecutor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fanOutExecutor"]; exists {
		return nil, storedErr
	}
	return c.fanOutExecutor, nil
}

// PostUseCase returns the post lifecycle use case.
func (c *Container) PostUseCase() (publishingUseCase.PostUseCase, error) {
	var err error
	c.postUseCaseInit.Do(func() {
		c.postUseCase, err = c.initPostUseCase()
		if err != nil {
			c.initErrors["postUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["postUseCase"]; exists {
		return nil, storedErr
	}
	return c.postUseCase, nil
}

// SchedulerUseCase returns the scheduler that dispatches due posts.
func (c *Container) SchedulerUseCase() (publishingUseCase.SchedulerUseCase, error) {
	var err error
	c.schedulerUseCaseInit.Do(func() {
		c.schedulerUseCase, err = c.initSchedulerUseCase()
		if err != nil {
			c.initErrors["schedulerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["schedulerUseCase"]; exists {
		return nil, storedErr
	}
	return c.schedulerUseCase, nil
}

// PostHandler returns the HTTP handler for post operations.
func (c *Container) PostHandler() (*publishingHTTP.PostHandler, error) {
	var err error
	c.postHandlerInit.Do(func() {
		c.postHandler, err = c.initPostHandler()
		if err != nil {
			c.initErrors["postHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["postHandler"]; exists {
		return nil, storedErr
	}
	return c.postHandler, nil
}

// Locker returns the scheduler lock, or nil when cross-replica locking is disabled.
func (c *Container) Locker() publishingUseCase.Locker {
	if !c.config.SchedulerLockEnabled {
		return nil
	}
	return lock.NewRedisLocker(c.RedisClient(), schedulerLockPrefix)
}

// initPlatformRegistry registers an adapter for every platform that is configured.
func (c *Container) initPlatformRegistry() *platform.Registry {
	httpClient := &http.Client{Timeout: c.config.PlatformTimeout}
	registry := platform.NewRegistry()

	if c.config.TwitterAPIKey != "" {
		registry.Register(platform.NewTwitterAdapter(c.config.TwitterAPIKey, c.config.TwitterAPIKeySecret, httpClient))
	}
	if c.config.MastodonBaseURL != "" {
		registry.Register(platform.NewMastodonAdapter(c.config.MastodonBaseURL, httpClient))
	}

	return registry
}

// initPostRepository creates the post repository based on the database driver.
func (c *Container) initPostRepository() (publishingUseCase.PostRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for post repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return publishingRepository.NewPostgreSQLPostRepository(db), nil
	case "mysql":
		return publishingRepository.NewMySQLPostRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTargetRepository creates the post target repository based on the database driver.
func (c *Container) initTargetRepository() (publishingUseCase.TargetRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for target repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return publishingRepository.NewPostgreSQLTargetRepository(db), nil
	case "mysql":
		return publishingRepository.NewMySQLTargetRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initStatusAggregator creates the status aggregator with the configured success policy.
func (c *Container) initStatusAggregator() (*publishingUseCase.StatusAggregator, error) {
	policy, err := publishingDomain.ParseSuccessPolicy(c.config.PublishSuccessPolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid publish success policy: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for status aggregator: %w", err)
	}

	postRepo, err := c.PostRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get post repository for status aggregator: %w", err)
	}

	targetRepo, err := c.TargetRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get target repository for status aggregator: %w", err)
	}

	return publishingUseCase.NewStatusAggregator(txManager, postRepo, targetRepo, policy, c.Logger()), nil
}

// initFanOutExecutor creates the fan-out executor with all its dependencies.
func (c *Container) initFanOutExecutor(ctx context.Context) (*publishingUseCase.FanOutExecutor, error) {
	healthGate, err := c.HealthGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get health gate for fan-out executor: %w", err)
	}

	credentials, err := c.CredentialsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials service for fan-out executor: %w", err)
	}

	aggregator, err := c.StatusAggregator()
	if err != nil {
		return nil, fmt.Errorf("failed to get status aggregator for fan-out executor: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for fan-out executor: %w", err)
	}

	return publishingUseCase.NewFanOutExecutor(
		healthGate,
		credentials,
		c.PlatformRegistry(),
		aggregator,
		businessMetrics,
		c.Logger(),
		c.config.FanOutConcurrency,
	), nil
}

// initPostUseCase creates the post use case with all its dependencies.
func (c *Container) initPostUseCase() (publishingUseCase.PostUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for post use case: %w", err)
	}

	postRepo, err := c.PostRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get post repository for post use case: %w", err)
	}

	targetRepo, err := c.TargetRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get target repository for post use case: %w", err)
	}

	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for post use case: %w", err)
	}

	dispatcher, err := c.FanOutExecutor(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get fan-out executor for post use case: %w", err)
	}

	aggregator, err := c.StatusAggregator()
	if err != nil {
		return nil, fmt.Errorf("failed to get status aggregator for post use case: %w", err)
	}

	baseUseCase := publishingUseCase.NewPostUseCase(
		txManager,
		postRepo,
		targetRepo,
		accountRepo,
		dispatcher,
		aggregator,
		c.config.AllowSkipApproval,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for post use case: %w", err)
		}
		return publishingUseCase.NewPostUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSchedulerUseCase creates the scheduler use case with all its dependencies.
func (c *Container) initSchedulerUseCase() (publishingUseCase.SchedulerUseCase, error) {
	postRepo, err := c.PostRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get post repository for scheduler use case: %w", err)
	}

	postUseCase, err := c.PostUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get post use case for scheduler use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for scheduler use case: %w", err)
	}

	schedulerConfig := publishingUseCase.SchedulerConfig{
		Schedule:  c.config.SchedulerCron,
		BatchSize: c.config.SchedulerBatchSize,
		LockTTL:   c.config.SchedulerLockTTL,
	}

	return publishingUseCase.NewSchedulerUseCase(
		schedulerConfig,
		postRepo,
		postUseCase,
		c.Locker(),
		businessMetrics,
		c.Logger(),
	), nil
}

// initPostHandler creates the post HTTP handler with all its dependencies.
func (c *Container) initPostHandler() (*publishingHTTP.PostHandler, error) {
	postUseCase, err := c.PostUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get post use case for post handler: %w", err)
	}

	return publishingHTTP.NewPostHandler(postUseCase, c.Logger()), nil
}
