package app

import (
	"context"
	"errors"
	"fmt"

	accountRepository "github.com/allisson/postflow/internal/account/repository"
	accountService "github.com/allisson/postflow/internal/account/service"
)

// AccountRepository returns the linked account repository based on database driver.
func (c *Container) AccountRepository() (accountService.AccountRepository, error) {
	var err error
	c.accountRepositoryInit.Do(func() {
		c.accountRepository, err = c.initAccountRepository()
		if err != nil {
			c.initErrors["accountRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accountRepository"]; exists {
		return nil, storedErr
	}
	return c.accountRepository, nil
}

// CredentialsKeeper returns the gocloud.dev secrets keeper that seals account credentials.
func (c *Container) CredentialsKeeper(ctx context.Context) (accountService.Keeper, error) {
	var err error
	c.credentialsKeeperInit.Do(func() {
		c.credentialsKeeper, err = c.initCredentialsKeeper(ctx)
		if err != nil {
			c.initErrors["credentialsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialsKeeper"]; exists {
		return nil, storedErr
	}
	return c.credentialsKeeper, nil
}

// CredentialsService returns the service that decrypts and seals account credentials.
func (c *Container) CredentialsService(ctx context.Context) (*accountService.CredentialsService, error) {
	var err error
	c.credentialsServiceInit.Do(func() {
		c.credentialsService, err = c.initCredentialsService(ctx)
		if err != nil {
			c.initErrors["credentialsService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialsService"]; exists {
		return nil, storedErr
	}
	return c.credentialsService, nil
}

// HealthGate returns the account health gate.
func (c *Container) HealthGate() (*accountService.HealthGate, error) {
	var err error
	c.healthGateInit.Do(func() {
		c.healthGate, err = c.initHealthGate()
		if err != nil {
			c.initErrors["healthGate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["healthGate"]; exists {
		return nil, storedErr
	}
	return c.healthGate, nil
}

// initAccountRepository creates the linked account repository based on the database driver.
func (c *Container) initAccountRepository() (accountService.AccountRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for account repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return accountRepository.NewPostgreSQLAccountRepository(db), nil
	case "mysql":
		return accountRepository.NewMySQLAccountRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCredentialsKeeper opens the keeper configured by CREDENTIALS_KEY_URI.
func (c *Container) initCredentialsKeeper(ctx context.Context) (accountService.Keeper, error) {
	if c.config.CredentialsKeyURI == "" {
		return nil, errors.New("CREDENTIALS_KEY_URI is required")
	}
	return accountService.OpenKeeper(ctx, c.config.CredentialsKeyURI)
}

// initCredentialsService creates the credentials service with all its dependencies.
func (c *Container) initCredentialsService(ctx context.Context) (*accountService.CredentialsService, error) {
	keeper, err := c.CredentialsKeeper(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials keeper for credentials service: %w", err)
	}

	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for credentials service: %w", err)
	}

	return accountService.NewCredentialsService(accountRepo, keeper), nil
}

// initHealthGate creates the account health gate.
func (c *Container) initHealthGate() (*accountService.HealthGate, error) {
	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for health gate: %w", err)
	}

	return accountService.NewHealthGate(accountRepo, c.Logger()), nil
}
