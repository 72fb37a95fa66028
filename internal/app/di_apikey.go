package app

import (
	"fmt"

	apikeyHTTP "github.com/guardvault/guardvault/internal/apikey/http"
	apikeyRepository "github.com/guardvault/guardvault/internal/apikey/repository"
	apikeyService "github.com/guardvault/guardvault/internal/apikey/service"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
)

// KeyService returns the API key generation and hashing service.
func (c *Container) KeyService() apikeyService.KeyService {
	c.keyServiceInit.Do(func() {
		c.keyService = c.initKeyService()
	})
	return c.keyService
}

// APIKeyRepository returns the API key repository based on database driver.
func (c *Container) APIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeyRepositoryInit.Do(func() {
		c.apiKeyRepository, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepository, nil
}

// APIKeyUseCase returns the API key use case.
func (c *Container) APIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUseCaseInit.Do(func() {
		c.apiKeyUseCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeyUseCase, nil
}

// APIKeyHandler returns the HTTP handler for API key management operations.
func (c *Container) APIKeyHandler() (*apikeyHTTP.APIKeyHandler, error) {
	var err error
	c.apiKeyHandlerInit.Do(func() {
		c.apiKeyHandler, err = c.initAPIKeyHandler()
		if err != nil {
			c.initErrors["apiKeyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyHandler"]; exists {
		return nil, storedErr
	}
	return c.apiKeyHandler, nil
}

// initKeyService creates the key service with the configured hash policy.
func (c *Container) initKeyService() apikeyService.KeyService {
	return apikeyService.NewKeyService(c.config.APIKeyHashPolicy)
}

// initAPIKeyRepository creates the API key repository based on the database driver.
func (c *Container) initAPIKeyRepository() (apikeyUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return apikeyRepository.NewPostgreSQLAPIKeyRepository(db), nil
	case "mysql":
		return apikeyRepository.NewMySQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIKeyUseCase creates the API key use case with all its dependencies.
func (c *Container) initAPIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	apiKeyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}

	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for api key use case: %w", err)
	}

	baseUseCase := apikeyUseCase.NewAPIKeyUseCase(
		apiKeyRepo,
		accountRepo,
		c.KeyService(),
		c.Logger(),
		c.config.APIKeyIssueMaxAttempts,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
		}
		return apikeyUseCase.NewAPIKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAPIKeyHandler creates the API key HTTP handler with all its dependencies.
func (c *Container) initAPIKeyHandler() (*apikeyHTTP.APIKeyHandler, error) {
	useCase, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for api key handler: %w", err)
	}

	recorder, err := c.Recorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for api key handler: %w", err)
	}

	return apikeyHTTP.NewAPIKeyHandler(useCase, recorder, c.Logger()), nil
}
