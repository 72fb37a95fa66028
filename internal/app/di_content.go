package app

import (
	"fmt"

	contentHTTP "github.com/guardvault/guardvault/internal/content/http"
	contentRepository "github.com/guardvault/guardvault/internal/content/repository"
	contentUseCase "github.com/guardvault/guardvault/internal/content/usecase"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

// ContentRepository returns the content record repository based on database driver.
func (c *Container) ContentRepository() (contentUseCase.RecordRepository, error) {
	var err error
	c.contentRepositoryInit.Do(func() {
		c.contentRepository, err = c.initContentRepository()
		if err != nil {
			c.initErrors["contentRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contentRepository"]; exists {
		return nil, storedErr
	}
	return c.contentRepository, nil
}

// ContentUseCase returns the content use case.
func (c *Container) ContentUseCase() (contentUseCase.ContentUseCase, error) {
	var err error
	c.contentUseCaseInit.Do(func() {
		c.contentUseCase, err = c.initContentUseCase()
		if err != nil {
			c.initErrors["contentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contentUseCase"]; exists {
		return nil, storedErr
	}
	return c.contentUseCase, nil
}

// ContentHandler returns the HTTP handler for content operations.
func (c *Container) ContentHandler() (*contentHTTP.ContentHandler, error) {
	var err error
	c.contentHandlerInit.Do(func() {
		c.contentHandler, err = c.initContentHandler()
		if err != nil {
			c.initErrors["contentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["contentHandler"]; exists {
		return nil, storedErr
	}
	return c.contentHandler, nil
}

// initContentRepository creates the content repository based on the database driver.
func (c *Container) initContentRepository() (contentUseCase.RecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for content repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return contentRepository.NewPostgreSQLContentRepository(db), nil
	case "mysql":
		return contentRepository.NewMySQLContentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initContentUseCase creates the content use case with all its dependencies.
func (c *Container) initContentUseCase() (contentUseCase.ContentUseCase, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.ContentAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid content algorithm: %w", err)
	}

	recordRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for content use case: %w", err)
	}

	accountRepo, err := c.AccountRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get account repository for content use case: %w", err)
	}

	keyStore, err := c.AccountKeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get account key store for content use case: %w", err)
	}

	baseUseCase := contentUseCase.NewContentUseCase(
		recordRepo,
		accountRepo,
		keyStore,
		c.AEADManager(),
		algorithm,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for content use case: %w", err)
		}
		return contentUseCase.NewContentUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initContentHandler creates the content HTTP handler with all its dependencies.
func (c *Container) initContentHandler() (*contentHTTP.ContentHandler, error) {
	useCase, err := c.ContentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get content use case for content handler: %w", err)
	}

	recorder, err := c.Recorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit recorder for content handler: %w", err)
	}

	return contentHTTP.NewContentHandler(useCase, recorder, c.Logger()), nil
}
