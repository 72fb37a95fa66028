package app

import (
	"fmt"

	auditHTTP "github.com/guardvault/guardvault/internal/audit/http"
	auditRepository "github.com/guardvault/guardvault/internal/audit/repository"
	auditService "github.com/guardvault/guardvault/internal/audit/service"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
)

// EventRepository returns the audit event repository based on database driver.
func (c *Container) EventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.eventRepositoryInit.Do(func() {
		c.eventRepository, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepository"]; exists {
		return nil, storedErr
	}
	return c.eventRepository, nil
}

// EventSigner returns the audit event signer.
func (c *Container) EventSigner() (auditService.EventSigner, error) {
	var err error
	c.eventSignerInit.Do(func() {
		c.eventSigner, err = c.initEventSigner()
		if err != nil {
			c.initErrors["eventSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventSigner"]; exists {
		return nil, storedErr
	}
	return c.eventSigner, nil
}

// Recorder returns the asynchronous audit recorder. The recorder starts its
// background worker on creation; Shutdown closes it and drains the queue.
func (c *Container) Recorder() (auditUseCase.Recorder, error) {
	var err error
	c.recorderInit.Do(func() {
		c.recorder, err = c.initRecorder()
		if err != nil {
			c.initErrors["recorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["recorder"]; exists {
		return nil, storedErr
	}
	return c.recorder, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditLogHandler returns the HTTP handler for audit log operations.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initEventRepository creates the audit event repository based on the database driver.
func (c *Container) initEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventSigner creates the audit event signer keyed by the master key chain.
func (c *Container) initEventSigner() (auditService.EventSigner, error) {
	masterKeyChain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for event signer: %w", err)
	}

	return auditService.NewEventSigner(masterKeyChain), nil
}

// initRecorder creates the asynchronous audit recorder.
func (c *Container) initRecorder() (auditUseCase.Recorder, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for recorder: %w", err)
	}

	signer, err := c.EventSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get event signer for recorder: %w", err)
	}

	return auditUseCase.NewRecorder(eventRepo, signer, c.Logger(), c.config.AuditQueueSize), nil
}

// initAuditLogUseCase creates the audit log use case with all its dependencies.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for audit log use case: %w", err)
	}

	signer, err := c.EventSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get event signer for audit log use case: %w", err)
	}

	return auditUseCase.NewAuditLogUseCase(eventRepo, signer), nil
}

// initAuditLogHandler creates the audit log HTTP handler with all its dependencies.
func (c *Container) initAuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	useCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}

	return auditHTTP.NewAuditLogHandler(useCase, c.Logger()), nil
}
