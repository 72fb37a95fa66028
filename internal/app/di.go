// Package app provides the dependency injection container that assembles
// application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	accountUseCase "github.com/guardvault/guardvault/internal/account/usecase"
	apikeyHTTP "github.com/guardvault/guardvault/internal/apikey/http"
	apikeyService "github.com/guardvault/guardvault/internal/apikey/service"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditHTTP "github.com/guardvault/guardvault/internal/audit/http"
	auditService "github.com/guardvault/guardvault/internal/audit/service"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	"github.com/guardvault/guardvault/internal/config"
	contentHTTP "github.com/guardvault/guardvault/internal/content/http"
	contentUseCase "github.com/guardvault/guardvault/internal/content/usecase"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	cryptoService "github.com/guardvault/guardvault/internal/crypto/service"
	cryptoUseCase "github.com/guardvault/guardvault/internal/crypto/usecase"
	"github.com/guardvault/guardvault/internal/database"
	internalHTTP "github.com/guardvault/guardvault/internal/http"
	"github.com/guardvault/guardvault/internal/metrics"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access; init errors are stored
// so repeated access returns the same failure instead of a half-built
// component.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Crypto
	masterKeyChain  *cryptoDomain.MasterKeyChain
	aeadManager     cryptoService.AEADManager
	keyring         cryptoService.Keyring
	kmsService      cryptoService.KMSService
	accountKeyStore cryptoUseCase.AccountKeyStore

	// Accounts
	accountRepository accountUseCase.AccountRepository
	accountUseCase    accountUseCase.AccountUseCase

	// API keys
	apiKeyRepository apikeyUseCase.APIKeyRepository
	keyService       apikeyService.KeyService
	apiKeyUseCase    apikeyUseCase.APIKeyUseCase
	apiKeyHandler    *apikeyHTTP.APIKeyHandler

	// Audit
	eventRepository auditUseCase.EventRepository
	eventSigner     auditService.EventSigner
	recorder        auditUseCase.Recorder
	auditLogUseCase auditUseCase.AuditLogUseCase
	auditLogHandler *auditHTTP.AuditLogHandler

	// Content
	contentRepository contentUseCase.RecordRepository
	contentUseCase    contentUseCase.ContentUseCase
	contentHandler    *contentHTTP.ContentHandler

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *internalHTTP.Server
	metricsServer *internalHTTP.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	masterKeyChainInit    sync.Once
	aeadManagerInit       sync.Once
	keyringInit           sync.Once
	kmsServiceInit        sync.Once
	accountKeyStoreInit   sync.Once
	accountRepositoryInit sync.Once
	accountUseCaseInit    sync.Once
	apiKeyRepositoryInit  sync.Once
	keyServiceInit        sync.Once
	apiKeyUseCaseInit     sync.Once
	apiKeyHandlerInit     sync.Once
	eventRepositoryInit   sync.Once
	eventSignerInit       sync.Once
	recorderInit          sync.Once
	auditLogUseCaseInit   sync.Once
	auditLogHandlerInit   sync.Once
	contentRepositoryInit sync.Once
	contentUseCaseInit    sync.Once
	contentHandlerInit    sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Shutdown performs cleanup of all initialized resources. Order matters: the
// servers stop accepting work first, the audit recorder drains its queue, and
// only then is cached key material zeroed and the database closed.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.recorder != nil {
		c.recorder.Close()
	}

	if c.accountKeyStore != nil {
		c.accountKeyStore.Close()
	}

	if c.masterKeyChain != nil {
		c.masterKeyChain.Close()
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
