// Package http assembles the Gin router and HTTP servers for the API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apikeyHTTP "github.com/guardvault/guardvault/internal/apikey/http"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditHTTP "github.com/guardvault/guardvault/internal/audit/http"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
	contentHTTP "github.com/guardvault/guardvault/internal/content/http"
)

// RouterConfig carries everything the router needs. All /v1 routes sit behind
// API key authentication; health probes do not.
type RouterConfig struct {
	Logger *slog.Logger

	APIKeyUseCase apikeyUseCase.APIKeyUseCase
	Recorder      auditUseCase.Recorder

	APIKeyHandler   *apikeyHTTP.APIKeyHandler
	ContentHandler  *contentHTTP.ContentHandler
	AuditLogHandler *auditHTTP.AuditLogHandler

	// ReadyCheck reports whether downstream dependencies are reachable.
	// Typically db.PingContext. Nil means readiness equals liveness.
	ReadyCheck func(ctx context.Context) error

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	// MetricsMiddleware records per-request metrics when non-nil.
	MetricsMiddleware gin.HandlerFunc
}

// NewRouter builds the Gin engine with all middleware and routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(cfg.Logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.Logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		if cfg.ReadyCheck != nil {
			if err := cfg.ReadyCheck(c.Request.Context()); err != nil {
				cfg.Logger.Warn("readiness check failed", slog.Any("error", err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var failureLimiter *authHTTP.AuthFailureLimiter
	if cfg.RateLimitEnabled {
		failureLimiter = authHTTP.NewAuthFailureLimiter(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst)
	}

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(cfg.APIKeyUseCase, cfg.Recorder, failureLimiter, cfg.Logger))
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, cfg.Logger))
	}

	apiKeys := v1.Group("/api-keys")
	{
		apiKeys.POST("", cfg.APIKeyHandler.IssueHandler)
		apiKeys.GET("", cfg.APIKeyHandler.ListHandler)
		apiKeys.DELETE("/:id", cfg.APIKeyHandler.RevokeHandler)
	}

	content := v1.Group("/content")
	{
		content.POST("", cfg.ContentHandler.StoreHandler)
		content.GET("", cfg.ContentHandler.ListHandler)
		content.GET("/:id", cfg.ContentHandler.GetHandler)
	}

	v1.GET("/audit-events", cfg.AuditLogHandler.ListHandler)

	return router
}

// Server wraps the API HTTP server with graceful shutdown support.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server listening on host:port with the provided router.
func NewServer(host string, port int, logger *slog.Logger, router *gin.Engine) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting api server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start api server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	return s.server.Shutdown(ctx)
}
