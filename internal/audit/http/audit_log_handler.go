// Package http provides HTTP handlers for reading the audit trail.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditHTTPDto "github.com/guardvault/guardvault/internal/audit/http/dto"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/httputil"
)

// AuditLogHandler handles HTTP requests for the audit trail. Results are
// always scoped to the authenticated account.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler retrieves the authenticated account's audit events, newest
// first, with optional inclusive RFC3339 time boundaries.
// GET /v1/audit-events?offset=0&limit=50&created_at_from=...&created_at_to=...
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	account, ok := authHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, err := parseTimeParam(c.Query("created_at_from"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid created_at_from parameter"), h.logger)
		return
	}

	createdAtTo, err := parseTimeParam(c.Query("created_at_to"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid created_at_to parameter"), h.logger)
		return
	}

	events, err := h.auditLogUseCase.List(c.Request.Context(), &account.ID, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, auditHTTPDto.MapEventsToListResponse(events, offset, limit))
}

// parseTimeParam parses an optional RFC3339 query parameter.
func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
