// Package http provides HTTP handlers for API key management. All operations
// act on the authenticated account's own keys.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apikeyHTTPDto "github.com/guardvault/guardvault/internal/apikey/http/dto"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/httputil"
	customValidation "github.com/guardvault/guardvault/internal/validation"
)

// APIKeyHandler handles HTTP requests for API key management.
type APIKeyHandler struct {
	apiKeyUseCase apikeyUseCase.APIKeyUseCase
	recorder      auditUseCase.Recorder
	logger        *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler with required dependencies.
func NewAPIKeyHandler(
	apiKeyUseCase apikeyUseCase.APIKeyUseCase,
	recorder auditUseCase.Recorder,
	logger *slog.Logger,
) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyUseCase: apiKeyUseCase,
		recorder:      recorder,
		logger:        logger,
	}
}

// IssueHandler issues a new API key for the authenticated account.
// POST /v1/api-keys
// Returns 201 Created. The plaintext key appears in this response and nowhere
// else.
func (h *APIKeyHandler) IssueHandler(c *gin.Context) {
	account, ok := authHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req apikeyHTTPDto.IssueAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.apiKeyUseCase.Issue(c.Request.Context(), &apikeyDomain.IssueAPIKeyInput{
		AccountID: account.ID,
		Name:      req.Name,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.Record(auditUseCase.RecordInput{
		AccountID: &account.ID,
		EventType: auditDomain.EventAPIKeyIssued,
		Metadata:  map[string]any{"api_key_id": output.ID.String(), "name": req.Name},
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.JSON(http.StatusCreated, apikeyHTTPDto.MapIssueOutputToResponse(output))
}

// ListHandler retrieves the authenticated account's API key metadata.
// GET /v1/api-keys?offset=0&limit=50
func (h *APIKeyHandler) ListHandler(c *gin.Context) {
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

	apiKeys, err := h.apiKeyUseCase.List(c.Request.Context(), account.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, apikeyHTTPDto.MapAPIKeysToListResponse(apiKeys, offset, limit))
}

// RevokeHandler permanently revokes one of the account's API keys.
// DELETE /v1/api-keys/:id?force=false
// Revoking the key that authenticated this request requires force=true.
// Returns 204 No Content.
func (h *APIKeyHandler) RevokeHandler(c *gin.Context) {
	account, ok := authHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid api key id"), h.logger)
		return
	}

	force, err := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid force parameter"), h.logger)
		return
	}

	var authenticatedKeyID uuid.UUID
	if apiKey, ok := authHTTP.GetAPIKey(c.Request.Context()); ok {
		authenticatedKeyID = apiKey.ID
	}

	err = h.apiKeyUseCase.Revoke(c.Request.Context(), &apikeyUseCase.RevokeAPIKeyInput{
		KeyID:               keyID,
		RequestingAccountID: account.ID,
		AuthenticatedKeyID:  authenticatedKeyID,
		Force:               force,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.Record(auditUseCase.RecordInput{
		AccountID: &account.ID,
		EventType: auditDomain.EventAPIKeyRevoked,
		Metadata:  map[string]any{"api_key_id": keyID.String(), "forced": force},
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.Data(http.StatusNoContent, "application/json", nil)
}
