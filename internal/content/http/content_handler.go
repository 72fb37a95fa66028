// Package http provides HTTP handlers for account-scoped content storage.
// Payloads are encrypted with the authenticated account's key before they
// touch the database and decrypted only on read.
package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	authHTTP "github.com/guardvault/guardvault/internal/auth/http"
	contentHTTPDto "github.com/guardvault/guardvault/internal/content/http/dto"
	contentUseCase "github.com/guardvault/guardvault/internal/content/usecase"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/httputil"
	customValidation "github.com/guardvault/guardvault/internal/validation"
)

// ContentHandler handles HTTP requests for content storage operations.
type ContentHandler struct {
	contentUseCase contentUseCase.ContentUseCase
	recorder       auditUseCase.Recorder
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler with required dependencies.
func NewContentHandler(
	contentUseCase contentUseCase.ContentUseCase,
	recorder auditUseCase.Recorder,
	logger *slog.Logger,
) *ContentHandler {
	return &ContentHandler{
		contentUseCase: contentUseCase,
		recorder:       recorder,
		logger:         logger,
	}
}

// StoreHandler encrypts and stores a payload for the authenticated account.
// POST /v1/content
// Returns 201 Created with record metadata; the plaintext is never echoed back.
func (h *ContentHandler) StoreHandler(c *gin.Context) {
	account, ok := authHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req contentHTTPDto.StoreContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(value)

	record, err := h.contentUseCase.Store(c.Request.Context(), account.ID, req.Kind, value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.Record(auditUseCase.RecordInput{
		AccountID: &account.ID,
		EventType: auditDomain.EventContentStored,
		Metadata:  map[string]any{"record_id": record.ID.String(), "kind": record.Kind},
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.JSON(http.StatusCreated, contentHTTPDto.MapRecordToCreateResponse(record))
}

// GetHandler retrieves and decrypts a record owned by the authenticated account.
// GET /v1/content/:id
// Returns 200 OK with the plaintext payload. Decryption failures are audited.
func (h *ContentHandler) GetHandler(c *gin.Context) {
	account, ok := authHTTP.GetAccount(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid record id"), h.logger)
		return
	}

	record, err := h.contentUseCase.Get(c.Request.Context(), account.ID, recordID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDecryptionFailed) {
			h.recorder.Record(auditUseCase.RecordInput{
				AccountID: &account.ID,
				EventType: auditDomain.EventDecryptionFailed,
				Metadata:  map[string]any{"record_id": recordID.String()},
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	defer cryptoDomain.Zero(record.Plaintext)

	h.recorder.Record(auditUseCase.RecordInput{
		AccountID: &account.ID,
		EventType: auditDomain.EventContentRead,
		Metadata:  map[string]any{"record_id": record.ID.String(), "kind": record.Kind},
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, contentHTTPDto.MapRecordToGetResponse(record))
}

// ListHandler retrieves record metadata for the authenticated account.
// GET /v1/content?offset=0&limit=50
// Returns 200 OK with a paginated list; payloads are never included.
func (h *ContentHandler) ListHandler(c *gin.Context) {
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

	records, err := h.contentUseCase.List(c.Request.Context(), account.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, contentHTTPDto.MapRecordsToListResponse(records, offset, limit))
}
