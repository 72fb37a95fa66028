package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	auditUseCase "github.com/guardvault/guardvault/internal/audit/usecase"
	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/httputil"
)

// AuthenticationMiddleware authenticates requests with an API key presented
// either as "Authorization: Bearer <key>" or in the "X-API-Key" header.
//
// The credential is resolved through APIKeyUseCase.Validate, which rejects
// unknown, revoked, and suspended-account credentials uniformly; this
// middleware adds nothing that would let a caller tell those cases apart, and
// every rejection is the same 401. Authentication is terminal per request:
// it either binds the account into the context or aborts.
//
// Outcomes are audited with the request origin. Recording is best-effort and
// never affects the response.
//
// Each rejection consumes from a per-address failure budget when
// failureLimiter is non-nil; once the budget is spent the address gets 429
// instead of 401 until it backs off.
func AuthenticationMiddleware(
	apiKeyUseCase apikeyUseCase.APIKeyUseCase,
	recorder auditUseCase.Recorder,
	failureLimiter *AuthFailureLimiter,
	logger *slog.Logger,
) gin.HandlerFunc {
	rejected := func(c *gin.Context, err error) {
		if failureLimiter != nil {
			if ok, retryAfter := failureLimiter.allow(c.ClientIP()); !ok {
				logger.Debug("authentication failure budget exhausted",
					slog.String("ip", c.ClientIP()),
					slog.Int("retry_after", retryAfter))
				tooManyRequests(c, retryAfter)
				return
			}
		}
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
	}

	return func(c *gin.Context) {
		presented, ok := extractCredential(c)
		if !ok {
			recorder.Record(auditUseCase.RecordInput{
				EventType: auditDomain.EventAuthFailed,
				Metadata:  map[string]any{"reason": "missing_credential"},
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})
			rejected(c, apperrors.ErrUnauthorized)
			return
		}

		account, apiKey, err := apiKeyUseCase.Validate(c.Request.Context(), presented)
		if err != nil {
			recorder.Record(auditUseCase.RecordInput{
				EventType: auditDomain.EventAuthFailed,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			rejected(c, err)
			return
		}

		recorder.Record(auditUseCase.RecordInput{
			AccountID: &account.ID,
			EventType: auditDomain.EventAuthSucceeded,
			Metadata:  map[string]any{"api_key_id": apiKey.ID.String()},
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		ctx := WithAccount(c.Request.Context(), account)
		ctx = WithAPIKey(ctx, apiKey)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractCredential pulls the API key from the Authorization header
// (case-insensitive Bearer scheme) or the X-API-Key header.
func extractCredential(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		const bearerPrefix = "bearer "
		if len(header) > len(bearerPrefix) &&
			strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return header[len(bearerPrefix):], true
		}
		return "", false
	}

	if key := c.GetHeader("X-API-Key"); key != "" {
		return key, true
	}

	return "", false
}
