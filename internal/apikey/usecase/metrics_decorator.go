package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	"github.com/guardvault/guardvault/internal/metrics"
)

// apiKeyUseCaseWithMetrics decorates APIKeyUseCase with metrics instrumentation.
type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
// Validate sits on the hot path of every authenticated request, so its
// counter doubles as the authentication success/failure rate.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *apiKeyUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *apikeyDomain.IssueAPIKeyInput,
) (*apikeyDomain.IssueAPIKeyOutput, error) {
	start := time.Now()
	output, err := a.next.Issue(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "apikey", "issue", status)
	a.metrics.RecordDuration(ctx, "apikey", "issue", time.Since(start), status)

	return output, err
}

func (a *apiKeyUseCaseWithMetrics) Validate(
	ctx context.Context,
	presented string,
) (*accountDomain.Account, *apikeyDomain.APIKey, error) {
	start := time.Now()
	account, apiKey, err := a.next.Validate(ctx, presented)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "apikey", "validate", status)
	a.metrics.RecordDuration(ctx, "apikey", "validate", time.Since(start), status)

	return account, apiKey, err
}

func (a *apiKeyUseCaseWithMetrics) Revoke(ctx context.Context, input *RevokeAPIKeyInput) error {
	start := time.Now()
	err := a.next.Revoke(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "apikey", "revoke", status)
	a.metrics.RecordDuration(ctx, "apikey", "revoke", time.Since(start), status)

	return err
}

func (a *apiKeyUseCaseWithMetrics) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*apikeyDomain.APIKey, error) {
	start := time.Now()
	apiKeys, err := a.next.List(ctx, accountID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "apikey", "list", status)
	a.metrics.RecordDuration(ctx, "apikey", "list", time.Since(start), status)

	return apiKeys, err
}
