package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
)

// RunRevokeAPIKey revokes an API key owned by the account. Revocation is
// permanent. Administrative revocation is not subject to the self-revoke
// guard, so force is accepted only for symmetry with the HTTP API.
func RunRevokeAPIKey(
	ctx context.Context,
	useCase apikeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr, keyIDStr string,
	force bool,
) error {
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	keyID, err := uuid.Parse(keyIDStr)
	if err != nil {
		return fmt.Errorf("invalid api key id: %w", err)
	}

	err = useCase.Revoke(ctx, &apikeyUseCase.RevokeAPIKeyInput{
		KeyID:               keyID,
		RequestingAccountID: accountID,
		Force:               force,
	})
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	logger.Info("api key revoked",
		slog.String("account_id", accountID.String()),
		slog.String("api_key_id", keyID.String()),
	)
	fmt.Fprintf(writer, "API key %s revoked\n", keyID)

	return nil
}
