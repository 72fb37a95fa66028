package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	accountUseCase "github.com/guardvault/guardvault/internal/account/usecase"
)

// RunSuspendAccount suspends an account, blocking authentication and all
// cryptographic operations until it is reactivated. Idempotent.
func RunSuspendAccount(
	ctx context.Context,
	useCase accountUseCase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr string,
) error {
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	if err := useCase.Suspend(ctx, accountID); err != nil {
		return fmt.Errorf("failed to suspend account: %w", err)
	}

	logger.Info("account suspended", slog.String("account_id", accountID.String()))
	fmt.Fprintf(writer, "Account %s suspended\n", accountID)

	return nil
}

// RunActivateAccount reactivates a suspended account. Idempotent.
func RunActivateAccount(
	ctx context.Context,
	useCase accountUseCase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr string,
) error {
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	if err := useCase.Activate(ctx, accountID); err != nil {
		return fmt.Errorf("failed to activate account: %w", err)
	}

	logger.Info("account activated", slog.String("account_id", accountID.String()))
	fmt.Fprintf(writer, "Account %s activated\n", accountID)

	return nil
}
