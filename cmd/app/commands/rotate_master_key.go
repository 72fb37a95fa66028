package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	accountUseCase "github.com/guardvault/guardvault/internal/account/usecase"
)

// RunRotateMasterKeys re-wraps every account's data-encryption key under the
// active master key. Accounts already wrapped under it are skipped, so an
// interrupted sweep can simply be rerun.
//
// Requirements: MASTER_KEYS must contain both the old and new key entries,
// with ACTIVE_MASTER_KEY_ID pointing at the new one.
func RunRotateMasterKeys(
	ctx context.Context,
	useCase accountUseCase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("starting master key rotation sweep")

	result, err := useCase.RotateMasterKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate master keys: %w", err)
	}

	logger.Info("master key rotation completed",
		slog.Int("scanned", result.Scanned),
		slog.Int("rotated", result.Rotated),
		slog.Int("skipped", result.Skipped),
	)

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(map[string]any{
			"scanned": result.Scanned,
			"rotated": result.Rotated,
			"skipped": result.Skipped,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(writer, "Master Key Rotation\n")
	fmt.Fprintf(writer, "===================\n\n")
	fmt.Fprintf(writer, "Accounts scanned:  %d\n", result.Scanned)
	fmt.Fprintf(writer, "Keys re-wrapped:   %d\n", result.Rotated)
	fmt.Fprintf(writer, "Already current:   %d\n", result.Skipped)

	return nil
}
