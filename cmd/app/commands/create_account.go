package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	accountUseCase "github.com/guardvault/guardvault/internal/account/usecase"
)

// RunCreateAccount provisions a new account and prints its bootstrap API key.
//
// The plaintext API key appears in this output and nowhere else; it cannot be
// recovered afterwards.
func RunCreateAccount(
	ctx context.Context,
	useCase accountUseCase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	format string,
) error {
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	output, err := useCase.Create(ctx, &accountDomain.CreateAccountInput{Name: name})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info("account created",
		slog.String("account_id", output.ID.String()),
		slog.String("name", name),
	)

	if format == "json" {
		result := map[string]any{
			"account_id": output.ID.String(),
			"name":       name,
			"api_key_id": output.APIKeyID.String(),
			"api_key":    output.PlainAPIKey,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(writer, "Account created\n")
	fmt.Fprintf(writer, "===============\n\n")
	fmt.Fprintf(writer, "Account ID:  %s\n", output.ID)
	fmt.Fprintf(writer, "Name:        %s\n", name)
	fmt.Fprintf(writer, "API Key ID:  %s\n", output.APIKeyID)
	fmt.Fprintf(writer, "API Key:     %s\n\n", output.PlainAPIKey)
	fmt.Fprintf(writer, "Store the API key securely. It is shown only once and cannot be recovered.\n")

	return nil
}
