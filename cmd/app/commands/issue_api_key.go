package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
	apikeyUseCase "github.com/guardvault/guardvault/internal/apikey/usecase"
)

// RunIssueAPIKey issues an additional API key for an existing account and
// prints the plaintext secret. The secret is shown only once.
func RunIssueAPIKey(
	ctx context.Context,
	useCase apikeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr, name, format string,
) error {
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	if name == "" {
		return fmt.Errorf("key name is required")
	}

	output, err := useCase.Issue(ctx, &apikeyDomain.IssueAPIKeyInput{
		AccountID: accountID,
		Name:      name,
	})
	if err != nil {
		return fmt.Errorf("failed to issue api key: %w", err)
	}

	logger.Info("api key issued",
		slog.String("account_id", accountID.String()),
		slog.String("api_key_id", output.ID.String()),
	)

	if format == "json" {
		result := map[string]any{
			"api_key_id": output.ID.String(),
			"prefix":     output.Prefix,
			"api_key":    output.PlainKey,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(writer, "API key issued\n")
	fmt.Fprintf(writer, "==============\n\n")
	fmt.Fprintf(writer, "API Key ID:  %s\n", output.ID)
	fmt.Fprintf(writer, "Prefix:      %s\n", output.Prefix)
	fmt.Fprintf(writer, "API Key:     %s\n\n", output.PlainKey)
	fmt.Fprintf(writer, "Store the API key securely. It is shown only once and cannot be recovered.\n")

	return nil
}
