// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
)

// IssueAPIKeyResponse is returned on key creation.
// SECURITY: Key holds the plaintext credential and is returned exactly once;
// there is no endpoint that can reproduce it.
type IssueAPIKeyResponse struct {
	ID     string `json:"id"`
	Prefix string `json:"prefix"`
	Key    string `json:"key"`
}

// APIKeyResponse represents key metadata in API responses. The secret and its
// hash are never included.
type APIKeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListAPIKeysResponse wraps a page of API key metadata.
type ListAPIKeysResponse struct {
	APIKeys []APIKeyResponse `json:"api_keys"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// MapIssueOutputToResponse converts an issue result to an API response.
func MapIssueOutputToResponse(output *apikeyDomain.IssueAPIKeyOutput) IssueAPIKeyResponse {
	return IssueAPIKeyResponse{
		ID:     output.ID.String(),
		Prefix: output.Prefix,
		Key:    output.PlainKey,
	}
}

// MapAPIKeysToListResponse converts key metadata to a paginated API response.
func MapAPIKeysToListResponse(apiKeys []*apikeyDomain.APIKey, offset, limit int) ListAPIKeysResponse {
	out := make([]APIKeyResponse, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		out = append(out, APIKeyResponse{
			ID:         apiKey.ID.String(),
			Name:       apiKey.Name,
			Prefix:     apiKey.Prefix,
			LastUsedAt: apiKey.LastUsedAt,
			RevokedAt:  apiKey.RevokedAt,
			CreatedAt:  apiKey.CreatedAt,
		})
	}
	return ListAPIKeysResponse{APIKeys: out, Offset: offset, Limit: limit}
}
