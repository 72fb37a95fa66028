// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	accountDomain "github.com/guardvault/guardvault/internal/account/domain"
	apikeyDomain "github.com/guardvault/guardvault/internal/apikey/domain"
)

// accountKey is a context key type for storing authenticated accounts.
type accountKey struct{}

// apiKeyKey is a context key type for storing the authenticating API key.
type apiKeyKey struct{}

// WithAccount stores an authenticated account in the context.
func WithAccount(ctx context.Context, account *accountDomain.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// GetAccount retrieves the authenticated account from the context.
// Returns (nil, false) when no account was set.
func GetAccount(ctx context.Context) (*accountDomain.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(*accountDomain.Account)
	return account, ok
}

// WithAPIKey stores the API key that authenticated this request in the
// context. Handlers use it for audit attribution and self-revocation checks.
func WithAPIKey(ctx context.Context, apiKey *apikeyDomain.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyKey{}, apiKey)
}

// GetAPIKey retrieves the authenticating API key from the context.
// Returns (nil, false) when no key was set.
func GetAPIKey(ctx context.Context) (*apikeyDomain.APIKey, bool) {
	apiKey, ok := ctx.Value(apiKeyKey{}).(*apikeyDomain.APIKey)
	return apiKey, ok
}
