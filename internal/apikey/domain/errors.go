package domain

import (
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// API key errors.
var (
	// ErrAPIKeyNotFound indicates an API key with the specified ID was not found.
	ErrAPIKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "api key not found")

	// ErrInvalidCredentials is the uniform rejection for credential
	// validation. Unknown prefix, wrong secret, revoked key, and suspended
	// account all produce this same error so callers cannot enumerate which
	// condition failed.
	ErrInvalidCredentials = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credentials")

	// ErrRevokeForbidden indicates an attempt to revoke a key belonging to
	// another account.
	ErrRevokeForbidden = apperrors.Wrap(apperrors.ErrForbidden, "api key belongs to another account")

	// ErrSelfRevoke indicates an attempt to revoke the key that authenticated
	// the current request without the force flag.
	ErrSelfRevoke = apperrors.Wrap(
		apperrors.ErrInvalidInput,
		"refusing to revoke the authenticating api key without force",
	)

	// ErrPrefixExhausted indicates repeated prefix collisions while issuing;
	// the caller may retry the whole operation.
	ErrPrefixExhausted = apperrors.Wrap(
		apperrors.ErrConflict,
		"could not generate a unique api key prefix",
	)
)
