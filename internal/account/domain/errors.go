package domain

import (
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// Account errors.
var (
	// ErrAccountNotFound indicates an account with the specified ID was not found.
	ErrAccountNotFound = apperrors.Wrap(apperrors.ErrNotFound, "account not found")

	// ErrAccountSuspended indicates the account exists but is suspended and
	// may not authenticate or perform cryptographic operations.
	ErrAccountSuspended = apperrors.Wrap(apperrors.ErrForbidden, "account is suspended")
)
