package domain

import apperrors "github.com/guardvault/guardvault/internal/errors"

var (
	// ErrEventNotFound is returned when an audit event does not exist.
	ErrEventNotFound = apperrors.Wrap(apperrors.ErrNotFound, "audit event not found")

	// ErrSignatureMismatch is returned when a stored event's signature does
	// not match its recomputed HMAC.
	ErrSignatureMismatch = apperrors.New("audit event signature mismatch")
)
