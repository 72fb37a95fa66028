package domain

import (
	apperrors "github.com/guardvault/guardvault/internal/errors"
)

var (
	// ErrRecordNotFound indicates the content record does not exist for the
	// requesting account. Returned for both unknown IDs and records owned by
	// other accounts, so existence does not leak across tenants.
	ErrRecordNotFound = apperrors.Wrap(apperrors.ErrNotFound, "content record not found")

	// ErrRecordDecryptionFailed indicates AEAD tag verification failed on a
	// stored record. Covers corruption, tampering, and decrypt attempts with
	// the wrong account's key. Never retried.
	ErrRecordDecryptionFailed = apperrors.Wrap(apperrors.ErrDecryptionFailed, "content record decryption failed")
)
