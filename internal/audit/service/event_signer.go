package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
	cryptoDomain "github.com/guardvault/guardvault/internal/crypto/domain"
)

type eventSigner struct {
	chain *cryptoDomain.MasterKeyChain
}

// NewEventSigner creates an HMAC-based audit event signer. Signing keys are
// derived per master key with HKDF-SHA256 so the master key itself is never
// used directly for signing, and each event records which master key signed it.
func NewEventSigner(chain *cryptoDomain.MasterKeyChain) EventSigner {
	return &eventSigner{chain: chain}
}

// deriveSigningKey derives a 32-byte HMAC key from a master key using
// HKDF-SHA256. Info parameter is versioned for future algorithm changes.
func (e *eventSigner) deriveSigningKey(masterKey []byte) ([]byte, error) {
	info := []byte("audit-event-signing-v1")
	reader := hkdf.New(sha256.New, masterKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts an event to its canonical byte representation.
// Variable-length fields are length-prefixed to prevent boundary ambiguity.
func (e *eventSigner) canonicalize(event *auditDomain.Event) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	if event.AccountID != nil {
		buf = append(buf, event.AccountID[:]...)
	} else {
		var empty [16]byte
		buf = append(buf, empty[:]...)
	}

	buf = appendLengthPrefixed(buf, []byte(event.EventType))
	buf = appendLengthPrefixed(buf, []byte(event.IP))
	buf = appendLengthPrefixed(buf, []byte(event.UserAgent))

	if event.Metadata != nil {
		metadataBytes, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if len(data) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

func (e *eventSigner) sign(masterKeyID string, event *auditDomain.Event) ([]byte, error) {
	masterKey, ok := e.chain.Get(masterKeyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrMasterKeyNotFound, masterKeyID)
	}

	signingKey, err := e.deriveSigningKey(masterKey.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := e.canonicalize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Sign computes the HMAC-SHA256 signature under the active master key and
// stamps the event with both the signature and the signing master key ID.
func (e *eventSigner) Sign(event *auditDomain.Event) error {
	activeID := e.chain.ActiveMasterKeyID()
	signature, err := e.sign(activeID, event)
	if err != nil {
		return err
	}

	event.MasterKeyID = activeID
	event.Signature = signature
	return nil
}

// Verify recomputes the signature with the master key the event was signed
// under. Returns ErrSignatureMismatch if the event was tampered with.
func (e *eventSigner) Verify(event *auditDomain.Event) error {
	expected, err := e.sign(event.MasterKeyID, event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureMismatch
	}

	return nil
}
