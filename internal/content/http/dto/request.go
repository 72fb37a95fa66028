// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/guardvault/guardvault/internal/validation"
)

// StoreContentRequest contains the parameters for storing an encrypted payload.
// Value carries the plaintext payload base64-encoded; it is decoded, encrypted,
// and discarded server-side.
type StoreContentRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Validate checks if the store content request is valid.
func (r *StoreContentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind,
			validation.Required,
			validation.Length(1, 64),
			customValidation.KindLabel,
		),
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
	)
}
