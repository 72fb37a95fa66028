// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/guardvault/guardvault/internal/validation"
)

// IssueAPIKeyRequest contains the parameters for issuing a new API key.
type IssueAPIKeyRequest struct {
	Name string `json:"name"`
}

// Validate checks if the issue API key request is valid.
func (r *IssueAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 100),
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
	)
}
