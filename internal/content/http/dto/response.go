// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	contentDomain "github.com/guardvault/guardvault/internal/content/domain"
)

// ContentResponse represents a content record in API responses.
// SECURITY: The Value field contains plaintext and is only included in GET
// responses. It is never populated from list or create operations.
type ContentResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Value     []byte    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListContentResponse wraps a page of content record metadata.
type ListContentResponse struct {
	Records []ContentResponse `json:"records"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}

// MapRecordToCreateResponse converts a stored record to an API response for
// POST operations. Only metadata is returned on creation.
func MapRecordToCreateResponse(record *contentDomain.Record) ContentResponse {
	return ContentResponse{
		ID:        record.ID.String(),
		Kind:      record.Kind,
		CreatedAt: record.CreatedAt,
	}
}

// MapRecordToGetResponse converts a decrypted record to an API response for
// GET operations. The caller must zero record.Plaintext after mapping.
func MapRecordToGetResponse(record *contentDomain.Record) ContentResponse {
	return ContentResponse{
		ID:        record.ID.String(),
		Kind:      record.Kind,
		Value:     record.Plaintext,
		CreatedAt: record.CreatedAt,
	}
}

// MapRecordsToListResponse converts record metadata to a paginated API response.
func MapRecordsToListResponse(records []*contentDomain.Record, offset, limit int) ListContentResponse {
	out := make([]ContentResponse, 0, len(records))
	for _, record := range records {
		out = append(out, ContentResponse{
			ID:        record.ID.String(),
			Kind:      record.Kind,
			CreatedAt: record.CreatedAt,
		})
	}
	return ListContentResponse{Records: out, Offset: offset, Limit: limit}
}
