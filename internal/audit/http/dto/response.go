// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	auditDomain "github.com/guardvault/guardvault/internal/audit/domain"
)

// AuditEventResponse represents an audit event in API responses. The
// signature and signing key ID are internal verification details and are not
// exposed.
type AuditEventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListAuditEventsResponse wraps a page of audit events.
type ListAuditEventsResponse struct {
	Events []AuditEventResponse `json:"events"`
	Offset int                  `json:"offset"`
	Limit  int                  `json:"limit"`
}

// MapEventsToListResponse converts audit events to a paginated API response.
func MapEventsToListResponse(events []*auditDomain.Event, offset, limit int) ListAuditEventsResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, AuditEventResponse{
			ID:        event.ID.String(),
			EventType: string(event.EventType),
			Metadata:  event.Metadata,
			IP:        event.IP,
			UserAgent: event.UserAgent,
			CreatedAt: event.CreatedAt,
		})
	}
	return ListAuditEventsResponse{Events: out, Offset: offset, Limit: limit}
}
