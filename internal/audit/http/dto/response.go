// Package dto provides data transfer objects for the audit log admin endpoints.
package dto

import (
	"encoding/json"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID              string          `json:"id"`
	Timestamp       string          `json:"timestamp"`
	EventType       string          `json:"event_type"`
	ResourceType    string          `json:"resource_type"`
	ResourceID      string          `json:"resource_id"`
	Action          string          `json:"action"`
	Details         json.RawMessage `json:"details"`
	Success         bool            `json:"success"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	IntegrityHash   string          `json:"integrity_hash"`
	PreviousLogHash *string         `json:"previous_log_hash"`
	Signature       *string         `json:"signature,omitempty"`
}

// MapAuditLogToResponse converts a domain audit log entry to an API response.
func MapAuditLogToResponse(entry *auditDomain.AuditLogEntry) AuditLogResponse {
	details := entry.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}
	return AuditLogResponse{
		ID:              entry.ID,
		Timestamp:       auditDomain.FormatTimestamp(entry.Timestamp),
		EventType:       entry.EventType,
		ResourceType:    entry.ResourceType,
		ResourceID:      entry.ResourceID,
		Action:          string(entry.Action),
		Details:         details,
		Success:         entry.Success,
		ErrorMessage:    entry.ErrorMessage,
		IntegrityHash:   entry.IntegrityHash,
		PreviousLogHash: entry.PreviousLogHash,
		Signature:       entry.Signature,
	}
}

// ListAuditLogsResponse represents a paginated list of audit logs in API responses.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts a slice of domain audit logs to a list API response.
func MapAuditLogsToListResponse(entries []*auditDomain.AuditLogEntry) ListAuditLogsResponse {
	responses := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, MapAuditLogToResponse(entry))
	}
	return ListAuditLogsResponse{
		Data: responses,
	}
}
