package dto

import (
	"encoding/json"
	"time"

	"facturago/internal/infrastructure/storage/postgres"
)

// AuditEntryResponse is one change-log record of an entity.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	UserEmail string          `json:"userEmail,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromAuditEntry maps a stored audit entry. Compressed payloads are
// already inflated by the audit service.
func FromAuditEntry(e postgres.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        e.ID.String(),
		Action:    string(e.Action),
		UserID:    e.UserID,
		UserEmail: e.UserEmail,
		Changes:   e.Changes,
		CreatedAt: e.CreatedAt,
	}
}