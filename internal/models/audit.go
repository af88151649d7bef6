package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry - одна запись о смене одного поля, не изменяется после вставки.
type AuditEntry struct {
	ID           uuid.UUID `json:"id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	FieldName    string    `json:"field_name"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	Message      string    `json:"message"`
	PerformedBy  string    `json:"performed_by"`
	CreatedAt    time.Time `json:"created_at"`
}
