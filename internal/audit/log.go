package audit

import (
	"context"
	"time"

	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/storage"

	"github.com/google/uuid"
)

const auditTable = "audit_log"

// DefaultLimit ограничивает историю в детальной выдаче.
const DefaultLimit = 50

// Log - append-only история изменений полей. Append лучших усилий,
// List отдаёт ошибку как есть: пустая история и недоступная история -
// разные вещи, и различать их обязан вызывающий.
type Log struct {
	storage storage.Storage
}

func NewLog(s storage.Storage) *Log {
	return &Log{storage: s}
}

func (l *Log) Append(ctx context.Context, entry models.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return l.storage.Insert(ctx, auditTable, storage.Row{
		"id":            entry.ID.String(),
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
		"field_name":    entry.FieldName,
		"old_value":     entry.OldValue,
		"new_value":     entry.NewValue,
		"message":       entry.Message,
		"performed_by":  entry.PerformedBy,
		"created_at":    entry.CreatedAt,
	})
}

// List возвращает записи новые-первыми, не больше limit. При равном
// created_at порядок вставки решает seq.
func (l *Log) List(ctx context.Context, resourceType, resourceID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := l.storage.List(ctx, auditTable, storage.Filter{
		Eq:      map[string]any{"resource_type": resourceType, "resource_id": resourceID},
		OrderBy: "created_at",
		ThenBy:  "seq",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromRow(row))
	}
	return entries, nil
}

// DeleteFor удаляет историю жёстко удалённого ресурса, сирот не храним.
func (l *Log) DeleteFor(ctx context.Context, resourceType, resourceID string) (int64, error) {
	return l.storage.DeleteWhere(ctx, auditTable, storage.Row{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	})
}

func fromRow(row storage.Row) models.AuditEntry {
	entry := models.AuditEntry{
		ResourceType: asString(row["resource_type"]),
		ResourceID:   asString(row["resource_id"]),
		FieldName:    asString(row["field_name"]),
		OldValue:     asString(row["old_value"]),
		NewValue:     asString(row["new_value"]),
		Message:      asString(row["message"]),
		PerformedBy:  asString(row["performed_by"]),
	}
	if id, err := uuid.Parse(asString(row["id"])); err == nil {
		entry.ID = id
	}
	if ts, ok := row["created_at"].(time.Time); ok {
		entry.CreatedAt = ts
	}
	return entry
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
