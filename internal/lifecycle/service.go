package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/metrics"
	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/notify"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/tools/logger"
)

const DefaultStoreTimeout = 5 * time.Second

// Notification - попытка отправки, для ответа админу и тестов.
type Notification struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type Result struct {
	Applied       storage.Row         `json:"applied"`
	AuditEntries  []models.AuditEntry `json:"audit_entries"`
	Notifications []Notification      `json:"notifications"`
}

// Service применяет частичные изменения ресурса: fetch -> diff ->
// одна запись строки -> аудит по полю -> уведомления. Только запись
// строки обязана удаться, всё после неё - лучшие усилия.
type Service struct {
	storage    storage.Storage
	audit      *audit.Log
	dispatcher *notify.Dispatcher
	timeout    time.Duration
}

func NewService(s storage.Storage, a *audit.Log, d *notify.Dispatcher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Service{storage: s, audit: a, dispatcher: d, timeout: timeout}
}

func (s *Service) ApplyUpdate(ctx context.Context, resourceType, id string, requested map[string]any, actorID string) (*Result, error) {
	spec, err := models.Spec(resourceType)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return nil, domainErrors.ErrValidationFailed
	}
	if err := validateRequest(spec, requested); err != nil {
		return nil, err
	}

	row, err := s.fetch(ctx, spec.Table, id)
	if err != nil {
		return nil, err
	}

	changed := storage.Row{}
	for field, value := range requested {
		if !equalValues(row[field], value) {
			changed[field] = value
		}
	}
	if len(changed) == 0 {
		return nil, domainErrors.ErrNoChanges
	}

	write := cloneRow(changed)
	write["updated_at"] = time.Now().UTC()
	if err := s.write(ctx, spec.Table, id, write); err != nil {
		return nil, err
	}

	metrics.UpdatesApplied.WithLabelValues(resourceType).Inc()
	metrics.FieldsChanged.WithLabelValues(resourceType).Add(float64(len(changed)))

	result := &Result{Applied: changed}
	fields := sortedFields(changed)

	// аудит: по записи на поле, порядок детерминированный
	for _, field := range fields {
		entry := models.AuditEntry{
			ResourceType: resourceType,
			ResourceID:   id,
			FieldName:    field,
			OldValue:     formatValue(row[field]),
			NewValue:     formatValue(changed[field]),
			Message:      auditMessage(spec, field, row[field], changed[field]),
			PerformedBy:  actorID,
		}
		if err := s.audit.Append(ctx, entry); err != nil {
			metrics.AuditAppendFailures.Inc()
			logger.LogErrorWithCode(ctx, domainErrors.ErrInternalError,
				fmt.Sprintf("audit append failed for %s/%s field %s: %v", resourceType, id, field, err))
			continue
		}
		result.AuditEntries = append(result.AuditEntries, entry)
	}

	// уведомления: только по полям с шаблоном, владельца ищем один раз
	ownerID := ""
	ownerResolved := false
	for _, field := range fields {
		tmpl, ok := notifyTemplate(spec, field, changed[field])
		if !ok {
			continue
		}
		if !ownerResolved {
			ownerID = s.dispatcher.OwnerUserID(ctx, spec, row)
			ownerResolved = true
		}
		title, body := notify.RenderTemplate(tmpl, formatValue(row[field]), formatValue(changed[field]))
		s.dispatcher.Notify(ctx, ownerID, title, body)
		result.Notifications = append(result.Notifications, Notification{
			UserID: ownerID,
			Title:  title,
			Body:   body,
		})
	}

	return result, nil
}

// SoftDelete помечает ресурс удалённым, строка остаётся читаемой для
// восстановления. Только для типов с мягким удалением.
func (s *Service) SoftDelete(ctx context.Context, resourceType, id, actorID string) (*Result, error) {
	return s.setDeletedAt(ctx, resourceType, id, actorID, time.Now().UTC())
}

// Restore снимает пометку удаления.
func (s *Service) Restore(ctx context.Context, resourceType, id, actorID string) (*Result, error) {
	return s.setDeletedAt(ctx, resourceType, id, actorID, nil)
}

func (s *Service) setDeletedAt(ctx context.Context, resourceType, id, actorID string, value any) (*Result, error) {
	spec, err := models.Spec(resourceType)
	if err != nil {
		return nil, err
	}
	if !spec.SoftDelete {
		return nil, domainErrors.ErrValidationFailed
	}

	row, err := s.fetch(ctx, spec.Table, id)
	if err != nil {
		return nil, err
	}

	deleted := row["deleted_at"] != nil
	wantDeleted := value != nil
	if deleted == wantDeleted {
		return nil, domainErrors.ErrNoChanges
	}

	write := storage.Row{"deleted_at": value, "updated_at": time.Now().UTC()}
	if err := s.write(ctx, spec.Table, id, write); err != nil {
		return nil, err
	}

	entry := models.AuditEntry{
		ResourceType: resourceType,
		ResourceID:   id,
		FieldName:    "deleted_at",
		OldValue:     formatValue(row["deleted_at"]),
		NewValue:     formatValue(value),
		Message:      fmt.Sprintf("%s %s", spec.Label, map[bool]string{true: "deleted", false: "restored"}[wantDeleted]),
		PerformedBy:  actorID,
	}
	result := &Result{Applied: storage.Row{"deleted_at": value}}
	if err := s.audit.Append(ctx, entry); err != nil {
		metrics.AuditAppendFailures.Inc()
		logger.LogErrorWithCode(ctx, domainErrors.ErrInternalError,
			fmt.Sprintf("audit append failed for %s/%s: %v", resourceType, id, err))
	} else {
		result.AuditEntries = append(result.AuditEntries, entry)
	}
	return result, nil
}

func (s *Service) fetch(ctx context.Context, table, id string) (storage.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row, err := s.storage.Get(ctx, table, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrDepUnavailable, err)
	}
	return row, nil
}

func (s *Service) write(ctx context.Context, table, id string, fields storage.Row) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.storage.Update(ctx, table, id, fields); err != nil {
		if storage.IsNotFound(err) {
			return domainErrors.ErrNotFound
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrDepUnavailable, err)
	}
	return nil
}

func validateRequest(spec *models.ResourceSpec, requested map[string]any) error {
	for field, value := range requested {
		if !spec.Mutable[field] {
			return fmt.Errorf("%w: %s", domainErrors.ErrUnknownField, field)
		}
		if _, isState := spec.StateFields[field]; isState {
			str, ok := value.(string)
			if !ok || !spec.ValidStateValue(field, str) {
				return fmt.Errorf("%w: %s=%v", domainErrors.ErrInvalidStatus, field, value)
			}
		}
	}
	return nil
}

func auditMessage(spec *models.ResourceSpec, field string, oldValue, newValue any) string {
	human := strings.ReplaceAll(field, "_", " ")
	return fmt.Sprintf("%s %s changed from %s to %s",
		spec.Label, human, formatValue(oldValue), formatValue(newValue))
}

func notifyTemplate(spec *models.ResourceSpec, field string, newValue any) (models.NotifyTemplate, bool) {
	byValue, ok := spec.Notify[field]
	if !ok {
		return models.NotifyTemplate{}, false
	}
	if str, ok := newValue.(string); ok {
		if tmpl, ok := byValue[str]; ok {
			return tmpl, true
		}
	}
	tmpl, ok := byValue["*"]
	return tmpl, ok
}

func sortedFields(row storage.Row) []string {
	fields := make([]string, 0, len(row))
	for f := range row {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func cloneRow(row storage.Row) storage.Row {
	out := make(storage.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
