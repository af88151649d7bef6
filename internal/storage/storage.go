package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ADMINKA1.0/internal/models/domainErrors"
)

// Row - одна строка таблицы. Значения после чтения из базы: string,
// int64, float64, bool, time.Time или nil.
type Row map[string]any

type Filter struct {
	Eq      map[string]any   //column = value
	In      map[string][]any //column IN (...)
	OrderBy string
	ThenBy  string //вторичный ключ при равенстве OrderBy, всегда по возрастанию
	Desc    bool
	Limit   int
}

// Storage - шлюз к реестру записей. Атомарность только в пределах строки,
// межстрочных транзакций нет.
type Storage interface {
	Get(ctx context.Context, table, id string) (Row, error)
	List(ctx context.Context, table string, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table string, fields Row) error
	Update(ctx context.Context, table, id string, fields Row) error
	Delete(ctx context.Context, table, id string) error
	DeleteWhere(ctx context.Context, table string, eq Row) (int64, error)
	Ping(ctx context.Context) error
}

// Tables - разрешённые таблицы и их колонки, всё остальное не
// попадает в SQL.
var Tables = map[string][]string{
	"users":              {"id", "name", "email", "role", "push_token", "created_at", "updated_at"},
	"riders":             {"id", "user_id", "phone", "created_at", "updated_at"},
	"vendors":            {"id", "user_id", "verification_status", "account_status", "created_at", "updated_at"},
	"businesses":         {"id", "vendor_id", "name", "status", "deleted_at", "created_at", "updated_at"},
	"products":           {"id", "business_id", "vendor_id", "name", "price_cents", "initial_stock", "status", "created_at", "updated_at"},
	"orders":             {"id", "rider_id", "status", "payment_status", "tracking_number", "total_cents", "created_at", "updated_at"},
	"order_items":        {"id", "order_id", "product_id", "quantity", "unit_price_cents"},
	"events":             {"id", "vendor_id", "title", "status", "price_cents", "capacity", "created_at", "updated_at"},
	"event_participants": {"id", "event_id", "rider_id", "payment_id", "created_at"},
	"payments":           {"id", "amount_cents", "status", "created_at"},
	"reviews":            {"id", "product_id", "rider_id", "rating", "comment", "status", "created_at"},
	"audit_log":          {"id", "seq", "resource_type", "resource_id", "field_name", "old_value", "new_value", "message", "performed_by", "created_at"},
}

func knownColumn(table, column string) bool {
	for _, c := range Tables[table] {
		if c == column {
			return true
		}
	}
	return false
}

func checkTable(table string) error {
	if _, ok := Tables[table]; !ok {
		return fmt.Errorf("storage: unknown table %q", table)
	}
	return nil
}

func checkColumns(table string, columns ...string) error {
	for _, c := range columns {
		if !knownColumn(table, c) {
			return fmt.Errorf("storage: unknown column %q.%q", table, c)
		}
	}
	return nil
}

// MemStorage - хранилище в памяти для юнит-тестов и локального запуска.
// Порядок вставки сохраняется, сортировка стабильная.
type MemStorage struct {
	mu    sync.RWMutex
	rows  map[string]map[string]Row
	order map[string][]string //id в порядке вставки
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		rows:  make(map[string]map[string]Row),
		order: make(map[string][]string),
	}
}

func (ms *MemStorage) Get(ctx context.Context, table, id string) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	row, ok := ms.rows[table][id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneRow(row), nil
}

func (ms *MemStorage) List(ctx context.Context, table string, filter Filter) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Row
	for _, id := range ms.order[table] {
		row, ok := ms.rows[table][id]
		if !ok {
			continue
		}
		if matches(row, filter) {
			out = append(out, cloneRow(row))
		}
	}

	if filter.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i][filter.OrderBy], out[j][filter.OrderBy]
			if lessValues(a, b) {
				return !filter.Desc
			}
			if lessValues(b, a) {
				return filter.Desc
			}
			if filter.ThenBy != "" {
				return lessValues(out[i][filter.ThenBy], out[j][filter.ThenBy])
			}
			return false
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (ms *MemStorage) Insert(ctx context.Context, table string, fields Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	id, _ := fields["id"].(string)
	if id == "" {
		return fmt.Errorf("storage: insert into %q without id", table)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.rows[table] == nil {
		ms.rows[table] = make(map[string]Row)
	}
	if _, exists := ms.rows[table][id]; !exists {
		ms.order[table] = append(ms.order[table], id)
	}
	ms.rows[table][id] = cloneRow(fields)
	return nil
}

func (ms *MemStorage) Update(ctx context.Context, table, id string, fields Row) error {
	if err := checkTable(table); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	row, ok := ms.rows[table][id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	for k, v := range fields {
		row[k] = v
	}
	return nil
}

func (ms *MemStorage) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.rows[table][id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(ms.rows[table], id)
	return nil
}

func (ms *MemStorage) DeleteWhere(ctx context.Context, table string, eq Row) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var deleted int64
	for id, row := range ms.rows[table] {
		all := true
		for col, want := range eq {
			if !equalLoose(row[col], want) {
				all = false
				break
			}
		}
		if all {
			delete(ms.rows[table], id)
			deleted++
		}
	}
	return deleted, nil
}

func (ms *MemStorage) Ping(ctx context.Context) error { return nil }

func matches(row Row, filter Filter) bool {
	for col, want := range filter.Eq {
		if !equalLoose(row[col], want) {
			return false
		}
	}
	for col, wants := range filter.In {
		found := false
		for _, w := range wants {
			if equalLoose(row[col], w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalLoose(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func lessValues(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// IsNotFound - так проверяют отсутствие строки все слои выше.
func IsNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound)
}
