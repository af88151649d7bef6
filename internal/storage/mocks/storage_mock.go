package mocks

import (
	"context"
	"fmt"
	"sync"

	"ADMINKA1.0/internal/storage"
)

// Call - один вызов хранилища, для проверки количества запросов в тестах.
type Call struct {
	Method string
	Table  string
}

// StorageMock - мок с настраиваемыми функциями. Если функция не задана,
// вызов уходит в Fallback (обычно MemStorage), без Fallback - паника.
type StorageMock struct {
	Fallback storage.Storage

	GetMock         func(ctx context.Context, table, id string) (storage.Row, error)
	ListMock        func(ctx context.Context, table string, filter storage.Filter) ([]storage.Row, error)
	InsertMock      func(ctx context.Context, table string, fields storage.Row) error
	UpdateMock      func(ctx context.Context, table, id string, fields storage.Row) error
	DeleteMock      func(ctx context.Context, table, id string) error
	DeleteWhereMock func(ctx context.Context, table string, eq storage.Row) (int64, error)
	PingMock        func(ctx context.Context) error

	mu    sync.Mutex
	calls []Call
}

func (m *StorageMock) record(method, table string) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Table: table})
	m.mu.Unlock()
}

// Calls возвращает все вызовы в порядке выполнения.
func (m *StorageMock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount считает вызовы метода по таблице.
func (m *StorageMock) CallCount(method, table string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method && c.Table == table {
			n++
		}
	}
	return n
}

func (m *StorageMock) Get(ctx context.Context, table, id string) (storage.Row, error) {
	m.record("Get", table)
	if m.GetMock != nil {
		return m.GetMock(ctx, table, id)
	}
	if m.Fallback != nil {
		return m.Fallback.Get(ctx, table, id)
	}
	panic(fmt.Sprintf("StorageMock: Get(%s) не настроен", table))
}

func (m *StorageMock) List(ctx context.Context, table string, filter storage.Filter) ([]storage.Row, error) {
	m.record("List", table)
	if m.ListMock != nil {
		return m.ListMock(ctx, table, filter)
	}
	if m.Fallback != nil {
		return m.Fallback.List(ctx, table, filter)
	}
	panic(fmt.Sprintf("StorageMock: List(%s) не настроен", table))
}

func (m *StorageMock) Insert(ctx context.Context, table string, fields storage.Row) error {
	m.record("Insert", table)
	if m.InsertMock != nil {
		return m.InsertMock(ctx, table, fields)
	}
	if m.Fallback != nil {
		return m.Fallback.Insert(ctx, table, fields)
	}
	panic(fmt.Sprintf("StorageMock: Insert(%s) не настроен", table))
}

func (m *StorageMock) Update(ctx context.Context, table, id string, fields storage.Row) error {
	m.record("Update", table)
	if m.UpdateMock != nil {
		return m.UpdateMock(ctx, table, id, fields)
	}
	if m.Fallback != nil {
		return m.Fallback.Update(ctx, table, id, fields)
	}
	panic(fmt.Sprintf("StorageMock: Update(%s) не настроен", table))
}

func (m *StorageMock) Delete(ctx context.Context, table, id string) error {
	m.record("Delete", table)
	if m.DeleteMock != nil {
		return m.DeleteMock(ctx, table, id)
	}
	if m.Fallback != nil {
		return m.Fallback.Delete(ctx, table, id)
	}
	panic(fmt.Sprintf("StorageMock: Delete(%s) не настроен", table))
}

func (m *StorageMock) DeleteWhere(ctx context.Context, table string, eq storage.Row) (int64, error) {
	m.record("DeleteWhere", table)
	if m.DeleteWhereMock != nil {
		return m.DeleteWhereMock(ctx, table, eq)
	}
	if m.Fallback != nil {
		return m.Fallback.DeleteWhere(ctx, table, eq)
	}
	panic(fmt.Sprintf("StorageMock: DeleteWhere(%s) не настроен", table))
}

func (m *StorageMock) Ping(ctx context.Context) error {
	m.record("Ping", "")
	if m.PingMock != nil {
		return m.PingMock(ctx)
	}
	if m.Fallback != nil {
		return m.Fallback.Ping(ctx)
	}
	return nil
}
