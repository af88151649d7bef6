package storage

import (
	"context"
	"time"
)

const defaultCallTimeout = 5 * time.Second

// WithTimeout оборачивает хранилище: каждый вызов получает свой
// дедлайн, один медленный запрос не держит действие админа.
func WithTimeout(s Storage, d time.Duration) Storage {
	if d <= 0 {
		d = defaultCallTimeout
	}
	return &timeoutStorage{inner: s, timeout: d}
}

type timeoutStorage struct {
	inner   Storage
	timeout time.Duration
}

func (ts *timeoutStorage) Get(ctx context.Context, table, id string) (Row, error) {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.Get(ctx, table, id)
}

func (ts *timeoutStorage) List(ctx context.Context, table string, filter Filter) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.List(ctx, table, filter)
}

func (ts *timeoutStorage) Insert(ctx context.Context, table string, fields Row) error {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.Insert(ctx, table, fields)
}

func (ts *timeoutStorage) Update(ctx context.Context, table, id string, fields Row) error {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.Update(ctx, table, id, fields)
}

func (ts *timeoutStorage) Delete(ctx context.Context, table, id string) error {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.Delete(ctx, table, id)
}

func (ts *timeoutStorage) DeleteWhere(ctx context.Context, table string, eq Row) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.DeleteWhere(ctx, table, eq)
}

func (ts *timeoutStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ts.timeout)
	defer cancel()
	return ts.inner.Ping(ctx)
}
