package storage

import (
	"context"
	"testing"
	"time"

	"ADMINKA1.0/internal/models/domainErrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_GetReturnsCopy(t *testing.T) {
	mem := NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "orders", Row{"id": "o1", "status": "pending"}))

	got, err := mem.Get(ctx, "orders", "o1")
	require.NoError(t, err)
	got["status"] = "hacked"

	again, err := mem.Get(ctx, "orders", "o1")
	require.NoError(t, err)
	assert.Equal(t, "pending", again["status"])
}

func TestMemStorage_UnknownTable(t *testing.T) {
	mem := NewMemStorage()

	_, err := mem.Get(context.Background(), "admins", "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestMemStorage_ListFilter(t *testing.T) {
	mem := NewMemStorage()
	ctx := context.Background()
	base := time.Now().UTC()

	rows := []Row{
		{"id": "o1", "status": "pending", "tracking_number": nil, "created_at": base},
		{"id": "o2", "status": "shipped", "tracking_number": "S1", "created_at": base.Add(time.Minute)},
		{"id": "o3", "status": "pending", "tracking_number": nil, "created_at": base.Add(2 * time.Minute)},
	}
	for _, row := range rows {
		require.NoError(t, mem.Insert(ctx, "orders", row))
	}

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			name:    "eq by status",
			filter:  Filter{Eq: map[string]any{"status": "pending"}},
			wantIDs: []string{"o1", "o3"},
		},
		{
			name:    "eq nil is an is-null match",
			filter:  Filter{Eq: map[string]any{"tracking_number": nil}},
			wantIDs: []string{"o1", "o3"},
		},
		{
			name:    "in set",
			filter:  Filter{In: map[string][]any{"id": {"o2", "o3"}}},
			wantIDs: []string{"o2", "o3"},
		},
		{
			name:    "empty in matches nothing",
			filter:  Filter{In: map[string][]any{"id": {}}},
			wantIDs: nil,
		},
		{
			name:    "order desc with limit",
			filter:  Filter{OrderBy: "created_at", Desc: true, Limit: 2},
			wantIDs: []string{"o3", "o2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mem.List(ctx, "orders", tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, row := range got {
				ids = append(ids, row["id"].(string))
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMemStorage_ThenByBreaksTies(t *testing.T) {
	mem := NewMemStorage()
	ctx := context.Background()
	ts := time.Now().UTC()

	// created_at одинаковый, решает seq
	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a1", "seq": int64(2), "created_at": ts}))
	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a2", "seq": int64(1), "created_at": ts}))
	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a3", "seq": int64(3), "created_at": ts.Add(time.Minute)}))

	got, err := mem.List(ctx, "audit_log", Filter{OrderBy: "created_at", ThenBy: "seq", Desc: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a3", got[0]["id"])
	assert.Equal(t, "a2", got[1]["id"])
	assert.Equal(t, "a1", got[2]["id"])
}

func TestMemStorage_NumericComparisonAcrossTypes(t *testing.T) {
	mem := NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "products", Row{"id": "p1", "price_cents": int64(1500)}))

	// json приносит float64, база int64, сравнение обязано сходиться
	got, err := mem.List(ctx, "products", Filter{Eq: map[string]any{"price_cents": float64(1500)}})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// deadlineSpy записывает, пришёл ли вызов с дедлайном.
type deadlineSpy struct {
	withDeadline    int
	withoutDeadline int
}

func (s *deadlineSpy) note(ctx context.Context) {
	if _, ok := ctx.Deadline(); ok {
		s.withDeadline++
	} else {
		s.withoutDeadline++
	}
}

func (s *deadlineSpy) Get(ctx context.Context, table, id string) (Row, error) {
	s.note(ctx)
	return Row{}, nil
}

func (s *deadlineSpy) List(ctx context.Context, table string, filter Filter) ([]Row, error) {
	s.note(ctx)
	return nil, nil
}

func (s *deadlineSpy) Insert(ctx context.Context, table string, fields Row) error {
	s.note(ctx)
	return nil
}

func (s *deadlineSpy) Update(ctx context.Context, table, id string, fields Row) error {
	s.note(ctx)
	return nil
}

func (s *deadlineSpy) Delete(ctx context.Context, table, id string) error {
	s.note(ctx)
	return nil
}

func (s *deadlineSpy) DeleteWhere(ctx context.Context, table string, eq Row) (int64, error) {
	s.note(ctx)
	return 0, nil
}

func (s *deadlineSpy) Ping(ctx context.Context) error {
	s.note(ctx)
	return nil
}

func TestWithTimeout_DeadlineOnEveryCall(t *testing.T) {
	spy := &deadlineSpy{}
	wrapped := WithTimeout(spy, time.Second)
	ctx := context.Background()

	_, _ = wrapped.Get(ctx, "orders", "o1")
	_, _ = wrapped.List(ctx, "orders", Filter{})
	_ = wrapped.Insert(ctx, "orders", Row{"id": "o1"})
	_ = wrapped.Update(ctx, "orders", "o1", Row{"status": "shipped"})
	_ = wrapped.Delete(ctx, "orders", "o1")
	_, _ = wrapped.DeleteWhere(ctx, "orders", Row{"rider_id": "r1"})
	_ = wrapped.Ping(ctx)

	assert.Equal(t, 7, spy.withDeadline)
	assert.Zero(t, spy.withoutDeadline)
}

func TestMemStorage_DeleteWhereTwoColumns(t *testing.T) {
	mem := NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a1", "resource_type": "order", "resource_id": "o1"}))
	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a2", "resource_type": "order", "resource_id": "o2"}))
	require.NoError(t, mem.Insert(ctx, "audit_log", Row{"id": "a3", "resource_type": "vendor", "resource_id": "o1"}))

	deleted, err := mem.DeleteWhere(ctx, "audit_log", Row{"resource_type": "order", "resource_id": "o1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	left, err := mem.List(ctx, "audit_log", Filter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
