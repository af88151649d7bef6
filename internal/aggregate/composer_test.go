package aggregate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInventoryWorld(t *testing.T) *storage.MemStorage {
	t.Helper()
	mem := storage.NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "products", storage.Row{
		"id": "p1", "business_id": "b1", "vendor_id": "v1", "name": "Thermos",
		"price_cents": int64(1500), "initial_stock": int64(20), "status": "active",
		"created_at": time.Now().UTC(),
	}))

	// o1 и o2 в силе, o3 отменён и не должен попасть в продажи
	for _, o := range []struct {
		id, status string
	}{
		{"o1", "delivered"},
		{"o2", "pending"},
		{"o3", "cancelled"},
	} {
		require.NoError(t, mem.Insert(ctx, "orders", storage.Row{
			"id": o.id, "rider_id": "r1", "status": o.status, "payment_status": "paid",
			"created_at": time.Now().UTC(),
		}))
	}

	items := []struct {
		id, orderID string
		qty         int64
	}{
		{"i1", "o1", 4},
		{"i2", "o2", 3},
		{"i3", "o3", 5},
	}
	for _, it := range items {
		require.NoError(t, mem.Insert(ctx, "order_items", storage.Row{
			"id": it.id, "order_id": it.orderID, "product_id": "p1",
			"quantity": it.qty, "unit_price_cents": int64(1500),
		}))
	}
	return mem
}

func TestComposer_ProductInventory(t *testing.T) {
	mem := seedInventoryWorld(t)
	c := NewComposer(mem)

	detail, err := c.ComposeDetail(context.Background(), "product", "p1")
	require.NoError(t, err)

	inv, ok := detail.Stats.(models.ProductInventory)
	require.True(t, ok)

	// 4+3 проданы, отменённые 5 не считаются
	assert.EqualValues(t, 20, inv.InitialStock)
	assert.EqualValues(t, 7, inv.TotalSold)
	assert.EqualValues(t, 13, inv.Remaining)
	assert.EqualValues(t, 7*1500, inv.TotalRevenueCents)
	assert.EqualValues(t, 2, inv.TotalOrders)
}

func TestComposer_ProductWithoutSales(t *testing.T) {
	mem := storage.NewMemStorage()
	ctx := context.Background()
	require.NoError(t, mem.Insert(ctx, "products", storage.Row{
		"id": "p9", "business_id": "b1", "vendor_id": "v1", "name": "Map",
		"price_cents": int64(500), "initial_stock": int64(8), "status": "active",
		"created_at": time.Now().UTC(),
	}))
	c := NewComposer(mem)

	detail, err := c.ComposeDetail(ctx, "product", "p9")
	require.NoError(t, err)

	inv := detail.Stats.(models.ProductInventory)
	// нули, а не null
	assert.EqualValues(t, 0, inv.TotalSold)
	assert.EqualValues(t, 0, inv.TotalRevenueCents)
	assert.EqualValues(t, 0, inv.TotalOrders)
	assert.EqualValues(t, 8, inv.Remaining)
}

func TestComposer_EventDetailMergesPayments(t *testing.T) {
	mem := storage.NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "events", storage.Row{
		"id": "e1", "vendor_id": "v1", "title": "Wine tasting", "status": "published",
		"price_cents": int64(3000), "capacity": int64(30), "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "payments", storage.Row{
		"id": "pay1", "amount_cents": int64(3000), "status": "paid", "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "payments", storage.Row{
		"id": "pay2", "amount_cents": int64(3000), "status": "failed", "created_at": time.Now().UTC(),
	}))
	for n, pay := range []any{"pay1", "pay2", nil} {
		require.NoError(t, mem.Insert(ctx, "event_participants", storage.Row{
			"id": fmt.Sprintf("ep%d", n), "event_id": "e1", "rider_id": "r1",
			"payment_id": pay, "created_at": time.Now().UTC(),
		}))
	}

	c := NewComposer(mem)
	detail, err := c.ComposeDetail(ctx, "event", "e1")
	require.NoError(t, err)

	stats := detail.Stats.(models.EventStats)
	assert.EqualValues(t, 3, stats.ParticipantCount)
	assert.EqualValues(t, 1, stats.PaidCount)
	assert.EqualValues(t, 3000, stats.RevenueCents)

	// платёж влит в строку участника
	participants := detail.Children["participants"]
	require.Len(t, participants, 3)
	assert.Equal(t, "paid", participants[0]["payment_status"])
	assert.EqualValues(t, 3000, participants[0]["amount_cents"])
	assert.Nil(t, participants[2]["payment_status"])
}

func TestComposer_ListBatchesChildQueries(t *testing.T) {
	mem := storage.NewMemStorage()
	ctx := context.Background()

	const events = 7
	for n := 0; n < events; n++ {
		eid := fmt.Sprintf("e%d", n)
		require.NoError(t, mem.Insert(ctx, "events", storage.Row{
			"id": eid, "vendor_id": "v1", "title": eid, "status": "published",
			"price_cents": int64(1000), "capacity": int64(10), "created_at": time.Now().UTC(),
		}))
		payID := fmt.Sprintf("pay%d", n)
		require.NoError(t, mem.Insert(ctx, "payments", storage.Row{
			"id": payID, "amount_cents": int64(1000), "status": "paid", "created_at": time.Now().UTC(),
		}))
		require.NoError(t, mem.Insert(ctx, "event_participants", storage.Row{
			"id": fmt.Sprintf("ep%d", n), "event_id": eid, "rider_id": "r1",
			"payment_id": payID, "created_at": time.Now().UTC(),
		}))
	}

	mock := &mocks.StorageMock{Fallback: mem}
	c := NewComposer(mock)

	summaries, err := c.ComposeList(ctx, "event", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, summaries, events)

	for _, s := range summaries {
		stats := s.Stats.(models.EventStats)
		assert.EqualValues(t, 1, stats.ParticipantCount)
		assert.EqualValues(t, 1000, stats.RevenueCents)
	}

	// по одному запросу на дочернюю таблицу на всю страницу, не на строку
	assert.Equal(t, 1, mock.CallCount("List", "events"))
	assert.Equal(t, 1, mock.CallCount("List", "event_participants"))
	assert.Equal(t, 1, mock.CallCount("List", "payments"))
	assert.Len(t, mock.Calls(), 3)
}

func TestComposer_EveryQueryCarriesDeadline(t *testing.T) {
	mem := seedInventoryWorld(t)
	ctx := context.Background()

	var withDeadline, withoutDeadline int
	mock := &mocks.StorageMock{
		GetMock: func(ctx context.Context, table, id string) (storage.Row, error) {
			if _, ok := ctx.Deadline(); ok {
				withDeadline++
			} else {
				withoutDeadline++
			}
			return mem.Get(ctx, table, id)
		},
		ListMock: func(ctx context.Context, table string, filter storage.Filter) ([]storage.Row, error) {
			if _, ok := ctx.Deadline(); ok {
				withDeadline++
			} else {
				withoutDeadline++
			}
			return mem.List(ctx, table, filter)
		},
	}
	c := NewComposer(storage.WithTimeout(mock, time.Second))

	_, err := c.ComposeDetail(ctx, "product", "p1")
	require.NoError(t, err)

	// медленная база не должна держать запрос: дедлайн на каждом вызове
	assert.Positive(t, withDeadline)
	assert.Zero(t, withoutDeadline)
}

func TestComposer_VendorStats(t *testing.T) {
	mem := storage.NewMemStorage()
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "vendors", storage.Row{
		"id": "v1", "user_id": "u1", "verification_status": "approved",
		"account_status": "active", "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "businesses", storage.Row{
		"id": "b1", "vendor_id": "v1", "name": "Cantina", "status": "active",
		"deleted_at": nil, "created_at": time.Now().UTC(),
	}))
	for n, rating := range []any{int64(5), int64(4), nil} {
		pid := fmt.Sprintf("p%d", n)
		require.NoError(t, mem.Insert(ctx, "products", storage.Row{
			"id": pid, "business_id": "b1", "vendor_id": "v1", "name": pid,
			"price_cents": int64(100), "initial_stock": int64(1), "status": "active",
			"created_at": time.Now().UTC(),
		}))
		require.NoError(t, mem.Insert(ctx, "reviews", storage.Row{
			"id": fmt.Sprintf("rv%d", n), "product_id": pid, "rider_id": "r1",
			"rating": rating, "status": "visible", "created_at": time.Now().UTC(),
		}))
	}

	c := NewComposer(mem)
	detail, err := c.ComposeDetail(ctx, "vendor", "v1")
	require.NoError(t, err)

	stats := detail.Stats.(models.VendorStats)
	assert.EqualValues(t, 1, stats.BusinessCount)
	assert.EqualValues(t, 3, stats.ProductCount)
	// среднее только по ненулевым оценкам
	assert.InDelta(t, 4.5, stats.AverageRating, 0.0001)
}

func TestComposer_AverageRatingEmptySet(t *testing.T) {
	assert.Equal(t, 0.0, averageRating(nil))
	assert.Equal(t, 0.0, averageRating([]storage.Row{{"rating": nil}}))
}

func TestComposer_OrderDetail(t *testing.T) {
	mem := seedInventoryWorld(t)
	c := NewComposer(mem)

	detail, err := c.ComposeDetail(context.Background(), "order", "o1")
	require.NoError(t, err)

	stats := detail.Stats.(models.OrderStats)
	assert.EqualValues(t, 4, stats.ItemCount)
	assert.EqualValues(t, 4*1500, stats.TotalCents)

	items := detail.Children["items"]
	require.Len(t, items, 1)
	assert.Equal(t, "Thermos", items[0]["product_name"])
}
