package bulk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/tools/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

func seedVendor(t *testing.T, mem *storage.MemStorage, n int, withUser bool) string {
	t.Helper()
	ctx := context.Background()
	vid := fmt.Sprintf("v%d", n)
	uid := fmt.Sprintf("u%d", n)

	if withUser {
		require.NoError(t, mem.Insert(ctx, "users", storage.Row{
			"id": uid, "name": uid, "role": "vendor",
		}))
	}
	require.NoError(t, mem.Insert(ctx, "vendors", storage.Row{
		"id": vid, "user_id": uid, "verification_status": "approved",
		"account_status": "active", "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "businesses", storage.Row{
		"id": "b-" + vid, "vendor_id": vid, "name": "shop " + vid, "status": "active",
		"deleted_at": nil, "created_at": time.Now().UTC(),
	}))
	return vid
}

func auditEntry(resourceType, id string) models.AuditEntry {
	return models.AuditEntry{
		ResourceType: resourceType,
		ResourceID:   id,
		FieldName:    "status",
		OldValue:     "pending",
		NewValue:     "shipped",
		Message:      "Order status changed from pending to shipped",
		PerformedBy:  "admin-1",
	}
}

func TestOperator_BulkIsolation(t *testing.T) {
	mem := storage.NewMemStorage()
	op := NewOperator(mem, audit.NewLog(mem), 2)
	ctx := context.Background()

	// у второго продавца нет строки users, его удаление обязано упасть
	v1 := seedVendor(t, mem, 1, true)
	v2 := seedVendor(t, mem, 2, false)
	v3 := seedVendor(t, mem, 3, true)

	result := op.Apply(ctx, []string{v1, v2, v3}, func(ctx context.Context, id string) error {
		return op.HardDelete(ctx, "vendor", id)
	})

	assert.ElementsMatch(t, []string{v1, v3}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, v2, result.Failed[0].ID)
	assert.Equal(t, "MISSING_DEPENDENT", result.Failed[0].Code)

	// первый и третий удалены вместе с детьми и корнем, второй цел
	_, err := mem.Get(ctx, "vendors", v1)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	_, err = mem.Get(ctx, "users", "u1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	_, err = mem.Get(ctx, "businesses", "b-"+v1)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	_, err = mem.Get(ctx, "vendors", v2)
	assert.NoError(t, err)
	_, err = mem.Get(ctx, "businesses", "b-"+v2)
	assert.NoError(t, err)

	_, err = mem.Get(ctx, "vendors", v3)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestOperator_HardDeleteVendorCascadesDeep(t *testing.T) {
	mem := storage.NewMemStorage()
	auditLog := audit.NewLog(mem)
	op := NewOperator(mem, auditLog, 1)
	ctx := context.Background()

	v1 := seedVendor(t, mem, 1, true)

	// внуки: участники события, позиции заказов и отзывы продукта
	require.NoError(t, mem.Insert(ctx, "events", storage.Row{
		"id": "e1", "vendor_id": v1, "title": "wine tasting", "status": "published",
		"price_cents": int64(3000), "capacity": int64(20), "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "event_participants", storage.Row{
		"id": "ep1", "event_id": "e1", "rider_id": "r1", "payment_id": "pay1",
		"created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "products", storage.Row{
		"id": "p1", "vendor_id": v1, "business_id": "b-" + v1, "name": "thermos",
		"price_cents": int64(1500), "initial_stock": int64(10), "status": "active",
		"created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "reviews", storage.Row{
		"id": "rv1", "product_id": "p1", "rider_id": "r1", "rating": 4.0,
		"comment": "fine", "status": "visible", "created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "order_items", storage.Row{
		"id": "i1", "order_id": "o9", "product_id": "p1",
		"quantity": int64(1), "unit_price_cents": int64(1500),
	}))
	require.NoError(t, auditLog.Append(ctx, models.AuditEntry{
		ResourceType: "event", ResourceID: "e1", FieldName: "status",
		OldValue: "draft", NewValue: "published",
	}))
	require.NoError(t, auditLog.Append(ctx, models.AuditEntry{
		ResourceType: "review", ResourceID: "rv1", FieldName: "status",
		OldValue: "visible", NewValue: "hidden",
	}))
	require.NoError(t, auditLog.Append(ctx, models.AuditEntry{
		ResourceType: "event", ResourceID: "e-other", FieldName: "status",
		OldValue: "draft", NewValue: "published",
	}))

	require.NoError(t, op.HardDelete(ctx, "vendor", v1))

	// ни одной осиротевшей строки ни на каком уровне
	for _, tbl := range []string{"events", "event_participants", "products", "reviews", "order_items", "businesses", "vendors"} {
		rows, err := mem.List(ctx, tbl, storage.Filter{})
		require.NoError(t, err)
		assert.Empty(t, rows, tbl)
	}
	_, err := mem.Get(ctx, "users", "u1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	// история потомков ушла вместе с ними, чужая осталась
	entries, err := auditLog.List(ctx, "event", "e1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, err = auditLog.List(ctx, "review", "rv1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, err = auditLog.List(ctx, "event", "e-other", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOperator_HardDeleteOrderCascade(t *testing.T) {
	mem := storage.NewMemStorage()
	auditLog := audit.NewLog(mem)
	op := NewOperator(mem, auditLog, 1)
	ctx := context.Background()

	require.NoError(t, mem.Insert(ctx, "orders", storage.Row{
		"id": "o1", "rider_id": "r1", "status": "pending", "payment_status": "unpaid",
		"created_at": time.Now().UTC(),
	}))
	require.NoError(t, mem.Insert(ctx, "order_items", storage.Row{
		"id": "i1", "order_id": "o1", "product_id": "p1",
		"quantity": int64(2), "unit_price_cents": int64(500),
	}))
	require.NoError(t, auditLog.Append(ctx, auditEntry("order", "o1")))
	require.NoError(t, auditLog.Append(ctx, auditEntry("order", "o2")))

	require.NoError(t, op.HardDelete(ctx, "order", "o1"))

	_, err := mem.Get(ctx, "orders", "o1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	_, err = mem.Get(ctx, "order_items", "i1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	// история o1 ушла каскадом, чужая осталась
	entries, err := auditLog.List(ctx, "order", "o1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	entries, err = auditLog.List(ctx, "order", "o2", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOperator_HardDeleteNotFound(t *testing.T) {
	mem := storage.NewMemStorage()
	op := NewOperator(mem, audit.NewLog(mem), 1)

	err := op.HardDelete(context.Background(), "order", "ghost")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestOperator_SoftDeleteTypeHasNoPlan(t *testing.T) {
	mem := storage.NewMemStorage()
	op := NewOperator(mem, audit.NewLog(mem), 1)

	err := op.HardDelete(context.Background(), "business", "b1")
	assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)
}

func TestOperator_ApplyManyIDs(t *testing.T) {
	mem := storage.NewMemStorage()
	op := NewOperator(mem, audit.NewLog(mem), 4)

	var ids []string
	for n := 0; n < 50; n++ {
		ids = append(ids, fmt.Sprintf("id%d", n))
	}

	result := op.Apply(context.Background(), ids, func(ctx context.Context, id string) error {
		if id == "id13" || id == "id37" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Len(t, result.Succeeded, 48)
	require.Len(t, result.Failed, 2)
	failedIDs := []string{result.Failed[0].ID, result.Failed[1].ID}
	assert.ElementsMatch(t, []string{"id13", "id37"}, failedIDs)
	for _, f := range result.Failed {
		assert.Equal(t, "UNKNOWN", f.Code)
	}
}

func TestOperator_ApplyEmpty(t *testing.T) {
	mem := storage.NewMemStorage()
	op := NewOperator(mem, audit.NewLog(mem), 4)

	result := op.Apply(context.Background(), nil, func(ctx context.Context, id string) error {
		t.Fatal("не должно вызываться")
		return nil
	})
	assert.Empty(t, result.Succeeded)
	assert.Empty(t, result.Failed)
}
