package aggregate

import (
	"context"

	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/storage"
)

// Detail - ресурс плюс производные поля, ничего из этого не пишется в базу.
type Detail struct {
	Resource storage.Row              `json:"resource"`
	Stats    any                      `json:"stats,omitempty"`
	Children map[string][]storage.Row `json:"children,omitempty"`
}

type Summary struct {
	Resource storage.Row `json:"resource"`
	Stats    any         `json:"stats,omitempty"`
}

// Composer собирает витрины чтения. Ключевой инвариант списков: на
// дочернюю таблицу ровно один IN-запрос на всю страницу, никогда по
// запросу на строку.
type Composer struct {
	storage storage.Storage
}

func NewComposer(s storage.Storage) *Composer {
	return &Composer{storage: s}
}

func (c *Composer) ComposeDetail(ctx context.Context, resourceType, id string) (*Detail, error) {
	spec, err := models.Spec(resourceType)
	if err != nil {
		return nil, err
	}

	row, err := c.storage.Get(ctx, spec.Table, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Resource: row, Children: map[string][]storage.Row{}}

	switch resourceType {
	case "product":
		stats, err := c.productInventory(ctx, []string{id})
		if err != nil {
			return nil, err
		}
		detail.Stats = stats[id]

	case "event":
		participants, stats, err := c.eventDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Children["participants"] = participants
		detail.Stats = stats

	case "order":
		items, stats, err := c.orderDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Children["items"] = items
		detail.Stats = stats

	case "vendor":
		businesses, stats, err := c.vendorDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Children["businesses"] = businesses
		detail.Stats = stats

	case "business":
		products, err := c.storage.List(ctx, "products", storage.Filter{
			Eq: map[string]any{"business_id": id},
		})
		if err != nil {
			return nil, err
		}
		detail.Children["products"] = products
	}

	return detail, nil
}

func (c *Composer) ComposeList(ctx context.Context, resourceType string, filter storage.Filter) ([]Summary, error) {
	spec, err := models.Spec(resourceType)
	if err != nil {
		return nil, err
	}

	rows, err := c.storage.List(ctx, spec.Table, filter)
	if err != nil {
		return nil, err
	}
	ids := collectValues(rows, "id")

	summaries := make([]Summary, 0, len(rows))
	var statsByID map[string]any

	switch resourceType {
	case "order":
		statsByID, err = c.orderStats(ctx, ids)
	case "event":
		statsByID, err = c.eventStats(ctx, ids)
	case "product":
		inv, invErr := c.productInventory(ctx, stringValues(ids))
		err = invErr
		statsByID = make(map[string]any, len(inv))
		for k, v := range inv {
			statsByID[k] = v
		}
	case "vendor":
		statsByID, err = c.vendorStats(ctx, ids)
	case "business":
		statsByID, err = c.businessStats(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		s := Summary{Resource: row}
		if statsByID != nil {
			s.Stats = statsByID[asString(row["id"])]
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// productInventory считает склад и выручку по order_items, заказы со
// статусом cancelled не учитываются. remaining = initial_stock - total_sold.
func (c *Composer) productInventory(ctx context.Context, productIDs []string) (map[string]models.ProductInventory, error) {
	out := make(map[string]models.ProductInventory, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	products, err := c.storage.List(ctx, "products", storage.Filter{
		In: map[string][]any{"id": anyValues(productIDs)},
	})
	if err != nil {
		return nil, err
	}

	items, err := c.storage.List(ctx, "order_items", storage.Filter{
		In: map[string][]any{"product_id": anyValues(productIDs)},
	})
	if err != nil {
		return nil, err
	}

	orderStatus := map[string]string{}
	if orderIDs := collectValues(items, "order_id"); len(orderIDs) > 0 {
		orders, err := c.storage.List(ctx, "orders", storage.Filter{
			In: map[string][]any{"id": orderIDs},
		})
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			orderStatus[asString(o["id"])] = asString(o["status"])
		}
	}

	type acc struct {
		sold    int64
		revenue int64
		orders  map[string]bool
	}
	accs := map[string]*acc{}
	for _, item := range items {
		orderID := asString(item["order_id"])
		if orderStatus[orderID] == models.OrderCancelled {
			continue
		}
		pid := asString(item["product_id"])
		a := accs[pid]
		if a == nil {
			a = &acc{orders: map[string]bool{}}
			accs[pid] = a
		}
		qty := asInt64(item["quantity"])
		a.sold += qty
		a.revenue += qty * asInt64(item["unit_price_cents"])
		a.orders[orderID] = true
	}

	for _, p := range products {
		pid := asString(p["id"])
		inv := models.ProductInventory{InitialStock: asInt64(p["initial_stock"])}
		if a := accs[pid]; a != nil {
			inv.TotalSold = a.sold
			inv.TotalRevenueCents = a.revenue
			inv.TotalOrders = int64(len(a.orders))
		}
		inv.Remaining = inv.InitialStock - inv.TotalSold
		out[pid] = inv
	}
	return out, nil
}

// eventDetail подтягивает платежи участников одним IN-запросом и
// вливает их в строки участников через карту по payment_id.
func (c *Composer) eventDetail(ctx context.Context, eventID string) ([]storage.Row, models.EventStats, error) {
	stats := models.EventStats{}

	participants, err := c.storage.List(ctx, "event_participants", storage.Filter{
		Eq: map[string]any{"event_id": eventID},
	})
	if err != nil {
		return nil, stats, err
	}

	payments := map[string]storage.Row{}
	if paymentIDs := collectValues(participants, "payment_id"); len(paymentIDs) > 0 {
		rows, err := c.storage.List(ctx, "payments", storage.Filter{
			In: map[string][]any{"id": paymentIDs},
		})
		if err != nil {
			return nil, stats, err
		}
		for _, p := range rows {
			payments[asString(p["id"])] = p
		}
	}

	stats.ParticipantCount = int64(len(participants))
	for _, part := range participants {
		payment, ok := payments[asString(part["payment_id"])]
		if !ok {
			continue
		}
		part["payment_status"] = payment["status"]
		part["amount_cents"] = payment["amount_cents"]
		if asString(payment["status"]) == models.PaymentPaid {
			stats.PaidCount++
			stats.RevenueCents += asInt64(payment["amount_cents"])
		}
	}
	return participants, stats, nil
}

func (c *Composer) orderDetail(ctx context.Context, orderID string) ([]storage.Row, models.OrderStats, error) {
	stats := models.OrderStats{}

	items, err := c.storage.List(ctx, "order_items", storage.Filter{
		Eq: map[string]any{"order_id": orderID},
	})
	if err != nil {
		return nil, stats, err
	}

	productNames := map[string]any{}
	if productIDs := collectValues(items, "product_id"); len(productIDs) > 0 {
		products, err := c.storage.List(ctx, "products", storage.Filter{
			In: map[string][]any{"id": productIDs},
		})
		if err != nil {
			return nil, stats, err
		}
		for _, p := range products {
			productNames[asString(p["id"])] = p["name"]
		}
	}

	for _, item := range items {
		item["product_name"] = productNames[asString(item["product_id"])]
		qty := asInt64(item["quantity"])
		stats.ItemCount += qty
		stats.TotalCents += qty * asInt64(item["unit_price_cents"])
	}
	return items, stats, nil
}

func (c *Composer) vendorDetail(ctx context.Context, vendorID string) ([]storage.Row, models.VendorStats, error) {
	stats := models.VendorStats{}

	businesses, err := c.storage.List(ctx, "businesses", storage.Filter{
		Eq: map[string]any{"vendor_id": vendorID},
	})
	if err != nil {
		return nil, stats, err
	}

	products, err := c.storage.List(ctx, "products", storage.Filter{
		Eq: map[string]any{"vendor_id": vendorID},
	})
	if err != nil {
		return nil, stats, err
	}

	stats.BusinessCount = int64(len(businesses))
	stats.ProductCount = int64(len(products))

	if productIDs := collectValues(products, "id"); len(productIDs) > 0 {
		reviews, err := c.storage.List(ctx, "reviews", storage.Filter{
			In: map[string][]any{"product_id": productIDs},
		})
		if err != nil {
			return nil, stats, err
		}
		stats.AverageRating = averageRating(reviews)
	}
	return businesses, stats, nil
}

func (c *Composer) orderStats(ctx context.Context, orderIDs []any) (map[string]any, error) {
	out := map[string]any{}
	if len(orderIDs) == 0 {
		return out, nil
	}

	items, err := c.storage.List(ctx, "order_items", storage.Filter{
		In: map[string][]any{"order_id": orderIDs},
	})
	if err != nil {
		return nil, err
	}

	accs := map[string]*models.OrderStats{}
	for _, item := range items {
		oid := asString(item["order_id"])
		a := accs[oid]
		if a == nil {
			a = &models.OrderStats{}
			accs[oid] = a
		}
		qty := asInt64(item["quantity"])
		a.ItemCount += qty
		a.TotalCents += qty * asInt64(item["unit_price_cents"])
	}

	for _, id := range orderIDs {
		sid := asString(id)
		if a := accs[sid]; a != nil {
			out[sid] = *a
		} else {
			out[sid] = models.OrderStats{}
		}
	}
	return out, nil
}

func (c *Composer) eventStats(ctx context.Context, eventIDs []any) (map[string]any, error) {
	out := map[string]any{}
	if len(eventIDs) == 0 {
		return out, nil
	}

	participants, err := c.storage.List(ctx, "event_participants", storage.Filter{
		In: map[string][]any{"event_id": eventIDs},
	})
	if err != nil {
		return nil, err
	}

	payments := map[string]storage.Row{}
	if paymentIDs := collectValues(participants, "payment_id"); len(paymentIDs) > 0 {
		rows, err := c.storage.List(ctx, "payments", storage.Filter{
			In: map[string][]any{"id": paymentIDs},
		})
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			payments[asString(p["id"])] = p
		}
	}

	accs := map[string]*models.EventStats{}
	for _, part := range participants {
		eid := asString(part["event_id"])
		a := accs[eid]
		if a == nil {
			a = &models.EventStats{}
			accs[eid] = a
		}
		a.ParticipantCount++
		if payment, ok := payments[asString(part["payment_id"])]; ok {
			if asString(payment["status"]) == models.PaymentPaid {
				a.PaidCount++
				a.RevenueCents += asInt64(payment["amount_cents"])
			}
		}
	}

	for _, id := range eventIDs {
		sid := asString(id)
		if a := accs[sid]; a != nil {
			out[sid] = *a
		} else {
			out[sid] = models.EventStats{}
		}
	}
	return out, nil
}

func (c *Composer) vendorStats(ctx context.Context, vendorIDs []any) (map[string]any, error) {
	out := map[string]any{}
	if len(vendorIDs) == 0 {
		return out, nil
	}

	businesses, err := c.storage.List(ctx, "businesses", storage.Filter{
		In: map[string][]any{"vendor_id": vendorIDs},
	})
	if err != nil {
		return nil, err
	}
	products, err := c.storage.List(ctx, "products", storage.Filter{
		In: map[string][]any{"vendor_id": vendorIDs},
	})
	if err != nil {
		return nil, err
	}

	reviewsByProduct := map[string][]storage.Row{}
	if productIDs := collectValues(products, "id"); len(productIDs) > 0 {
		reviews, err := c.storage.List(ctx, "reviews", storage.Filter{
			In: map[string][]any{"product_id": productIDs},
		})
		if err != nil {
			return nil, err
		}
		for _, r := range reviews {
			pid := asString(r["product_id"])
			reviewsByProduct[pid] = append(reviewsByProduct[pid], r)
		}
	}

	type acc struct {
		stats   models.VendorStats
		reviews []storage.Row
	}
	accs := map[string]*acc{}
	get := func(vid string) *acc {
		a := accs[vid]
		if a == nil {
			a = &acc{}
			accs[vid] = a
		}
		return a
	}
	for _, b := range businesses {
		get(asString(b["vendor_id"])).stats.BusinessCount++
	}
	for _, p := range products {
		a := get(asString(p["vendor_id"]))
		a.stats.ProductCount++
		a.reviews = append(a.reviews, reviewsByProduct[asString(p["id"])]...)
	}

	for _, id := range vendorIDs {
		sid := asString(id)
		if a := accs[sid]; a != nil {
			a.stats.AverageRating = averageRating(a.reviews)
			out[sid] = a.stats
		} else {
			out[sid] = models.VendorStats{}
		}
	}
	return out, nil
}

func (c *Composer) businessStats(ctx context.Context, businessIDs []any) (map[string]any, error) {
	out := map[string]any{}
	if len(businessIDs) == 0 {
		return out, nil
	}

	products, err := c.storage.List(ctx, "products", storage.Filter{
		In: map[string][]any{"business_id": businessIDs},
	})
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, p := range products {
		counts[asString(p["business_id"])]++
	}
	for _, id := range businessIDs {
		sid := asString(id)
		out[sid] = map[string]int64{"product_count": counts[sid]}
	}
	return out, nil
}

// averageRating усредняет только ненулевые оценки, пустой набор даёт 0.0.
func averageRating(reviews []storage.Row) float64 {
	var sum float64
	var n int64
	for _, r := range reviews {
		rating := r["rating"]
		if rating == nil {
			continue
		}
		if f, ok := toFloat(rating); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

func collectValues(rows []storage.Row, column string) []any {
	seen := map[string]bool{}
	var out []any
	for _, row := range rows {
		v := asString(row[column])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func anyValues(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

func stringValues(ids []any) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, asString(id))
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
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
