package models

// Производные поля считаются на чтении и никогда не пишутся в базу.
// Деньги всегда в центах, чтобы не ловить дрейф float.

type ProductInventory struct {
	InitialStock      int64 `json:"initial_stock"`
	TotalSold         int64 `json:"total_sold"`
	Remaining         int64 `json:"remaining"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	TotalOrders       int64 `json:"total_orders"`
}

type EventStats struct {
	ParticipantCount int64 `json:"participant_count"`
	PaidCount        int64 `json:"paid_count"`
	RevenueCents     int64 `json:"revenue_cents"`
}

type VendorStats struct {
	BusinessCount int64   `json:"business_count"`
	ProductCount  int64   `json:"product_count"`
	AverageRating float64 `json:"average_rating"`
}

type OrderStats struct {
	ItemCount  int64 `json:"item_count"`
	TotalCents int64 `json:"total_cents"`
}
