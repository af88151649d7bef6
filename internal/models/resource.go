package models

import (
	"ADMINKA1.0/internal/models/domainErrors"
)

// статусы заказов
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// статусы продавцов
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"

	AccountActive    = "active"
	AccountSuspended = "suspended"
)

// статусы событий
const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventClosed    = "closed"
)

// NotifyTemplate - push-сообщение владельцу ресурса, {old} и {new}
// подставляются при отправке.
type NotifyTemplate struct {
	Title string
	Body  string
}

// OwnerHop - один шаг по цепочке внешних ключей к владельцу ресурса.
type OwnerHop struct {
	FromColumn string //колонка в текущей строке
	Table      string //таблица, куда она указывает
}

// DeleteStep - шаг плана каскадного удаления. FK пустой означает
// саму строку ресурса по id.
type DeleteStep struct {
	Table string
	FK    string
}

// RootRef - зависимая корневая запись, удаляется последней
// (у продавца это строка users).
type RootRef struct {
	Column string
	Table  string
}

type ResourceSpec struct {
	Type        string
	Table       string
	Label       string              //для сообщений аудита
	Mutable     map[string]bool     //поля, которые админ вообще может менять
	StateFields map[string][]string //поле -> словарь допустимых значений
	//поле -> новое значение -> шаблон, "*" означает любое значение
	Notify      map[string]map[string]NotifyTemplate
	OwnerHops   []OwnerHop
	OwnerColumn string //колонка с user id в конце цепочки, "" = без уведомлений
	DeletePlan  []DeleteStep
	RootRef     *RootRef
	SoftDelete  bool
}

// HasStateField проверяет что value входит в словарь поля.
func (s *ResourceSpec) ValidStateValue(field, value string) bool {
	members, ok := s.StateFields[field]
	if !ok {
		return false
	}
	for _, m := range members {
		if m == value {
			return true
		}
	}
	return false
}

var Resources = map[string]*ResourceSpec{
	"order": {
		Type:  "order",
		Table: "orders",
		Label: "Order",
		Mutable: map[string]bool{
			"status":          true,
			"payment_status":  true,
			"tracking_number": true,
		},
		StateFields: map[string][]string{
			"status":         {OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled},
			"payment_status": {PaymentUnpaid, PaymentPaid, PaymentRefunded, PaymentFailed},
		},
		Notify: map[string]map[string]NotifyTemplate{
			"status": {
				OrderConfirmed:  {Title: "Order Confirmed", Body: "Your order has been confirmed."},
				OrderProcessing: {Title: "Order Processing", Body: "Your order is being prepared."},
				OrderShipped:    {Title: "Order Shipped", Body: "Your order is on its way."},
				OrderDelivered:  {Title: "Order Delivered", Body: "Your order has been delivered."},
				OrderCancelled:  {Title: "Order Cancelled", Body: "Your order has been cancelled."},
			},
			"payment_status": {
				PaymentPaid:     {Title: "Payment Received", Body: "We received the payment for your order."},
				PaymentRefunded: {Title: "Payment Refunded", Body: "The payment for your order has been refunded."},
				PaymentFailed:   {Title: "Payment Failed", Body: "The payment for your order has failed."},
			},
			"tracking_number": {
				"*": {Title: "Tracking Update", Body: "Tracking number for your order: {new}"},
			},
		},
		OwnerHops:   []OwnerHop{{FromColumn: "rider_id", Table: "riders"}},
		OwnerColumn: "user_id",
		DeletePlan: []DeleteStep{
			{Table: "order_items", FK: "order_id"},
			{Table: "orders"},
		},
	},
	"vendor": {
		Type:  "vendor",
		Table: "vendors",
		Label: "Vendor",
		Mutable: map[string]bool{
			"verification_status": true,
			"account_status":      true,
		},
		StateFields: map[string][]string{
			"verification_status": {VerificationPending, VerificationApproved, VerificationRejected},
			"account_status":      {AccountActive, AccountSuspended},
		},
		Notify: map[string]map[string]NotifyTemplate{
			"verification_status": {
				VerificationApproved: {Title: "Account Approved", Body: "Your vendor account has been approved."},
				VerificationRejected: {Title: "Account Rejected", Body: "Your vendor account has been rejected."},
			},
			"account_status": {
				AccountSuspended: {Title: "Account Suspended", Body: "Your vendor account has been suspended."},
				AccountActive:    {Title: "Account Reactivated", Body: "Your vendor account is active again."},
			},
		},
		OwnerColumn: "user_id",
		DeletePlan: []DeleteStep{
			{Table: "events", FK: "vendor_id"},
			{Table: "products", FK: "vendor_id"},
			{Table: "businesses", FK: "vendor_id"},
			{Table: "vendors"},
		},
		RootRef: &RootRef{Column: "user_id", Table: "users"},
	},
	"event": {
		Type:  "event",
		Table: "events",
		Label: "Event",
		Mutable: map[string]bool{
			"status":      true,
			"title":       true,
			"price_cents": true,
			"capacity":    true,
		},
		StateFields: map[string][]string{
			"status": {EventDraft, EventPublished, EventClosed},
		},
		Notify: map[string]map[string]NotifyTemplate{
			"status": {
				EventPublished: {Title: "Event Published", Body: "Your event is now visible to riders."},
				EventClosed:    {Title: "Event Closed", Body: "Your event has been closed."},
			},
		},
		OwnerHops:   []OwnerHop{{FromColumn: "vendor_id", Table: "vendors"}},
		OwnerColumn: "user_id",
		DeletePlan: []DeleteStep{
			{Table: "event_participants", FK: "event_id"},
			{Table: "events"},
		},
	},
	"product": {
		Type:  "product",
		Table: "products",
		Label: "Product",
		Mutable: map[string]bool{
			"status":        true,
			"name":          true,
			"price_cents":   true,
			"initial_stock": true,
		},
		StateFields: map[string][]string{
			"status": {"active", "inactive"},
		},
		DeletePlan: []DeleteStep{
			{Table: "reviews", FK: "product_id"},
			{Table: "order_items", FK: "product_id"},
			{Table: "products"},
		},
	},
	"business": {
		Type:  "business",
		Table: "businesses",
		Label: "Business",
		Mutable: map[string]bool{
			"status": true,
			"name":   true,
		},
		StateFields: map[string][]string{
			"status": {"active", "inactive"},
		},
		SoftDelete: true,
	},
	"review": {
		Type:  "review",
		Table: "reviews",
		Label: "Review",
		Mutable: map[string]bool{
			"status": true,
		},
		StateFields: map[string][]string{
			"status": {"visible", "hidden"},
		},
		DeletePlan: []DeleteStep{
			{Table: "reviews"},
		},
	},
}

// Spec возвращает описание типа ресурса.
func Spec(resourceType string) (*ResourceSpec, error) {
	spec, ok := Resources[resourceType]
	if !ok {
		return nil, domainErrors.ErrUnknownResource
	}
	return spec, nil
}

// SpecByTable находит описание по имени таблицы. Нужен каскадам:
// дочерняя таблица плана может сама быть ресурсом со своим планом.
func SpecByTable(table string) (*ResourceSpec, bool) {
	for _, spec := range Resources {
		if spec.Table == table {
			return spec, true
		}
	}
	return nil, false
}
