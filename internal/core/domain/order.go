package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return v, nil
	}
	return "", ValidationError("unknown order status " + quote(s))
}

// CanTransitionTo reports whether next may follow s.
// Delivered and cancelled orders are final.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return v, nil
	}
	return "", ValidationError("unknown payment status " + quote(s))
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], next)
}

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCOD        PaymentMethod = "cod"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	v := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD:
		return v, nil
	}
	return "", ValidationError("unsupported payment method " + quote(s))
}

type ShippingAddress struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a ShippingAddress) Validate() error {
	var errs []error
	fields := []struct {
		name, value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"pinCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, ValidationError("shippingAddress."+f.name+" is required"))
		}
	}
	return errors.Join(errs...)
}

// Order amounts are fixed at creation time.
type Order struct {
	ID              string
	UserID          string
	Status          OrderStatus
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
	TotalAmount     decimal.Decimal
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem captures the unit price at the time the order was placed.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	VariantID string
	Quantity  int
	Price     decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderDetails struct {
	Order Order
	Items []OrderItem
}

// Quote is the price breakdown of a cart at checkout.
type Quote struct {
	TotalItems  int
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

type OrderEventType string

const (
	OrderPlaced               OrderEventType = "order_placed"
	OrderStatusChanged        OrderEventType = "order_status_changed"
	OrderPaymentStatusChanged OrderEventType = "order_payment_status_changed"
)

type OrderEvent struct {
	Type       OrderEventType
	Order      Order
	Items      []OrderItem
	OccurredAt time.Time
}

func quote(s string) string {
	return "\"" + s + "\""
}
