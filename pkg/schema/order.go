package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const OrderEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.orders",
	"name": "OrderEvent",
	"fields": [
		{"name": "event_type", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "order_id", "type": "string"},
		{"name": "user_id", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "payment_status", "type": "string"},
		{"name": "payment_method", "type": "string"},
		{"name": "subtotal", "type": "string"},
		{"name": "shipping_fee", "type": "string"},
		{"name": "tax", "type": "string"},
		{"name": "total_amount", "type": "string"},
		{"name": "shipping_address", "type": {
			"type": "record",
			"name": "ShippingAddress",
			"fields": [
				{"name": "first_name", "type": "string"},
				{"name": "last_name", "type": "string"},
				{"name": "email", "type": "string"},
				{"name": "phone", "type": "string"},
				{"name": "address", "type": "string"},
				{"name": "city", "type": "string"},
				{"name": "state", "type": "string"},
				{"name": "postal_code", "type": "string"},
				{"name": "country", "type": "string"}
			]
		}},
		{"name": "items", "type": {"type": "array", "items": {
			"type": "record",
			"name": "OrderItem",
			"fields": [
				{"name": "item_id", "type": "string"},
				{"name": "product_id", "type": "string"},
				{"name": "variant_id", "type": "string"},
				{"name": "quantity", "type": "long"},
				{"name": "price", "type": "string"}
			]
		}}},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "updated_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	// OrderEventV1 carries an order snapshot. Items are sent with
	// order_placed only.
	OrderEventV1 struct {
		EventType       string            `avro:"event_type"`
		OccurredAt      time.Time         `avro:"occurred_at"`
		OrderID         string            `avro:"order_id"`
		UserID          string            `avro:"user_id"`
		Status          string            `avro:"status"`
		PaymentStatus   string            `avro:"payment_status"`
		PaymentMethod   string            `avro:"payment_method"`
		Subtotal        string            `avro:"subtotal"`
		ShippingFee     string            `avro:"shipping_fee"`
		Tax             string            `avro:"tax"`
		TotalAmount     string            `avro:"total_amount"`
		ShippingAddress ShippingAddressV1 `avro:"shipping_address"`
		Items           []OrderItemV1     `avro:"items"`
		CreatedAt       time.Time         `avro:"created_at"`
		UpdatedAt       time.Time         `avro:"updated_at"`
	}

	ShippingAddressV1 struct {
		FirstName  string `avro:"first_name"`
		LastName   string `avro:"last_name"`
		Email      string `avro:"email"`
		Phone      string `avro:"phone"`
		Address    string `avro:"address"`
		City       string `avro:"city"`
		State      string `avro:"state"`
		PostalCode string `avro:"postal_code"`
		Country    string `avro:"country"`
	}

	OrderItemV1 struct {
		ItemID    string `avro:"item_id"`
		ProductID string `avro:"product_id"`
		VariantID string `avro:"variant_id"`
		Quantity  int64  `avro:"quantity"`
		Price     string `avro:"price"`
	}
)

func OrderEventV1Avro() avro.Schema {
	return avro.MustParse(OrderEventSchemaTextV1)
}
