package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ProductEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.products",
	"name": "ProductEvent",
	"fields": [
		{"name": "event_type", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "product_id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "description", "type": "string"},
		{"name": "brand", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "pattern", "type": "string"},
		{"name": "material", "type": "string"},
		{"name": "fit", "type": "string"},
		{"name": "sleeve", "type": "string"},
		{"name": "price", "type": "string"},
		{"name": "sale_price", "type": ["null", "string"], "default": null},
		{"name": "stock", "type": "long"},
		{"name": "colors", "type": {"type": "array", "items": "string"}},
		{"name": "sizes", "type": {"type": "array", "items": "string"}},
		{"name": "images", "type": {"type": "array", "items": "string"}},
		{"name": "rating", "type": "double"},
		{"name": "review_count", "type": "long"},
		{"name": "is_active", "type": "boolean"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// ProductEventV1 carries a full product snapshot. Amounts are decimal
// strings so no precision is lost on the wire.
type ProductEventV1 struct {
	EventType   string    `avro:"event_type"`
	OccurredAt  time.Time `avro:"occurred_at"`
	ProductID   string    `avro:"product_id"`
	Name        string    `avro:"name"`
	Description string    `avro:"description"`
	Brand       string    `avro:"brand"`
	Category    string    `avro:"category"`
	Pattern     string    `avro:"pattern"`
	Material    string    `avro:"material"`
	Fit         string    `avro:"fit"`
	Sleeve      string    `avro:"sleeve"`
	Price       string    `avro:"price"`
	SalePrice   *string   `avro:"sale_price"`
	Stock       int64     `avro:"stock"`
	Colors      []string  `avro:"colors"`
	Sizes       []string  `avro:"sizes"`
	Images      []string  `avro:"images"`
	Rating      float64   `avro:"rating"`
	ReviewCount int64     `avro:"review_count"`
	IsActive    bool      `avro:"is_active"`
	CreatedAt   time.Time `avro:"created_at"`
}

func ProductEventV1Avro() avro.Schema {
	return avro.MustParse(ProductEventSchemaTextV1)
}
