package main

import (
	"context"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

var _ kafka.EventHandler = (*printer)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type eventLine struct {
	Kind       string    `json:"kind"`
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Detail     any       `json:"detail"`
}

type productDetail struct {
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Stock       int              `json:"stock"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	IsActive    bool             `json:"isActive"`
}

type orderDetail struct {
	UserID        string          `json:"userId"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Items         int             `json:"items"`
}

// printer writes one JSON document per event.
type printer struct {
	mu  sync.Mutex
	enc *jsoniter.Encoder
}

func newPrinter(w io.Writer) *printer {
	return &printer{enc: json.NewEncoder(w)}
}

func (p *printer) HandleProductEvent(_ context.Context, e domain.ProductEvent) error {
	d := productDetail{
		Name:        e.Product.Name,
		Price:       e.Product.Price,
		Stock:       e.Product.Stock,
		Rating:      e.Product.Rating,
		ReviewCount: e.Product.ReviewCount,
		IsActive:    e.Product.IsActive,
	}
	if e.Product.SalePrice.Valid {
		sale := e.Product.SalePrice.Decimal
		d.SalePrice = &sale
	}
	return p.print(eventLine{
		Kind:       "product",
		Type:       string(e.Type),
		ID:         e.Product.ID,
		OccurredAt: e.OccurredAt,
		Detail:     d,
	})
}

func (p *printer) HandleOrderEvent(_ context.Context, e domain.OrderEvent) error {
	return p.print(eventLine{
		Kind:       "order",
		Type:       string(e.Type),
		ID:         e.Order.ID,
		OccurredAt: e.OccurredAt,
		Detail: orderDetail{
			UserID:        e.Order.UserID,
			Status:        string(e.Order.Status),
			PaymentStatus: string(e.Order.PaymentStatus),
			TotalAmount:   e.Order.TotalAmount,
			Items:         len(e.Items),
		},
	})
}

func (p *printer) print(l eventLine) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(l)
}
