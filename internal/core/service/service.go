// Package service implements the inbound ports of the storefront.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
)

// Locks holds the keyed locks shared between services.
//
// Users serializes cart, wishlist and order placement of one user.
// Products serializes read-modify-write cycles of one product.
type Locks struct {
	Users    *keylock.Locker
	Products *keylock.Locker
}

func NewLocks() Locks {
	return Locks{Users: keylock.New(), Products: keylock.New()}
}

// publishProduct reports a product mutation. The mutation is already
// committed, so a failed publish is logged and not returned.
func publishProduct(
	ctx context.Context,
	events port.ProductEventsProducer,
	typ domain.ProductEventType,
	p domain.Product,
) {
	const op = "service.publishProduct"

	evt := domain.ProductEvent{Type: typ, Product: p, OccurredAt: time.Now()}
	if err := events.ProduceProductEvent(ctx, evt); err != nil {
		slog.With("op", op).Error(
			"failed to publish product event",
			"type", typ, "productID", p.ID, "err", err,
		)
	}
}

func publishOrder(
	ctx context.Context,
	events port.OrderEventsProducer,
	typ domain.OrderEventType,
	o domain.Order,
	items []domain.OrderItem,
) {
	const op = "service.publishOrder"

	evt := domain.OrderEvent{Type: typ, Order: o, Items: items, OccurredAt: time.Now()}
	if err := events.ProduceOrderEvent(ctx, evt); err != nil {
		slog.With("op", op).Error(
			"failed to publish order event",
			"type", typ, "orderID", o.ID, "err", err,
		)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
