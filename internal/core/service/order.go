package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
	"github.com/shopspring/decimal"
)

var _ port.Orders = Orders{}

// Pricing holds the checkout charges applied on top of the cart subtotal.
type Pricing struct {
	// Orders with a subtotal above the threshold ship for free.
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	// Fraction of the subtotal, the result is rounded to whole units.
	TaxRate decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(999),
		ShippingFee:           decimal.NewFromInt(49),
		TaxRate:               decimal.RequireFromString("0.10"),
	}
}

// Quote prices a cart with the given subtotal and item count.
func (p Pricing) Quote(subtotal decimal.Decimal, totalItems int) domain.Quote {
	if totalItems == 0 {
		zero := decimal.Zero
		return domain.Quote{Subtotal: zero, ShippingFee: zero, Tax: zero, Total: zero}
	}

	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.TaxRate).Round(0)

	return domain.Quote{
		TotalItems:  totalItems,
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       subtotal.Add(shipping).Add(tax),
	}
}

type Orders struct {
	cart     Cart
	orders   port.Repository[domain.Order]
	items    port.Repository[domain.OrderItem]
	events   port.OrderEventsProducer
	pricing  Pricing
	statuses *keylock.Locker
}

func NewOrders(
	cart Cart,
	orders port.Repository[domain.Order],
	items port.Repository[domain.OrderItem],
	events port.OrderEventsProducer,
	pricing Pricing,
) Orders {
	return Orders{cart, orders, items, events, pricing, keylock.New()}
}

// Quote prices the user's cart the way CreateOrder would.
func (s Orders) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	const op = "Orders.Quote"

	items, err := s.cart.lineItems(ctx, userID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%s: %w", op, err)
	}
	q, _, err := s.price(ctx, items)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%s: %w", op, err)
	}
	return q, nil
}

// CreateOrder turns the user's cart into a pending order and empties the
// cart. Either the order with all its items is stored and the cart is empty,
// or nothing is stored and the cart is left as it was.
func (s Orders) CreateOrder(
	ctx context.Context,
	userID string,
	addr domain.ShippingAddress,
	method domain.PaymentMethod,
) (domain.OrderDetails, error) {
	const op = "Orders.CreateOrder"

	if err := addr.Validate(); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := domain.ParsePaymentMethod(string(method)); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.cart.locks.Lock(userID)
	defer unlock()

	cartItems, err := s.cart.lineItems(ctx, userID)
	if err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(cartItems) == 0 {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	q, prices, err := s.price(ctx, cartItems)
	if err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	order := domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          domain.OrderPending,
		Subtotal:        q.Subtotal,
		ShippingFee:     q.ShippingFee,
		Tax:             q.Tax,
		TotalAmount:     q.Total,
		ShippingAddress: addr,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	items := make([]domain.OrderItem, len(cartItems))
	for i, ci := range cartItems {
		items[i] = domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: ci.ProductID,
			VariantID: ci.VariantID,
			Quantity:  ci.Quantity,
			Price:     prices[i],
		}
	}

	if err := s.place(ctx, order, items, cartItems); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	publishOrder(ctx, s.events, domain.OrderPlaced, order, items)
	return domain.OrderDetails{Order: order, Items: items}, nil
}

// place writes the order and its items and then empties the cart, undoing
// every completed step when a later one fails.
func (s Orders) place(
	ctx context.Context,
	order domain.Order,
	items []domain.OrderItem,
	cartItems []domain.CartLineItem,
) error {
	if err := s.orders.Put(ctx, order.ID, order); err != nil {
		return err
	}

	written := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if err := s.items.Put(ctx, item.ID, item); err != nil {
			return errors.Join(err, s.discard(order, written))
		}
		written = append(written, item)
	}

	removed, err := s.cart.removeAll(ctx, cartItems)
	if err != nil {
		return errors.Join(err, s.restoreCart(removed), s.discard(order, written))
	}
	return nil
}

// discard removes a partially written order. It runs on a fresh context so
// that a canceled request does not leave the order behind.
func (s Orders) discard(order domain.Order, items []domain.OrderItem) error {
	const op = "Orders.discard"
	log := slog.With("op", op, "orderID", order.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, item := range items {
		if err := s.items.Delete(ctx, item.ID); err != nil && !isNotFound(err) {
			errs = append(errs, err)
		}
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil && !isNotFound(err) {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Error("failed to discard order", "err", err)
	}
	return err
}

func (s Orders) restoreCart(items []domain.CartLineItem) error {
	const op = "Orders.restoreCart"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, item := range items {
		if err := s.cart.items.Put(ctx, item.ID, item); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.With("op", op).Error("failed to restore cart", "err", err)
	}
	return err
}

// price re-reads every referenced product and returns the quote together
// with the unit price of each item.
func (s Orders) price(
	ctx context.Context, items []domain.CartLineItem,
) (domain.Quote, []decimal.Decimal, error) {
	prices := make([]decimal.Decimal, len(items))
	subtotal := decimal.Zero
	var totalItems int

	for i, item := range items {
		product, err := s.cart.products.Get(ctx, item.ProductID)
		if err != nil && !isNotFound(err) {
			return domain.Quote{}, nil, err
		}
		if err != nil || !product.IsActive {
			return domain.Quote{}, nil, domain.ValidationError(
				"product " + item.ProductID + " is no longer available",
			)
		}

		prices[i] = product.EffectivePrice()
		subtotal = subtotal.Add(prices[i].Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalItems += item.Quantity
	}
	return s.pricing.Quote(subtotal, totalItems), prices, nil
}

// List returns orders newest first. Admins see every order, other users
// their own.
func (s Orders) List(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	const op = "Orders.List"

	if !p.Authenticated() {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if p.CanAccess(o.UserID) {
			orders = append(orders, o)
		}
	}
	slices.SortStableFunc(orders, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders, nil
}

func (s Orders) Get(
	ctx context.Context, p domain.Principal, id string,
) (domain.OrderDetails, error) {
	const op = "Orders.Get"

	if !p.Authenticated() {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, domain.ErrUnauthenticated)
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}
	if !p.CanAccess(order.UserID) {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, domain.ErrForbidden)
	}

	items, err := s.orderItems(ctx, id)
	if err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%s: %w", op, err)
	}
	return domain.OrderDetails{Order: order, Items: items}, nil
}

func (s Orders) UpdateStatus(
	ctx context.Context, p domain.Principal, id string, status domain.OrderStatus,
) (domain.Order, error) {
	const op = "Orders.UpdateStatus"

	order, err := s.transition(ctx, p, id, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(status) {
			return domain.ValidationError(fmt.Sprintf(
				"order status cannot change from %s to %s", o.Status, status,
			))
		}
		o.Status = status
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	publishOrder(ctx, s.events, domain.OrderStatusChanged, order, nil)
	return order, nil
}

func (s Orders) UpdatePaymentStatus(
	ctx context.Context, p domain.Principal, id string, status domain.PaymentStatus,
) (domain.Order, error) {
	const op = "Orders.UpdatePaymentStatus"

	order, err := s.transition(ctx, p, id, func(o *domain.Order) error {
		if !o.PaymentStatus.CanTransitionTo(status) {
			return domain.ValidationError(fmt.Sprintf(
				"payment status cannot change from %s to %s", o.PaymentStatus, status,
			))
		}
		o.PaymentStatus = status
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	publishOrder(ctx, s.events, domain.OrderPaymentStatusChanged, order, nil)
	return order, nil
}

func (s Orders) transition(
	ctx context.Context,
	p domain.Principal,
	id string,
	change func(*domain.Order) error,
) (domain.Order, error) {
	if err := RequireAdmin(p); err != nil {
		return domain.Order{}, err
	}

	unlock := s.statuses.Lock(id)
	defer unlock()

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := change(&order); err != nil {
		return domain.Order{}, err
	}
	order.UpdatedAt = time.Now()

	if err := s.orders.Put(ctx, id, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s Orders) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	all, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	var items []domain.OrderItem
	for _, item := range all {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}
