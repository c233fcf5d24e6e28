package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
	"github.com/shopspring/decimal"
)

var _ port.Cart = Cart{}

type Cart struct {
	items    port.Repository[domain.CartLineItem]
	products port.Repository[domain.Product]
	locks    *keylock.Locker
}

func NewCart(
	items port.Repository[domain.CartLineItem],
	products port.Repository[domain.Product],
	locks Locks,
) Cart {
	return Cart{items, products, locks.Users}
}

// AddItem puts quantity units of a product variant into the user's cart.
// A line item already holding the same product and variant grows instead
// of a new one being created.
func (s Cart) AddItem(
	ctx context.Context, userID, productID, variantID string, quantity int,
) (domain.CartLineItem, error) {
	const op = "Cart.AddItem"

	if err := domain.ValidateLineQuantity(quantity); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	requested, err := domain.ParseVariant(variantID)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	if !product.IsActive {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	variant, ok := product.LookupVariant(requested)
	if !ok {
		return domain.CartLineItem{}, fmt.Errorf(
			"%s: %w", op,
			domain.ValidationError("variant "+variantID+" is not offered"),
		)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	items, err := s.lineItems(ctx, userID)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item := domain.CartLineItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: product.ID,
		VariantID: variant.ID(),
		CreatedAt: time.Now(),
	}
	for _, existing := range items {
		if existing.ProductID == item.ProductID && existing.VariantID == item.VariantID {
			item = existing
			break
		}
	}
	if err := domain.ValidateLineQuantity(item.Quantity + quantity); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	item.Quantity += quantity

	if err := s.items.Put(ctx, item.ID, item); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// UpdateQuantity sets the quantity of a line item. A quantity of zero or
// less removes the item, in which case the returned item has quantity 0.
func (s Cart) UpdateQuantity(
	ctx context.Context, userID, itemID string, quantity int,
) (domain.CartLineItem, error) {
	const op = "Cart.UpdateQuantity"

	if quantity > 0 {
		if err := domain.ValidateLineQuantity(quantity); err != nil {
			return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	item, err := s.ownItem(ctx, userID, itemID)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}

	if quantity <= 0 {
		if err := s.items.Delete(ctx, itemID); err != nil {
			return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
		}
		item.Quantity = 0
		return item, nil
	}

	item.Quantity = quantity
	if err := s.items.Put(ctx, itemID, item); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s Cart) RemoveItem(ctx context.Context, userID, itemID string) error {
	const op = "Cart.RemoveItem"

	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.ownItem(ctx, userID, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Cart) Clear(ctx context.Context, userID string) error {
	const op = "Cart.Clear"

	unlock := s.locks.Lock(userID)
	defer unlock()

	items, err := s.lineItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.removeAll(ctx, items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Items returns the user's line items with the products they reference.
// Items whose product has disappeared from the store are skipped. Items of
// deactivated products are kept so the user can see and remove them.
func (s Cart) Items(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const op = "Cart.Items"
	log := slog.With("op", op)

	items, err := s.lineItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if isNotFound(err) {
				log.Warn("cart item references missing product",
					"itemID", item.ID, "productID", item.ProductID)
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lines = append(lines, domain.CartLine{Item: item, Product: product})
	}
	return lines, nil
}

func (s Cart) TotalItemCount(ctx context.Context, userID string) (int, error) {
	const op = "Cart.TotalItemCount"

	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return summary.TotalItems, nil
}

func (s Cart) TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error) {
	const op = "Cart.TotalPrice"

	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return summary.Subtotal, nil
}

func (s Cart) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	const op = "Cart.Summary"

	lines, err := s.Items(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	return summarize(lines), nil
}

func summarize(lines []domain.CartLine) domain.CartSummary {
	summary := domain.CartSummary{Lines: lines, Subtotal: decimal.Zero}
	for _, l := range lines {
		if !l.Available() {
			continue
		}
		summary.TotalItems += l.Item.Quantity
		summary.Subtotal = summary.Subtotal.Add(l.LineTotal())
	}
	return summary
}

func (s Cart) ownItem(
	ctx context.Context, userID, itemID string,
) (domain.CartLineItem, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.CartLineItem{}, err
	}
	if item.UserID != userID {
		return domain.CartLineItem{}, domain.ErrForbidden
	}
	return item, nil
}

// lineItems returns the user's line items in the order they were added.
func (s Cart) lineItems(
	ctx context.Context, userID string,
) ([]domain.CartLineItem, error) {
	all, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	var own []domain.CartLineItem
	for _, item := range all {
		if item.UserID == userID {
			own = append(own, item)
		}
	}
	return own, nil
}

// removeAll deletes items and returns those actually deleted, so a caller
// can put them back.
func (s Cart) removeAll(
	ctx context.Context, items []domain.CartLineItem,
) ([]domain.CartLineItem, error) {
	removed := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		err := s.items.Delete(ctx, item.ID)
		if err != nil && !isNotFound(err) {
			return removed, err
		}
		removed = append(removed, item)
	}
	return removed, nil
}
