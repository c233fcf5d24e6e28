package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
)

var _ port.Wishlist = Wishlist{}

type Wishlist struct {
	entries  port.Repository[domain.WishlistEntry]
	products port.Repository[domain.Product]
	locks    *keylock.Locker
}

func NewWishlist(
	entries port.Repository[domain.WishlistEntry],
	products port.Repository[domain.Product],
	locks Locks,
) Wishlist {
	return Wishlist{entries, products, locks.Users}
}

// List returns the user's entries with their products, skipping entries
// whose product is gone or taken off sale.
func (s Wishlist) List(ctx context.Context, userID string) ([]domain.WishlistLine, error) {
	const op = "Wishlist.List"

	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines := make([]domain.WishlistLine, 0, len(entries))
	for _, e := range entries {
		product, err := s.products.Get(ctx, e.ProductID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !product.IsActive {
			continue
		}
		lines = append(lines, domain.WishlistLine{Entry: e, Product: product})
	}
	return lines, nil
}

// Add saves a product to the user's wishlist. Adding a product twice
// returns the existing entry.
func (s Wishlist) Add(
	ctx context.Context, userID, productID string,
) (domain.WishlistEntry, error) {
	const op = "Wishlist.Add"

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.WishlistEntry{}, fmt.Errorf("%s: %w", op, err)
	}
	if !product.IsActive {
		return domain.WishlistEntry{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	existing, err := s.find(ctx, userID, productID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return domain.WishlistEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	e := domain.WishlistEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if err := s.entries.Put(ctx, e.ID, e); err != nil {
		return domain.WishlistEntry{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (s Wishlist) Remove(ctx context.Context, userID, productID string) error {
	const op = "Wishlist.Remove"

	unlock := s.locks.Lock(userID)
	defer unlock()

	e, err := s.find(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.entries.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Wishlist) find(
	ctx context.Context, userID, productID string,
) (domain.WishlistEntry, error) {
	entries, err := s.userEntries(ctx, userID)
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	for _, e := range entries {
		if e.ProductID == productID {
			return e, nil
		}
	}
	return domain.WishlistEntry{}, domain.ErrNotFound
}

func (s Wishlist) userEntries(
	ctx context.Context, userID string,
) ([]domain.WishlistEntry, error) {
	all, err := s.entries.List(ctx)
	if err != nil {
		return nil, err
	}
	var own []domain.WishlistEntry
	for _, e := range all {
		if e.UserID == userID {
			own = append(own, e)
		}
	}
	return own, nil
}
