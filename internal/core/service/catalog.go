package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/filter"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
)

var _ port.Catalog = Catalog{}

type Catalog struct {
	products port.Repository[domain.Product]
	locks    *keylock.Locker
	events   port.ProductEventsProducer
}

func NewCatalog(
	products port.Repository[domain.Product],
	locks Locks,
	events port.ProductEventsProducer,
) Catalog {
	return Catalog{products, locks.Products, events}
}

// List returns the products matching c. Inactive products are listed for
// admins only.
func (s Catalog) List(
	ctx context.Context, p domain.Principal, c filter.Criteria,
) ([]domain.Product, error) {
	const op = "Catalog.List"

	ps, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !p.IsAdmin {
		visible := ps[:0]
		for _, product := range ps {
			if product.IsActive {
				visible = append(visible, product)
			}
		}
		ps = visible
	}
	return filter.Apply(ps, c), nil
}

func (s Catalog) Get(
	ctx context.Context, p domain.Principal, id string,
) (domain.Product, error) {
	const op = "Catalog.Get"

	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if !product.IsActive && !p.IsAdmin {
		return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return product, nil
}

func (s Catalog) Create(
	ctx context.Context, p domain.Principal, draft domain.ProductDraft,
) (domain.Product, error) {
	const op = "Catalog.Create"

	if err := RequireAdmin(p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	product := newProduct(draft)
	if err := product.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.products.Put(ctx, product.ID, product); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	publishProduct(ctx, s.events, domain.ProductCreated, product)
	return product, nil
}

func (s Catalog) Update(
	ctx context.Context, p domain.Principal, id string, patch domain.ProductPatch,
) (domain.Product, error) {
	const op = "Catalog.Update"

	if err := RequireAdmin(p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	stored, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	product := patch.Apply(stored)
	if err := product.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.products.Put(ctx, id, product); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	publishProduct(ctx, s.events, domain.ProductUpdated, product)
	return product, nil
}

// Delete takes the product off sale. The record is kept so that carts,
// orders and reviews referencing it stay readable.
func (s Catalog) Delete(ctx context.Context, p domain.Principal, id string) error {
	const op = "Catalog.Delete"

	if err := RequireAdmin(p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	product, err := s.products.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !product.IsActive {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	product.IsActive = false
	if err := s.products.Put(ctx, id, product); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	publishProduct(ctx, s.events, domain.ProductDeleted, product)
	return nil
}

// Seed stores products as they are, assigning ids and timestamps only where
// missing. Existing records with the same id are left untouched.
func (s Catalog) Seed(ctx context.Context, ps []domain.Product) (int, error) {
	const op = "Catalog.Seed"

	var n int
	for _, product := range ps {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		if product.CreatedAt.IsZero() {
			product.CreatedAt = time.Now()
		}
		if err := product.Validate(); err != nil {
			return n, fmt.Errorf("%s: product %q: %w", op, product.Name, err)
		}

		_, err := s.products.Get(ctx, product.ID)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return n, fmt.Errorf("%s: %w", op, err)
		}

		if err := s.products.Put(ctx, product.ID, product); err != nil {
			return n, fmt.Errorf("%s: %w", op, err)
		}
		n++
	}
	return n, nil
}

func newProduct(draft domain.ProductDraft) domain.Product {
	active := true
	if draft.IsActive != nil {
		active = *draft.IsActive
	}
	return domain.Product{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		Brand:       draft.Brand,
		Category:    draft.Category,
		Pattern:     draft.Pattern,
		Material:    draft.Material,
		Fit:         draft.Fit,
		Sleeve:      draft.Sleeve,
		Price:       draft.Price,
		SalePrice:   draft.SalePrice,
		Stock:       draft.Stock,
		Colors:      draft.Colors,
		Sizes:       draft.Sizes,
		Images:      draft.Images,
		IsActive:    active,
		CreatedAt:   time.Now(),
	}.Clone()
}
