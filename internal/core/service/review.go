package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/keylock"
)

var _ port.Reviews = Reviews{}

type Reviews struct {
	reviews  port.Repository[domain.Review]
	products port.Repository[domain.Product]
	locks    *keylock.Locker
	events   port.ProductEventsProducer
}

func NewReviews(
	reviews port.Repository[domain.Review],
	products port.Repository[domain.Product],
	locks Locks,
	events port.ProductEventsProducer,
) Reviews {
	return Reviews{reviews, products, locks.Products, events}
}

// List returns the reviews of an active product, newest first.
func (s Reviews) List(ctx context.Context, productID string) ([]domain.Review, error) {
	const op = "Reviews.List"

	if _, err := s.activeProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all, err := s.reviews.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rs []domain.Review
	for _, r := range all {
		if r.ProductID == productID {
			rs = append(rs, r)
		}
	}
	slices.Reverse(rs)
	slices.SortStableFunc(rs, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rs, nil
}

// Create stores a review and folds its rating into the product's average
// rating and review count.
func (s Reviews) Create(
	ctx context.Context, userID, productID string, rating int, comment string,
) (domain.Review, error) {
	const op = "Reviews.Create"

	r := domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now(),
	}
	if err := r.Validate(); err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	unlock := s.locks.Lock(productID)
	defer unlock()

	product, err := s.activeProduct(ctx, productID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.reviews.Put(ctx, r.ID, r); err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	product = product.WithReview(rating)
	if err := s.products.Put(ctx, product.ID, product); err != nil {
		if delErr := s.reviews.Delete(ctx, r.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	publishProduct(ctx, s.events, domain.ProductUpdated, product)
	return r, nil
}

func (s Reviews) activeProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !product.IsActive {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}
