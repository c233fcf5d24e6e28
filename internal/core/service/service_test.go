package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin    = domain.Principal{UserID: "admin-1", Email: "admin@shop.test", IsAdmin: true}
	customer = domain.Principal{UserID: "user-1", Email: "user@shop.test"}
)

type productEventsMock struct {
	mock.Mock
}

func (m *productEventsMock) ProduceProductEvent(
	ctx context.Context, evt domain.ProductEvent,
) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type orderEventsMock struct {
	mock.Mock
}

func (m *orderEventsMock) ProduceOrderEvent(
	ctx context.Context, evt domain.OrderEvent,
) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func productEvent(typ domain.ProductEventType) any {
	return mock.MatchedBy(func(e domain.ProductEvent) bool { return e.Type == typ })
}

func orderEvent(typ domain.OrderEventType) any {
	return mock.MatchedBy(func(e domain.OrderEvent) bool { return e.Type == typ })
}

// flakyRepo fails Put after the given number of successful calls.
type flakyRepo[T any] struct {
	port.Repository[T]
	putsLeft int
}

var errFlaky = errors.New("storage unavailable")

func (r *flakyRepo[T]) Put(ctx context.Context, id string, v T) error {
	if r.putsLeft == 0 {
		return errFlaky
	}
	r.putsLeft--
	return r.Repository.Put(ctx, id, v)
}

// stickyRepo fails Delete after the given number of successful calls.
type stickyRepo[T any] struct {
	port.Repository[T]
	deletesLeft int
}

func (r *stickyRepo[T]) Delete(ctx context.Context, id string) error {
	if r.deletesLeft == 0 {
		return errFlaky
	}
	r.deletesLeft--
	return r.Repository.Delete(ctx, id)
}

type fakeTokens struct{}

func (fakeTokens) Issue(p domain.Principal) (string, error) {
	admin := "0"
	if p.IsAdmin {
		admin = "1"
	}
	return strings.Join([]string{"tok", p.UserID, p.Email, admin}, "|"), nil
}

func (fakeTokens) Verify(token string) (domain.Principal, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "tok" {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return domain.Principal{UserID: parts[1], Email: parts[2], IsAdmin: parts[3] == "1"}, nil
}

func newProductRepo(t *testing.T, ps ...domain.Product) *storage.Memory[domain.Product] {
	t.Helper()
	repo := storage.NewMemory[domain.Product]("products")
	for _, p := range ps {
		require.NoError(t, repo.Put(t.Context(), p.ID, p))
	}
	return repo
}

func shirt(id string, price int64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "Shirt " + id,
		Description: "Cotton shirt",
		Brand:       "StyleCraft",
		Category:    "casual",
		Pattern:     "solid",
		Material:    "cotton",
		Fit:         "regular",
		Sleeve:      "full",
		Price:       decimal.NewFromInt(price),
		Stock:       20,
		Colors:      []string{"Blue", "White"},
		Sizes:       []string{"M", "L"},
		Images:      []string{"/img/" + id + ".jpg"},
		IsActive:    true,
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func onSale(p domain.Product, sale int64) domain.Product {
	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(sale))
	return p
}

func draftOf(p domain.Product) domain.ProductDraft {
	return domain.ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Pattern:     p.Pattern,
		Material:    p.Material,
		Fit:         p.Fit,
		Sleeve:      p.Sleeve,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Images:      p.Images,
	}
}
