package service_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/filter"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreate(t *testing.T) {
	t.Run("AssignsIdentityAndZeroRating", func(t *testing.T) {
		events := new(productEventsMock)
		events.On("ProduceProductEvent", mock.Anything, productEvent(domain.ProductCreated)).
			Return(nil).Once()
		c := service.NewCatalog(newProductRepo(t), service.NewLocks(), events)

		draft := draftOf(shirt("", 1999))
		p, err := c.Create(t.Context(), admin, draft)
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID)
		assert.Zero(t, p.Rating)
		assert.Zero(t, p.ReviewCount)
		assert.True(t, p.IsActive)
		assert.False(t, p.CreatedAt.IsZero())

		got, err := c.Get(t.Context(), customer, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		events.AssertExpectations(t)
	})

	t.Run("RequiresAdmin", func(t *testing.T) {
		events := new(productEventsMock)
		c := service.NewCatalog(newProductRepo(t), service.NewLocks(), events)

		_, err := c.Create(t.Context(), customer, draftOf(shirt("", 1999)))
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = c.Create(t.Context(), domain.Principal{}, draftOf(shirt("", 1999)))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		events.AssertNotCalled(t, "ProduceProductEvent", mock.Anything, mock.Anything)
	})

	t.Run("Invalid", func(t *testing.T) {
		c := service.NewCatalog(newProductRepo(t), service.NewLocks(), new(productEventsMock))

		draft := draftOf(shirt("", 1999))
		draft.Images = nil
		_, err := c.Create(t.Context(), admin, draft)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("PublishFailureDoesNotFail", func(t *testing.T) {
		events := new(productEventsMock)
		events.On("ProduceProductEvent", mock.Anything, mock.Anything).Return(errFlaky)
		c := service.NewCatalog(newProductRepo(t), service.NewLocks(), events)

		_, err := c.Create(t.Context(), admin, draftOf(shirt("", 1999)))
		assert.NoError(t, err)
	})
}

func TestCatalogUpdate(t *testing.T) {
	t.Run("ShallowMerge", func(t *testing.T) {
		events := new(productEventsMock)
		events.On("ProduceProductEvent", mock.Anything, productEvent(domain.ProductUpdated)).
			Return(nil).Once()
		c := service.NewCatalog(newProductRepo(t, shirt("1", 1999)), service.NewLocks(), events)

		sale := decimal.NewNullDecimal(decimal.NewFromInt(1499))
		stock := 3
		p, err := c.Update(t.Context(), admin, "1", domain.ProductPatch{
			SalePrice: &sale,
			Stock:     &stock,
		})
		require.NoError(t, err)

		assert.Equal(t, "1499", p.EffectivePrice().String())
		assert.Equal(t, 3, p.Stock)
		assert.Equal(t, "Shirt 1", p.Name)
		events.AssertExpectations(t)
	})

	t.Run("RevalidatesMergedRecord", func(t *testing.T) {
		repo := newProductRepo(t, shirt("1", 1999))
		c := service.NewCatalog(repo, service.NewLocks(), new(productEventsMock))

		price := decimal.NewFromInt(100)
		sale := decimal.NewNullDecimal(decimal.NewFromInt(500))
		_, err := c.Update(t.Context(), admin, "1", domain.ProductPatch{
			Price: &price, SalePrice: &sale,
		})
		require.ErrorIs(t, err, domain.ErrValidation)

		stored, err := repo.Get(t.Context(), "1")
		require.NoError(t, err)
		assert.Equal(t, "1999", stored.Price.String())
	})

	t.Run("Unknown", func(t *testing.T) {
		c := service.NewCatalog(newProductRepo(t), service.NewLocks(), new(productEventsMock))
		_, err := c.Update(t.Context(), admin, "nope", domain.ProductPatch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogDelete(t *testing.T) {
	t.Run("NonAdminForbiddenProductRemains", func(t *testing.T) {
		repo := newProductRepo(t, shirt("1", 1999))
		c := service.NewCatalog(repo, service.NewLocks(), new(productEventsMock))

		err := c.Delete(t.Context(), customer, "1")
		require.ErrorIs(t, err, domain.ErrForbidden)

		p, err := c.Get(t.Context(), customer, "1")
		require.NoError(t, err)
		assert.True(t, p.IsActive)
	})

	t.Run("SoftDelete", func(t *testing.T) {
		events := new(productEventsMock)
		events.On("ProduceProductEvent", mock.Anything, productEvent(domain.ProductDeleted)).
			Return(nil).Once()
		c := service.NewCatalog(
			newProductRepo(t, shirt("1", 1999), shirt("2", 999)), service.NewLocks(), events,
		)

		require.NoError(t, c.Delete(t.Context(), admin, "1"))

		_, err := c.Get(t.Context(), customer, "1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		p, err := c.Get(t.Context(), admin, "1")
		require.NoError(t, err)
		assert.False(t, p.IsActive)

		visible, err := c.List(t.Context(), customer, filter.Criteria{})
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, "2", visible[0].ID)

		all, err := c.List(t.Context(), admin, filter.Criteria{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		assert.ErrorIs(t, c.Delete(t.Context(), admin, "1"), domain.ErrNotFound)
		events.AssertExpectations(t)
	})
}

func TestCatalogGetUnknown(t *testing.T) {
	repo := newProductRepo(t, shirt("1", 1999))
	c := service.NewCatalog(repo, service.NewLocks(), new(productEventsMock))

	_, err := c.Get(t.Context(), customer, "42")
	require.ErrorIs(t, err, domain.ErrNotFound)

	all, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalogListAppliesCriteria(t *testing.T) {
	c := service.NewCatalog(newProductRepo(t,
		shirt("a", 1999),
		onSale(shirt("b", 1499), 1124),
		shirt("c", 1299),
	), service.NewLocks(), new(productEventsMock))

	ps, err := c.List(t.Context(), domain.Principal{}, filter.Criteria{
		MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(1300)),
		Sort:     filter.SortPriceLow,
	})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "b", ps[0].ID)
	assert.Equal(t, "c", ps[1].ID)
}

func TestCatalogSeed(t *testing.T) {
	repo := newProductRepo(t, shirt("1", 1999))
	c := service.NewCatalog(repo, service.NewLocks(), new(productEventsMock))

	existing := shirt("1", 5)
	n, err := c.Seed(t.Context(), []domain.Product{existing, shirt("2", 999), shirt("", 799)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := repo.Get(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1999", stored.Price.String())

	all, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
