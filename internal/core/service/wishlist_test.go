package service_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist(t *testing.T) {
	newWishlist := func(t *testing.T) (service.Wishlist, *storage.Memory[domain.Product]) {
		products := newProductRepo(t, shirt("1", 1999), shirt("2", 999))
		return service.NewWishlist(
			storage.NewMemory[domain.WishlistEntry]("wishlist"), products, service.NewLocks(),
		), products
	}

	t.Run("AddIsIdempotent", func(t *testing.T) {
		w, _ := newWishlist(t)

		first, err := w.Add(t.Context(), "u1", "1")
		require.NoError(t, err)
		again, err := w.Add(t.Context(), "u1", "1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		_, err = w.Add(t.Context(), "u2", "1")
		require.NoError(t, err)

		lines, err := w.List(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "Shirt 1", lines[0].Product.Name)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		w, _ := newWishlist(t)
		_, err := w.Add(t.Context(), "u1", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		w, _ := newWishlist(t)
		_, err := w.Add(t.Context(), "u1", "1")
		require.NoError(t, err)

		require.NoError(t, w.Remove(t.Context(), "u1", "1"))
		assert.ErrorIs(t, w.Remove(t.Context(), "u1", "1"), domain.ErrNotFound)

		lines, err := w.List(t.Context(), "u1")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("HidesProductsTakenOffSale", func(t *testing.T) {
		w, products := newWishlist(t)
		_, err := w.Add(t.Context(), "u1", "1")
		require.NoError(t, err)
		_, err = w.Add(t.Context(), "u1", "2")
		require.NoError(t, err)

		p := shirt("2", 999)
		p.IsActive = false
		require.NoError(t, products.Put(t.Context(), "2", p))

		lines, err := w.List(t.Context(), "u1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "1", lines[0].Product.ID)
	})
}
