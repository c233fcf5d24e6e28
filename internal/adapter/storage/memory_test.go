package storage_test

import (
	"context"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Run("GetUnknown", func(t *testing.T) {
		m := storage.NewMemory[domain.Product]("products")
		_, err := m.Get(t.Context(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		m := storage.NewMemory[domain.Product]("products")
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, m.Put(t.Context(), id, domain.Product{ID: id}))
		}
		// overwrite keeps position
		require.NoError(t, m.Put(t.Context(), "a", domain.Product{ID: "a", Name: "x"}))

		vs, err := m.List(t.Context())
		require.NoError(t, err)
		require.Len(t, vs, 3)
		assert.Equal(t, "c", vs[0].ID)
		assert.Equal(t, "a", vs[1].ID)
		assert.Equal(t, "x", vs[1].Name)
		assert.Equal(t, "b", vs[2].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		m := storage.NewMemory[domain.Product]("products")
		require.NoError(t, m.Put(t.Context(), "a", domain.Product{ID: "a"}))
		require.NoError(t, m.Delete(t.Context(), "a"))

		_, err := m.Get(t.Context(), "a")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, m.Delete(t.Context(), "a"), domain.ErrNotFound)

		vs, err := m.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("ValuesAreCopied", func(t *testing.T) {
		m := storage.NewMemory[domain.Product]("products")
		p := domain.Product{ID: "a", Colors: []string{"red"}}
		require.NoError(t, m.Put(t.Context(), "a", p))
		p.Colors[0] = "blue"

		got, err := m.Get(t.Context(), "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, got.Colors)

		got.Colors[0] = "green"
		again, err := m.Get(t.Context(), "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, again.Colors)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		m := storage.NewMemory[domain.Product]("products")
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := m.Put(ctx, "a", domain.Product{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
