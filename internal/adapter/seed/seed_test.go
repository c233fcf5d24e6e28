package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		ps, err := seed.Parse([]byte(`
products:
  - id: "7"
    name: Linen Shirt
    description: Light linen
    brand: Breeze
    category: casual
    pattern: plain
    material: linen
    fit: regular
    sleeve: half
    price: "1200.50"
    sale_price: "999"
    stock: 4
    colors: [beige]
    sizes: [M]
    images: [/img/7.jpg]
    created_at: 2025-01-02T10:00:00Z
  - id: "8"
    name: Hidden
    price: "10"
    inactive: true
`))
		require.NoError(t, err)
		require.Len(t, ps, 2)

		assert.Equal(t, "1200.5", ps[0].Price.String())
		assert.Equal(t, "999", ps[0].EffectivePrice().String())
		assert.Equal(t, []string{"beige"}, ps[0].Colors)
		assert.True(t, ps[0].IsActive)
		assert.Equal(t, 2025, ps[0].CreatedAt.Year())

		assert.False(t, ps[1].SalePrice.Valid)
		assert.False(t, ps[1].IsActive)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := seed.Parse([]byte("products:\n  - id: \"1\"\n    colour: red\n"))
		assert.Error(t, err)
	})

	t.Run("BadPrice", func(t *testing.T) {
		_, err := seed.Parse([]byte("products:\n  - id: \"1\"\n    price: cheap\n"))
		assert.ErrorContains(t, err, "products[0]: price")
	})
}

func TestLoadFileBundledCatalog(t *testing.T) {
	ps, err := seed.LoadFile(filepath.Join("..", "..", "..", "seed", "products.yaml"))
	require.NoError(t, err)
	require.Len(t, ps, 4)

	for _, p := range ps {
		assert.NoError(t, p.Validate(), p.ID)
	}
	assert.Equal(t, "1399", ps[0].EffectivePrice().String())
	assert.Equal(t, "1124", ps[2].EffectivePrice().String())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := seed.LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
