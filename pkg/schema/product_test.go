package schema

import (
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEventV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = ProductEventV1Avro()
	})

	t.Run("WithoutSalePrice", func(t *testing.T) {
		in := ProductEventV1{
			EventType:   "product_created",
			OccurredAt:  time.UnixMilli(1735689600123).UTC(),
			ProductID:   "2",
			Name:        "Formal Shirt",
			Brand:       "EliteWear",
			Price:       "1599",
			Stock:       3,
			Colors:      []string{"White"},
			Sizes:       []string{"S"},
			Images:      []string{"/img/2.jpg"},
			ReviewCount: 12,
			IsActive:    true,
			CreatedAt:   time.UnixMilli(1735603200000).UTC(),
		}

		data, err := avro.Marshal(s, in)
		require.NoError(t, err)

		var out ProductEventV1
		require.NoError(t, avro.Unmarshal(s, data, &out))
		assert.Nil(t, out.SalePrice)
		assert.Equal(t, in.Brand, out.Brand)
		assert.Equal(t, in.ReviewCount, out.ReviewCount)
		assert.True(t, in.OccurredAt.Equal(out.OccurredAt))
	})
}

func TestOrderEventV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = OrderEventV1Avro()
	})

	in := OrderEventV1{
		EventType: "order_status_changed",
		OrderID:   "o1",
		Status:    "shipped",
		ShippingAddress: ShippingAddressV1{
			FirstName:  "Asha",
			City:       "Pune",
			PostalCode: "411001",
		},
		Items:      []OrderItemV1{},
		OccurredAt: time.UnixMilli(0).UTC(),
		CreatedAt:  time.UnixMilli(0).UTC(),
		UpdatedAt:  time.UnixMilli(0).UTC(),
	}

	data, err := avro.Marshal(s, in)
	require.NoError(t, err)

	var out OrderEventV1
	require.NoError(t, avro.Unmarshal(s, data, &out))
	assert.Equal(t, in.ShippingAddress, out.ShippingAddress)
	assert.Empty(t, out.Items)
}
