package service_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	products *storage.Memory[domain.Product]
	cart     service.Cart
	orders   service.Orders
	events   *orderEventsMock
	stored   *storage.Memory[domain.Order]
}

func newOrderFixture(
	t *testing.T, items port.Repository[domain.OrderItem], ps ...domain.Product,
) orderFixture {
	t.Helper()
	return newOrderFixtureWithCart(t, items, nil, ps...)
}

func newOrderFixtureWithCart(
	t *testing.T,
	items port.Repository[domain.OrderItem],
	cartItems port.Repository[domain.CartLineItem],
	ps ...domain.Product,
) orderFixture {
	t.Helper()
	if items == nil {
		items = storage.NewMemory[domain.OrderItem]("order_items")
	}
	if cartItems == nil {
		cartItems = storage.NewMemory[domain.CartLineItem]("cart_items")
	}
	products := newProductRepo(t, ps...)
	cart := service.NewCart(cartItems, products, service.NewLocks())
	stored := storage.NewMemory[domain.Order]("orders")
	events := new(orderEventsMock)
	orders := service.NewOrders(cart, stored, items, events, service.DefaultPricing())
	return orderFixture{products, cart, orders, events, stored}
}

func address() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName:  "Asha",
		LastName:   "Rao",
		Email:      "asha@example.com",
		Phone:      "9999999999",
		Address:    "12 MG Road",
		City:       "Pune",
		State:      "MH",
		PostalCode: "411001",
		Country:    "India",
	}
}

func TestPricingQuote(t *testing.T) {
	pricing := service.DefaultPricing()
	tests := []struct {
		subtotal                  int64
		shipping, tax, wantTotal string
	}{
		{1500, "0", "150", "1650"},
		{500, "49", "50", "599"},
		{999, "49", "100", "1148"},
		{1000, "0", "100", "1100"},
		{1125, "0", "113", "1238"},
	}
	for _, tt := range tests {
		q := pricing.Quote(decimal.NewFromInt(tt.subtotal), 1)
		assert.Equal(t, tt.shipping, q.ShippingFee.String(), tt.subtotal)
		assert.Equal(t, tt.tax, q.Tax.String(), tt.subtotal)
		assert.Equal(t, tt.wantTotal, q.Total.String(), tt.subtotal)
	}

	empty := pricing.Quote(decimal.Zero, 0)
	assert.True(t, empty.Total.IsZero())
}

func TestCreateOrder(t *testing.T) {
	t.Run("AboveFreeShippingThreshold", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 1500))
		f.events.On("ProduceOrderEvent", mock.Anything, orderEvent(domain.OrderPlaced)).
			Return(nil).Once()

		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
		require.NoError(t, err)

		d, err := f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCOD)
		require.NoError(t, err)

		assert.Equal(t, "0", d.Order.ShippingFee.String())
		assert.Equal(t, "150", d.Order.Tax.String())
		assert.Equal(t, "1650", d.Order.TotalAmount.String())
		assert.Equal(t, domain.OrderPending, d.Order.Status)
		assert.Equal(t, domain.PaymentPending, d.Order.PaymentStatus)
		f.events.AssertExpectations(t)
	})

	t.Run("BelowFreeShippingThreshold", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 250))
		f.events.On("ProduceOrderEvent", mock.Anything, mock.Anything).Return(nil)

		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 2)
		require.NoError(t, err)

		d, err := f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCard)
		require.NoError(t, err)

		assert.Equal(t, "500", d.Order.Subtotal.String())
		assert.Equal(t, "49", d.Order.ShippingFee.String())
		assert.Equal(t, "50", d.Order.Tax.String())
		assert.Equal(t, "599", d.Order.TotalAmount.String())
	})

	t.Run("CapturesCurrentPriceAndClearsCart", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 1999), shirt("2", 800))
		f.events.On("ProduceOrderEvent", mock.Anything, mock.Anything).Return(nil)

		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 2)
		require.NoError(t, err)
		_, err = f.cart.AddItem(t.Context(), "u1", "2", "White/L", 1)
		require.NoError(t, err)

		// price drops after the item was added
		require.NoError(t, f.products.Put(t.Context(), "1", onSale(shirt("1", 1999), 1399)))

		d, err := f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentUPI)
		require.NoError(t, err)
		require.Len(t, d.Items, 2)
		assert.Equal(t, "1399", d.Items[0].Price.String())

		sum := decimal.Zero
		for _, item := range d.Items {
			sum = sum.Add(item.LineTotal())
		}
		assert.True(t, sum.Add(d.Order.ShippingFee).Add(d.Order.Tax).Equal(d.Order.TotalAmount))

		count, err := f.cart.TotalItemCount(t.Context(), "u1")
		require.NoError(t, err)
		assert.Zero(t, count)

		got, err := f.orders.Get(t.Context(), customerOf("u1"), d.Order.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 1999))

		_, err := f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCOD)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 1999))
		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
		require.NoError(t, err)

		addr := address()
		addr.Country = ""
		_, err = f.orders.CreateOrder(t.Context(), "u1", addr, domain.PaymentCOD)
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.orders.CreateOrder(t.Context(), "u1", address(), "cheque")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("InactiveProductKeepsCart", func(t *testing.T) {
		f := newOrderFixture(t, nil, shirt("1", 1999))
		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
		require.NoError(t, err)

		p := shirt("1", 1999)
		p.IsActive = false
		require.NoError(t, f.products.Put(t.Context(), "1", p))

		_, err = f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCOD)
		require.ErrorIs(t, err, domain.ErrValidation)

		count, err := f.cart.TotalItemCount(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("FailedItemWriteRollsBack", func(t *testing.T) {
		items := &flakyRepo[domain.OrderItem]{
			Repository: storage.NewMemory[domain.OrderItem]("order_items"),
			putsLeft:   1,
		}
		f := newOrderFixture(t, items, shirt("1", 1999), shirt("2", 800))

		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
		require.NoError(t, err)
		_, err = f.cart.AddItem(t.Context(), "u1", "2", "Blue/M", 1)
		require.NoError(t, err)

		_, err = f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCOD)
		require.ErrorIs(t, err, errFlaky)

		orders, err := f.stored.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, orders)

		written, err := items.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, written)

		count, err := f.cart.TotalItemCount(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		f.events.AssertNotCalled(t, "ProduceOrderEvent", mock.Anything, mock.Anything)
	})

	t.Run("FailedCartClearRollsBack", func(t *testing.T) {
		items := storage.NewMemory[domain.OrderItem]("order_items")
		cartItems := &stickyRepo[domain.CartLineItem]{
			Repository:  storage.NewMemory[domain.CartLineItem]("cart_items"),
			deletesLeft: 1,
		}
		f := newOrderFixtureWithCart(t, items, cartItems, shirt("1", 1999), shirt("2", 800))

		_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
		require.NoError(t, err)
		_, err = f.cart.AddItem(t.Context(), "u1", "2", "Blue/M", 1)
		require.NoError(t, err)

		_, err = f.orders.CreateOrder(t.Context(), "u1", address(), domain.PaymentCOD)
		require.ErrorIs(t, err, errFlaky)

		orders, err := f.stored.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, orders)

		written, err := items.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, written)

		lines, err := f.cart.Items(t.Context(), "u1")
		require.NoError(t, err)
		assert.Len(t, lines, 2)
		count, err := f.cart.TotalItemCount(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		f.events.AssertNotCalled(t, "ProduceOrderEvent", mock.Anything, mock.Anything)
	})
}

func TestOrdersQuote(t *testing.T) {
	f := newOrderFixture(t, nil, onSale(shirt("1", 1999), 1399))
	_, err := f.cart.AddItem(t.Context(), "u1", "1", "Blue/M", 1)
	require.NoError(t, err)

	q, err := f.orders.Quote(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, q.TotalItems)
	assert.Equal(t, "1399", q.Subtotal.String())
	assert.Equal(t, "0", q.ShippingFee.String())
	assert.Equal(t, "140", q.Tax.String())
	assert.Equal(t, "1539", q.Total.String())
}

func customerOf(id string) domain.Principal {
	return domain.Principal{UserID: id, Email: id + "@shop.test"}
}

func placeOrder(t *testing.T, f orderFixture, userID string) domain.Order {
	t.Helper()
	_, err := f.cart.AddItem(t.Context(), userID, "1", "Blue/M", 1)
	require.NoError(t, err)
	d, err := f.orders.CreateOrder(t.Context(), userID, address(), domain.PaymentCOD)
	require.NoError(t, err)
	return d.Order
}

func TestOrdersAccess(t *testing.T) {
	f := newOrderFixture(t, nil, shirt("1", 1999))
	f.events.On("ProduceOrderEvent", mock.Anything, mock.Anything).Return(nil)

	first := placeOrder(t, f, "u1")
	second := placeOrder(t, f, "u1")
	other := placeOrder(t, f, "u2")

	own, err := f.orders.List(t.Context(), customerOf("u1"))
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, second.ID, own[0].ID)
	assert.Equal(t, first.ID, own[1].ID)

	all, err := f.orders.List(t.Context(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.orders.Get(t.Context(), customerOf("u1"), other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.orders.Get(t.Context(), admin, other.ID)
	assert.NoError(t, err)

	_, err = f.orders.Get(t.Context(), customerOf("u1"), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.List(t.Context(), domain.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestOrdersUpdateStatus(t *testing.T) {
	f := newOrderFixture(t, nil, shirt("1", 1999))
	f.events.On("ProduceOrderEvent", mock.Anything, mock.Anything).Return(nil)
	order := placeOrder(t, f, "u1")

	_, err := f.orders.UpdateStatus(t.Context(), customerOf("u1"), order.ID, domain.OrderProcessing)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.orders.UpdateStatus(t.Context(), admin, order.ID, domain.OrderDelivered)
	require.ErrorIs(t, err, domain.ErrValidation)

	for _, next := range []domain.OrderStatus{
		domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered,
	} {
		got, err := f.orders.UpdateStatus(t.Context(), admin, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	_, err = f.orders.UpdateStatus(t.Context(), admin, order.ID, domain.OrderCancelled)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.stored.Get(t.Context(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, stored.Status)
	assert.True(t, order.TotalAmount.Equal(stored.TotalAmount))

	_, err = f.orders.UpdateStatus(t.Context(), admin, "nope", domain.OrderProcessing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrdersUpdatePaymentStatus(t *testing.T) {
	f := newOrderFixture(t, nil, shirt("1", 1999))
	f.events.On("ProduceOrderEvent", mock.Anything, mock.Anything).Return(nil)
	order := placeOrder(t, f, "u1")

	got, err := f.orders.UpdatePaymentStatus(t.Context(), admin, order.ID, domain.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)

	got, err = f.orders.UpdatePaymentStatus(t.Context(), admin, order.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	_, err = f.orders.UpdatePaymentStatus(t.Context(), admin, order.ID, domain.PaymentPending)
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.events.AssertCalled(t, "ProduceOrderEvent", mock.Anything,
		orderEvent(domain.OrderPaymentStatusChanged))
}
