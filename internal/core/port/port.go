package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/filter"
	"github.com/shopspring/decimal"
)

// A Repository is a collection of records keyed by id.
//
// List returns records in insertion order. Get and Delete return an error
// matching [domain.ErrNotFound] for unknown ids.
type Repository[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(domain.Principal) (string, error)
	Verify(token string) (domain.Principal, error)
}

type ProductEventsProducer interface {
	ProduceProductEvent(context.Context, domain.ProductEvent) error
}

type OrderEventsProducer interface {
	ProduceOrderEvent(context.Context, domain.OrderEvent) error
}

// Inbound ports.

type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (domain.Principal, error)
}

type Accounts interface {
	Authenticator
	Register(context.Context, domain.Registration) (domain.Session, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
}

type Catalog interface {
	List(context.Context, domain.Principal, filter.Criteria) ([]domain.Product, error)
	Get(ctx context.Context, p domain.Principal, id string) (domain.Product, error)
	Create(context.Context, domain.Principal, domain.ProductDraft) (domain.Product, error)
	Update(ctx context.Context, p domain.Principal, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}

type Cart interface {
	AddItem(ctx context.Context, userID, productID, variantID string, quantity int) (domain.CartLineItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (domain.CartLineItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	Items(ctx context.Context, userID string) ([]domain.CartLine, error)
	TotalItemCount(ctx context.Context, userID string) (int, error)
	TotalPrice(ctx context.Context, userID string) (decimal.Decimal, error)
	Summary(ctx context.Context, userID string) (domain.CartSummary, error)
}

type Orders interface {
	Quote(ctx context.Context, userID string) (domain.Quote, error)
	CreateOrder(ctx context.Context, userID string, addr domain.ShippingAddress, method domain.PaymentMethod) (domain.OrderDetails, error)
	List(context.Context, domain.Principal) ([]domain.Order, error)
	Get(ctx context.Context, p domain.Principal, id string) (domain.OrderDetails, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, status domain.OrderStatus) (domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, p domain.Principal, id string, status domain.PaymentStatus) (domain.Order, error)
}

type Wishlist interface {
	List(ctx context.Context, userID string) ([]domain.WishlistLine, error)
	Add(ctx context.Context, userID, productID string) (domain.WishlistEntry, error)
	Remove(ctx context.Context, userID, productID string) error
}

type Reviews interface {
	List(ctx context.Context, productID string) ([]domain.Review, error)
	Create(ctx context.Context, userID, productID string, rating int, comment string) (domain.Review, error)
}
