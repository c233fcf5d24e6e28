package httphandler

import (
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ID          string           `json:"id"`
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Brand       string           `json:"brand"`
		Category    string           `json:"category"`
		Pattern     string           `json:"pattern"`
		Material    string           `json:"material"`
		Fit         string           `json:"fit"`
		Sleeve      string           `json:"sleeve"`
		Price       decimal.Decimal  `json:"price"`
		SalePrice   *decimal.Decimal `json:"salePrice"`
		Stock       int              `json:"stock"`
		Colors      []string         `json:"colors"`
		Sizes       []string         `json:"sizes"`
		Images      []string         `json:"images"`
		Rating      float64          `json:"rating"`
		ReviewCount int              `json:"reviewCount"`
		IsActive    bool             `json:"isActive"`
		CreatedAt   time.Time        `json:"createdAt"`
	}

	// ProductBody is the payload of product create and update. Absent
	// fields are nil; for an update they keep the stored value.
	ProductBody struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Brand       *string          `json:"brand"`
		Category    *string          `json:"category"`
		Pattern     *string          `json:"pattern"`
		Material    *string          `json:"material"`
		Fit         *string          `json:"fit"`
		Sleeve      *string          `json:"sleeve"`
		Price       *decimal.Decimal `json:"price"`
		SalePrice   presentDecimal   `json:"salePrice"`
		Stock       *int             `json:"stock"`
		Colors      []string         `json:"colors"`
		Sizes       []string         `json:"sizes"`
		Images      []string         `json:"images"`
		IsActive    *bool            `json:"isActive"`
	}
)

// presentDecimal tells an explicit null apart from an absent field.
type presentDecimal struct {
	set   bool
	value decimal.NullDecimal
}

func (d *presentDecimal) UnmarshalJSON(b []byte) error {
	d.set = true
	return d.value.UnmarshalJSON(b)
}

func productFromDomain(p domain.Product) Product {
	out := Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Pattern:     p.Pattern,
		Material:    p.Material,
		Fit:         p.Fit,
		Sleeve:      p.Sleeve,
		Price:       p.Price,
		Stock:       p.Stock,
		Colors:      nonNil(p.Colors),
		Sizes:       nonNil(p.Sizes),
		Images:      nonNil(p.Images),
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
	if p.SalePrice.Valid {
		sale := p.SalePrice.Decimal
		out.SalePrice = &sale
	}
	return out
}

func productsFromDomain(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = productFromDomain(p)
	}
	return out
}

func (b ProductBody) draft() domain.ProductDraft {
	s := domain.ProductDraft{
		Name:        deref(b.Name),
		Description: deref(b.Description),
		Brand:       deref(b.Brand),
		Category:    deref(b.Category),
		Pattern:     deref(b.Pattern),
		Material:    deref(b.Material),
		Fit:         deref(b.Fit),
		Sleeve:      deref(b.Sleeve),
		Price:       deref(b.Price),
		SalePrice:   b.SalePrice.value,
		Stock:       deref(b.Stock),
		Colors:      b.Colors,
		Sizes:       b.Sizes,
		Images:      b.Images,
		IsActive:    b.IsActive,
	}
	return s
}

func (b ProductBody) patch() domain.ProductPatch {
	pp := domain.ProductPatch{
		Name:        b.Name,
		Description: b.Description,
		Brand:       b.Brand,
		Category:    b.Category,
		Pattern:     b.Pattern,
		Material:    b.Material,
		Fit:         b.Fit,
		Sleeve:      b.Sleeve,
		Price:       b.Price,
		Stock:       b.Stock,
		Colors:      b.Colors,
		Sizes:       b.Sizes,
		Images:      b.Images,
		IsActive:    b.IsActive,
	}
	if b.SalePrice.set {
		sale := b.SalePrice.value
		pp.SalePrice = &sale
	}
	return pp
}

type (
	User struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		FirstName string    `json:"firstName"`
		LastName  string    `json:"lastName"`
		Phone     string    `json:"phone,omitempty"`
		IsAdmin   bool      `json:"isAdmin"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Session struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}

	RegisterBody struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	}

	LoginBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

func sessionFromDomain(s domain.Session) Session {
	u := s.User
	return Session{
		User: User{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		},
		Token: s.Token,
	}
}

func (b RegisterBody) registration() domain.Registration {
	return domain.Registration(b)
}

type (
	CartItem struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		ProductID string    `json:"productId"`
		VariantID string    `json:"variantId"`
		Quantity  int       `json:"quantity"`
		CreatedAt time.Time `json:"createdAt"`
	}

	CartLine struct {
		CartItem
		Product   Product         `json:"product"`
		LineTotal decimal.Decimal `json:"lineTotal"`
		Available bool            `json:"available"`
	}

	CartSummary struct {
		Items      []CartLine      `json:"items"`
		TotalItems int             `json:"totalItems"`
		Subtotal   decimal.Decimal `json:"subtotal"`
	}

	AddCartItemBody struct {
		ProductID string `json:"productId"`
		VariantID string `json:"variantId"`
		Quantity  *int   `json:"quantity"`
	}

	QuantityBody struct {
		Quantity *int `json:"quantity"`
	}
)

func cartItemFromDomain(i domain.CartLineItem) CartItem {
	return CartItem{
		ID:        i.ID,
		UserID:    i.UserID,
		ProductID: i.ProductID,
		VariantID: i.VariantID,
		Quantity:  i.Quantity,
		CreatedAt: i.CreatedAt,
	}
}

func cartSummaryFromDomain(s domain.CartSummary) CartSummary {
	out := CartSummary{
		Items:      make([]CartLine, len(s.Lines)),
		TotalItems: s.TotalItems,
		Subtotal:   s.Subtotal,
	}
	for i, l := range s.Lines {
		out.Items[i] = CartLine{
			CartItem:  cartItemFromDomain(l.Item),
			Product:   productFromDomain(l.Product),
			LineTotal: l.LineTotal(),
			Available: l.Available(),
		}
	}
	return out
}

type (
	ShippingAddress struct {
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"pinCode"`
		Country    string `json:"country"`
	}

	Order struct {
		ID              string          `json:"id"`
		UserID          string          `json:"userId"`
		Status          string          `json:"status"`
		Subtotal        decimal.Decimal `json:"subtotal"`
		ShippingFee     decimal.Decimal `json:"shippingFee"`
		Tax             decimal.Decimal `json:"tax"`
		TotalAmount     decimal.Decimal `json:"totalAmount"`
		ShippingAddress ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string          `json:"paymentMethod"`
		PaymentStatus   string          `json:"paymentStatus"`
		CreatedAt       time.Time       `json:"createdAt"`
		UpdatedAt       time.Time       `json:"updatedAt"`
	}

	OrderItem struct {
		ID        string          `json:"id"`
		OrderID   string          `json:"orderId"`
		ProductID string          `json:"productId"`
		VariantID string          `json:"variantId"`
		Quantity  int             `json:"quantity"`
		Price     decimal.Decimal `json:"price"`
	}

	OrderDetails struct {
		Order
		Items []OrderItem `json:"items"`
	}

	Quote struct {
		TotalItems  int             `json:"totalItems"`
		Subtotal    decimal.Decimal `json:"subtotal"`
		ShippingFee decimal.Decimal `json:"shippingFee"`
		Tax         decimal.Decimal `json:"tax"`
		Total       decimal.Decimal `json:"total"`
	}

	CreateOrderBody struct {
		ShippingAddress ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string          `json:"paymentMethod"`
	}

	StatusBody struct {
		Status string `json:"status"`
	}

	PaymentStatusBody struct {
		PaymentStatus string `json:"paymentStatus"`
	}
)

func orderFromDomain(o domain.Order) Order {
	return Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Tax:             o.Tax,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: ShippingAddress(o.ShippingAddress),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ordersFromDomain(os []domain.Order) []Order {
	out := make([]Order, len(os))
	for i, o := range os {
		out[i] = orderFromDomain(o)
	}
	return out
}

func orderDetailsFromDomain(d domain.OrderDetails) OrderDetails {
	out := OrderDetails{
		Order: orderFromDomain(d.Order),
		Items: make([]OrderItem, len(d.Items)),
	}
	for i, it := range d.Items {
		out.Items[i] = OrderItem(it)
	}
	return out
}

func quoteFromDomain(q domain.Quote) Quote {
	return Quote(q)
}

type (
	WishlistItem struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		ProductID string    `json:"productId"`
		CreatedAt time.Time `json:"createdAt"`
		Product   *Product  `json:"product,omitempty"`
	}

	AddWishlistBody struct {
		ProductID string `json:"productId"`
	}
)

func wishlistItemFromDomain(e domain.WishlistEntry) WishlistItem {
	return WishlistItem{
		ID:        e.ID,
		UserID:    e.UserID,
		ProductID: e.ProductID,
		CreatedAt: e.CreatedAt,
	}
}

func wishlistFromDomain(ls []domain.WishlistLine) []WishlistItem {
	out := make([]WishlistItem, len(ls))
	for i, l := range ls {
		p := productFromDomain(l.Product)
		out[i] = wishlistItemFromDomain(l.Entry)
		out[i].Product = &p
	}
	return out
}

type (
	Review struct {
		ID        string    `json:"id"`
		ProductID string    `json:"productId"`
		UserID    string    `json:"userId"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment"`
		CreatedAt time.Time `json:"createdAt"`
	}

	ReviewBody struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
)

func reviewsFromDomain(rs []domain.Review) []Review {
	out := make([]Review, len(rs))
	for i, r := range rs {
		out[i] = Review(r)
	}
	return out
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func nonNil(vs []string) []string {
	if vs == nil {
		return []string{}
	}
	return vs
}
