package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const variantSep = "/"

// MaxLineQuantity caps the quantity of a single cart line item.
const MaxLineQuantity = 999

// A Variant is a color and size combination of a product.
//
// It is referenced from line items by its opaque ID "color/size".
type Variant struct {
	Color string
	Size  string
}

func (v Variant) ID() string {
	return v.Color + variantSep + v.Size
}

func ParseVariant(id string) (Variant, error) {
	color, size, ok := strings.Cut(id, variantSep)
	color, size = strings.TrimSpace(color), strings.TrimSpace(size)
	if !ok || color == "" || size == "" {
		return Variant{}, ValidationError("variantId must look like \"color/size\"")
	}
	return Variant{Color: color, Size: size}, nil
}

// ValidateLineQuantity reports whether q units fit in one line item.
func ValidateLineQuantity(q int) error {
	if q <= 0 {
		return ValidationError("quantity must be positive")
	}
	if q > MaxLineQuantity {
		return ValidationError(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}
	return nil
}

type CartLineItem struct {
	ID        string
	UserID    string
	ProductID string
	VariantID string
	Quantity  int
	CreatedAt time.Time
}

// CartLine is a line item with the product it references.
type CartLine struct {
	Item    CartLineItem
	Product Product
}

// Available reports whether the line can still be ordered.
func (l CartLine) Available() bool {
	return l.Product.IsActive
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// CartSummary totals count available lines only, the same ones an order
// would be priced from.
type CartSummary struct {
	Lines      []CartLine
	TotalItems int
	Subtotal   decimal.Decimal
}
