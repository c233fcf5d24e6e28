package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Brand       string
	Category    string
	Pattern     string
	Material    string
	Fit         string
	Sleeve      string
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal
	Stock       int
	Colors      []string
	Sizes       []string
	Images      []string
	Rating      float64
	ReviewCount int
	IsActive    bool
	CreatedAt   time.Time
}

// EffectivePrice returns the sale price when it is set and does not exceed
// the base price, otherwise the base price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThanOrEqual(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// LookupVariant matches v against the product's color and size pairs
// ignoring case and returns it spelled the way the product lists it.
// Pairs are compared by their IDs, so colors and sizes may contain the
// separator themselves.
func (p Product) LookupVariant(v Variant) (Variant, bool) {
	id := v.ID()
	for _, c := range p.Colors {
		for _, s := range p.Sizes {
			offered := Variant{Color: c, Size: s}
			if strings.EqualFold(offered.ID(), id) {
				return offered, true
			}
		}
	}
	return Variant{}, false
}

func (p Product) Clone() Product {
	p.Colors = slices.Clone(p.Colors)
	p.Sizes = slices.Clone(p.Sizes)
	p.Images = slices.Clone(p.Images)
	return p
}

func (p Product) Validate() error {
	var errs []error
	required := []struct {
		field, value string
	}{
		{"name", p.Name},
		{"description", p.Description},
		{"brand", p.Brand},
		{"category", p.Category},
		{"pattern", p.Pattern},
		{"material", p.Material},
		{"fit", p.Fit},
		{"sleeve", p.Sleeve},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError(r.field+" is required"))
		}
	}

	if !p.Price.IsPositive() {
		errs = append(errs, ValidationError("price must be positive"))
	}
	if p.SalePrice.Valid {
		if !p.SalePrice.Decimal.IsPositive() {
			errs = append(errs, ValidationError("salePrice must be positive"))
		} else if p.SalePrice.Decimal.GreaterThan(p.Price) {
			errs = append(errs, ValidationError("salePrice must not exceed price"))
		}
	}
	if p.Stock < 0 {
		errs = append(errs, ValidationError("stock must not be negative"))
	}
	if len(p.Colors) == 0 {
		errs = append(errs, ValidationError("at least one color is required"))
	}
	if len(p.Sizes) == 0 {
		errs = append(errs, ValidationError("at least one size is required"))
	}
	if len(p.Images) == 0 {
		errs = append(errs, ValidationError("at least one image is required"))
	}
	return errors.Join(errs...)
}

// ProductDraft carries the caller-controlled fields of a new product.
type ProductDraft struct {
	Name        string
	Description string
	Brand       string
	Category    string
	Pattern     string
	Material    string
	Fit         string
	Sleeve      string
	Price       decimal.Decimal
	SalePrice   decimal.NullDecimal
	Stock       int
	Colors      []string
	Sizes       []string
	Images      []string
	IsActive    *bool
}

// ProductPatch holds a partial update. Nil fields keep the stored value.
type ProductPatch struct {
	Name        *string
	Description *string
	Brand       *string
	Category    *string
	Pattern     *string
	Material    *string
	Fit         *string
	Sleeve      *string
	Price       *decimal.Decimal
	SalePrice   *decimal.NullDecimal
	Stock       *int
	Colors      []string
	Sizes       []string
	Images      []string
	IsActive    *bool
}

func (pp ProductPatch) Apply(p Product) Product {
	p = p.Clone()
	setIf(&p.Name, pp.Name)
	setIf(&p.Description, pp.Description)
	setIf(&p.Brand, pp.Brand)
	setIf(&p.Category, pp.Category)
	setIf(&p.Pattern, pp.Pattern)
	setIf(&p.Material, pp.Material)
	setIf(&p.Fit, pp.Fit)
	setIf(&p.Sleeve, pp.Sleeve)
	setIf(&p.Price, pp.Price)
	setIf(&p.SalePrice, pp.SalePrice)
	setIf(&p.Stock, pp.Stock)
	setIf(&p.IsActive, pp.IsActive)
	if pp.Colors != nil {
		p.Colors = slices.Clone(pp.Colors)
	}
	if pp.Sizes != nil {
		p.Sizes = slices.Clone(pp.Sizes)
	}
	if pp.Images != nil {
		p.Images = slices.Clone(pp.Images)
	}
	return p
}

type ProductEventType string

const (
	ProductCreated ProductEventType = "product_created"
	ProductUpdated ProductEventType = "product_updated"
	ProductDeleted ProductEventType = "product_deleted"
)

type ProductEvent struct {
	Type       ProductEventType
	Product    Product
	OccurredAt time.Time
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
