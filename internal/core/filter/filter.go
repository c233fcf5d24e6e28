// Package filter narrows and orders a set of products.
//
// It is the single implementation of catalog filtering: the HTTP listing and
// any other caller apply the same [Criteria] through [Apply].
package filter

import (
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return k, nil
	}
	return "", domain.ValidationError("unknown sort key \"" + s + "\"")
}

// Criteria is a filter and sort specification.
//
// Multi-valued fields match when the product has any of the listed values;
// an empty field does not constrain. All set fields must match.
type Criteria struct {
	Categories []string
	Patterns   []string
	Materials  []string
	Colors     []string
	Sizes      []string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	Search     string
	Sort       SortKey
}

// Apply returns the products matching c in the order c.Sort asks for.
// Ties keep their relative input order. ps is not modified.
func Apply(ps []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	search := strings.ToLower(strings.TrimSpace(c.Search))
	for _, p := range ps {
		if c.match(p, search) {
			out = append(out, p)
		}
	}
	sortProducts(out, c.Sort)
	return out
}

func (c Criteria) match(p domain.Product, search string) bool {
	if !oneOf(c.Categories, p.Category) ||
		!oneOf(c.Patterns, p.Pattern) ||
		!oneOf(c.Materials, p.Material) ||
		!anyOf(c.Colors, p.Colors) ||
		!anyOf(c.Sizes, p.Sizes) {
		return false
	}

	price := p.EffectivePrice()
	if c.MinPrice.Valid && price.LessThan(c.MinPrice.Decimal) {
		return false
	}
	if c.MaxPrice.Valid && price.GreaterThan(c.MaxPrice.Decimal) {
		return false
	}

	if search != "" {
		return strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Brand), search) ||
			strings.Contains(strings.ToLower(p.Description), search)
	}
	return true
}

func sortProducts(ps []domain.Product, key SortKey) {
	var cmp func(a, b domain.Product) int
	switch key {
	case SortPriceLow:
		cmp = func(a, b domain.Product) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		}
	case SortPriceHigh:
		cmp = func(a, b domain.Product) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		}
	case SortRating:
		cmp = func(a, b domain.Product) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		}
	case SortNewest:
		cmp = func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	default:
		return
	}
	slices.SortStableFunc(ps, cmp)
}

func oneOf(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(a, v)
	})
}

func anyOf(wanted, offered []string) bool {
	if len(wanted) == 0 {
		return true
	}
	return slices.ContainsFunc(wanted, func(w string) bool {
		return slices.ContainsFunc(offered, func(o string) bool {
			return strings.EqualFold(o, w)
		})
	})
}
