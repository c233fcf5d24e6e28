// Package seed reads the initial product catalog from YAML.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products []productEntry `yaml:"products"`
}

// Prices are strings so that YAML never reads them as floats.
type productEntry struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Brand       string    `yaml:"brand"`
	Category    string    `yaml:"category"`
	Pattern     string    `yaml:"pattern"`
	Material    string    `yaml:"material"`
	Fit         string    `yaml:"fit"`
	Sleeve      string    `yaml:"sleeve"`
	Price       string    `yaml:"price"`
	SalePrice   string    `yaml:"sale_price"`
	Stock       int       `yaml:"stock"`
	Colors      []string  `yaml:"colors"`
	Sizes       []string  `yaml:"sizes"`
	Images      []string  `yaml:"images"`
	Rating      float64   `yaml:"rating"`
	ReviewCount int       `yaml:"review_count"`
	Inactive    bool      `yaml:"inactive"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// LoadFile reads the catalog at path.
func LoadFile(path string) ([]domain.Product, error) {
	const op = "seed.LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return ps, nil
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(data []byte) ([]domain.Product, error) {
	const op = "seed.Parse"

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	ps := make([]domain.Product, 0, len(f.Products))
	for i, e := range f.Products {
		p, err := e.toDomain()
		if err != nil {
			errs = append(errs, fmt.Errorf("products[%d]: %w", i, err))
			continue
		}
		ps = append(ps, p)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (e productEntry) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}

	var sale decimal.NullDecimal
	if e.SalePrice != "" {
		d, err := decimal.NewFromString(e.SalePrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("sale_price: %w", err)
		}
		sale = decimal.NewNullDecimal(d)
	}

	return domain.Product{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Brand:       e.Brand,
		Category:    e.Category,
		Pattern:     e.Pattern,
		Material:    e.Material,
		Fit:         e.Fit,
		Sleeve:      e.Sleeve,
		Price:       price,
		SalePrice:   sale,
		Stock:       e.Stock,
		Colors:      e.Colors,
		Sizes:       e.Sizes,
		Images:      e.Images,
		Rating:      e.Rating,
		ReviewCount: e.ReviewCount,
		IsActive:    !e.Inactive,
		CreatedAt:   e.CreatedAt,
	}, nil
}
