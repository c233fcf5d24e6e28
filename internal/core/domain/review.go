package domain

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func (r Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ValidationError("rating must be between 1 and 5")
	}
	return nil
}

// WithReview folds a new rating into the product aggregate.
// The average is kept with two decimal places.
func (p Product) WithReview(rating int) Product {
	total := p.Rating*float64(p.ReviewCount) + float64(rating)
	p.ReviewCount++
	p.Rating = math.Round(total/float64(p.ReviewCount)*100) / 100
	return p
}
