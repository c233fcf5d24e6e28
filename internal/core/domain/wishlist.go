package domain

import "time"

type WishlistEntry struct {
	ID        string
	UserID    string
	ProductID string
	CreatedAt time.Time
}

type WishlistLine struct {
	Entry   WishlistEntry
	Product Product
}
