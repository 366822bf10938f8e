package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is a catalog entry. AvailableCopies changes only when a rental
// transitions into active (-1) or returned (+1); AverageRating is derived
// from reviews and never stored.
type Book struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	RentalPrice     decimal.Decimal `json:"rental_price"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	AverageRating   float64         `json:"average_rating"`
	CoverSource     *string         `json:"cover_source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable reports whether at least one copy can be borrowed right now
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}
