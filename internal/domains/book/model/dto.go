package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// CREATE BOOK REQUEST (admin seeding)
// =====================================================
type CreateBookRequest struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	TotalCopies int             `json:"total_copies"`
	CoverSource *string         `json:"cover_source,omitempty"`
}

func (req CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Author, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.ISBN, validation.Required, validation.Length(10, 13)),
		validation.Field(&req.RentalPrice, validation.By(func(value interface{}) error {
			price, _ := value.(decimal.Decimal)
			if price.LessThanOrEqual(decimal.Zero) {
				return validation.NewError("validation_positive", "must be a positive amount")
			}
			return nil
		})),
		validation.Field(&req.TotalCopies, validation.Required, validation.Min(1)),
	)
}

// =====================================================
// RESPONSES
// =====================================================
type BookResponse struct {
	Book
	CurrentlyAvailable int `json:"currently_available"`
}

func NewBookResponse(b *Book) *BookResponse {
	return &BookResponse{
		Book:               *b,
		CurrentlyAvailable: b.AvailableCopies,
	}
}
