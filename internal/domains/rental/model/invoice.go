package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice records that a rental was paid; written exactly once when the
// first successful payment confirmation lands. PDF rendering is the
// frontend's job, this backend only serves the data.
type Invoice struct {
	ID          uuid.UUID `json:"id"`
	RentalID    uuid.UUID `json:"rental_id"`
	PaymentDate time.Time `json:"payment_date"`
}

// Renter is the slice of the user record an invoice names.
type Renter struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// InvoiceResponse is the payload the invoice renderer consumes
type InvoiceResponse struct {
	ID          uuid.UUID       `json:"id"`
	RentalID    uuid.UUID       `json:"rental_id"`
	PaymentDate time.Time       `json:"payment_date"`
	Seller      string          `json:"seller"`
	TaxID       string          `json:"tax_id"`
	Username    string          `json:"username"`
	UserEmail   string          `json:"user_email"`
	BookTitle   string          `json:"book_title"`
	BookAuthor  string          `json:"book_author"`
	Price       decimal.Decimal `json:"price"`
}
