package model

import (
	"time"

	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
)

// =====================================================
// BORROW RESPONSE
// =====================================================
type BorrowResponse struct {
	RentalID   uuid.UUID `json:"rental_id"`
	Status     Status    `json:"status"`
	PaymentURL string    `json:"payment_url"`
}

// =====================================================
// BORROW STATUS (eligibility snapshot for a book)
// =====================================================

// BorrowStatusResponse is the borrow-side eligibility snapshot plus the
// user's current rental for the book, if any. Computed fresh per request,
// never persisted.
type BorrowStatusResponse struct {
	CanBorrow      bool   `json:"can_borrow"`
	BlockingReason string `json:"blocking_reason,omitempty"`

	IsBorrowed bool       `json:"is_borrowed"`
	RentalID   *uuid.UUID `json:"rental_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
	PaymentURL *string    `json:"payment_url,omitempty"`

	BorrowDate   *time.Time `json:"borrow_date,omitempty"`
	ReturnByDate *time.Time `json:"return_by_date,omitempty"`
	IsOverdue    bool       `json:"is_overdue,omitempty"`
}

// =====================================================
// RENTAL HISTORY
// =====================================================
type RentalHistoryItem struct {
	RentalID     uuid.UUID               `json:"rental_id"`
	Status       Status                  `json:"status"`
	IsOverdue    bool                    `json:"is_overdue"`
	BorrowDate   time.Time               `json:"borrow_date"`
	ReturnByDate *time.Time              `json:"return_by_date,omitempty"`
	ReturnDate   *time.Time              `json:"return_date,omitempty"`
	Book         *bookmodel.BookResponse `json:"book,omitempty"`
}
