package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the rental lifecycle state. Overdue is deliberately NOT a
// status value: it is derived from return_by_date at read time, so a row
// can never hold contradictory flags (the old payment_status/returned
// pair allowed "returned while pending").
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusReturned       Status = "returned"
	StatusCanceled       Status = "canceled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusActive, StatusReturned, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave this state
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusCanceled
}

func (s Status) String() string {
	return string(s)
}

// Rental is one borrow transaction linking a user and a book through
// payment and return. Owned exclusively by the rental ledger; user and
// book are referenced by ID only. Never physically deleted.
type Rental struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`
	Status Status    `json:"status"`

	BorrowDate   time.Time  `json:"borrow_date"`
	ReturnByDate *time.Time `json:"return_by_date,omitempty"` // set when entering active
	ReturnDate   *time.Time `json:"return_date,omitempty"`    // set when entering returned

	// Opaque handle into the payment gateway
	PaymentRef *string `json:"payment_ref,omitempty"`
	PaymentURL *string `json:"payment_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverdue reports the derived overdue sub-state: active and past due.
// Overdue never blocks returning; it feeds the eligibility policy and
// notifications.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == StatusActive && r.ReturnByDate != nil && r.ReturnByDate.Before(now)
}

// Activate moves pending_payment -> active and fixes the due date.
// Activating an already-active rental is a no-op so gateway webhook
// replays stay harmless; any other state is rejected.
func (r *Rental) Activate(now time.Time, period time.Duration) error {
	switch r.Status {
	case StatusActive:
		return nil
	case StatusPendingPayment:
		due := r.BorrowDate.Add(period)
		r.Status = StatusActive
		r.ReturnByDate = &due
		r.UpdatedAt = now
		return nil
	default:
		return ErrInvalidState
	}
}

// Cancel moves pending_payment -> canceled. Idempotent on canceled.
func (r *Rental) Cancel(now time.Time) error {
	switch r.Status {
	case StatusCanceled:
		return nil
	case StatusPendingPayment:
		r.Status = StatusCanceled
		r.UpdatedAt = now
		return nil
	default:
		return ErrInvalidState
	}
}

// MarkReturned moves active -> returned (overdue included) and records
// the return date.
func (r *Rental) MarkReturned(now time.Time) error {
	if r.Status != StatusActive {
		return ErrInvalidState
	}

	r.Status = StatusReturned
	r.ReturnDate = &now
	r.UpdatedAt = now
	return nil
}
