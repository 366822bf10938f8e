package service

import (
	"context"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/rental/model"
)

// RentalService drives the rental lifecycle. All transitions run inside
// database transactions; see the postgres repository for the locking
// rules.
type RentalService interface {
	// Create starts a rental: eligibility checks, availability check,
	// payment session. The rental is persisted in pending_payment with
	// the gateway reference attached.
	Create(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error)

	// ConfirmPayment moves pending_payment to active, fixes the due
	// date, takes a copy and writes the invoice. Idempotent on active.
	ConfirmPayment(ctx context.Context, rentalID uuid.UUID) error

	// CancelPayment moves pending_payment to canceled. Idempotent on
	// canceled. No copy is touched.
	CancelPayment(ctx context.Context, rentalID uuid.UUID) error

	// HandleCallback verifies and applies a gateway status push
	HandleCallback(ctx context.Context, body []byte, signature string) error

	// Return closes an active rental (overdue included) and gives the
	// copy back
	Return(ctx context.Context, userID, rentalID uuid.UUID) error

	// Snapshot reports borrow eligibility plus the user's current rental
	// of the book, if any
	Snapshot(ctx context.Context, userID, bookID uuid.UUID) (*model.BorrowStatusResponse, error)

	// ListByUser returns the user's rental history with book data
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.RentalHistoryItem, error)

	// GetByID returns one rental owned by the user
	GetByID(ctx context.Context, userID, rentalID uuid.UUID) (*model.Rental, error)

	// GetInvoice returns the invoice of a paid rental owned by the user
	GetInvoice(ctx context.Context, userID, rentalID uuid.UUID) (*model.InvoiceResponse, error)

	// Reconcile polls the gateway for stale pending rentals and applies
	// the resulting transitions. Returns how many rentals changed state.
	Reconcile(ctx context.Context) (int, error)
}
