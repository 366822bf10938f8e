package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/rental/model"
)

// Store is the ledger query set. The same interface is served by the
// connection pool and by an open transaction, so service code written
// against Store composes into WithinTx without change.
type Store interface {
	// GetRental loads one rental
	GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error)

	// GetRentalForUpdate loads one rental under a row lock (FOR UPDATE).
	// Only meaningful inside WithinTx.
	GetRentalForUpdate(ctx context.Context, id uuid.UUID) (*model.Rental, error)

	// GetByPaymentRef resolves a gateway reference to its rental. No lock
	// is taken; the payment transitions lock the row themselves.
	GetByPaymentRef(ctx context.Context, paymentRef string) (*model.Rental, error)

	// ListByUser returns the user's full rental history, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Rental, error)

	// CountPendingByBook counts pending_payment rentals holding an
	// implicit reservation on the book
	CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int, error)

	// InsertRental writes a new rental. A live duplicate for the same
	// user and book maps to ErrAlreadyBorrowed.
	InsertRental(ctx context.Context, rental *model.Rental) error

	// UpdateRental persists status, dates and payment fields
	UpdateRental(ctx context.Context, rental *model.Rental) error

	// GetBookForUpdate row-locks a catalog row for availability math
	GetBookForUpdate(ctx context.Context, bookID uuid.UUID) (*bookmodel.Book, error)

	// AdjustAvailable shifts available_copies by delta, refusing to leave
	// the 0..total_copies range
	AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) error

	// InsertInvoice writes the paid record; replays are silently dropped
	InsertInvoice(ctx context.Context, invoice *model.Invoice) error

	// GetInvoice loads the invoice of a rental
	GetInvoice(ctx context.Context, rentalID uuid.UUID) (*model.Invoice, error)

	// GetRenter loads the identity fields an invoice prints
	GetRenter(ctx context.Context, userID uuid.UUID) (*model.Renter, error)

	// ListStalePending returns pending_payment rentals created before
	// cutoff, oldest first, for background reconciliation
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Rental, error)
}

// Repository is the Store plus transactional composition.
type Repository interface {
	Store

	// WithinTx runs fn against a Store bound to one transaction.
	// Returning an error rolls everything back.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
