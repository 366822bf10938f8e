package repository

import (
	"context"

	"github.com/google/uuid"

	rentalmodel "biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/review/model"
)

// Store is the review query set, usable on the pool or inside a
// transaction. It reads the rentals table directly so eligibility can be
// re-checked in the same transaction that inserts the review.
type Store interface {
	// Exists reports whether the user already reviewed the book
	Exists(ctx context.Context, userID, bookID uuid.UUID) (bool, error)

	// Insert writes a review. A duplicate (user, book) maps to
	// ErrAlreadyReviewed via the unique constraint.
	Insert(ctx context.Context, review *model.Review) error

	// ListByBook returns the book's reviews with reviewer usernames,
	// newest first
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*model.ReviewWithUser, error)

	// ListUserRentals reads the user's rental history for the
	// eligibility check
	ListUserRentals(ctx context.Context, userID uuid.UUID) ([]*rentalmodel.Rental, error)
}

type Repository interface {
	Store

	// WithinTx runs fn against a Store bound to one transaction
	WithinTx(ctx context.Context, fn func(Store) error) error
}
