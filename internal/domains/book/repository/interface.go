package repository

import (
	"context"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/book/model"
)

// BookRepository is the read-mostly catalog store. Copy-count mutations
// happen inside the rental ledger's transactions, not here.
type BookRepository interface {
	// Create inserts a new book (admin seeding)
	Create(ctx context.Context, book *model.Book) error

	// GetByID gets a book with its derived average rating
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// List lists the whole catalog
	List(ctx context.Context) ([]*model.Book, error)

	// UpdateCoverSource stores the cover image URL after an upload
	UpdateCoverSource(ctx context.Context, id uuid.UUID, coverURL string) error
}
