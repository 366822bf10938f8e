package service

import (
	"context"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/book/model"
)

type BookService interface {
	// CreateBook adds a catalog entry (admin seeding)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)

	// GetBook returns one book with availability and derived rating
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// ListBooks returns the catalog
	ListBooks(ctx context.Context) ([]*model.Book, error)

	// UploadCover stores a cover image and links it to the book
	UploadCover(ctx context.Context, id uuid.UUID, data []byte, contentType string) (string, error)
}
