package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/book/repository"
	"biblioconnect-backend/internal/infrastructure/storage"
	"biblioconnect-backend/pkg/cache"
	"biblioconnect-backend/pkg/logger"
)

const (
	cacheKeyBookList   = "books:list"
	cacheKeyBookPrefix = "books:detail:"
	cacheTTL           = 5 * time.Minute
)

// CacheKeyBook builds the detail cache key for a book.
// The rental and review services use it to invalidate after writes.
func CacheKeyBook(id uuid.UUID) string {
	return cacheKeyBookPrefix + id.String()
}

// CacheKeyList is exported for the same reason
func CacheKeyList() string {
	return cacheKeyBookList
}

type bookService struct {
	repo   repository.BookRepository
	cache  cache.Cache
	covers *storage.CoverStorage
}

func NewBookService(repo repository.BookRepository, c cache.Cache, covers *storage.CoverStorage) BookService {
	return &bookService{
		repo:   repo,
		cache:  c,
		covers: covers,
	}
}

func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &model.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		RentalPrice:     req.RentalPrice,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies, // all copies start on the shelf
		CoverSource:     req.CoverSource,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	if err := s.cache.Delete(ctx, cacheKeyBookList); err != nil {
		logger.Warn("failed to invalidate book list cache", map[string]interface{}{"error": err.Error()})
	}

	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	key := CacheKeyBook(id)

	var cached model.Book
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, book, cacheTTL); err != nil {
		logger.Warn("failed to cache book", map[string]interface{}{"book_id": id.String()})
	}

	return book, nil
}

func (s *bookService) ListBooks(ctx context.Context) ([]*model.Book, error) {
	var cached []*model.Book
	if found, err := s.cache.Get(ctx, cacheKeyBookList, &cached); err == nil && found {
		return cached, nil
	}

	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKeyBookList, books, cacheTTL); err != nil {
		logger.Warn("failed to cache book list", map[string]interface{}{"error": err.Error()})
	}

	return books, nil
}

func (s *bookService) UploadCover(ctx context.Context, id uuid.UUID, data []byte, contentType string) (string, error) {
	if s.covers == nil {
		return "", fmt.Errorf("cover storage is not configured")
	}

	// Make sure the book exists before paying for the upload
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", err
	}

	ext := "jpg"
	if parts := strings.Split(contentType, "/"); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}

	key := fmt.Sprintf("covers/%s.%s", id.String(), ext)
	url, err := s.covers.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}

	if err := s.repo.UpdateCoverSource(ctx, id, url); err != nil {
		return "", err
	}

	if err := s.cache.Delete(ctx, CacheKeyBook(id), cacheKeyBookList); err != nil {
		logger.Warn("failed to invalidate book cache", map[string]interface{}{"book_id": id.String()})
	}

	return url, nil
}
