package service

import (
	"context"

	"github.com/google/uuid"

	"biblioconnect-backend/internal/domains/review/model"
)

type ReviewService interface {
	// Submit validates and stores a review, re-checking eligibility in
	// the same transaction that inserts
	Submit(ctx context.Context, userID, bookID uuid.UUID, req model.SubmitReviewRequest) (*model.Review, error)

	// CanAdd reports review eligibility without writing anything
	CanAdd(ctx context.Context, userID, bookID uuid.UUID) (*model.CanAddResponse, error)

	// ListByBook returns a book's reviews with reviewer usernames
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*model.ReviewWithUser, error)
}
