package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookrepo "biblioconnect-backend/internal/domains/book/repository"
	bookservice "biblioconnect-backend/internal/domains/book/service"
	"biblioconnect-backend/internal/domains/rental/policy"
	"biblioconnect-backend/internal/domains/review/model"
	"biblioconnect-backend/internal/domains/review/repository"
	"biblioconnect-backend/pkg/cache"
	"biblioconnect-backend/pkg/logger"
)

type reviewService struct {
	repo  repository.Repository
	books bookrepo.BookRepository
	cache cache.Cache

	now func() time.Time
}

func NewReviewService(repo repository.Repository, books bookrepo.BookRepository, c cache.Cache) ReviewService {
	return &reviewService{
		repo:  repo,
		books: books,
		cache: c,
		now:   time.Now,
	}
}

// Submit inserts after re-running the eligibility check inside the same
// transaction. Two concurrent submissions for the same (user, book) both
// pass the check; the unique constraint decides, and the loser surfaces
// as already_reviewed.
func (s *reviewService) Submit(ctx context.Context, userID, bookID uuid.UUID, req model.SubmitReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:        uuid.New(),
		BookID:    bookID,
		UserID:    userID,
		Content:   req.Content,
		Rating:    req.Rating,
		CreatedAt: s.now(),
	}

	err := s.repo.WithinTx(ctx, func(store repository.Store) error {
		if err := s.checkEligibility(ctx, store, userID, bookID); err != nil {
			return err
		}
		return store.Insert(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	// new rating changes the book's derived average
	s.invalidateBook(ctx, bookID)

	logger.Info("review submitted", map[string]interface{}{
		"book_id": bookID.String(),
		"rating":  review.Rating,
	})
	return review, nil
}

func (s *reviewService) CanAdd(ctx context.Context, userID, bookID uuid.UUID) (*model.CanAddResponse, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	err := s.checkEligibility(ctx, s.repo, userID, bookID)
	switch err {
	case nil:
		return &model.CanAddResponse{CanAdd: true}, nil
	case model.ErrAlreadyReviewed:
		return &model.CanAddResponse{BlockingReason: model.CodeAlreadyReviewed}, nil
	case model.ErrNotBorrowed:
		return &model.CanAddResponse{BlockingReason: model.CodeNotBorrowed}, nil
	case model.ErrAccessRestricted:
		return &model.CanAddResponse{BlockingReason: model.CodeAccessRestricted}, nil
	}
	return nil, err
}

func (s *reviewService) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*model.ReviewWithUser, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

func (s *reviewService) checkEligibility(ctx context.Context, store repository.Store, userID, bookID uuid.UUID) error {
	hasReview, err := store.Exists(ctx, userID, bookID)
	if err != nil {
		return err
	}

	rentals, err := store.ListUserRentals(ctx, userID)
	if err != nil {
		return err
	}

	d := policy.CanReview(rentals, bookID, hasReview, s.now())
	switch d.Reason {
	case policy.ReasonAlreadyReviewed:
		return model.ErrAlreadyReviewed
	case policy.ReasonNotBorrowed:
		return model.ErrNotBorrowed
	case policy.ReasonOverdueLimit:
		return model.ErrAccessRestricted
	}
	return nil
}

func (s *reviewService) invalidateBook(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookservice.CacheKeyBook(bookID), bookservice.CacheKeyList()); err != nil {
		logger.Warn("failed to invalidate book cache", map[string]interface{}{
			"book_id": bookID.String(),
			"error":   err.Error(),
		})
	}
}
