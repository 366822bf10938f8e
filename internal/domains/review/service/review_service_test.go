package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	rentalmodel "biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/review/model"
	"biblioconnect-backend/internal/domains/review/repository"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// =====================================================
// IN-MEMORY STORE
// =====================================================

type memStore struct {
	mu      sync.Mutex
	reviews []*model.Review
	rentals []*rentalmodel.Rental
}

var _ repository.Repository = (*memStore)(nil)

func (m *memStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memStore) Exists(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(ctx context.Context, review *model.Review) error {
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.BookID == review.BookID {
			return model.ErrAlreadyReviewed
		}
	}
	cp := *review
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m *memStore) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*model.ReviewWithUser, error) {
	var out []*model.ReviewWithUser
	for _, r := range m.reviews {
		if r.BookID == bookID {
			out = append(out, &model.ReviewWithUser{Review: *r, Username: "reader"})
		}
	}
	return out, nil
}

func (m *memStore) ListUserRentals(ctx context.Context, userID uuid.UUID) ([]*rentalmodel.Rental, error) {
	var out []*rentalmodel.Rental
	for _, r := range m.rentals {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubBooks struct {
	books map[uuid.UUID]*bookmodel.Book
}

func (s *stubBooks) Create(ctx context.Context, book *bookmodel.Book) error { return nil }
func (s *stubBooks) GetByID(ctx context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, bookmodel.ErrBookNotFound
	}
	return b, nil
}
func (s *stubBooks) List(ctx context.Context) ([]*bookmodel.Book, error) { return nil, nil }
func (s *stubBooks) UpdateCoverSource(ctx context.Context, id uuid.UUID, coverURL string) error {
	return nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error        { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Ping(ctx context.Context) error                          { return nil }

// =====================================================
// FIXTURE
// =====================================================

type fixture struct {
	store  *memStore
	svc    *reviewService
	bookID uuid.UUID
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bookID := uuid.New()
	store := &memStore{}
	books := &stubBooks{books: map[uuid.UUID]*bookmodel.Book{
		bookID: {ID: bookID, Title: "Snow Crash"},
	}}

	svc := NewReviewService(store, books, noopCache{}).(*reviewService)
	svc.now = func() time.Time { return testNow }

	return &fixture{store: store, svc: svc, bookID: bookID, userID: uuid.New()}
}

func (f *fixture) addRental(status rentalmodel.Status, bookID uuid.UUID, returnBy *time.Time) {
	f.store.rentals = append(f.store.rentals, &rentalmodel.Rental{
		ID:           uuid.New(),
		UserID:       f.userID,
		BookID:       bookID,
		Status:       status,
		ReturnByDate: returnBy,
	})
}

func (f *fixture) addReturned() {
	f.addRental(rentalmodel.StatusReturned, f.bookID, nil)
}

var validReq = model.SubmitReviewRequest{Content: "A wild ride through the metaverse.", Rating: 5}

// =====================================================
// SUBMIT
// =====================================================

func TestSubmit(t *testing.T) {
	t.Run("after a completed rental", func(t *testing.T) {
		f := newFixture(t)
		f.addReturned()

		review, err := f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
		require.NoError(t, err)
		assert.Equal(t, 5, review.Rating)
		assert.Equal(t, testNow, review.CreatedAt)
		assert.Len(t, f.store.reviews, 1)
	})

	t.Run("validation failures", func(t *testing.T) {
		f := newFixture(t)
		f.addReturned()

		cases := map[string]model.SubmitReviewRequest{
			"content too short": {Content: "ok", Rating: 3},
			"content too long":  {Content: strings.Repeat("a", 201), Rating: 3},
			"rating too low":    {Content: "decent enough", Rating: 0},
			"rating too high":   {Content: "decent enough", Rating: 6},
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := f.svc.Submit(context.Background(), f.userID, f.bookID, req)
				var verrs validation.Errors
				assert.ErrorAs(t, err, &verrs)
			})
		}
		assert.Empty(t, f.store.reviews, "nothing persisted on validation failure")
	})

	t.Run("without a completed rental", func(t *testing.T) {
		f := newFixture(t)
		due := testNow.AddDate(0, 0, 10)
		f.addRental(rentalmodel.StatusActive, f.bookID, &due)

		_, err := f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
		assert.ErrorIs(t, err, model.ErrNotBorrowed)
	})

	t.Run("duplicate review", func(t *testing.T) {
		f := newFixture(t)
		f.addReturned()

		_, err := f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
		require.NoError(t, err)

		_, err = f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
		assert.ErrorIs(t, err, model.ErrAlreadyReviewed)
		assert.Len(t, f.store.reviews, 1)
	})

	t.Run("overdue lockout blocks reviewing", func(t *testing.T) {
		f := newFixture(t)
		f.addReturned()
		due := testNow.AddDate(0, 0, -1)
		f.addRental(rentalmodel.StatusActive, uuid.New(), &due)

		_, err := f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
		assert.ErrorIs(t, err, model.ErrAccessRestricted)
	})

	t.Run("unknown book", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(context.Background(), f.userID, uuid.New(), validReq)
		assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)
	})
}

// =====================================================
// CAN ADD
// =====================================================

func TestCanAdd(t *testing.T) {
	t.Run("eligible", func(t *testing.T) {
		f := newFixture(t)
		f.addReturned()

		resp, err := f.svc.CanAdd(context.Background(), f.userID, f.bookID)
		require.NoError(t, err)
		assert.True(t, resp.CanAdd)
		assert.Empty(t, resp.BlockingReason)
	})

	t.Run("reason ordering", func(t *testing.T) {
		f := newFixture(t)

		// no rental at all
		resp, err := f.svc.CanAdd(context.Background(), f.userID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, model.CodeNotBorrowed, resp.BlockingReason)

		// returned rental plus an overdue one elsewhere
		f.addReturned()
		due := testNow.AddDate(0, 0, -1)
		f.addRental(rentalmodel.StatusActive, uuid.New(), &due)

		resp, err = f.svc.CanAdd(context.Background(), f.userID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, model.CodeAccessRestricted, resp.BlockingReason)

		// an existing review outranks everything
		f.store.reviews = append(f.store.reviews, &model.Review{
			ID: uuid.New(), UserID: f.userID, BookID: f.bookID, Content: "great", Rating: 5,
		})
		resp, err = f.svc.CanAdd(context.Background(), f.userID, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, model.CodeAlreadyReviewed, resp.BlockingReason)
	})
}

func TestListByBook(t *testing.T) {
	f := newFixture(t)
	f.addReturned()
	_, err := f.svc.Submit(context.Background(), f.userID, f.bookID, validReq)
	require.NoError(t, err)

	reviews, err := f.svc.ListByBook(context.Background(), f.bookID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "reader", reviews[0].Username)

	_, err = f.svc.ListByBook(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bookmodel.ErrBookNotFound)
}
