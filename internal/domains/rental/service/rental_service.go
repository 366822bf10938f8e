package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	bookrepo "biblioconnect-backend/internal/domains/book/repository"
	bookservice "biblioconnect-backend/internal/domains/book/service"
	"biblioconnect-backend/internal/domains/rental/gateway"
	"biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/rental/policy"
	rentalrepo "biblioconnect-backend/internal/domains/rental/repository"
	"biblioconnect-backend/pkg/cache"
	"biblioconnect-backend/pkg/logger"
)

// Invoice letterhead constants. Rendering happens outside this backend.
const (
	invoiceSeller = "BiblioConnect Library Services"
	invoiceTaxID  = "527-10-40-399"
)

// Config carries the ledger's business constants.
type Config struct {
	// Period is how long an activated rental runs before it is due
	Period time.Duration

	// CallbackURL is where the gateway pushes payment status updates
	CallbackURL string

	// GatewayTimeout bounds each outbound gateway call
	GatewayTimeout time.Duration

	// StalePendingAge is how old a pending_payment rental must be before
	// reconciliation polls the gateway about it
	StalePendingAge time.Duration

	// ReconcileBatch caps rentals handled per reconciliation run
	ReconcileBatch int
}

type rentalService struct {
	repo    rentalrepo.Repository
	books   bookrepo.BookRepository
	gateway gateway.PaymentGateway
	cache   cache.Cache
	cfg     Config

	// injectable clock for deterministic tests
	now func() time.Time
}

func NewRentalService(
	repo rentalrepo.Repository,
	books bookrepo.BookRepository,
	gw gateway.PaymentGateway,
	c cache.Cache,
	cfg Config,
) RentalService {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	if cfg.StalePendingAge <= 0 {
		cfg.StalePendingAge = 15 * time.Minute
	}
	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = 100
	}
	return &rentalService{
		repo:    repo,
		books:   books,
		gateway: gw,
		cache:   c,
		cfg:     cfg,
		now:     time.Now,
	}
}

// =====================================================
// CREATE
// =====================================================

// Create runs entirely inside one transaction. The book row lock
// serializes competing borrows of the last copy, and pending_payment
// rentals count as reservations, so two users can never both be sent to
// pay for the same final copy. On any failure, gateway included, nothing
// is persisted.
func (s *rentalService) Create(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	now := s.now()

	var created *model.Rental
	err := s.repo.WithinTx(ctx, func(store rentalrepo.Store) error {
		book, err := store.GetBookForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		rentals, err := store.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		if d := policy.CanBorrow(rentals, bookID, now); !d.Allowed {
			return denyError(d.Reason)
		}

		pending, err := store.CountPendingByBook(ctx, bookID)
		if err != nil {
			return err
		}
		if book.AvailableCopies-pending <= 0 {
			return model.ErrNotAvailable
		}

		gwCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()

		session, err := s.gateway.StartSession(gwCtx, gateway.SessionRequest{
			UserRef:     userID.String(),
			BookRef:     bookID.String(),
			BookTitle:   book.Title,
			Amount:      book.RentalPrice,
			BorrowDate:  now,
			CallbackURL: s.cfg.CallbackURL,
		})
		if err != nil {
			logger.Warn("payment session could not be started", map[string]interface{}{
				"book_id": bookID.String(),
				"error":   err.Error(),
			})
			return model.ErrGatewayUnavailable
		}

		rental := &model.Rental{
			ID:         uuid.New(),
			UserID:     userID,
			BookID:     bookID,
			Status:     model.StatusPendingPayment,
			BorrowDate: now,
			PaymentRef: &session.PaymentRef,
			PaymentURL: &session.PaymentURL,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := store.InsertRental(ctx, rental); err != nil {
			return err
		}

		created = rental
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental created", map[string]interface{}{
		"rental_id": created.ID.String(),
		"book_id":   bookID.String(),
	})
	return created, nil
}

// =====================================================
// PAYMENT TRANSITIONS
// =====================================================

func (s *rentalService) ConfirmPayment(ctx context.Context, rentalID uuid.UUID) error {
	var bookID uuid.UUID
	err := s.repo.WithinTx(ctx, func(store rentalrepo.Store) error {
		rental, err := store.GetRentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}

		// Webhook replays land here: already active means a previous
		// delivery won, nothing left to do.
		if rental.Status == model.StatusActive {
			return nil
		}

		now := s.now()
		if err := rental.Activate(now, s.cfg.Period); err != nil {
			return err
		}
		if err := store.AdjustAvailable(ctx, rental.BookID, -1); err != nil {
			return err
		}
		if err := store.UpdateRental(ctx, rental); err != nil {
			return err
		}
		if err := store.InsertInvoice(ctx, &model.Invoice{
			ID:          uuid.New(),
			RentalID:    rental.ID,
			PaymentDate: now,
		}); err != nil {
			return err
		}

		bookID = rental.BookID
		return nil
	})
	if err != nil {
		return err
	}

	if bookID != uuid.Nil {
		s.invalidateBook(ctx, bookID)
		logger.Info("rental activated", map[string]interface{}{"rental_id": rentalID.String()})
	}
	return nil
}

func (s *rentalService) CancelPayment(ctx context.Context, rentalID uuid.UUID) error {
	return s.repo.WithinTx(ctx, func(store rentalrepo.Store) error {
		rental, err := store.GetRentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status == model.StatusCanceled {
			return nil
		}
		if err := rental.Cancel(s.now()); err != nil {
			return err
		}
		return store.UpdateRental(ctx, rental)
	})
}

// HandleCallback applies a signed gateway push. Unknown references map
// to not_found; a pending outcome is a no-op.
func (s *rentalService) HandleCallback(ctx context.Context, body []byte, signature string) error {
	cb, err := s.gateway.ParseCallback(body, signature)
	if err != nil {
		return err
	}

	rental, err := s.repo.GetByPaymentRef(ctx, cb.PaymentRef)
	if err != nil {
		return err
	}

	switch cb.Outcome {
	case gateway.OutcomeSuccess:
		return s.ConfirmPayment(ctx, rental.ID)
	case gateway.OutcomeCanceled:
		return s.CancelPayment(ctx, rental.ID)
	}
	return nil
}

// =====================================================
// RETURN
// =====================================================

// Return never checks the overdue lockout: giving a book back is always
// allowed, it is how the lockout clears.
func (s *rentalService) Return(ctx context.Context, userID, rentalID uuid.UUID) error {
	var bookID uuid.UUID
	err := s.repo.WithinTx(ctx, func(store rentalrepo.Store) error {
		rental, err := store.GetRentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.UserID != userID {
			return model.ErrRentalNotFound
		}
		if err := rental.MarkReturned(s.now()); err != nil {
			return err
		}
		if err := store.AdjustAvailable(ctx, rental.BookID, 1); err != nil {
			return err
		}
		if err := store.UpdateRental(ctx, rental); err != nil {
			return err
		}
		bookID = rental.BookID
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateBook(ctx, bookID)
	logger.Info("rental returned", map[string]interface{}{"rental_id": rentalID.String()})
	return nil
}

// =====================================================
// READS
// =====================================================

func (s *rentalService) Snapshot(ctx context.Context, userID, bookID uuid.UUID) (*model.BorrowStatusResponse, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	rentals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &model.BorrowStatusResponse{}

	if d := policy.CanBorrow(rentals, bookID, now); d.Allowed {
		resp.CanBorrow = true
	} else {
		resp.BlockingReason = string(d.Reason)
	}

	if current := policy.CurrentForBook(rentals, bookID); current != nil {
		resp.IsBorrowed = true
		resp.RentalID = &current.ID
		status := current.Status
		resp.Status = &status
		resp.IsOverdue = current.IsOverdue(now)

		switch current.Status {
		case model.StatusPendingPayment:
			resp.PaymentURL = current.PaymentURL
		case model.StatusActive:
			borrow := current.BorrowDate
			resp.BorrowDate = &borrow
			resp.ReturnByDate = current.ReturnByDate
		}
	}

	return resp, nil
}

func (s *rentalService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.RentalHistoryItem, error) {
	rentals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]*model.RentalHistoryItem, 0, len(rentals))
	for _, r := range rentals {
		item := &model.RentalHistoryItem{
			RentalID:     r.ID,
			Status:       r.Status,
			IsOverdue:    r.IsOverdue(now),
			BorrowDate:   r.BorrowDate,
			ReturnByDate: r.ReturnByDate,
			ReturnDate:   r.ReturnDate,
		}
		if book, err := s.books.GetByID(ctx, r.BookID); err == nil {
			item.Book = bookmodel.NewBookResponse(book)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *rentalService) GetByID(ctx context.Context, userID, rentalID uuid.UUID) (*model.Rental, error) {
	rental, err := s.repo.GetRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.UserID != userID {
		return nil, model.ErrRentalNotFound
	}
	return rental, nil
}

func (s *rentalService) GetInvoice(ctx context.Context, userID, rentalID uuid.UUID) (*model.InvoiceResponse, error) {
	rental, err := s.GetByID(ctx, userID, rentalID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.GetInvoice(ctx, rental.ID)
	if err != nil {
		return nil, err
	}

	book, err := s.books.GetByID(ctx, rental.BookID)
	if err != nil {
		return nil, err
	}

	renter, err := s.repo.GetRenter(ctx, rental.UserID)
	if err != nil {
		return nil, err
	}

	return &model.InvoiceResponse{
		ID:          invoice.ID,
		RentalID:    invoice.RentalID,
		PaymentDate: invoice.PaymentDate,
		Seller:      invoiceSeller,
		TaxID:       invoiceTaxID,
		Username:    renter.Username,
		UserEmail:   renter.Email,
		BookTitle:   book.Title,
		BookAuthor:  book.Author,
		Price:       book.RentalPrice,
	}, nil
}

// =====================================================
// RECONCILIATION
// =====================================================

// Reconcile backstops lost webhooks: any rental sitting in
// pending_payment longer than StalePendingAge gets its status pulled
// from the gateway. Individual failures are logged and skipped so one
// bad session cannot starve the rest.
func (s *rentalService) Reconcile(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.StalePendingAge)
	stale, err := s.repo.ListStalePending(ctx, cutoff, s.cfg.ReconcileBatch)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, rental := range stale {
		if rental.PaymentRef == nil {
			continue
		}

		gwCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		outcome, err := s.gateway.QueryStatus(gwCtx, *rental.PaymentRef)
		cancel()
		if err != nil {
			logger.Warn("reconcile status query failed", map[string]interface{}{
				"rental_id": rental.ID.String(),
				"error":     err.Error(),
			})
			continue
		}

		switch outcome {
		case gateway.OutcomeSuccess:
			err = s.ConfirmPayment(ctx, rental.ID)
		case gateway.OutcomeCanceled:
			err = s.CancelPayment(ctx, rental.ID)
		default:
			continue
		}
		if err != nil {
			// invalid_state here means a webhook raced us and won
			if errors.Is(err, model.ErrInvalidState) {
				continue
			}
			logger.Error("reconcile transition failed", err)
			continue
		}
		changed++
	}

	if changed > 0 {
		logger.Info("reconciliation applied transitions", map[string]interface{}{"count": changed})
	}
	return changed, nil
}

// =====================================================
// HELPERS
// =====================================================

// denyError maps a borrow denial to its transport error. Unrecognized
// reasons deny closed.
func denyError(reason policy.Reason) error {
	switch reason {
	case policy.ReasonAlreadyBorrowed:
		return model.ErrAlreadyBorrowed
	default:
		return model.ErrAccessRestricted
	}
}

// invalidateBook drops the catalog cache entries whose availability just
// changed. Best effort: the cache repopulates on the next read.
func (s *rentalService) invalidateBook(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookservice.CacheKeyBook(bookID), bookservice.CacheKeyList()); err != nil {
		logger.Warn("failed to invalidate book cache", map[string]interface{}{
			"book_id": bookID.String(),
			"error":   err.Error(),
		})
	}
}
