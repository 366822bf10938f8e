package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	bookmodel "biblioconnect-backend/internal/domains/book/model"
	"biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/pkg/database"
)

// querier is the pgx surface shared by *pgxpool.Pool and pgx.Tx, so the
// same store code runs on either.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	db querier
}

type postgresRepository struct {
	postgresStore
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{
		postgresStore: postgresStore{db: pool},
		pool:          pool,
	}
}

// WithinTx rebinds the store to a single transaction for fn's duration.
func (r *postgresRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: tx})
	})
}

// =====================================================
// RENTALS
// =====================================================

const rentalColumns = `
	id, user_id, book_id, status,
	borrow_date, return_by_date, return_date,
	payment_ref, payment_url,
	created_at, updated_at
`

func scanRental(row pgx.Row) (*model.Rental, error) {
	rental := &model.Rental{}
	err := row.Scan(
		&rental.ID,
		&rental.UserID,
		&rental.BookID,
		&rental.Status,
		&rental.BorrowDate,
		&rental.ReturnByDate,
		&rental.ReturnDate,
		&rental.PaymentRef,
		&rental.PaymentURL,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRentalNotFound
		}
		return nil, fmt.Errorf("failed to scan rental: %w", err)
	}
	return rental, nil
}

func (s *postgresStore) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(s.db.QueryRow(ctx, query, id))
}

func (s *postgresStore) GetRentalForUpdate(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return scanRental(s.db.QueryRow(ctx, query, id))
}

func (s *postgresStore) GetByPaymentRef(ctx context.Context, paymentRef string) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE payment_ref = $1`
	return scanRental(s.db.QueryRow(ctx, query, paymentRef))
}

func (s *postgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	defer rows.Close()

	return collectRentals(rows)
}

func (s *postgresStore) CountPendingByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM rentals WHERE book_id = $1 AND status = $2`,
		bookID, model.StatusPendingPayment,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending rentals: %w", err)
	}
	return count, nil
}

func (s *postgresStore) InsertRental(ctx context.Context, rental *model.Rental) error {
	query := `
		INSERT INTO rentals (
			id, user_id, book_id, status,
			borrow_date, return_by_date, return_date,
			payment_ref, payment_url,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.Exec(ctx, query,
		rental.ID,
		rental.UserID,
		rental.BookID,
		rental.Status,
		rental.BorrowDate,
		rental.ReturnByDate,
		rental.ReturnDate,
		rental.PaymentRef,
		rental.PaymentURL,
		rental.CreatedAt,
		rental.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyBorrowed
		}
		return fmt.Errorf("failed to insert rental: %w", err)
	}

	return nil
}

func (s *postgresStore) UpdateRental(ctx context.Context, rental *model.Rental) error {
	query := `
		UPDATE rentals SET
			status = $2,
			return_by_date = $3,
			return_date = $4,
			payment_ref = $5,
			payment_url = $6,
			updated_at = $7
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		rental.ID,
		rental.Status,
		rental.ReturnByDate,
		rental.ReturnDate,
		rental.PaymentRef,
		rental.PaymentURL,
		rental.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRentalNotFound
	}

	return nil
}

func (s *postgresStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, model.StatusPendingPayment, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending rentals: %w", err)
	}
	defer rows.Close()

	return collectRentals(rows)
}

func collectRentals(rows pgx.Rows) ([]*model.Rental, error) {
	var rentals []*model.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rentals: %w", err)
	}
	return rentals, nil
}

// =====================================================
// BOOK AVAILABILITY
// =====================================================

func (s *postgresStore) GetBookForUpdate(ctx context.Context, bookID uuid.UUID) (*bookmodel.Book, error) {
	query := `
		SELECT id, title, author, isbn, rental_price,
		       total_copies, available_copies, cover_source,
		       created_at, updated_at
		FROM books
		WHERE id = $1
		FOR UPDATE
	`

	book := &bookmodel.Book{}
	err := s.db.QueryRow(ctx, query, bookID).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.RentalPrice,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CoverSource,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookmodel.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}

	return book, nil
}

func (s *postgresStore) AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) error {
	query := `
		UPDATE books
		SET available_copies = available_copies + $2, updated_at = NOW()
		WHERE id = $1
		  AND available_copies + $2 BETWEEN 0 AND total_copies
	`

	tag, err := s.db.Exec(ctx, query, bookID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotAvailable
	}

	return nil
}

// =====================================================
// INVOICES
// =====================================================

func (s *postgresStore) InsertInvoice(ctx context.Context, invoice *model.Invoice) error {
	// ON CONFLICT keeps confirmation replays from minting a second
	// invoice for the same rental.
	query := `
		INSERT INTO invoices (id, rental_id, payment_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (rental_id) DO NOTHING
	`

	_, err := s.db.Exec(ctx, query, invoice.ID, invoice.RentalID, invoice.PaymentDate)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

func (s *postgresStore) GetInvoice(ctx context.Context, rentalID uuid.UUID) (*model.Invoice, error) {
	invoice := &model.Invoice{}
	err := s.db.QueryRow(ctx,
		`SELECT id, rental_id, payment_date FROM invoices WHERE rental_id = $1`,
		rentalID,
	).Scan(&invoice.ID, &invoice.RentalID, &invoice.PaymentDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return invoice, nil
}

// =====================================================
// RENTERS
// =====================================================

func (s *postgresStore) GetRenter(ctx context.Context, userID uuid.UUID) (*model.Renter, error) {
	renter := &model.Renter{}
	err := s.db.QueryRow(ctx,
		`SELECT id, username, email FROM users WHERE id = $1`,
		userID,
	).Scan(&renter.ID, &renter.Username, &renter.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get renter: %w", err)
	}

	return renter, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
