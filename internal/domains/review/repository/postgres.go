package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	rentalmodel "biblioconnect-backend/internal/domains/rental/model"
	"biblioconnect-backend/internal/domains/review/model"
	"biblioconnect-backend/pkg/database"
)

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

func (r *postgresRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: tx})
	})
}

func (s *postgresStore) Exists(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND book_id = $2)`,
		userID, bookID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) Insert(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, content, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Content,
		review.Rating,
		review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

func (s *postgresStore) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*model.ReviewWithUser, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.content, r.rating, r.created_at,
		       u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*model.ReviewWithUser
	for rows.Next() {
		review := &model.ReviewWithUser{}
		if err := rows.Scan(
			&review.ID,
			&review.BookID,
			&review.UserID,
			&review.Content,
			&review.Rating,
			&review.CreatedAt,
			&review.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

func (s *postgresStore) ListUserRentals(ctx context.Context, userID uuid.UUID) ([]*rentalmodel.Rental, error) {
	query := `
		SELECT id, user_id, book_id, status,
		       borrow_date, return_by_date, return_date,
		       payment_ref, payment_url,
		       created_at, updated_at
		FROM rentals
		WHERE user_id = $1
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	defer rows.Close()

	var rentals []*rentalmodel.Rental
	for rows.Next() {
		rental := &rentalmodel.Rental{}
		if err := rows.Scan(
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
		); err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rentals: %w", err)
	}

	return rentals, nil
}
