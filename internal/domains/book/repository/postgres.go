package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"biblioconnect-backend/internal/domains/book/model"
)

type postgresBookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresBookRepository{pool: pool}
}

// bookColumns selects catalog fields plus the review-derived rating,
// rounded to two decimals, zero when the book has no reviews yet.
const bookColumns = `
	b.id, b.title, b.author, b.isbn, b.rental_price,
	b.total_copies, b.available_copies, b.cover_source,
	COALESCE(ROUND(AVG(r.rating), 2), 0) AS average_rating,
	b.created_at, b.updated_at
`

func (r *postgresBookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author, isbn, rental_price,
			total_copies, available_copies, cover_source,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.RentalPrice,
		book.TotalCopies,
		book.AvailableCopies,
		book.CoverSource,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *postgresBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		LEFT JOIN reviews r ON r.book_id = b.id
		WHERE b.id = $1
		GROUP BY b.id
	`

	book := &model.Book{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.RentalPrice,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CoverSource,
		&book.AverageRating,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *postgresBookRepository) List(ctx context.Context) ([]*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		LEFT JOIN reviews r ON r.book_id = b.id
		GROUP BY b.id
		ORDER BY b.title
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		book := &model.Book{}
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.ISBN,
			&book.RentalPrice,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.CoverSource,
			&book.AverageRating,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func (r *postgresBookRepository) UpdateCoverSource(ctx context.Context, id uuid.UUID, coverURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET cover_source = $2, updated_at = NOW() WHERE id = $1`,
		id, coverURL,
	)
	if err != nil {
		return fmt.Errorf("failed to update cover source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	return nil
}
