package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/apperror"
)

const bookColumns = `id, user_id, title, author, year, genre, image_url, image_blur_hash,
	ratings, average_rating, version, created_at, updated_at`

const (
	invalidTextRepresentation = "22P02"
	foreignKeyViolation       = "23503"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (user_id, title, author, year, genre, image_url, image_blur_hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, ratings, average_rating, version, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, query,
		b.UserID, b.Title, b.Author, b.Year, b.Genre, b.ImageURL, b.ImageBlurHash,
	).Scan(&b.ID, &b.Ratings, &b.AverageRating, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		return Book{}, mapError(err)
	}
	return b, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query)
}

func (r *PostgresRepo) BestRated(ctx context.Context, limit int) ([]Book, error) {
	query := `SELECT ` + bookColumns + `
	FROM books
	ORDER BY average_rating DESC, created_at ASC, id ASC
	LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *PostgresRepo) list(ctx context.Context, query string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, mapError(err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return books, nil
}

// UpdateMetadata writes the client-writable fields and the cover. Ratings,
// average, owner and version are not part of the statement.
func (r *PostgresRepo) UpdateMetadata(ctx context.Context, b *Book) error {
	const query = `
	UPDATE books
	SET title = $2, author = $3, year = $4, genre = $5, image_url = $6, image_blur_hash = $7, updated_at = now()
	WHERE id = $1
	RETURNING updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, query,
		b.ID, b.Title, b.Author, b.Year, b.Genre, b.ImageURL, b.ImageBlurHash,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Book not found")
	}
	return nil
}

func (r *PostgresRepo) ApplyRating(ctx context.Context, id string, expectedVersion int, ratings []Rating, average float64) (Book, error) {
	query := `
	UPDATE books
	SET ratings = $3, average_rating = $4, version = version + 1, updated_at = now()
	WHERE id = $1 AND version = $2
	RETURNING ` + bookColumns

	if ratings == nil {
		ratings = []Rating{}
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id, expectedVersion, ratings, average))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrVersionConflict
		}
		return Book{}, mapError(err)
	}
	return b, nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &b.Year, &b.Genre, &b.ImageURL, &b.ImageBlurHash,
		&b.Ratings, &b.AverageRating, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if b.Ratings == nil {
		b.Ratings = []Rating{}
	}
	return b, err
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("Book not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentation:
			return apperror.NotFound("Book not found")
		case foreignKeyViolation:
			// The owner in a still valid token no longer has an account.
			return apperror.ErrInvalidToken.WithCause(err)
		}
	}
	return apperror.Unavailable(err)
}
