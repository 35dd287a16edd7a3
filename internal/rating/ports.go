package rating

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=rating

import (
	"context"

	"bookreview/internal/book"
)

// Store reads a book and writes its ratings under a version check.
type Store interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
	ApplyRating(ctx context.Context, id string, expectedVersion int, ratings []book.Rating, average float64) (book.Book, error)
}

// Invalidator drops listings derived from averages.
type Invalidator interface {
	InvalidateBestRated(ctx context.Context)
}
