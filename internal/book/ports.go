package book

import (
	"context"
	"time"

	"bookreview/internal/media"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

// Repository defines the contract for book data storage. Lookups of unknown
// ids return apperror.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id string) (Book, error)
	List(ctx context.Context) ([]Book, error)
	BestRated(ctx context.Context, limit int) ([]Book, error)
	UpdateMetadata(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id string) error
	// ApplyRating replaces ratings and average if the stored version still
	// equals expectedVersion, and returns ErrVersionConflict otherwise.
	ApplyRating(ctx context.Context, id string, expectedVersion int, ratings []Rating, average float64) (Book, error)
}

// ImageStore persists cover images and releases them when replaced.
type ImageStore interface {
	Save(ctx context.Context, baseURL string, up media.Upload) (media.Stored, error)
	Release(ctx context.Context, imageURL string) error
}

// Cache holds JSON values for the read endpoints.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
