// Package rating appends one-time user ratings to books and keeps their
// average in step.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
)

const (
	MinGrade = 0
	MaxGrade = 5

	defaultMaxAttempts = 5
)

type Service struct {
	store       Store
	invalidator Invalidator
	maxAttempts int
	logger      *slog.Logger
}

func NewService(store Store, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		invalidator: invalidator,
		maxAttempts: defaultMaxAttempts,
		logger:      logger,
	}
}

// WithMaxAttempts sets how many times Rate re-reads the book after losing a
// concurrent write.
func (s *Service) WithMaxAttempts(n int) *Service {
	if n > 0 {
		s.maxAttempts = n
	}
	return s
}

// Rate records raterID's grade for the book and returns the updated book.
// A rater can rate a book once; ratings are never edited afterwards.
func (s *Service) Rate(ctx context.Context, bookID, raterID string, grade float64) (book.Book, error) {
	if math.IsNaN(grade) || math.IsInf(grade, 0) || grade < MinGrade || grade > MaxGrade {
		return book.Book{}, apperror.Validation("Rating must be between 0 and 5")
	}
	parsed, err := uuid.Parse(book.CleanID(bookID))
	if err != nil {
		return book.Book{}, apperror.NotFound("Book not found")
	}
	id := parsed.String()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return book.Book{}, err
		}
		if hasRated(current.Ratings, raterID) {
			return book.Book{}, apperror.ErrDuplicateRating
		}

		ratings := append(slices.Clone(current.Ratings), book.Rating{UserID: raterID, Grade: grade})
		updated, err := s.store.ApplyRating(ctx, id, current.Version, ratings, Average(ratings))
		if errors.Is(err, book.ErrVersionConflict) {
			s.logger.Debug("rating lost a concurrent write, retrying", "book_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return book.Book{}, err
		}

		s.logger.Info("book rated", "book_id", id, "user_id", raterID, "average", updated.AverageRating)
		if s.invalidator != nil {
			s.invalidator.InvalidateBestRated(ctx)
		}
		return updated, nil
	}

	return book.Book{}, apperror.Unavailable(fmt.Errorf("rate book %s after %d attempts: %w", id, s.maxAttempts, book.ErrVersionConflict))
}

// Average returns the mean grade rounded to one decimal, or 0 without ratings.
func Average(ratings []book.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Grade
	}
	return math.Round(sum/float64(len(ratings))*10) / 10
}

func hasRated(ratings []book.Rating, raterID string) bool {
	return slices.ContainsFunc(ratings, func(r book.Rating) bool { return r.UserID == raterID })
}
