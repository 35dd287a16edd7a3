package book

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bookreview/internal/apperror"
	"bookreview/internal/media"
)

const (
	bestRatedLimit = 3
	bestRatedKey   = "books:bestrating"
)

// Service provides book-related business logic.
type Service struct {
	repo     Repository
	images   ImageStore
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a new book service.
func NewService(repo Repository, images ImageStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

// WithCache enables caching of the best-rated listing.
func (s *Service) WithCache(c Cache, ttl time.Duration) *Service {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// Create stores the cover and inserts a new book owned by ownerID with no
// ratings. The cover is released again if the insert fails.
func (s *Service) Create(ctx context.Context, ownerID string, md Metadata, image media.Upload, baseURL string) (Book, error) {
	stored, err := s.images.Save(ctx, baseURL, image)
	if err != nil {
		return Book{}, err
	}

	b := Book{
		UserID:        ownerID,
		ImageURL:      stored.URL,
		ImageBlurHash: stored.BlurHash,
		Ratings:       []Rating{},
		AverageRating: 0,
	}
	b.setMetadata(md)

	if err := s.repo.Create(ctx, &b); err != nil {
		s.releaseImage(ctx, stored.URL)
		return Book{}, err
	}

	s.logger.Info("book created", "book_id", b.ID, "user_id", ownerID)
	s.InvalidateBestRated(ctx)
	return b, nil
}

// GetOne returns a book by id. Ids that are not valid UUIDs are reported as
// not found.
func (s *Service) GetOne(ctx context.Context, id string) (Book, error) {
	id, err := parseID(id)
	if err != nil {
		return Book{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// GetAll returns every book, oldest first.
func (s *Service) GetAll(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// BestRating returns up to three books by descending average; ties keep
// creation order.
func (s *Service) BestRating(ctx context.Context) ([]Book, error) {
	if s.cache != nil {
		var cached []Book
		found, err := s.cache.GetJSON(ctx, bestRatedKey, &cached)
		if err != nil {
			s.logger.Warn("best rating cache read failed", "error", err)
		} else if found {
			return cached, nil
		}
	}

	books, err := s.repo.BestRated(ctx, bestRatedLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, bestRatedKey, books, s.cacheTTL); err != nil {
			s.logger.Warn("best rating cache write failed", "error", err)
		}
	}
	return books, nil
}

// Update applies in to the book if callerID owns it. Ratings, average and
// owner are never touched. A replacement cover is stored first; the old one
// is released only after the record points at the new one.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) (Book, error) {
	existing, err := s.owned(ctx, callerID, id)
	if err != nil {
		return Book{}, err
	}

	updated := existing
	md := existing.Metadata()
	in.patch().Apply(&md)
	updated.setMetadata(md)

	var newImage *media.Stored
	if withImage, ok := in.(MetadataImageUpdate); ok {
		stored, err := s.images.Save(ctx, withImage.BaseURL, withImage.Image)
		if err != nil {
			return Book{}, err
		}
		newImage = &stored
		updated.ImageURL = stored.URL
		updated.ImageBlurHash = stored.BlurHash
	}

	if err := s.repo.UpdateMetadata(ctx, &updated); err != nil {
		if newImage != nil {
			s.releaseImage(ctx, newImage.URL)
		}
		return Book{}, err
	}

	if newImage != nil && existing.ImageURL != updated.ImageURL {
		s.releaseImage(ctx, existing.ImageURL)
	}

	s.logger.Info("book updated", "book_id", updated.ID, "user_id", callerID, "new_image", newImage != nil)
	s.InvalidateBestRated(ctx)
	return updated, nil
}

// Delete removes the book if callerID owns it, then releases its cover.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	existing, err := s.owned(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return err
	}
	s.releaseImage(ctx, existing.ImageURL)

	s.logger.Info("book deleted", "book_id", existing.ID, "user_id", callerID)
	s.InvalidateBestRated(ctx)
	return nil
}

// InvalidateBestRated drops the cached best-rated listing. Failures are
// logged; the entry expires on its own.
func (s *Service) InvalidateBestRated(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, bestRatedKey); err != nil {
		s.logger.Warn("best rating cache invalidation failed", "error", err)
	}
}

func (s *Service) owned(ctx context.Context, callerID, id string) (Book, error) {
	id, err := parseID(id)
	if err != nil {
		return Book{}, err
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if b.UserID != callerID {
		return Book{}, apperror.Forbidden("you are not allowed to modify this book")
	}
	return b, nil
}

func (s *Service) releaseImage(ctx context.Context, imageURL string) {
	if err := s.images.Release(ctx, imageURL); err != nil {
		s.logger.Warn("image release failed", "image_url", imageURL, "error", err)
	}
}

func parseID(raw string) (string, error) {
	id, err := uuid.Parse(CleanID(raw))
	if err != nil {
		return "", apperror.NotFound("Book not found")
	}
	return id.String(), nil
}
