package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math/rand"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/apperror"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/media"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/logger"
	"bookreview/internal/rating"
	"bookreview/internal/user"
)

const seedPassword = "password123"

var seedEmails = []string{"alice@example.com", "bob@example.com", "carol@example.com", "dave@example.com"}

func main() {
	count := flag.Int("books", 12, "Number of books to create")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Environment: cfg.Env, Level: cfg.LogLevel})

	if err := seed(context.Background(), cfg, *count, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg config.Config, count int, log *slog.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	storage, err := media.NewStorage(cfg.ImageDir)
	if err != nil {
		return err
	}
	images := media.NewProcessor(storage, media.Options{
		MaxWidth:      cfg.ImageMaxWidth,
		Quality:       cfg.ImageQuality,
		MaxPixels:     cfg.ImageMaxPixels,
		Timeout:       cfg.ImageTimeout,
		PublicBaseURL: cfg.PublicBaseURL,
	}, log)

	users := user.NewService(user.NewPostgresRepo(pool, cfg.DBTimeout))
	authService := auth.NewService(users, crypto.NewTokenService(cfg.JWTSecret, cfg.TokenTTL))
	bookRepository := book.NewPostgresRepo(pool, cfg.DBTimeout)
	bookService := book.NewService(bookRepository, images, log)
	ratingService := rating.NewService(bookRepository, bookService, log)

	userIDs := make([]string, 0, len(seedEmails))
	for _, email := range seedEmails {
		_, err := authService.Signup(ctx, email, seedPassword)
		if err != nil && !errors.Is(err, apperror.ErrConflict) {
			return fmt.Errorf("signup %s: %w", email, err)
		}
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, u.ID)
	}
	log.Info("users ready", "count", len(userIDs), "password", seedPassword)

	genres := []string{"Fiction", "Science Fiction", "History", "Science", "Romance", "Mystery", "Biography", "Philosophy"}
	authors := []string{"Ada Lovelace", "Jules Verne", "Mary Shelley", "Italo Calvino", "Ursula Le Guin", "Jorge Luis Borges"}
	baseURL := "http://localhost" + cfg.Addr

	var rated int
	for i := 0; i < count; i++ {
		owner := userIDs[i%len(userIDs)]
		md := book.Metadata{
			Title:  fmt.Sprintf("%s of %s", getRandomWord(), getRandomWord()),
			Author: authors[rand.Intn(len(authors))],
			Year:   1900 + rand.Intn(125),
			Genre:  genres[rand.Intn(len(genres))],
		}
		cover, err := coverPNG(i)
		if err != nil {
			return err
		}

		b, err := bookService.Create(ctx, owner, md, media.Upload{Filename: fmt.Sprintf("cover-%d.png", i+1), Data: cover}, baseURL)
		if err != nil {
			return fmt.Errorf("create book %d: %w", i+1, err)
		}

		for _, rater := range userIDs {
			if rater == owner || rand.Intn(3) == 0 {
				continue
			}
			if _, err := ratingService.Rate(ctx, b.ID, rater, float64(rand.Intn(6))); err != nil {
				return fmt.Errorf("rate book %s: %w", b.ID, err)
			}
			rated++
		}
	}

	log.Info("seed complete", "books", count, "ratings", rated)
	return nil
}

// coverPNG draws a two-tone gradient so every seeded cover looks different.
func coverPNG(seed int) ([]byte, error) {
	const w, h = 600, 900
	base := color.NRGBA{R: uint8(seed * 53), G: uint8(seed * 97), B: uint8(seed * 29), A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		shade := uint8(y * 255 / h)
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: base.R ^ shade, G: base.G, B: base.B ^ uint8(x*255/w), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getRandomWord() string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rand.Intn(len(words))]
}
