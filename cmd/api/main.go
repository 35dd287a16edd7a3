package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/media"
	"bookreview/internal/platform/cache"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/logger"
	"bookreview/internal/rating"
	"bookreview/internal/server"
	"bookreview/internal/user"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Environment: cfg.Env, Level: cfg.LogLevel, AddSource: cfg.IsProd()})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

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

	tokens := crypto.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	userRepository := user.NewPostgresRepo(dbPool, cfg.DBTimeout)
	bookRepository := book.NewPostgresRepo(dbPool, cfg.DBTimeout)

	authService := auth.NewService(user.NewService(userRepository), tokens)
	bookService := book.NewService(bookRepository, images, log)
	ratingService := rating.NewService(bookRepository, bookService, log)

	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.Config{Addr: cfg.RedisAddr})
		if err != nil {
			return err
		}
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, best rating cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			bookService.WithCache(redisCache, cfg.BestRatingCacheTTL)
			log.Info("best rating cache enabled", "addr", cfg.RedisAddr)
		}
	}

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	router := server.NewRouter(server.Deps{
		Logger:         log,
		Auth:           auth.NewHTTPHandler(authService),
		Books:          book.NewHTTPHandler(bookService),
		Ratings:        rating.NewHTTPHandler(ratingService),
		Tokens:         tokens,
		ImageDir:       storage.Dir(),
		Ready:          dbPool.Ping,
		CORSOrigins:    cfg.CORSOrigins,
		EnableHSTS:     cfg.EnableHSTS,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimiter:    rateLimiter,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database connection OK", "dsn", config.RedactDSN(dsn))
	return pool, nil
}
