// Package server assembles the HTTP routes and the middleware stack.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/media"
	"bookreview/internal/rating"
)

type Deps struct {
	Logger *slog.Logger

	Auth    *auth.HTTPHandler
	Books   *book.HTTPHandler
	Ratings *rating.HTTPHandler
	Tokens  httpx.TokenVerifier

	ImageDir string
	// Ready reports whether the backing store answers. Nil means always ready.
	Ready func(ctx context.Context) error

	CORSOrigins    []string
	EnableHSTS     bool
	MaxUploadBytes int64
	RateLimiter    *httpx.RateLimitMiddleware
}

// NewRouter registers every route and wraps the mux in the global middleware.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	requireAuth := httpx.AuthMiddleware(d.Tokens)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONMessage(w, http.StatusOK, "API running")
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("POST /api/auth/signup", d.Auth.Signup)
	mux.HandleFunc("POST /api/auth/register", d.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)

	mux.HandleFunc("GET /api/books", d.Books.GetAll)
	mux.HandleFunc("GET /api/books/bestrating", d.Books.BestRating)
	mux.HandleFunc("GET /api/books/{id}", d.Books.GetOne)
	mux.Handle("POST /api/books", requireAuth(http.HandlerFunc(d.Books.Create)))
	mux.Handle("PUT /api/books/{id}", requireAuth(http.HandlerFunc(d.Books.Update)))
	mux.Handle("DELETE /api/books/{id}", requireAuth(http.HandlerFunc(d.Books.Delete)))
	mux.Handle("POST /api/books/{id}/rating", requireAuth(http.HandlerFunc(d.Ratings.Rate)))

	if d.ImageDir != "" {
		mux.Handle("GET "+media.PublicPrefix, http.StripPrefix(media.PublicPrefix, noDirListing(http.FileServer(http.Dir(d.ImageDir)))))
	}

	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Logger),
		httpx.RecoveryMiddleware(d.Logger),
		httpx.SecurityHeadersMiddleware(d.EnableHSTS),
		httpx.CORSMiddleware(d.CORSOrigins),
	}
	if d.RateLimiter != nil {
		middlewares = append(middlewares, d.RateLimiter.Middleware)
	}
	if d.MaxUploadBytes > 0 {
		middlewares = append(middlewares, httpx.RequestSizeLimitMiddleware(d.MaxUploadBytes))
	}
	return httpx.Chain(mux, middlewares...)
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
