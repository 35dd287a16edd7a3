package httpx

import (
	"net/http"
	"strings"

	"bookreview/internal/apperror"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", apperror.ErrMissingCredential
	}
	scheme, token, _ := strings.Cut(header, " ")
	if scheme != "Bearer" || token == "" {
		return "", apperror.ErrMalformedCredential
	}
	return token, nil
}

// AuthMiddleware rejects requests without a valid bearer token with 401 and
// stores the verified user id in the request context otherwise.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, r, err)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				if apperror.KindOf(err) == apperror.KindInternal {
					err = apperror.ErrInvalidToken.WithCause(err)
				}
				WriteError(w, r, err)
				return
			}

			ctx := ContextWithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
