package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
)

// Accounts resolves the account behind a token. Soft-deleted accounts are
// reported as domain.ErrNotFound.
type Accounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// resolve validates the access token and checks the account still exists.
// The role is taken from the account, not the token.
func resolve(ctx context.Context, tokens *auth.TokenIssuer, accounts Accounts, token string) (*auth.Claims, error) {
	claims, err := tokens.Validate(token, auth.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	claims.Role = string(user.Role)

	return claims, nil
}

// Authenticate rejects requests without a valid access token or whose account
// was deleted, and stores the claims on the request context.
func Authenticate(tokens *auth.TokenIssuer, accounts Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
				return
			}

			claims, err := resolve(r.Context(), tokens, accounts, token)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrInvalidToken):
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid or expired token")
				return
			case errors.Is(err, domain.ErrNotFound):
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Account no longer exists")
				return
			default:
				response.Error(w, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth stores claims when a valid access token of a live account is
// present and otherwise lets the request through anonymously.
func OptionalAuth(tokens *auth.TokenIssuer, accounts Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := resolve(r.Context(), tokens, accounts, token); err == nil {
					r = r.WithContext(auth.WithClaims(r.Context(), claims))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
