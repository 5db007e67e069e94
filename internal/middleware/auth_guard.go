package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// TokenAuthenticator verifies access tokens.
type TokenAuthenticator interface {
	Authenticate(accessToken string) (auth.Claims, error)
}

// IdentityLoader resolves the user named by a token subject.
type IdentityLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// RequireAuth rejects requests without a valid access token and attaches the
// authenticated user to the request context.
func RequireAuth(tokens TokenAuthenticator, users IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := AccessToken(r)
			if token == "" {
				response.WriteError(ctx, w, response.Unauthorized("Unauthorized Request"))
				return
			}

			claims, err := tokens.Authenticate(token)
			if err != nil {
				response.WriteError(ctx, w, response.Unauthorized("Invalid Access Token").WithCause(err))
				return
			}

			user, err := users.FindByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					response.WriteError(ctx, w, response.Unauthorized("Invalid Access Token").WithCause(err))
					return
				}
				response.WriteError(ctx, w, response.Internal("Something went wrong", err))
				return
			}

			ctx = logging.With(ctx, slog.String("user_id", user.ID))
			ctx = auth.WithIdentity(ctx, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessToken extracts the access token from the accessToken cookie or an
// Authorization bearer header.
func AccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(auth.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
