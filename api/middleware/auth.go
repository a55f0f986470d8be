package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/waytrackhq/waytrack-backend/api/responses"
	"github.com/waytrackhq/waytrack-backend/internal/users"
	pkgAuth "github.com/waytrackhq/waytrack-backend/pkg/auth"
	"github.com/waytrackhq/waytrack-backend/pkg/config"
	pkgerrors "github.com/waytrackhq/waytrack-backend/pkg/errors"
	"github.com/waytrackhq/waytrack-backend/pkg/logger"
)

// IdentitySyncer records the identity carried on a validated token in the
// local user directory.
type IdentitySyncer interface {
	Sync(ctx context.Context, dto users.UpsertUserDTO) (*users.UserDTO, error)
}

// Auth validates a bearer token and seeds the request context with the
// subject. When a directory is provided the token identity is upserted so
// notification routing can resolve names and e-mail addresses later.
func Auth(cfg config.JWTConfig, directory IdentitySyncer, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.Subject)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.Subject)
			}

			if directory != nil {
				if _, err := directory.Sync(ctx, users.UpsertUserDTO{
					ID:    claims.Subject,
					Name:  claims.Name,
					Email: claims.Email,
				}); err != nil && logg != nil {
					// The token is already validated; a directory hiccup
					// must not lock the user out.
					logg.Error(ctx, "syncing user directory failed", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
