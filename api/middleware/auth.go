package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/electrosoundpack/storefront-backend/api/responses"
	pkgAuth "github.com/electrosoundpack/storefront-backend/pkg/auth"
	"github.com/electrosoundpack/storefront-backend/pkg/auth/session"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	pkgerrors "github.com/electrosoundpack/storefront-backend/pkg/errors"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
)

const tokenQueryParam = "token"

// Auth validates the access token and seeds the request context with the caller.
// The token comes from the Authorization bearer header or, failing that, the token query parameter.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:    claims.UserID,
				Email:     claims.Email,
				IsAdmin:   claims.IsAdmin,
				SessionID: claims.ID,
			})
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
				ctx = logg.WithEmail(ctx, claims.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return raw
	}
	return strings.TrimSpace(r.URL.Query().Get(tokenQueryParam))
}
