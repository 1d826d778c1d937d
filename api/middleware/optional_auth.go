package middleware

import (
	"context"
	"net/http"

	pkgAuth "github.com/paddockshare/paddockshare-backend/pkg/auth"
	"github.com/paddockshare/paddockshare-backend/pkg/config"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// OptionalAuth seeds the context with claims when a valid bearer token is
// present but never rejects the request. Public pages use it to personalize
// promotion banners for signed-in owners.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
