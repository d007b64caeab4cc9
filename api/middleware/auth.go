package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/eventdesk-backend/api/responses"
	pkgAuth "github.com/angelmondragon/eventdesk-backend/pkg/auth"
	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/eventdesk-backend/pkg/errors"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRole(ctx, string(claims.Role))
			if claims.ClientID != nil {
				ctx = WithClientID(ctx, claims.ClientID.String())
			}

			if logg != nil {
				ctx = logg.WithActor(ctx, claims.UserID.String(), string(claims.Role), ClientIDFromContext(ctx))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
