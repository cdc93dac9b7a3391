package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/handlers/render"
	"github.com/nkiryanov/portfolio/internal/handlers/userctx"
	"github.com/nkiryanov/portfolio/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.Identity, error)
}

type warnLogger interface {
	Warn(msg string, args ...any)
}

// AuthMiddleware lets request through only with valid access token and puts its identity into request context.
// Every failure is the same 401 for the client, the reason goes to logs
func AuthMiddleware(as authService, l warnLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := as.Auth(r.Context(), r)
			if err != nil {
				l.Warn("request not authenticated",
					"reason", authFailureReason(err),
					"method", r.Method,
					"uri", r.RequestURI,
				)
				render.Unauthenticated(w)
				return
			}

			ctx := userctx.New(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, apperrors.ErrTokenInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, apperrors.ErrTokenMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
