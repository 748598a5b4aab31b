package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/platform/httputil"
	"admitly/pkg/requestcontext"
)

// JWTValidator validates bearer tokens. Implemented by jwttoken.Service.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims are the claims the auth middleware needs from a token.
type JWTClaims struct {
	UserID string
	Role   string
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated Caller into the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			caller, err := callerFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "malformed token claims",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}

func callerFromClaims(claims *JWTClaims) (id.Caller, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.Caller{}, err
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return id.Caller{}, err
	}
	return id.Caller{ID: userID, Role: role}, nil
}
