package middleware

import (
	"context"
	"net/http"
	"strings"

	"roomline/pkg/auth"
	apperrors "roomline/pkg/errors"
	apphttp "roomline/pkg/http"
)

const identityKey contextKey = "identity"

// Authenticate validates the bearer token and stores the caller identity
// in the request context. Requests without a valid token are rejected.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				_ = apphttp.WriteError(w, apperrors.Unauthorized("Missing Authorization header"))
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				_ = apphttp.WriteError(w, apperrors.Unauthorized("Authorization header must be a bearer token"))
				return
			}

			identity, err := auth.ParseToken(secret, tokenString)
			if err != nil {
				_ = apphttp.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithIdentity attaches an already-validated identity, for callers
// that authenticate out of band.
func ContextWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated caller, or nil when the request
// did not pass through Authenticate.
func IdentityFrom(ctx context.Context) *auth.Identity {
	if v := ctx.Value(identityKey); v != nil {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}
