package middleware

import (
	"context"
	"net/http"
	"strings"

	h "calltimes/internal/delivery/http/helpers"
	"calltimes/internal/domain"
)

type contextKey string

const identityIDKey contextKey = "identityID"

// SetIdentityID returns a context with the identity ID set. Used by auth middleware.
func SetIdentityID(ctx context.Context, identityID string) context.Context {
	return context.WithValue(ctx, identityIDKey, identityID)
}

// IdentityIDFromContext returns the authenticated identity ID from the context, if present.
func IdentityIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityIDKey).(string)
	return id, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// identity ID in the request context. If the token is missing or invalid, it
// responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identityID, ok := bearerIdentity(r, verifier)
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing or invalid bearer token")
				return
			}
			r = r.WithContext(SetIdentityID(r.Context(), identityID))
			next(w, r)
		}
	}
}

// OptionalAuth attaches the identity ID when a valid bearer token is present
// and passes the request through anonymously otherwise. The invitation accept
// endpoint uses it: a signed-in caller attaches the invitation to their
// account, an anonymous one may have a guest identity minted.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if identityID, ok := bearerIdentity(r, verifier); ok {
				r = r.WithContext(SetIdentityID(r.Context(), identityID))
			}
			next(w, r)
		}
	}
}

func bearerIdentity(r *http.Request, verifier domain.TokenVerifier) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", false
	}
	identityID, err := verifier.Verify(token)
	if err != nil {
		return "", false
	}
	return identityID, true
}
