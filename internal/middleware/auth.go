// Package middleware provides HTTP middlewares for owner authentication,
// request logging, metrics and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// TokenVerifier resolves a bearer token to the owner login it was issued for.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// OwnerAuth resolves the owner of a request and stores it in the request
// context.
//
// A verified client certificate wins: its Common Name is the owner login.
// Without one, an "Authorization: Bearer" token is checked against tokens.
// Requests carrying neither are rejected with 401. tokens may be nil, in
// which case only certificates are accepted.
func OwnerAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := OwnerFromCertificate(r)
			if owner == "" && tokens != nil {
				if raw, ok := bearerToken(r); ok {
					if login, err := tokens.Verify(raw); err == nil {
						owner = login
					}
				}
			}
			if owner == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// OwnerFromCertificate returns the Common Name of the client certificate of
// r, or "" when the connection carries none.
func OwnerFromCertificate(r *http.Request) string {
	if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
		return ""
	}
	return r.TLS.PeerCertificates[0].Subject.CommonName
}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// GetOwnerFromContext extracts the owner login from the request context.
// Returns an empty string if not found.
func GetOwnerFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ownerKey).(string); ok {
		return s
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
