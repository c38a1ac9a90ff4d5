package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const principalKey contextKeyType = "principal"

// Principal is the authenticated caller extracted by the auth middleware.
// Grants maps a securable name (e.g. "SEARCH") to the actions the account
// may perform against it (e.g. "READ", "CREATE").
type Principal struct {
	AccountID int64               `json:"account_id"`
	Email     string              `json:"email"`
	Grants    map[string][]string `json:"grants"`
}

// Can reports whether the principal holds the given action on the securable.
func (p *Principal) Can(securable, action string) bool {
	for _, a := range p.Grants[securable] {
		if a == action {
			return true
		}
	}
	return false
}

// TokenValidator validates a bearer token and returns the principal.
// The concrete validation logic (JWT, opaque token lookup) is injected by
// the application.
type TokenValidator func(token string) (*Principal, error)

// Auth validates bearer tokens and injects the principal into context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			principal, err := validate(parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission checks that the principal holds the given action on the
// securable. Mount after Auth.
func RequirePermission(securable, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil || !p.Can(securable, action) {
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext extracts the principal from the request context.
// Returns nil when the request did not pass through Auth.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// AccountIDFromContext extracts the authenticated account ID, or 0.
func AccountIDFromContext(ctx context.Context) int64 {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.AccountID
	}
	return 0
}

// WithPrincipal returns a context carrying the given principal. Intended for
// tests that exercise handlers without the full Auth middleware.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
