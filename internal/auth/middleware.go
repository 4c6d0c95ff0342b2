package auth

import (
	"context"
	"net/http"
	"strings"

	"flora-commerce/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller passed to every operation: user id and role
// only, resolved once here instead of per-service lookups.
type Identity struct {
	UserID int64
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// SubjectResolver maps the token subject (email or username) to a user row.
type SubjectResolver interface {
	ResolveSubject(subject string) (*models.User, error)
}

// Middleware validates the bearer token issued by the upstream auth service
// and resolves the subject to a local user. Tokens are HMAC-signed; the
// shared secret arrives via configuration.
func Middleware(secret string, resolver SubjectResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			subject, _ := claims["sub"].(string)
			if subject == "" {
				http.Error(w, "token has no subject", http.StatusUnauthorized)
				return
			}

			user, err := resolver.ResolveSubject(subject)
			if err != nil {
				http.Error(w, "unknown user", http.StatusUnauthorized)
				return
			}

			ident := Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerIdentity extracts the resolved identity in handlers.
func CallerIdentity(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}

// WithIdentity is used by tests to inject a caller without going through the
// middleware.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// RequireAdmin wraps admin-only routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := CallerIdentity(r.Context())
		if !ok || !ident.IsAdmin() {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
