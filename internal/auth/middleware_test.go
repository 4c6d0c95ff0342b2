package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flora-commerce/internal/auth"
	"flora-commerce/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

type stubResolver struct {
	users map[string]*models.User
}

func (s *stubResolver) ResolveSubject(subject string) (*models.User, error) {
	user, ok := s.users[subject]
	if !ok {
		return nil, errors.New("no such user")
	}
	return user, nil
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(t *testing.T, got *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := auth.CallerIdentity(r.Context())
		require.True(t, ok)
		*got = ident
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareResolvesCaller(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"daisy@example.com": {ID: 42, Email: "daisy@example.com", Role: models.RoleCustomer},
	}}

	var got auth.Identity
	handler := auth.Middleware(testSecret, resolver)(protectedHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "daisy@example.com"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, models.RoleCustomer, got.Role)
	assert.False(t, got.IsAdmin())
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{}}
	handler := auth.Middleware(testSecret, resolver)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"daisy@example.com": {ID: 42},
	}}
	handler := auth.Middleware(testSecret, resolver)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "some-other-secret", "daisy@example.com"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"daisy@example.com": {ID: 42},
	}}
	handler := auth.Middleware(testSecret, resolver)(http.NotFoundHandler())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "daisy@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsUnknownSubject(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{}}
	handler := auth.Middleware(testSecret, resolver)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "ghost@example.com"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := auth.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/sales", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "anonymous caller")

	customer := auth.WithIdentity(req.Context(), auth.Identity{UserID: 42, Role: models.RoleCustomer})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(customer))
	assert.Equal(t, http.StatusForbidden, rec.Code, "customer caller")

	admin := auth.WithIdentity(req.Context(), auth.Identity{UserID: 1, Role: models.RoleAdmin})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(admin))
	assert.Equal(t, http.StatusOK, rec.Code, "admin caller")
}
