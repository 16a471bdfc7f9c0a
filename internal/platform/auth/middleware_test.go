package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	_, err := invoke(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddlewareBadFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Basic abc123")
	_, err := invoke(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	tokenStr := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6f1f9c7e-8f6a-4a1e-9c43-1d2f3a4b5c6d",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "patient@example.com",
		Roles: []string{"user"},
	})

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	c, err := invoke(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	ctx := c.Request().Context()
	if got := UserIDFromContext(ctx); got != "6f1f9c7e-8f6a-4a1e-9c43-1d2f3a4b5c6d" {
		t.Errorf("unexpected user id: %q", got)
	}
	if got := EmailFromContext(ctx); got != "patient@example.com" {
		t.Errorf("unexpected email: %q", got)
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "user" {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	tokenStr := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	_, err := invoke(t, JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestDevAuthMiddlewareDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	c, err := invoke(t, DevAuthMiddleware(), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	ctx := c.Request().Context()
	if UserIDFromContext(ctx) == "" {
		t.Error("expected dev user id")
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("expected admin role in dev mode, got %v", roles)
	}
}
