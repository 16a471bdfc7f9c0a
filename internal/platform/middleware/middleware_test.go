package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return rec, err
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestIDGeneratesID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec, err := runMiddleware(t, RequestID(), okHandler, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated X-Request-ID header")
	}
}

func TestRequestIDHonorsInboundHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec, err := runMiddleware(t, RequestID(), okHandler, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("expected upstream-id, got %q", got)
	}
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	panicking := func(c echo.Context) error {
		panic("boom")
	}
	_, err := runMiddleware(t, Recovery(zerolog.Nop()), panicking, req)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
}

func TestLoggerPassesThroughError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	failing := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	}
	_, err := runMiddleware(t, Logger(zerolog.Nop()), failing, req)
	if err == nil {
		t.Fatal("expected error to propagate through logger middleware")
	}
}

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec, err := runMiddleware(t, SecurityHeaders(), okHandler, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store, got %q", got)
	}
}
