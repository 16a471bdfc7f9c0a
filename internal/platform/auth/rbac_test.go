package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(roles ...string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/admin/bookings/1/status", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	return req.WithContext(ctx)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	_, err := invoke(t, RequireRole("moderator"), requestWithRoles("moderator"))
	if err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestRequireRoleAdminPassesAllChecks(t *testing.T) {
	_, err := invoke(t, RequireRole("moderator"), requestWithRoles("admin"))
	if err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	_, err := invoke(t, RequireRole("admin"), requestWithRoles("user"))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRoleRejectsNoRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/admin/bookings/1/status", nil)
	_, err := invoke(t, RequireRole("admin"), req)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}
