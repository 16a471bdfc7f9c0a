package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patho/patho/internal/platform/auth"
	"github.com/patho/patho/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api, admin *echo.Group) {
	api.GET("/me/profile", h.GetMyProfile)
	api.PUT("/me/profile", h.SaveMyProfile)

	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id/roles", h.ListUserRoles)
	admin.POST("/users/:id/roles", h.GrantRole)
	admin.DELETE("/users/:id/roles/:role", h.RevokeRole)
}

func callerID(c echo.Context) (uuid.UUID, error) {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	return uid, nil
}

func (h *Handler) GetMyProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	p, err := h.svc.GetProfile(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

type saveProfileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func (h *Handler) SaveMyProfile(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req saveProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := Profile{ID: uid, FullName: req.FullName, Phone: req.Phone, Email: req.Email}
	if err := h.svc.SaveProfile(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProfiles(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListUserRoles(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	roles, err := h.svc.ListRoles(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"userId": uid, "roles": roles})
}

type grantRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) GrantRole(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req grantRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.GrantRole(c.Request().Context(), uid, req.Role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RevokeRole(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.RevokeRole(c.Request().Context(), uid, c.Param("role")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
