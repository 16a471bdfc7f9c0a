package partner

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

// RegisterRoutes wires the partner endpoints. Applying is public; review and
// decision go on the admin group.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.POST("/partner-applications", h.Apply)

	admin.GET("/partner-applications", h.SearchApplications)
	admin.GET("/partner-applications/:id", h.GetApplication)
	admin.PATCH("/partner-applications/:id", h.DecideApplication)
}

type applyRequest struct {
	LabName   string `json:"labName"`
	OwnerName string `json:"ownerName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (h *Handler) Apply(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a := Application{
		LabName:   req.LabName,
		OwnerName: req.OwnerName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := h.svc.Apply(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) SearchApplications(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"status", "email"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetApplication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapApplicationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type decideRequest struct {
	Status ApplicationStatus `json:"status"`
}

func (h *Handler) DecideApplication(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Decide(c.Request().Context(), id, req.Status, uid)
	if err != nil {
		return mapApplicationError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func mapApplicationError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "application not found")
	case errors.Is(err, ErrAlreadyDecided):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not allowed")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
