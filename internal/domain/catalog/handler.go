package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patho/patho/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the catalog endpoints. Reads are public; writes go on
// the admin group.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.GET("/labs", h.ListLabs)
	public.GET("/labs/:id", h.GetLab)
	public.GET("/tests", h.ListTests)
	public.GET("/tests/:id", h.GetTest)

	admin.POST("/labs", h.CreateLab)
	admin.PUT("/labs/:id", h.UpdateLab)
	admin.DELETE("/labs/:id", h.DeleteLab)
	admin.POST("/tests", h.CreateTest)
	admin.PUT("/tests/:id", h.UpdateTest)
	admin.DELETE("/tests/:id", h.DeleteTest)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListLabs(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"name", "min_rating"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	items, total, err := h.svc.SearchLabs(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetLab(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	l, err := h.svc.GetLab(c.Request().Context(), id)
	if err != nil {
		return mapCatalogError(err, "lab")
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) CreateLab(c echo.Context) error {
	var l Lab
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateLab(c.Request().Context(), &l); err != nil {
		return mapCatalogError(err, "lab")
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) UpdateLab(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var l Lab
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	l.ID = id
	if err := h.svc.UpdateLab(c.Request().Context(), &l); err != nil {
		return mapCatalogError(err, "lab")
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLab(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLab(c.Request().Context(), id); err != nil {
		return mapCatalogError(err, "lab")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTests(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"name", "lab_id", "max_price"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	items, total, err := h.svc.SearchTests(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return mapCatalogError(err, "test")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTest(c echo.Context) error {
	var t Test
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateTest(c.Request().Context(), &t); err != nil {
		return mapCatalogError(err, "test")
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var t Test
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	if err := h.svc.UpdateTest(c.Request().Context(), &t); err != nil {
		return mapCatalogError(err, "test")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		return mapCatalogError(err, "test")
	}
	return c.NoContent(http.StatusNoContent)
}

func mapCatalogError(err error, kind string) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, kind+" not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
