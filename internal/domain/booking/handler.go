package booking

import (
	"errors"
	"net/http"
	"time"

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
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings", h.ListMyBookings)
	api.GET("/bookings/:id", h.GetBooking)
	api.POST("/bookings/:id/cancel", h.CancelBooking)
	api.POST("/bookings/:id/pay", h.PayBooking)

	admin.GET("/bookings", h.SearchBookings)
	admin.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
}

// createBookingRequest is the JSON body for POST /bookings. The appointment
// date travels as a plain YYYY-MM-DD string.
type createBookingRequest struct {
	TestID          uuid.UUID  `json:"testId"`
	LabID           *uuid.UUID `json:"labId"`
	AppointmentDate string     `json:"appointmentDate"`
	AppointmentTime string     `json:"appointmentTime"`
	PatientName     string     `json:"patientName"`
	PatientAge      int        `json:"patientAge"`
	PatientGender   string     `json:"patientGender"`
	PatientPhone    string     `json:"patientPhone"`
	PatientEmail    string     `json:"patientEmail"`
	SampleType      SampleType `json:"sampleType"`
	Address         string     `json:"address"`
}

func callerID(c echo.Context) (uuid.UUID, error) {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	return uid, nil
}

func (h *Handler) CreateBooking(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment_date must be YYYY-MM-DD")
	}

	b := Booking{
		UserID:          uid,
		TestID:          req.TestID,
		LabID:           req.LabID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		PatientName:     req.PatientName,
		PatientAge:      req.PatientAge,
		PatientGender:   req.PatientGender,
		PatientPhone:    req.PatientPhone,
		PatientEmail:    req.PatientEmail,
		SampleType:      req.SampleType,
		Address:         req.Address,
	}

	if err := h.svc.Create(c.Request().Context(), &b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return echo.NewHTTPError(http.StatusConflict, "You already have a booking at this date and time")
		}
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		// Backend failures stay generic; the detail goes to the log, not
		// the client.
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create booking")
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ListMyBookings(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByUser(c.Request().Context(), uid, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetBooking(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := h.svc.GetForUser(c.Request().Context(), id, uid)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) CancelBooking(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := h.svc.Cancel(c.Request().Context(), id, uid)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) PayBooking(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	b, err := h.svc.MarkPaid(c.Request().Context(), id, uid)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) SearchBookings(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"user_id", "status", "lab_id", "date"} {
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

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateBookingStatus(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status, uid)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func mapLifecycleError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not allowed")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		// Unknown errors are backend failures; never echo them back.
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
