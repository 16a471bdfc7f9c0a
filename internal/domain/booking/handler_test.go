package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patho/patho/internal/platform/auth"
)

func authedRequest(method, target, body string, userID uuid.UUID, roles ...string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	return req.WithContext(ctx)
}

func do(t *testing.T, h echo.HandlerFunc, req *http.Request, pathParams map[string]string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	return rec, h(c)
}

func createBody(env *testEnv, sample SampleType) string {
	body := map[string]any{
		"testId":          env.cbcID,
		"appointmentDate": "2026-09-02",
		"appointmentTime": "09:30",
		"patientName":     "Asha Rao",
		"patientAge":      34,
		"patientGender":   "female",
		"patientPhone":    "+91-9000000000",
		"patientEmail":    "asha@example.com",
		"sampleType":      sample,
	}
	if sample == SampleHome {
		body["address"] = "14 MG Road, Bengaluru"
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestCreateBookingHandler(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	req := authedRequest(http.MethodPost, "/bookings", createBody(env, SampleHome), env.userID, "user")
	rec, err := do(t, h.CreateBooking, req, nil)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Price != 499 {
		t.Errorf("expected computed price 499, got %d", got.Price)
	}
	if got.Status != StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
	if got.PatientAge != 34 || got.PatientGender != "female" {
		t.Errorf("patient details missing from response: age=%d gender=%q", got.PatientAge, got.PatientGender)
	}
}

func TestCreateBookingHandlerBackendFailure(t *testing.T) {
	env := newTestEnv()
	env.repo.createErr = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	h := NewHandler(env.svc)

	req := authedRequest(http.MethodPost, "/bookings", createBody(env, SampleLab), env.userID, "user")
	_, err := do(t, h.CreateBooking, req, nil)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	msg, _ := httpErr.Message.(string)
	if strings.Contains(msg, "dial tcp") || strings.Contains(msg, "10.0.0.5") {
		t.Errorf("response must not carry backend detail, got %q", msg)
	}
	if msg != "could not create booking" {
		t.Errorf("expected generic message, got %q", msg)
	}
}

func TestCreateBookingHandlerBadDate(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	body := strings.Replace(createBody(env, SampleLab), "2026-09-02", "02/09/2026", 1)
	req := authedRequest(http.MethodPost, "/bookings", body, env.userID, "user")
	_, err := do(t, h.CreateBooking, req, nil)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCreateBookingHandlerConflict(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	req := authedRequest(http.MethodPost, "/bookings", createBody(env, SampleLab), env.userID, "user")
	if _, err := do(t, h.CreateBooking, req, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req = authedRequest(http.MethodPost, "/bookings", createBody(env, SampleLab), env.userID, "user")
	_, err := do(t, h.CreateBooking, req, nil)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if msg, _ := httpErr.Message.(string); !strings.Contains(msg, "already have a booking") {
		t.Errorf("conflict message should explain the slot clash, got %v", httpErr.Message)
	}
}

func TestCreateBookingHandlerMissingAddress(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	body := strings.Replace(createBody(env, SampleHome), "14 MG Road, Bengaluru", "", 1)
	req := authedRequest(http.MethodPost, "/bookings", body, env.userID, "user")
	_, err := do(t, h.CreateBooking, req, nil)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGetBookingOwnership(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	b := env.newBooking(SampleLab)
	if err := env.svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Owner can read.
	req := authedRequest(http.MethodGet, "/bookings/"+b.ID.String(), "", env.userID, "user")
	rec, err := do(t, h.GetBooking, req, map[string]string{"id": b.ID.String()})
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("owner read failed: %v (code %d)", err, rec.Code)
	}

	// A stranger cannot.
	req = authedRequest(http.MethodGet, "/bookings/"+b.ID.String(), "", uuid.New(), "user")
	_, err = do(t, h.GetBooking, req, map[string]string{"id": b.ID.String()})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %v", err)
	}

	// An admin with a roles-table row can.
	req = authedRequest(http.MethodGet, "/bookings/"+b.ID.String(), "", env.adminID, "admin")
	rec, err = do(t, h.GetBooking, req, map[string]string{"id": b.ID.String()})
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("admin read failed: %v", err)
	}

	// An admin claim in the token alone does not. Reads go through the same
	// roles-table gate as transitions.
	req = authedRequest(http.MethodGet, "/bookings/"+b.ID.String(), "", uuid.New(), "admin")
	_, err = do(t, h.GetBooking, req, map[string]string{"id": b.ID.String()})
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for token-only admin, got %v", err)
	}
}

func TestUpdateBookingStatusHandler(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	b := env.newBooking(SampleLab)
	if err := env.svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := authedRequest(http.MethodPatch, "/admin/bookings/"+b.ID.String()+"/status",
		`{"status":"confirmed"}`, env.adminID, "admin")
	rec, err := do(t, h.UpdateBookingStatus, req, map[string]string{"id": b.ID.String()})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUpdateBookingStatusHandlerIllegal(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	b := env.newBooking(SampleLab)
	if err := env.svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := authedRequest(http.MethodPatch, "/admin/bookings/"+b.ID.String()+"/status",
		`{"status":"completed"}`, env.adminID, "admin")
	_, err := do(t, h.UpdateBookingStatus, req, map[string]string{"id": b.ID.String()})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestUpdateBookingStatusHandlerNonAdmin(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	b := env.newBooking(SampleLab)
	if err := env.svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Role gate is checked against the roles table, so even a forged admin
	// token fails when the user has no admin row.
	req := authedRequest(http.MethodPatch, "/admin/bookings/"+b.ID.String()+"/status",
		`{"status":"confirmed"}`, env.userID, "admin")
	_, err := do(t, h.UpdateBookingStatus, req, map[string]string{"id": b.ID.String()})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestCancelBookingHandler(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	b := env.newBooking(SampleLab)
	if err := env.svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := authedRequest(http.MethodPost, "/bookings/"+b.ID.String()+"/cancel", "", env.userID, "user")
	rec, err := do(t, h.CancelBooking, req, map[string]string{"id": b.ID.String()})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got Booking
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)

	id := uuid.New()
	req := authedRequest(http.MethodGet, "/bookings/"+id.String(), "", env.userID, "user")
	_, err := do(t, h.GetBooking, req, map[string]string{"id": id.String()})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
