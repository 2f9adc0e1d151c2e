package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mbltya/cinema-booking/internal/auth"
	"github.com/mbltya/cinema-booking/internal/booking"
	"github.com/mbltya/cinema-booking/internal/catalog"
	"github.com/mbltya/cinema-booking/internal/model"
	"github.com/mbltya/cinema-booking/internal/order"
)

type stubLoader struct {
	rec *model.SessionRecord
	err error
}

func (s *stubLoader) LoadSession(ctx context.Context, id uint64) (*model.SessionRecord, error) {
	return s.rec, s.err
}

type stubSubmitter struct {
	conf *model.OrderConfirmation
	err  error
}

func (s *stubSubmitter) Submit(ctx context.Context, draft model.OrderDraft) (*model.OrderConfirmation, error) {
	if s.err != nil {
		return nil, s.err
	}
	conf := *s.conf
	conf.Seats = draft.Seats
	conf.Total = draft.TotalPrice
	return &conf, nil
}

func newHandler(loader booking.SessionLoader, sub booking.OrderSubmitter) *BookingHandler {
	return NewBookingHandler(
		booking.NewRegistry(),
		loader,
		func() booking.OrderSubmitter { return sub },
		2, 3,
		0, // all seats free for deterministic tests
	)
}

// call invokes an echo handler directly with an authenticated context.
func call(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(7))
	c.Set("role", "USER")
	c.Set("token", "tok")
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return out
}

func openBooking(t *testing.T, h *BookingHandler) string {
	t.Helper()
	rec := call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{"session_id": 12}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	id, _ := decode(t, rec)["booking_id"].(string)
	if id == "" {
		t.Fatal("create: missing booking_id")
	}
	return id
}

func sessionRecord() *model.SessionRecord {
	return &model.SessionRecord{ID: 12, MovieTitle: "Solaris", HallName: "Hall 1", Price: 3.50}
}

func TestCreateBookingSessionNotFound(t *testing.T) {
	h := newHandler(&stubLoader{err: catalog.ErrSessionNotFound}, &stubSubmitter{})
	rec := call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{"session_id": 99}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateBookingCatalogDown(t *testing.T) {
	h := newHandler(&stubLoader{err: errors.New("connection refused")}, &stubSubmitter{})
	rec := call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{"session_id": 12}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestCreateBookingRejectsLoggedOutToken(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	h.Sessions = auth.NewSessionContext(nil, time.Hour)

	// The token has no session context entry (never logged in, or
	// logged out), so the screen must not open.
	rec := call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{"session_id": 12}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	h.Sessions.Init(context.Background(), "tok", auth.Identity{UserID: 7})
	rec = call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{"session_id": 12}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after login, got %d", rec.Code)
	}
}

func TestCreateBookingMissingSessionID(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	rec := call(t, h.CreateBooking, http.MethodPost, "/v1/bookings", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestToggleAndViewFlow(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	id := openBooking(t, h)

	rec := call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R1S1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	view := decode(t, rec)["view"].(map[string]any)
	sel := view["selection"].([]any)
	if len(sel) != 1 || sel[0] != "R1S1" {
		t.Fatalf("unexpected selection: %v", sel)
	}
	if total := view["total"].(float64); total != 3.50 {
		t.Fatalf("expected total 3.50, got %v", total)
	}

	rec = call(t, h.GetBooking, http.MethodGet, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
}

func TestToggleSeatLimitReturnsConflict(t *testing.T) {
	// A 3x3 grid leaves free seats beyond the limit of six.
	h := NewBookingHandler(booking.NewRegistry(), &stubLoader{rec: sessionRecord()},
		func() booking.OrderSubmitter { return &stubSubmitter{} }, 3, 3, 0)
	id := openBooking(t, h)
	for _, seat := range []string{"R1S1", "R1S2", "R1S3", "R2S1", "R2S2", "R2S3"} {
		rec := call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": seat})
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %s: expected 200, got %d", seat, rec.Code)
		}
	}
	rec := call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R3S1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 at the limit, got %d", rec.Code)
	}
	out := decode(t, rec)
	if out["limit"].(float64) != 6 {
		t.Fatalf("expected limit 6 in the warning, got %v", out["limit"])
	}
	view := out["view"].(map[string]any)
	if sel := view["selection"].([]any); len(sel) != 6 {
		t.Fatalf("rejected toggle changed the selection: %v", sel)
	}
}

func TestRemoveSeat(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	id := openBooking(t, h)
	call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R1S1"})

	rec := call(t, h.RemoveSeat, http.MethodDelete, "/", "", map[string]string{"id": id, "seatId": "R1S1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	view := decode(t, rec)["view"].(map[string]any)
	if sel := view["selection"].([]any); len(sel) != 0 {
		t.Fatalf("expected empty selection, got %v", sel)
	}
}

func TestSubmitEmptySelection(t *testing.T) {
	sub := &stubSubmitter{err: &order.SubmissionError{Reason: order.ReasonEmptySelection, Message: "select at least one seat"}}
	h := newHandler(&stubLoader{rec: sessionRecord()}, sub)
	id := openBooking(t, h)

	rec := call(t, h.SubmitBooking, http.MethodPost, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitConfirmedInvokesHook(t *testing.T) {
	sub := &stubSubmitter{conf: &model.OrderConfirmation{OrderID: "101"}}
	h := newHandler(&stubLoader{rec: sessionRecord()}, sub)
	var hooked *ConfirmedOrder
	h.Confirmed = func(c echo.Context, v booking.View, conf ConfirmedOrder) {
		hooked = &conf
	}
	id := openBooking(t, h)
	call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R1S1"})

	rec := call(t, h.SubmitBooking, http.MethodPost, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["order_id"] != "101" {
		t.Fatalf("unexpected order id: %v", out["order_id"])
	}
	if _, degraded := out["degraded"]; degraded {
		t.Fatal("primary confirmation must not be flagged degraded")
	}
	if hooked == nil || hooked.OrderID != "101" || hooked.UserID != 7 {
		t.Fatalf("confirmed hook not invoked correctly: %+v", hooked)
	}
}

func TestSubmitDegradedCarriesWarningAndSkipsHook(t *testing.T) {
	sub := &stubSubmitter{conf: &model.OrderConfirmation{OrderID: "55", Degraded: true}}
	h := newHandler(&stubLoader{rec: sessionRecord()}, sub)
	hookCalled := false
	h.Confirmed = func(c echo.Context, v booking.View, conf ConfirmedOrder) { hookCalled = true }
	id := openBooking(t, h)
	call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R1S1"})

	rec := call(t, h.SubmitBooking, http.MethodPost, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	out := decode(t, rec)
	if out["degraded"] != true || out["warning"] == nil {
		t.Fatalf("degraded confirmation must carry a warning: %v", out)
	}
	if hookCalled {
		t.Fatal("degraded confirmations must not publish events")
	}
}

func TestSubmitBothEndpointsDown(t *testing.T) {
	sub := &stubSubmitter{err: &order.SubmissionError{Reason: order.ReasonUnreachable, Message: "unreachable"}}
	h := newHandler(&stubLoader{rec: sessionRecord()}, sub)
	id := openBooking(t, h)
	call(t, h.ToggleSeat, http.MethodPost, "/", "", map[string]string{"id": id, "seatId": "R1S1"})

	rec := call(t, h.SubmitBooking, http.MethodPost, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if out := decode(t, rec); out["retry"] != true {
		t.Fatalf("failure response must offer a retry: %v", out)
	}
	// The selection survives for a retry.
	view := decode(t, call(t, h.GetBooking, http.MethodGet, "/", "", map[string]string{"id": id}))["view"].(map[string]any)
	if sel := view["selection"].([]any); len(sel) != 1 {
		t.Fatalf("selection lost after failed submit: %v", sel)
	}
}

func TestCloseBooking(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	id := openBooking(t, h)

	rec := call(t, h.CloseBooking, http.MethodDelete, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = call(t, h.GetBooking, http.MethodGet, "/", "", map[string]string{"id": id})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", rec.Code)
	}
}

func TestUnknownBookingID(t *testing.T) {
	h := newHandler(&stubLoader{rec: sessionRecord()}, &stubSubmitter{})
	for name, fn := range map[string]echo.HandlerFunc{
		"get":    h.GetBooking,
		"toggle": h.ToggleSeat,
		"remove": h.RemoveSeat,
		"submit": h.SubmitBooking,
	} {
		t.Run(name, func(t *testing.T) {
			rec := call(t, fn, http.MethodPost, "/", "", map[string]string{"id": "nope", "seatId": "R1S1"})
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", rec.Code)
			}
		})
	}
}
