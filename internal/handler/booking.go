// Package handler exposes the booking workflow over HTTP.  This file
// defines the handlers for the booking screen lifecycle: opening a
// screen, reading its aggregate view, toggling and removing seats, and
// submitting the selection as an order.  Handlers translate the error
// taxonomy of the core packages into HTTP statuses; transport-level
// details never leak into response bodies.
package handler

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mbltya/cinema-booking/internal/auth"
	"github.com/mbltya/cinema-booking/internal/booking"
	"github.com/mbltya/cinema-booking/internal/catalog"
	"github.com/mbltya/cinema-booking/internal/order"
	"github.com/mbltya/cinema-booking/internal/seatmap"
	"github.com/mbltya/cinema-booking/internal/selection"
)

// BookingHandler wires the booking screen endpoints to the core
// packages.  One registry entry exists per open screen; each screen
// gets its own controller and its own submitter so the single-flight
// submission guard is scoped to that screen.
type BookingHandler struct {
	Registry     *booking.Registry
	Loader       booking.SessionLoader
	NewSubmitter func() booking.OrderSubmitter
	Rows         int
	Cols         int
	Occupancy    float64
	// Sessions, when set, is consulted at screen load so a token that
	// was cleared by logout no longer opens booking screens.
	Sessions *auth.SessionContext
	// Confirmed is invoked after a non-degraded confirmation, used to
	// publish the order event.  May be nil.
	Confirmed func(c echo.Context, v booking.View, conf ConfirmedOrder)
}

// ConfirmedOrder carries the confirmation details handed to the
// Confirmed hook.
type ConfirmedOrder struct {
	OrderID string
	UserID  uint64
	Seats   []string
	Total   float64
}

// NewBookingHandler constructs a BookingHandler.  Registry, Loader and
// NewSubmitter must be non-nil.
func NewBookingHandler(reg *booking.Registry, loader booking.SessionLoader, newSubmitter func() booking.OrderSubmitter, rows, cols int, occupancy float64) *BookingHandler {
	if reg == nil || loader == nil || newSubmitter == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		Registry:     reg,
		Loader:       loader,
		NewSubmitter: newSubmitter,
		Rows:         rows,
		Cols:         cols,
		Occupancy:    occupancy,
	}
}

// getUserID extracts the authenticated user's ID from the context where
// the JWT middleware stored it.  The sub claim may arrive as a float64
// (JSON number) or a numeric string depending on the issuer.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		return 0, errors.New("missing user id")
	}
}

// CreateBooking handles POST /v1/bookings.  It opens a booking screen
// for the session named in the body: the session record is fetched,
// the seat map generated once, and the screen registered under a fresh
// booking id.  A session the catalog does not know yields 404; a
// catalog fetch failure yields 502 and no screen is created.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Sessions != nil {
		token, _ := c.Get("token").(string)
		if _, err := h.Sessions.Get(c.Request().Context(), token); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
		}
	}
	var body struct {
		SessionID uint64 `json:"session_id"`
	}
	if err := c.Bind(&body); err != nil || body.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}

	occupancy := seatmap.RandomOccupancy(h.Occupancy, rand.NewSource(time.Now().UnixNano()))
	ctrl := booking.NewController(h.Loader, h.NewSubmitter(), userID, h.Rows, h.Cols, occupancy)
	if err := ctrl.Load(c.Request().Context(), body.SessionID); err != nil {
		if errors.Is(err, catalog.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load session"})
	}
	id, err := h.Registry.Add(ctrl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register booking"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": id,
		"view":       ctrl.View(),
	})
}

// GetBooking handles GET /v1/bookings/:id and returns the aggregate
// screen view: session info, seat map, selection, running total and
// status.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	ctrl, err := h.Registry.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"view": ctrl.View()})
}

// ToggleSeat handles POST /v1/bookings/:id/seats/:seatId/toggle.  A
// toggle that would exceed the seat limit returns 409 with a warning
// and leaves the selection unchanged; toggling an occupied seat is a
// silent no-op and still returns the (unchanged) view.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	ctrl, err := h.Registry.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	switch err := ctrl.Toggle(c.Param("seatId")); {
	case errors.Is(err, selection.ErrSelectionLimit):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seat limit reached",
			"limit": selection.MaxSeats,
			"view":  ctrl.View(),
		})
	case errors.Is(err, selection.ErrUnknownSeat):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown seat"})
	case errors.Is(err, booking.ErrNotReady):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not ready"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"view": ctrl.View()})
}

// RemoveSeat handles DELETE /v1/bookings/:id/seats/:seatId, dropping a
// seat from the order summary.  The seat's map flag is cleared even if
// it was not selected.
func (h *BookingHandler) RemoveSeat(c echo.Context) error {
	ctrl, err := h.Registry.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	switch err := ctrl.Remove(c.Param("seatId")); {
	case errors.Is(err, selection.ErrUnknownSeat):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown seat"})
	case errors.Is(err, booking.ErrNotReady):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not ready"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"view": ctrl.View()})
}

// SubmitBooking handles POST /v1/bookings/:id/submit.  Local
// validation failures return 4xx without touching the network; a
// degraded confirmation is flagged so the client can warn the user
// that the order is not guaranteed to persist; a full failure returns
// 502 with the selection intact so the user may simply retry.
func (h *BookingHandler) SubmitBooking(c echo.Context) error {
	ctrl, err := h.Registry.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	conf, err := ctrl.Submit(c.Request().Context())
	if err != nil {
		if errors.Is(err, booking.ErrNotReady) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not ready"})
		}
		var subErr *order.SubmissionError
		if errors.As(err, &subErr) {
			switch subErr.Reason {
			case order.ReasonEmptySelection:
				return c.JSON(http.StatusBadRequest, echo.Map{"error": subErr.Message})
			case order.ReasonAlreadyInProgress:
				return c.JSON(http.StatusConflict, echo.Map{"error": subErr.Message})
			default:
				return c.JSON(http.StatusBadGateway, echo.Map{
					"error": subErr.Message,
					"retry": true,
				})
			}
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submission failed"})
	}

	if !conf.Degraded && h.Confirmed != nil {
		userID, _ := getUserID(c)
		h.Confirmed(c, ctrl.View(), ConfirmedOrder{
			OrderID: conf.OrderID,
			UserID:  userID,
			Seats:   conf.Seats,
			Total:   conf.Total,
		})
	}

	resp := echo.Map{
		"order_id": conf.OrderID,
		"seats":    conf.Seats,
		"total":    conf.Total,
	}
	if conf.Degraded {
		resp["degraded"] = true
		resp["warning"] = "the order was accepted by a fallback service and may not be durably stored"
	}
	return c.JSON(http.StatusCreated, resp)
}

// CloseBooking handles DELETE /v1/bookings/:id.  Closing a screen
// discards its selection entirely; nothing is persisted across visits.
func (h *BookingHandler) CloseBooking(c echo.Context) error {
	h.Registry.Remove(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
