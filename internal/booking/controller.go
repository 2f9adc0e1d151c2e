// Package booking orchestrates one booking screen visit: loading the
// session record, generating the seat map, tracking the selection and
// submitting the final order.  A Controller is created per screen
// visit, owns its session and map exclusively, and is the only
// component that calls the other booking packages.
package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/mbltya/cinema-booking/internal/model"
	"github.com/mbltya/cinema-booking/internal/order"
	"github.com/mbltya/cinema-booking/internal/pricing"
	"github.com/mbltya/cinema-booking/internal/seatmap"
	"github.com/mbltya/cinema-booking/internal/selection"
)

// Status is the controller's position in the booking flow.  LoadError
// is terminal; Submitting always returns to Ready regardless of the
// submission outcome.
type Status string

const (
	StatusLoading    Status = "LOADING"
	StatusReady      Status = "READY"
	StatusSubmitting Status = "SUBMITTING"
	StatusLoadError  Status = "LOAD_ERROR"
)

// ErrNotReady is returned when a selection or submission operation is
// attempted before a successful load or after a load failure.
var ErrNotReady = errors.New("booking: session not loaded")

// ErrAlreadyLoaded is returned when Load is called twice; the map is
// generated exactly once per screen visit and never regenerated.
var ErrAlreadyLoaded = errors.New("booking: session already loaded")

// SessionLoader fetches a session record by id.  The catalog client
// implements it.
type SessionLoader interface {
	LoadSession(ctx context.Context, id uint64) (*model.SessionRecord, error)
}

// OrderSubmitter submits an order draft.  The order submitter
// implements it.
type OrderSubmitter interface {
	Submit(ctx context.Context, draft model.OrderDraft) (*model.OrderConfirmation, error)
}

// View is the aggregate state exposed to the presentation layer after
// every operation.
type View struct {
	Status    Status               `json:"status"`
	Session   *model.SessionRecord `json:"session,omitempty"`
	SeatMap   *model.SeatMap       `json:"seatMap,omitempty"`
	Selection []string             `json:"selection"`
	UnitPrice float64              `json:"unitPrice"`
	Total     float64              `json:"total"`
}

// Controller drives a single booking screen.  Occupancy is frozen at
// load time: seats taken by other users after the map is generated are
// not reflected until a new screen visit.
type Controller struct {
	loader     SessionLoader
	submitter  OrderSubmitter
	occupancy  seatmap.OccupancyFunc
	rows, cols int
	userID     uint64

	mu      sync.Mutex
	status  Status
	session *model.SessionRecord
	seatMap *model.SeatMap
	tracker *selection.Tracker
}

// NewController builds a controller for one screen visit on behalf of
// the given user.  rows and cols describe the hall grid to generate;
// occupancy supplies the initial seat state.
func NewController(loader SessionLoader, submitter OrderSubmitter, userID uint64, rows, cols int, occupancy seatmap.OccupancyFunc) *Controller {
	return &Controller{
		loader:    loader,
		submitter: submitter,
		occupancy: occupancy,
		rows:      rows,
		cols:      cols,
		userID:    userID,
		status:    StatusLoading,
	}
}

// Load fetches the session record and generates the seat map once.  On
// any load failure the controller enters the terminal LoadError state:
// no map exists and no selection is possible.
func (c *Controller) Load(ctx context.Context, sessionID uint64) error {
	c.mu.Lock()
	if c.status != StatusLoading {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.mu.Unlock()

	rec, err := c.loader.LoadSession(ctx, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusLoadError
		return err
	}
	m, err := seatmap.Generate(c.rows, c.cols, c.occupancy)
	if err != nil {
		c.status = StatusLoadError
		return err
	}
	c.session = rec
	c.seatMap = m
	c.tracker = selection.NewTracker(m)
	c.status = StatusReady
	return nil
}

// Toggle flips a seat in or out of the selection.
func (c *Controller) Toggle(seatID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracker == nil {
		return ErrNotReady
	}
	return c.tracker.Toggle(seatID)
}

// Remove drops a seat from the selection, for removal from the order
// summary rather than the map.
func (c *Controller) Remove(seatID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tracker == nil {
		return ErrNotReady
	}
	return c.tracker.Remove(seatID)
}

// Total recomputes the running total from the current selection.
func (c *Controller) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Controller) totalLocked() float64 {
	if c.tracker == nil || c.session == nil {
		return 0
	}
	return pricing.Total(c.tracker.Count(), pricing.UnitPriceOrDefault(c.session.Price))
}

// Submit builds a fresh order draft from the current selection and
// hands it to the submitter.  On success the selection is cleared; on
// any failure it is left intact so the user can retry without
// re-selecting seats.  A Submit call while another is outstanding is
// rejected immediately instead of racing two requests.
func (c *Controller) Submit(ctx context.Context) (*model.OrderConfirmation, error) {
	c.mu.Lock()
	if c.tracker == nil {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return nil, &order.SubmissionError{
			Reason:  order.ReasonAlreadyInProgress,
			Message: "an order submission is already in progress",
		}
	}
	draft := model.OrderDraft{
		UserID:     c.userID,
		SessionID:  c.session.ID,
		Seats:      c.tracker.Seats(),
		TotalPrice: c.totalLocked(),
	}
	c.status = StatusSubmitting
	c.mu.Unlock()

	conf, err := c.submitter.Submit(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusReady
	if err != nil {
		return nil, err
	}
	c.tracker.Clear()
	return conf, nil
}

// View snapshots the aggregate screen state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Status:    c.status,
		Session:   c.session,
		SeatMap:   c.seatMap,
		Selection: []string{},
	}
	if c.session != nil {
		v.UnitPrice = pricing.UnitPriceOrDefault(c.session.Price)
	}
	if c.tracker != nil {
		v.Selection = c.tracker.Seats()
		v.Total = c.totalLocked()
	}
	return v
}
