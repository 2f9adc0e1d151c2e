// Package selection maintains the bounded, ordered set of seats the
// user has chosen on one booking screen.  The ordered set is the single
// source of truth; the Selected flags on the seat map are a projection
// recomputed from it after every mutation, so the two views cannot
// drift apart.
package selection

import (
	"errors"

	"github.com/mbltya/cinema-booking/internal/model"
)

// MaxSeats is the largest number of seats one order may contain.
const MaxSeats = 6

// ErrSelectionLimit is returned by Toggle when adding a seat would
// exceed MaxSeats.  The selection is left unchanged; callers surface a
// notice and take no further action.
var ErrSelectionLimit = errors.New("selection: seat limit reached")

// ErrUnknownSeat is returned when the requested seat identifier does
// not exist in the tracked map.
var ErrUnknownSeat = errors.New("selection: unknown seat")

// Tracker owns the selection for a single seat map.  All methods run to
// completion on the caller's goroutine; a tracker belongs to exactly
// one booking session controller and is never shared, so it carries no
// locking of its own.
type Tracker struct {
	seatMap *model.SeatMap
	ordered []string
}

// NewTracker creates an empty selection over the given map.  The
// selection always starts empty on a fresh screen; nothing is carried
// over from a previous visit.
func NewTracker(m *model.SeatMap) *Tracker {
	return &Tracker{seatMap: m}
}

// Seats returns the selected seat identifiers in the order the user
// picked them.  The returned slice is a copy.
func (t *Tracker) Seats() []string {
	out := make([]string, len(t.ordered))
	copy(out, t.ordered)
	return out
}

// Count returns the current selection size.
func (t *Tracker) Count() int {
	return len(t.ordered)
}

// Contains reports whether the seat is currently selected.
func (t *Tracker) Contains(seatID string) bool {
	for _, id := range t.ordered {
		if id == seatID {
			return true
		}
	}
	return false
}

// Toggle flips the membership of a seat.  Toggling an occupied seat is
// a deliberate no-op: clicking a blocked seat simply has no effect.
// Deselection always succeeds; selection appends to the end of the
// order and fails with ErrSelectionLimit once MaxSeats is reached.
func (t *Tracker) Toggle(seatID string) error {
	seat := t.seatMap.Seat(seatID)
	if seat == nil {
		return ErrUnknownSeat
	}
	if seat.Occupied {
		return nil
	}
	if t.Contains(seatID) {
		t.drop(seatID)
		t.project()
		return nil
	}
	if len(t.ordered) >= MaxSeats {
		return ErrSelectionLimit
	}
	t.ordered = append(t.ordered, seatID)
	t.project()
	return nil
}

// Remove takes a seat out of the selection regardless of how it got
// there, used when the user drops a seat from the order summary rather
// than the map.  Removing a seat that is not selected still succeeds
// and still leaves the map flag cleared.
func (t *Tracker) Remove(seatID string) error {
	if t.seatMap.Seat(seatID) == nil {
		return ErrUnknownSeat
	}
	t.drop(seatID)
	t.project()
	return nil
}

// Clear empties the selection, used after a successful submission.
func (t *Tracker) Clear() {
	t.ordered = t.ordered[:0]
	t.project()
}

// drop removes seatID from the ordered set, preserving the relative
// order of the remaining seats.
func (t *Tracker) drop(seatID string) {
	for i, id := range t.ordered {
		if id == seatID {
			t.ordered = append(t.ordered[:i], t.ordered[i+1:]...)
			return
		}
	}
}

// project rewrites every Selected flag in the map from the ordered set.
// Rebuilding the flags wholesale keeps the map an exact function of the
// selection instead of a second hand-maintained copy.
func (t *Tracker) project() {
	selected := make(map[string]struct{}, len(t.ordered))
	for _, id := range t.ordered {
		selected[id] = struct{}{}
	}
	for r := range t.seatMap.Seats {
		for c := range t.seatMap.Seats[r] {
			_, ok := selected[t.seatMap.Seats[r][c].ID]
			t.seatMap.Seats[r][c].Selected = ok
		}
	}
}
