package selection

import (
	"fmt"
	"testing"

	"github.com/mbltya/cinema-booking/internal/model"
	"github.com/mbltya/cinema-booking/internal/seatmap"
)

// freeMap builds a map with every seat free except those listed.
func freeMap(t *testing.T, rows, cols int, occupied ...string) *model.SeatMap {
	t.Helper()
	taken := make(map[string]struct{}, len(occupied))
	for _, id := range occupied {
		taken[id] = struct{}{}
	}
	m, err := seatmap.Generate(rows, cols, func(row, col int) bool {
		_, ok := taken[model.SeatID(row, col)]
		return ok
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return m
}

func TestToggleSelectsAndDeselects(t *testing.T) {
	m := freeMap(t, 2, 2)
	tr := NewTracker(m)

	if err := tr.Toggle("R1S1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := tr.Seats(); len(got) != 1 || got[0] != "R1S1" {
		t.Fatalf("unexpected selection: %v", got)
	}
	if !m.Seat("R1S1").Selected {
		t.Fatal("map flag not set after select")
	}

	// Second toggle of the same seat restores the original state.
	if err := tr.Toggle("R1S1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if tr.Count() != 0 {
		t.Fatalf("expected empty selection, got %v", tr.Seats())
	}
	if m.Seat("R1S1").Selected {
		t.Fatal("map flag not cleared after deselect")
	}
}

func TestToggleOccupiedSeatIsNoOp(t *testing.T) {
	m := freeMap(t, 1, 2, "R1S2")
	tr := NewTracker(m)

	if err := tr.Toggle("R1S1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := tr.Toggle("R1S2"); err != nil {
		t.Fatalf("toggling occupied seat must not error, got %v", err)
	}
	if got := tr.Seats(); len(got) != 1 || got[0] != "R1S1" {
		t.Fatalf("occupied toggle changed selection: %v", got)
	}
	if m.Seat("R1S2").Selected {
		t.Fatal("occupied seat must never be selected")
	}
}

func TestToggleUnknownSeat(t *testing.T) {
	tr := NewTracker(freeMap(t, 1, 1))
	if err := tr.Toggle("R9S9"); err != ErrUnknownSeat {
		t.Fatalf("expected ErrUnknownSeat, got %v", err)
	}
}

func TestSelectionLimit(t *testing.T) {
	m := freeMap(t, 2, 4)
	tr := NewTracker(m)

	for i := 0; i < MaxSeats; i++ {
		id := model.SeatID(1+i/4, 1+i%4)
		if err := tr.Toggle(id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	if err := tr.Toggle("R2S3"); err != ErrSelectionLimit {
		t.Fatalf("expected ErrSelectionLimit, got %v", err)
	}
	if tr.Count() != MaxSeats {
		t.Fatalf("rejected toggle changed selection size: %d", tr.Count())
	}
	if m.Seat("R2S3").Selected {
		t.Fatal("rejected seat must stay unselected in the map")
	}

	// Deselecting at the limit always succeeds.
	if err := tr.Toggle("R1S1"); err != nil {
		t.Fatalf("deselect at limit: %v", err)
	}
	if tr.Count() != MaxSeats-1 {
		t.Fatalf("expected %d seats, got %d", MaxSeats-1, tr.Count())
	}
}

func TestSelectionBoundHoldsForArbitraryToggleSequences(t *testing.T) {
	m := freeMap(t, 4, 4, "R2S2", "R3S1")
	tr := NewTracker(m)

	// Walk the whole grid three times; the bound must hold throughout.
	for pass := 0; pass < 3; pass++ {
		for r := 1; r <= 4; r++ {
			for c := 1; c <= 4; c++ {
				err := tr.Toggle(model.SeatID(r, c))
				if err != nil && err != ErrSelectionLimit {
					t.Fatalf("toggle: %v", err)
				}
				if tr.Count() > MaxSeats {
					t.Fatalf("selection grew past limit: %d", tr.Count())
				}
			}
		}
	}
}

func TestRemovePreservesRelativeOrder(t *testing.T) {
	m := freeMap(t, 1, 5)
	tr := NewTracker(m)
	for c := 1; c <= 4; c++ {
		if err := tr.Toggle(model.SeatID(1, c)); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if err := tr.Remove("R1S2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	want := []string{"R1S1", "R1S3", "R1S4"}
	got := tr.Seats()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if m.Seat("R1S2").Selected {
		t.Fatal("removed seat still selected in the map")
	}
}

func TestRemoveAlwaysClearsMapFlag(t *testing.T) {
	m := freeMap(t, 1, 2)
	tr := NewTracker(m)

	// Removing a never-selected seat succeeds and the flag stays false.
	if err := tr.Remove("R1S1"); err != nil {
		t.Fatalf("remove unselected: %v", err)
	}
	if m.Seat("R1S1").Selected {
		t.Fatal("flag set after removing unselected seat")
	}

	if err := tr.Remove("R9S9"); err != ErrUnknownSeat {
		t.Fatalf("expected ErrUnknownSeat, got %v", err)
	}
}

func TestClearEmptiesSelectionAndMap(t *testing.T) {
	m := freeMap(t, 2, 2)
	tr := NewTracker(m)
	for _, id := range []string{"R1S1", "R2S2"} {
		if err := tr.Toggle(id); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	tr.Clear()
	if tr.Count() != 0 {
		t.Fatalf("selection not empty after clear: %v", tr.Seats())
	}
	for _, row := range m.Seats {
		for _, seat := range row {
			if seat.Selected {
				t.Fatalf("seat %s still selected after clear", seat.ID)
			}
		}
	}
}
