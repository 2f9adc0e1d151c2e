// Package seatmap builds the seating grid presented on a booking
// screen.  Generation happens exactly once per loaded session; the
// occupancy of every seat is decided at that moment by an injected
// OccupancyFunc and is never revisited afterwards, so the map is a
// point-in-time snapshot rather than a live view of the hall.
package seatmap

import (
	"errors"
	"math/rand"

	"github.com/mbltya/cinema-booking/internal/model"
)

// DefaultOccupancyRate is the probability used by the pseudo-random
// occupancy source when no real inventory feed is wired in.
const DefaultOccupancyRate = 0.3

// ErrInvalidDimensions is returned when the requested grid has a
// non-positive row or column count.
var ErrInvalidDimensions = errors.New("seatmap: rows and seats per row must be positive")

// OccupancyFunc reports whether the seat at the given 1-based row and
// column is already taken.  Injecting the source keeps the generator's
// contract stable when the random stand-in is replaced by a real
// inventory query.
type OccupancyFunc func(row, col int) bool

// RandomOccupancy returns an OccupancyFunc that marks each seat
// occupied with probability rate, drawing from the provided source.
// The source makes the function deterministic under a fixed seed,
// which the tests rely on.
func RandomOccupancy(rate float64, src rand.Source) OccupancyFunc {
	rng := rand.New(src)
	return func(row, col int) bool {
		return rng.Float64() < rate
	}
}

// Generate builds a seat map of rows × seatsPerRow seats in row-major
// order.  Every seat starts unselected with its occupancy taken from
// occupancy; a nil occupancy leaves all seats free.  The returned map
// is a fresh structure and shares no state with previous generations.
func Generate(rows, seatsPerRow int, occupancy OccupancyFunc) (*model.SeatMap, error) {
	if rows <= 0 || seatsPerRow <= 0 {
		return nil, ErrInvalidDimensions
	}
	grid := make([][]model.Seat, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]model.Seat, seatsPerRow)
		for c := 0; c < seatsPerRow; c++ {
			row, col := r+1, c+1
			occupied := false
			if occupancy != nil {
				occupied = occupancy(row, col)
			}
			grid[r][c] = model.Seat{
				ID:       model.SeatID(row, col),
				Row:      row,
				Col:      col,
				Occupied: occupied,
			}
		}
	}
	return &model.SeatMap{
		Rows:        rows,
		SeatsPerRow: seatsPerRow,
		Seats:       grid,
	}, nil
}
