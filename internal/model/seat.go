package model

import "fmt"

// Seat is one position in a hall's seating grid for a single session.
// Occupancy is fixed at map generation time; only the Selected flag
// changes afterwards, and only the selection tracker changes it.
//
// Fields:
//  ID       – deterministic identifier derived from row and column,
//             e.g. "R3S7" for row 3, seat 7.
//  Row      – 1-based row number.
//  Col      – 1-based seat number within the row.
//  Occupied – true when the seat was already taken at load time.
//  Selected – true while the seat is part of the current selection.
type Seat struct {
	ID       string `json:"id"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Occupied bool   `json:"occupied"`
	Selected bool   `json:"selected"`
}

// SeatID derives the canonical identifier for a row/column pair.  Every
// component that needs to name a seat goes through this function so the
// map, the selection and order payloads always agree.
func SeatID(row, col int) string {
	return fmt.Sprintf("R%dS%d", row, col)
}

// SeatMap is the full seating grid for one session.  Rows are ordered
// ascending and seats within a row are ordered ascending.  The shape
// (row and column counts) never changes after generation; only the
// Selected flag of individual seats is updated.
type SeatMap struct {
	Rows        int      `json:"rows"`
	SeatsPerRow int      `json:"seatsPerRow"`
	Seats       [][]Seat `json:"seats"`
}

// Seat returns a pointer to the seat with the given identifier, or nil
// when no such seat exists in the map.
func (m *SeatMap) Seat(id string) *Seat {
	for r := range m.Seats {
		for c := range m.Seats[r] {
			if m.Seats[r][c].ID == id {
				return &m.Seats[r][c]
			}
		}
	}
	return nil
}
