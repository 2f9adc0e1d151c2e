package model

import "time"

// SessionRecord describes a scheduled screening as delivered by the
// catalog backend.  The record is read-only to the booking core: it is
// fetched once when a booking screen opens and never mutated locally.
//
// Fields:
//  ID         – catalog identifier of the session.
//  MovieID    – identifier of the movie being screened.
//  MovieTitle – display title of the movie.
//  HallID     – identifier of the hall hosting the session.
//  HallName   – display name of the hall.
//  CinemaName – display name of the cinema (may be empty).
//  StartTime  – when the session begins.
//  EndTime    – when the session ends.
//  Price      – per-seat price in currency units; zero or negative
//               values are replaced by a default at pricing time.
//  Format     – screening format label (2D, 3D, IMAX...), optional.
type SessionRecord struct {
	ID         uint64    `json:"id"`
	MovieID    uint64    `json:"movieId"`
	MovieTitle string    `json:"movieTitle"`
	HallID     uint64    `json:"hallId"`
	HallName   string    `json:"hallName"`
	CinemaName string    `json:"cinemaName,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Price      float64   `json:"price"`
	Format     string    `json:"format,omitempty"`
}
