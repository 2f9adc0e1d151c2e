// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published when the primary endpoint confirms an
// order.  Degraded confirmations are deliberately not published: the
// fallback path carries no durability guarantee, so downstream consumers
// would be logging orders that may not exist.  The event contains enough
// information for consumers to log, notify, or trigger analytics without
// calling back into the booking gateway.
type OrderConfirmedEvent struct {
    OrderID     string   `json:"order_id"`
    UserID      uint64   `json:"user_id"`
    SessionID   uint64   `json:"session_id"`
    MovieTitle  string   `json:"movie_title"`
    HallName    string   `json:"hall_name"`
    CinemaName  string   `json:"cinema_name"`
    StartsAt    string   `json:"starts_at"`
    Seats       []string `json:"seats"`
    Total       float64  `json:"total"`
    ConfirmedAt string   `json:"confirmed_at"`
}
