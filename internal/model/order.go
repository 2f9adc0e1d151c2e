package model

// OrderDraft is the payload assembled from a selection at submission
// time.  It is derived, never stored: a draft lives for exactly one
// submission attempt and is rebuilt from current state on retry.
//
// Fields:
//  UserID     – identifier of the authenticated user placing the order.
//  SessionID  – catalog identifier of the session being booked.
//  Seats      – seat identifiers in the order they were selected.
//  TotalPrice – |Seats| × unit price, recomputed at draft time.
type OrderDraft struct {
	UserID     uint64   `json:"userId"`
	SessionID  uint64   `json:"sessionId"`
	Seats      []string `json:"seats"`
	TotalPrice float64  `json:"totalPrice"`
}

// OrderConfirmation is the outcome of a successful submission.  When
// Degraded is true the order was accepted by the best-effort fallback
// endpoint and durable persistence is not guaranteed; callers must
// surface that distinction to the user.
type OrderConfirmation struct {
	OrderID  string   `json:"orderId"`
	Seats    []string `json:"seats"`
	Total    float64  `json:"total"`
	Degraded bool     `json:"degraded"`
}
