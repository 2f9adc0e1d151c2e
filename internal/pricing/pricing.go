// Package pricing derives order totals from the selection size and the
// session's per-seat price.  Totals are pure functions of their inputs
// and are recomputed on every selection change and again immediately
// before submission, never cached.
package pricing

// DefaultUnitPrice is charged per seat when the session record carries
// no usable price.
const DefaultUnitPrice = 3.50

// UnitPriceOrDefault returns the session price when it is positive and
// DefaultUnitPrice otherwise.
func UnitPriceOrDefault(sessionPrice float64) float64 {
	if sessionPrice > 0 {
		return sessionPrice
	}
	return DefaultUnitPrice
}

// Total computes seatCount × unitPrice.  A non-positive seat count
// yields zero.
func Total(seatCount int, unitPrice float64) float64 {
	if seatCount <= 0 {
		return 0
	}
	return float64(seatCount) * unitPrice
}
