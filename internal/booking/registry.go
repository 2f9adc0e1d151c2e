package booking

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrBookingNotFound is returned when no active booking exists for an
// identifier, either because it never existed or was already closed.
var ErrBookingNotFound = errors.New("booking: not found")

// Registry tracks the active booking screens of this gateway instance.
// Each entry is one Controller owned by one screen visit; entries are
// removed when the screen is closed or the order confirmed.  Booking
// state is deliberately not persisted: a full reload starts over with
// an empty selection.
type Registry struct {
	mu       sync.RWMutex
	bookings map[string]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bookings: make(map[string]*Controller)}
}

// Add stores a controller under a fresh random identifier and returns
// that identifier.
func (r *Registry) Add(c *Controller) (string, error) {
	id, err := randomHex(16)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.bookings[id] = c
	r.mu.Unlock()
	return id, nil
}

// Get returns the controller for an identifier.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	c, ok := r.bookings[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrBookingNotFound
	}
	return c, nil
}

// Remove drops a booking from the registry.  Removing an unknown id is
// not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.bookings, id)
	r.mu.Unlock()
}

// randomHex returns n random bytes encoded as a hex string.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
