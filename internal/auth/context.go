// Package auth holds the process-wide session context: the token and
// user identity established at login and consulted by the booking
// flow.  The context has an explicit lifecycle, Init on login and Clear
// on logout, and is injected into the components that need it instead
// of being read ad hoc from global state.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoIdentity is returned when no identity is stored for a token,
// either because it was never initialised or because it was cleared.
var ErrNoIdentity = errors.New("auth: no identity for token")

// Identity is the authenticated user attached to one issued token.
//
// Fields:
//  UserID – backend identifier of the user.
//  Email  – login email, used for display only.
//  Role   – role claim carried by the token (USER, ADMIN).
type Identity struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// SessionContext stores identities keyed by their bearer token.  When a
// Redis client is provided the store is shared and entries expire with
// the given TTL; without Redis an in-process map is used, which is
// sufficient for a single gateway instance.
type SessionContext struct {
	cache *redis.Client
	ttl   time.Duration

	mu    sync.RWMutex
	local map[string]Identity
}

// NewSessionContext builds a session context.  cache may be nil; a
// non-positive ttl defaults to 24 hours.
func NewSessionContext(cache *redis.Client, ttl time.Duration) *SessionContext {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionContext{
		cache: cache,
		ttl:   ttl,
		local: make(map[string]Identity),
	}
}

// Init records the identity established by a successful login.  Redis
// write failures degrade to the in-process map so a login never fails
// because the shared store is down.
func (s *SessionContext) Init(ctx context.Context, token string, id Identity) {
	if s.cache != nil {
		if raw, err := json.Marshal(id); err == nil {
			if err := s.cache.Set(ctx, sessionKey(token), raw, s.ttl).Err(); err == nil {
				return
			}
			log.Printf("auth: session store write failed, keeping identity in memory: token user %d", id.UserID)
		}
	}
	s.mu.Lock()
	s.local[token] = id
	s.mu.Unlock()
}

// Get returns the identity for a token, or ErrNoIdentity when the
// token is unknown.
func (s *SessionContext) Get(ctx context.Context, token string) (Identity, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, sessionKey(token)).Bytes()
		if err == nil {
			var id Identity
			if err := json.Unmarshal(raw, &id); err == nil {
				return id, nil
			}
		}
	}
	s.mu.RLock()
	id, ok := s.local[token]
	s.mu.RUnlock()
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// Clear removes the identity for a token on logout.  Clearing an
// unknown token is not an error.
func (s *SessionContext) Clear(ctx context.Context, token string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, sessionKey(token)).Err()
	}
	s.mu.Lock()
	delete(s.local, token)
	s.mu.Unlock()
}

func sessionKey(token string) string {
	return fmt.Sprintf("booking:authctx:%s", token)
}
