// Package catalog fetches session records from the backend catalog
// API.  Records are read-only inputs to the booking core: a load either
// yields a usable record, a definitive not-found, or a fetch error that
// is fatal to the booking screen.  Loaded records are cached in Redis
// for a short TTL when a client is available; without Redis every load
// goes straight to the backend.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbltya/cinema-booking/internal/model"
)

// ErrSessionNotFound is returned when the catalog definitively reports
// that no session exists for the requested identifier.
var ErrSessionNotFound = errors.New("catalog: session not found")

// Client retrieves session records over HTTP.  The cache field may be
// nil, in which case caching is silently disabled.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *redis.Client
	cacheTTL   time.Duration
}

// NewClient builds a catalog client for the given API base URL, e.g.
// "http://localhost:5000/api".  A nil httpClient falls back to a
// default with a request timeout; a nil cache disables caching.
func NewClient(httpClient *http.Client, baseURL string, cache *redis.Client, cacheTTL time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// sessionEnvelope tolerates the response shapes the catalog backend has
// been observed to produce: a wrapped { success, session } object, a
// { data } object, or the bare record itself.
type sessionEnvelope struct {
	Success bool                 `json:"success"`
	Session *model.SessionRecord `json:"session"`
	Data    *model.SessionRecord `json:"data"`
}

// LoadSession returns the session record for id.  It checks the cache
// first, then performs GET {base}/sessions/{id}.  A 404 maps to
// ErrSessionNotFound; any other failure is returned as a wrapped fetch
// error.  Cache read and write failures are logged and ignored so a
// broken Redis never blocks a booking screen from loading.
func (c *Client) LoadSession(ctx context.Context, id uint64) (*model.SessionRecord, error) {
	key := cacheKey(id)
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, key).Bytes(); err == nil {
			var rec model.SessionRecord
			if err := json.Unmarshal(raw, &rec); err == nil {
				return &rec, nil
			}
			log.Printf("catalog: discarding undecodable cache entry %s", key)
		}
	}

	rec, err := c.fetchSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if raw, err := json.Marshal(rec); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
				log.Printf("catalog: cache write failed for %s: %v", key, err)
			}
		}
	}
	return rec, nil
}

// fetchSession performs the actual HTTP round trip.
func (c *Client) fetchSession(ctx context.Context, id uint64) (*model.SessionRecord, error) {
	url := fmt.Sprintf("%s/sessions/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch session %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: fetch session %d: unexpected status %d", id, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("catalog: read session %d: %w", id, err)
	}

	var env sessionEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Session != nil && env.Session.ID != 0 {
			return env.Session, nil
		}
		if env.Data != nil && env.Data.ID != 0 {
			return env.Data, nil
		}
	}
	var rec model.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.ID == 0 {
		return nil, fmt.Errorf("catalog: session %d: undecodable response", id)
	}
	return &rec, nil
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("booking:session:%d", id)
}
