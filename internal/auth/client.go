package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned when the auth backend rejects the
// supplied email/password pair.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Client proxies authentication against the backend auth API.  The
// gateway never sees or stores passwords beyond relaying them; hashing
// and verification happen on the backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds an auth client for the given API base URL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// LoginResult is what the backend issues on a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login posts the credentials to {base}/auth/login and returns the
// issued token.  A 401 or 403 maps to ErrInvalidCredentials; any other
// failure is returned as a wrapped error.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auth: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("auth: login: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: read login response: %w", err)
	}
	var res LoginResult
	if err := json.Unmarshal(data, &res); err != nil || res.Token == "" {
		return nil, errors.New("auth: undecodable login response")
	}
	return &res, nil
}

// IdentityFromToken extracts the user identity from a signed token's
// claims without contacting the backend.  The sub claim may arrive as
// a number or a numeric string depending on the issuer.
func IdentityFromToken(secret, token string) (Identity, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, fmt.Errorf("auth: parse token: %w", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("auth: unexpected claims format")
	}
	id := Identity{}
	switch sub := claims["sub"].(type) {
	case float64:
		id.UserID = uint64(sub)
	case string:
		n, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Identity{}, errors.New("auth: non-numeric sub claim")
		}
		id.UserID = n
	default:
		return Identity{}, errors.New("auth: missing sub claim")
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}
