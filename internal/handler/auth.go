package handler

// This file defines the authentication endpoints of the gateway.  The
// gateway does not manage accounts itself: login is proxied to the
// backend auth API, and the issued token plus the user identity parsed
// from it are recorded in the process-wide session context.  Logout
// clears that context entry.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mbltya/cinema-booking/internal/auth"
)

// AuthHandler groups the auth client, the session context it feeds and
// the JWT secret used to read claims out of issued tokens.
type AuthHandler struct {
	Client    *auth.Client
	Sessions  *auth.SessionContext
	JWTSecret string
}

// NewAuthHandler constructs an AuthHandler.  All dependencies must be
// non-nil.
func NewAuthHandler(client *auth.Client, sessions *auth.SessionContext, jwtSecret string) *AuthHandler {
	if client == nil || sessions == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Client: client, Sessions: sessions, JWTSecret: jwtSecret}
}

// Login handles POST /v1/auth/login.  Credentials are relayed to the
// backend; on success the session context is initialised for the
// issued token and the token is returned to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	res, err := h.Client.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "login service unavailable"})
	}

	id, err := auth.IdentityFromToken(h.JWTSecret, res.Token)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "received an unreadable token"})
	}
	id.Email = res.Email
	if id.Role == "" {
		id.Role = res.Role
	}
	h.Sessions.Init(c.Request().Context(), res.Token, id)

	return c.JSON(http.StatusOK, echo.Map{
		"token": res.Token,
		"email": res.Email,
		"role":  id.Role,
	})
}

// Logout handles POST /v1/auth/logout.  It clears the session context
// entry for the presented bearer token.  Logging out an unknown token
// still returns 204; there is nothing useful to report.
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing bearer token"})
	}
	token := strings.TrimPrefix(header, "Bearer ")
	h.Sessions.Clear(c.Request().Context(), token)
	return c.NoContent(http.StatusNoContent)
}
