package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mbltya/cinema-booking/internal/handler"    // import the handlers that implement the booking workflow
	"github.com/mbltya/cinema-booking/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint is used by load balancers and monitoring
	// systems to verify that the gateway is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the login and logout endpoints.  Login is
// unauthenticated; logout only needs the bearer token it is clearing,
// so neither route sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
}

// RegisterBooking registers the booking screen workflow under /v1 behind
// JWT authentication.  Every route operates on one booking screen owned
// by the authenticated user: open, view, toggle a seat, remove a seat,
// submit the order, close the screen.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("/bookings", b.CreateBooking)
	g.GET("/bookings/:id", b.GetBooking)
	g.POST("/bookings/:id/seats/:seatId/toggle", b.ToggleSeat)
	g.DELETE("/bookings/:id/seats/:seatId", b.RemoveSeat)
	g.POST("/bookings/:id/submit", b.SubmitBooking)
	g.DELETE("/bookings/:id", b.CloseBooking)
}
