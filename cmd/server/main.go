package main // Entry point package

import (
	"log"      // Logging library
	"net/http" // Shared HTTP client for backend calls
	"time"     // Timestamps for the event hook

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mbltya/cinema-booking/internal/auth"
	"github.com/mbltya/cinema-booking/internal/booking"
	"github.com/mbltya/cinema-booking/internal/catalog"
	"github.com/mbltya/cinema-booking/internal/config"
	"github.com/mbltya/cinema-booking/internal/handler"
	"github.com/mbltya/cinema-booking/internal/order"
	"github.com/mbltya/cinema-booking/internal/queue"
	"github.com/mbltya/cinema-booking/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly
	cfg := config.Load()

	// Redis is optional: a nil client disables session caching and keeps
	// auth identities in process memory.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; caching and shared auth context disabled")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	catalogClient := catalog.NewClient(httpClient, cfg.CatalogAPIURL, rdb, cfg.SessionCacheTTL)
	sessions := auth.NewSessionContext(rdb, cfg.AuthSessionTTL)
	authClient := auth.NewClient(httpClient, cfg.AuthAPIURL)

	bookingHandler := handler.NewBookingHandler(
		booking.NewRegistry(),
		catalogClient,
		func() booking.OrderSubmitter {
			return order.NewSubmitter(httpClient, cfg.OrderAPIURL, cfg.OrderFallbackAPIURL)
		},
		cfg.HallRows,
		cfg.HallCols,
		cfg.OccupancyRate,
	)
	bookingHandler.Sessions = sessions
	// Publish confirmed orders to the broker; failures are logged inside
	// the publisher and never fail the request.
	bookingHandler.Confirmed = func(c echo.Context, v booking.View, conf handler.ConfirmedOrder) {
		ev := queue.OrderConfirmedEvent{
			OrderID:     conf.OrderID,
			UserID:      conf.UserID,
			Seats:       conf.Seats,
			Total:       conf.Total,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if v.Session != nil {
			ev.SessionID = v.Session.ID
			ev.MovieTitle = v.Session.MovieTitle
			ev.HallName = v.Session.HallName
			ev.CinemaName = v.Session.CinemaName
			ev.StartsAt = v.Session.StartTime.UTC().Format(time.RFC3339)
		}
		_ = queue.PublishOrderConfirmed(c.Request().Context(), ev)
	}

	authHandler := handler.NewAuthHandler(authClient, sessions, cfg.JWTSecret)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret)

	// Consume confirmed-order events in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
