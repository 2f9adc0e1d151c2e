package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Backend endpoints are required because the
// gateway is useless without them; tuning knobs for the hall grid, cache
// lifetimes and occupancy fall back to sensible defaults.
type Config struct {
    Env                 string        // application environment (e.g. "dev", "prod")
    Port                string        // HTTP port to listen on
    CatalogAPIURL       string        // base URL of the session catalog backend
    OrderAPIURL         string        // primary order submission endpoint
    OrderFallbackAPIURL string        // best-effort fallback order endpoint
    AuthAPIURL          string        // base URL of the auth backend
    JWTSecret           string        // secret used to verify access tokens
    HallRows            int           // rows in the generated seat grid
    HallCols            int           // seats per row in the generated seat grid
    OccupancyRate       float64       // probability a generated seat starts occupied
    SessionCacheTTL     time.Duration // lifetime of cached catalog session records
    AuthSessionTTL      time.Duration // lifetime of stored auth session identities
    HTTPTimeout         time.Duration // timeout for outbound backend requests
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:                 must("APP_ENV"),                // environment (dev/test/prod)
        Port:                must("APP_PORT"),               // port to bind the HTTP server
        CatalogAPIURL:       must("CATALOG_API_URL"),        // e.g. http://localhost:5000/api
        OrderAPIURL:         must("ORDER_API_URL"),          // primary order endpoint
        OrderFallbackAPIURL: must("ORDER_FALLBACK_API_URL"), // fallback order endpoint
        AuthAPIURL:          must("AUTH_API_URL"),           // auth backend base URL
        JWTSecret:           must("JWT_SECRET"),             // secret for verifying JWTs
        HallRows:            atoiDefault(getenv("HALL_ROWS", "8"), 8),
        HallCols:            atoiDefault(getenv("HALL_COLS", "10"), 10),
        OccupancyRate:       floatDefault(getenv("SEAT_OCCUPANCY_RATE", "0.3"), 0.3),
        SessionCacheTTL:     durDefault(getenv("SESSION_CACHE_TTL", "30s"), 30*time.Second),
        AuthSessionTTL:      durDefault(getenv("AUTH_SESSION_TTL", "24h"), 24*time.Hour),
        HTTPTimeout:         durDefault(getenv("HTTP_TIMEOUT", "10s"), 10*time.Second),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the value of an environment variable or a default when
// the variable is unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// atoiDefault converts s to a positive int, falling back to def on a
// parse error or a non-positive value.
func atoiDefault(s string, def int) int {
    n, err := strconv.Atoi(s)
    if err != nil || n <= 0 {
        return def
    }
    return n
}

// floatDefault converts s to a float64, falling back to def on a parse
// error or an out-of-range probability.
func floatDefault(s string, def float64) float64 {
    f, err := strconv.ParseFloat(s, 64)
    if err != nil || f < 0 || f > 1 {
        return def
    }
    return f
}

// durDefault converts s to a time.Duration, falling back to def on a
// parse error or a non-positive duration.
func durDefault(s string, def time.Duration) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 {
        return def
    }
    return d
}
