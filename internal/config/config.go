// Package config loads application configuration from environment
// variables. Values arrive either from the process environment or from
// a .env file loaded in main via godotenv.
package config

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable: strings for identifiers and secrets, ints
// for durations and costs.
type Config struct {
    Env             string        // application environment (e.g. "dev", "prod")
    Port            string        // HTTP port to listen on
    DBUser          string        // database username
    DBPass          string        // database password (optional)
    DBHost          string        // database host address
    DBPort          string        // database port number
    DBName          string        // database name
    JWTSecret       string        // secret used to sign JWTs
    AccessTTLMin    int           // access token time-to-live in minutes
    RefreshTTLDays  int           // refresh token time-to-live in days
    BcryptCost      int           // bcrypt cost for password hashing
    EventCacheTTL   time.Duration // staleness bound for the ledger's event cache
    BootstrapAdmins bool          // when true, the first registered account becomes ADMIN
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),
        Port:            must("APP_PORT"),
        DBUser:          must("DB_USER"),
        DBPass:          os.Getenv("DB_PASS"),
        DBHost:          must("DB_HOST"),
        DBPort:          must("DB_PORT"),
        DBName:          must("DB_NAME"),
        JWTSecret:       must("JWT_SECRET"),
        AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:      mustInt("BCRYPT_COST"),
        EventCacheTTL:   envDur("EVENT_CACHE_TTL", 30*time.Second),
        BootstrapAdmins: envBool("BOOTSTRAP_FIRST_ADMIN", true),
    }
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// envDur reads an optional duration variable ("30s", "2m"), falling
// back to def when unset or malformed.
func envDur(key string, def time.Duration) time.Duration {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        return def
    }
    d, err := time.ParseDuration(v)
    if err != nil {
        log.Printf("invalid duration for %s: %q, using default %s", key, v, def)
        return def
    }
    return d
}

// envBool reads an optional boolean variable, falling back to def.
func envBool(key string, def bool) bool {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        return def
    }
    b, err := strconv.ParseBool(v)
    if err != nil {
        log.Printf("invalid bool for %s: %q, using default %t", key, v, def)
        return def
    }
    return b
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error and
// exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
