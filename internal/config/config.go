// Package config loads application configuration from environment
// variables.  Every setting has a working default so the server starts
// with no environment at all; tuning knobs exist for the lease and the
// sweep cadence.
package config

import (
    "os"
    "strconv"
    "time"
)

// Config holds the runtime settings of the reservation server.
type Config struct {
    Env             string        // application environment (dev, prod, ...)
    Port            string        // HTTP port to listen on
    LeaseDuration   time.Duration // how long a reservation lease lasts
    SweepInterval   time.Duration // how often expired leases are evicted
    ConsumerEnabled bool          // start the purchase-log queue consumer
}

// Load reads the configuration from the environment, falling back to
// defaults.  PORT is honored as an alias for APP_PORT.
func Load() Config {
    port := getenv("APP_PORT", "")
    if port == "" {
        port = getenv("PORT", "3000")
    }
    return Config{
        Env:             getenv("APP_ENV", "dev"),
        Port:            port,
        LeaseDuration:   envDur("LEASE_DURATION", 60*time.Second),
        SweepInterval:   envDur("SWEEP_INTERVAL", 5*time.Second),
        ConsumerEnabled: envBool("QUEUE_CONSUMER_ENABLED", true),
    }
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envBool(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return def
}

func envInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}

func envDur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil && d > 0 {
        return d
    }
    return def
}
