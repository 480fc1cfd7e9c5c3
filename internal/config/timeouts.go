package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Connect           time.Duration // Timeout for opening the administrative MySQL connection
	Download          time.Duration // Timeout for a single codebase archive download attempt
	Extract           time.Duration // Upper bound for unpacking one archive
	Install           time.Duration // Timeout for one installer invocation; 0 means none
	RetryMaxAttempts  int           // Maximum number of download retry attempts
	RetryInitialDelay time.Duration // Initial delay between download retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - WPFLEET_TIMEOUT_CONNECT (default: 10s)
//   - WPFLEET_TIMEOUT_DOWNLOAD (default: 5m)
//   - WPFLEET_TIMEOUT_EXTRACT (default: 2m)
//   - WPFLEET_TIMEOUT_INSTALL (default: 0, no timeout)
//   - WPFLEET_RETRY_MAX_ATTEMPTS (default: 3)
//   - WPFLEET_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Connect:           parseDuration("WPFLEET_TIMEOUT_CONNECT", 10*time.Second),
		Download:          parseDuration("WPFLEET_TIMEOUT_DOWNLOAD", 5*time.Minute),
		Extract:           parseDuration("WPFLEET_TIMEOUT_EXTRACT", 2*time.Minute),
		Install:           parseDuration("WPFLEET_TIMEOUT_INSTALL", 0),
		RetryMaxAttempts:  parseInt("WPFLEET_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("WPFLEET_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
