package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Release           time.Duration // Helm wait timeout for TeamCity and proxy releases
	PostgresRelease   time.Duration // Helm wait timeout for the PostgreSQL release
	Uninstall         time.Duration // Helm uninstall timeout
	ServiceAddress    time.Duration // Wait for a LoadBalancer address
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - TCSTACK_TIMEOUT_RELEASE (default: 10m)
//   - TCSTACK_TIMEOUT_POSTGRES_RELEASE (default: 10m)
//   - TCSTACK_TIMEOUT_UNINSTALL (default: 5m)
//   - TCSTACK_TIMEOUT_SERVICE_ADDRESS (default: 5m)
//   - TCSTACK_RETRY_MAX_ATTEMPTS (default: 5)
//   - TCSTACK_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Release:           parseDuration("TCSTACK_TIMEOUT_RELEASE", 10*time.Minute),
		PostgresRelease:   parseDuration("TCSTACK_TIMEOUT_POSTGRES_RELEASE", 10*time.Minute),
		Uninstall:         parseDuration("TCSTACK_TIMEOUT_UNINSTALL", 5*time.Minute),
		ServiceAddress:    parseDuration("TCSTACK_TIMEOUT_SERVICE_ADDRESS", 5*time.Minute),
		RetryMaxAttempts:  parseInt("TCSTACK_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("TCSTACK_RETRY_INITIAL_DELAY", 1*time.Second),
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
	if err != nil || d <= 0 {
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
