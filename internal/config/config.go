// SPDX-License-Identifier: MIT

// Package config loads sessiond configuration from the environment with
// precedence ENV > defaults. There is no config file; the deployment
// surface is small enough that environment variables cover it.
package config

import (
	"errors"
	"fmt"
	"time"
)

// AppConfig holds the full runtime configuration of the daemon.
type AppConfig struct {
	// HTTP
	ListenAddr   string
	RateLimitRPM int // requests per minute per client IP, 0 disables

	// Storage
	DataDir string

	// Protocol bridge
	BridgeURL string

	// Lifecycle timing
	CreateTimeout   time.Duration // bound on awaiting the first significant event
	LogoutTimeout   time.Duration // per-session bound on connector logout
	ShutdownTimeout time.Duration // bound on the whole shutdown sweep

	// Reconnect policy
	ReconnectMaxRetries  int
	ReconnectMaxInterval time.Duration

	// Observability
	MetricsEnabled bool
	LogLevel       string
}

// Load assembles the configuration from the environment.
func Load() AppConfig {
	return AppConfig{
		ListenAddr:           ParseString("SESSIOND_LISTEN", ":8080"),
		RateLimitRPM:         ParseInt("SESSIOND_RATE_LIMIT_RPM", 300),
		DataDir:              ParseString("SESSIOND_DATA", "/var/lib/sessiond"),
		BridgeURL:            ParseString("SESSIOND_BRIDGE_URL", "ws://127.0.0.1:3001/connect"),
		CreateTimeout:        ParseDuration("SESSIOND_CREATE_TIMEOUT", 60*time.Second),
		LogoutTimeout:        ParseDuration("SESSIOND_LOGOUT_TIMEOUT", 10*time.Second),
		ShutdownTimeout:      ParseDuration("SESSIOND_SHUTDOWN_TIMEOUT", 30*time.Second),
		ReconnectMaxRetries:  ParseInt("SESSIOND_RECONNECT_MAX_RETRIES", 5),
		ReconnectMaxInterval: ParseDuration("SESSIOND_RECONNECT_MAX_INTERVAL", 2*time.Minute),
		MetricsEnabled:       ParseBool("SESSIOND_METRICS_ENABLED", true),
		LogLevel:             ParseString("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the daemon cannot safely run with.
func (c AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.DataDir == "" {
		return errors.New("data directory must not be empty")
	}
	if c.BridgeURL == "" {
		return errors.New("bridge URL must not be empty")
	}
	if c.CreateTimeout <= 0 {
		return fmt.Errorf("create timeout must be > 0, got %v", c.CreateTimeout)
	}
	if c.LogoutTimeout <= 0 {
		return fmt.Errorf("logout timeout must be > 0, got %v", c.LogoutTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be > 0, got %v", c.ShutdownTimeout)
	}
	if c.ReconnectMaxRetries < 0 {
		return fmt.Errorf("reconnect max retries must be >= 0, got %d", c.ReconnectMaxRetries)
	}
	if c.ReconnectMaxInterval <= 0 {
		return fmt.Errorf("reconnect max interval must be > 0, got %v", c.ReconnectMaxInterval)
	}
	return nil
}
