// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringPrecedence(t *testing.T) {
	t.Setenv("TEST_SESSIOND_STR", "from-env")
	assert.Equal(t, "from-env", ParseString("TEST_SESSIOND_STR", "fallback"))

	t.Setenv("TEST_SESSIOND_STR", "")
	assert.Equal(t, "fallback", ParseString("TEST_SESSIOND_STR", "fallback"), "empty counts as unset")

	assert.Equal(t, "fallback", ParseString("TEST_SESSIOND_STR_MISSING", "fallback"))
}

func TestParseIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_SESSIOND_INT", "42")
	assert.Equal(t, 42, ParseInt("TEST_SESSIOND_INT", 7))

	t.Setenv("TEST_SESSIOND_INT", "not-a-number")
	assert.Equal(t, 7, ParseInt("TEST_SESSIOND_INT", 7))
}

func TestParseBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_SESSIOND_BOOL", "false")
	assert.False(t, ParseBool("TEST_SESSIOND_BOOL", true))

	t.Setenv("TEST_SESSIOND_BOOL", "yes-ish")
	assert.True(t, ParseBool("TEST_SESSIOND_BOOL", true))
}

func TestParseDurationFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_SESSIOND_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_SESSIOND_DUR", time.Minute))

	t.Setenv("TEST_SESSIOND_DUR", "ninety")
	assert.Equal(t, time.Minute, ParseDuration("TEST_SESSIOND_DUR", time.Minute))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SESSIOND_LISTEN", "127.0.0.1:9090")
	t.Setenv("SESSIOND_DATA", "/tmp/sessiond-test")
	t.Setenv("SESSIOND_BRIDGE_URL", "wss://bridge.internal/connect")
	t.Setenv("SESSIOND_CREATE_TIMEOUT", "15s")
	t.Setenv("SESSIOND_RECONNECT_MAX_RETRIES", "3")
	t.Setenv("SESSIOND_RATE_LIMIT_RPM", "60")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/sessiond-test", cfg.DataDir)
	assert.Equal(t, "wss://bridge.internal/connect", cfg.BridgeURL)
	assert.Equal(t, 15*time.Second, cfg.CreateTimeout)
	assert.Equal(t, 3, cfg.ReconnectMaxRetries)
	assert.Equal(t, 60, cfg.RateLimitRPM)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.LogoutTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.ListenAddr = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.DataDir = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.BridgeURL = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CreateTimeout = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.ReconnectMaxRetries = -1
	assert.Error(t, bad.Validate())
}
