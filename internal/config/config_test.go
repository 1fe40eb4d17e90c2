package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "127.0.0.1:31415", cfg.BridgeAddr)
	assert.Equal(t, "spawn_log.db", cfg.AuditPath)
	assert.Equal(t, 30*time.Second, cfg.RoundDuration)
	assert.Equal(t, 15*time.Second, cfg.Cooldown)
	assert.Equal(t, 15*time.Second, cfg.PlacementTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.GraceWindow)
	assert.Equal(t, 3*time.Second, cfg.StartupDelay)
}

func TestParseFlagsOverride(t *testing.T) {
	cfg, err := ParseFlags([]string{
		"-addr", ":9999",
		"-game", "10.0.0.5:31415",
		"-round", "45s",
		"-placement", "20s",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "10.0.0.5:31415", cfg.BridgeAddr)
	assert.Equal(t, 45*time.Second, cfg.RoundDuration)
	assert.Equal(t, 20*time.Second, cfg.PlacementTimeout)
	// Untouched settings keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Cooldown)
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv("ADDR", ":7000")
	t.Setenv("GAME_ADDR", "game.local:31415")
	t.Setenv("ROUND_DURATION", "1m")

	cfg, err := ParseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "game.local:31415", cfg.BridgeAddr)
	assert.Equal(t, time.Minute, cfg.RoundDuration)
}

func TestParseFlagsFlagBeatsEnv(t *testing.T) {
	t.Setenv("ADDR", ":7000")
	t.Setenv("ROUND_DURATION", "1m")

	cfg, err := ParseFlags([]string{"-addr", ":9000", "-round", "10s"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.RoundDuration)
}

func TestParseFlagsBadEnvDuration(t *testing.T) {
	t.Setenv("ROUND_DURATION", "not-a-duration")

	_, err := ParseFlags(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUND_DURATION")
}

func TestParseFlagsNegativeRoundRejected(t *testing.T) {
	_, err := ParseFlags([]string{"-round", "-5s"})
	require.Error(t, err)
}
