package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite://overlord.db", cfg.DatabaseURL)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("OVERLORD_HOST_URL", "http://bbs.example:9000")
	t.Setenv("OVERLORD_NICKNAME", "Alice")
	t.Setenv("OVERLORD_PUBKEY", "pk-alice")
	t.Setenv("OVERLORD_POLL_INTERVAL", "250ms")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://bbs.example:9000", cfg.HostURL)
	assert.Equal(t, "FORTRESS_OVERLORD_V1", cfg.Topic)
	assert.Equal(t, "Alice", cfg.Nickname)
	assert.Equal(t, "pk-alice", cfg.PublicKeyID)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("OVERLORD_PORT", "not-a-port")

	_, err := LoadServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
