package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Memgraph.Host)
	assert.Equal(t, 7687, cfg.Memgraph.Port)
	assert.Equal(t, "127.0.0.1", cfg.Qdrant.Host)
	assert.Equal(t, "stdio", cfg.Transport.Mode)
	assert.Equal(t, 500, cfg.Watcher.DebounceMS)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEMGRAPH_HOST", "memgraph.internal")
	t.Setenv("CODEGRAPHD_TRANSPORT", "http")
	t.Setenv("CODEGRAPHD_WATCHER_DEBOUNCE_MS", "750")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memgraph.internal", cfg.Memgraph.Host)
	assert.Equal(t, "http", cfg.Transport.Mode)
	assert.Equal(t, 750, cfg.Watcher.DebounceMS)
}

func TestValidateRejectsUnknownTransportMode(t *testing.T) {
	cfg := &Config{
		Memgraph:  MemgraphConfig{Host: "h"},
		Qdrant:    QdrantConfig{Host: "h"},
		Transport: TransportConfig{Mode: "carrier-pigeon"},
	}
	assert.Error(t, cfg.Validate())
}

func TestWatcherDebounceConvertsMillisecondsToDuration(t *testing.T) {
	cfg := &Config{Watcher: WatcherConfig{DebounceMS: 500}}
	assert.Equal(t, "500ms", cfg.WatcherDebounce().String())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEMGRAPH_HOST", "MEMGRAPH_PORT", "MEMGRAPH_USER", "MEMGRAPH_PASSWORD",
		"QDRANT_HOST", "QDRANT_PORT", "QDRANT_COLLECTION",
		"CODEGRAPHD_CONFIG", "CODEGRAPHD_TRANSPORT", "CODEGRAPHD_PORT", "CODEGRAPHD_HOST",
		"CODEGRAPHD_CORS_ORIGINS", "CODEGRAPHD_LOG_LEVEL", "CODEGRAPHD_WATCHER_DEBOUNCE_MS",
		"CODEGRAPHD_COMMAND_EXECUTION_TIMEOUT_MS", "CODEGRAPHD_COMMAND_OUTPUT_SIZE_LIMIT_BYTES",
	} {
		_ = os.Unsetenv(key)
	}
}
