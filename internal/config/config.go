package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the codegraphd server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
	Watcher   WatcherConfig   `toml:"watcher"`
	Command   CommandConfig   `toml:"command"`
}

// MemgraphConfig holds the bi-temporal graph store's connection details.
type MemgraphConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// QdrantConfig holds the vector index's connection details.
type QdrantConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	CollectionName string `toml:"collection_name"`
	VectorSize     uint64 `toml:"vector_size"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port (default: 21452). Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address (default: "0.0.0.0"). Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// WatcherConfig holds the file watcher's debounce and ignore settings.
type WatcherConfig struct {
	DebounceMS     int      `toml:"debounce_ms"`
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// CommandConfig holds test_run's execution limits.
type CommandConfig struct {
	ExecutionTimeoutMS  int `toml:"execution_timeout_ms"`
	OutputSizeLimitBytes int `toml:"output_size_limit_bytes"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. CODEGRAPHD_CONFIG environment variable
//  3. ./codegraphd.toml (current directory)
//  4. ~/.config/codegraphd/codegraphd.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	// Start with defaults
	cfg := &Config{
		Memgraph: MemgraphConfig{
			Host: "127.0.0.1",
			Port: 7687,
		},
		Qdrant: QdrantConfig{
			Host:           "127.0.0.1",
			Port:           6334,
			CollectionName: "codegraphd",
			VectorSize:     1536,
		},
		Server: ServerConfig{
			Name:    "codegraphd",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "21452",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watcher: WatcherConfig{
			DebounceMS:     500,
			IgnorePatterns: []string{".git", "node_modules", ".codegraphd"},
		},
		Command: CommandConfig{
			ExecutionTimeoutMS:   120_000,
			OutputSizeLimitBytes: 1 << 20,
		},
	}

	// Layer config file values on top of defaults
	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	// Layer environment variables on top (always win)
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	// 1. Explicit path from --config flag
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}

	// 2. CODEGRAPHD_CONFIG env var
	if p := os.Getenv("CODEGRAPHD_CONFIG"); p != "" {
		return p
	}

	// 3. ./codegraphd.toml in current directory
	if _, err := os.Stat("codegraphd.toml"); err == nil {
		return "codegraphd.toml"
	}

	// 4. ~/.config/codegraphd/codegraphd.toml
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/codegraphd/codegraphd.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config
// values. The canonical namespace is CODEGRAPHD_, except for the two
// external-service groups that keep their literal names: MEMGRAPH_* and
// QDRANT_*.
func (c *Config) applyEnv() {
	// Memgraph
	envOverride("MEMGRAPH_HOST", &c.Memgraph.Host)
	envOverrideInt("MEMGRAPH_PORT", &c.Memgraph.Port)
	envOverride("MEMGRAPH_USER", &c.Memgraph.User)
	envOverride("MEMGRAPH_PASSWORD", &c.Memgraph.Password)

	// Qdrant
	envOverride("QDRANT_HOST", &c.Qdrant.Host)
	envOverrideInt("QDRANT_PORT", &c.Qdrant.Port)
	envOverride("QDRANT_COLLECTION", &c.Qdrant.CollectionName)

	// Transport
	envOverride("CODEGRAPHD_TRANSPORT", &c.Transport.Mode)
	envOverride("CODEGRAPHD_PORT", &c.Transport.Port)
	envOverride("CODEGRAPHD_HOST", &c.Transport.Host)
	envOverride("CODEGRAPHD_CORS_ORIGINS", &c.Transport.CORSOrigins)

	// Logging
	envOverride("CODEGRAPHD_LOG_LEVEL", &c.Log.Level)

	// Watcher
	envOverrideInt("CODEGRAPHD_WATCHER_DEBOUNCE_MS", &c.Watcher.DebounceMS)

	// Command execution
	envOverrideInt("CODEGRAPHD_COMMAND_EXECUTION_TIMEOUT_MS", &c.Command.ExecutionTimeoutMS)
	envOverrideInt("CODEGRAPHD_COMMAND_OUTPUT_SIZE_LIMIT_BYTES", &c.Command.OutputSizeLimitBytes)
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}
	if c.Memgraph.Host == "" {
		return fmt.Errorf("memgraph host is required: set memgraph.host in config file, or MEMGRAPH_HOST env var")
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant host is required: set qdrant.host in config file, or QDRANT_HOST env var")
	}
	return nil
}

// WatcherDebounce returns the watcher's debounce interval as a
// time.Duration.
func (c *Config) WatcherDebounce() time.Duration {
	return time.Duration(c.Watcher.DebounceMS) * time.Millisecond
}

// CommandTimeout returns the command executor's default timeout as a
// time.Duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Command.ExecutionTimeoutMS) * time.Millisecond
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envOverrideInt sets *dst to the named env var parsed as a positive int,
// if it is non-empty and parses.
func envOverrideInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			*dst = n
		}
	}
}
