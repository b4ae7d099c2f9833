package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Session: SessionConfig{
			TickInterval:           50 * time.Millisecond,
			AIDelay:                15,
			ScriptInstructionLimit: 100000,
			InboxSize:              64,
		},
		Bridge: BridgeConfig{
			ReadLimit:         4096,
			MessagesPerSecond: 30,
			Burst:             60,
			WriteTimeout:      10 * time.Second,
			PongWait:          60 * time.Second,
			OutboxSize:        256,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 9090
logging:
  level: debug
  format: console
session:
  tick_interval: 100ms
  ai_delay: 5
  seed: 42
bridge:
  burst: 10
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.TickInterval)
	assert.Equal(t, 5, cfg.Session.AIDelay)
	assert.Equal(t, uint64(42), cfg.Session.Seed)
	assert.Equal(t, 10, cfg.Bridge.Burst)
	assert.Equal(t, 30.0, cfg.Bridge.MessagesPerSecond)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Session.AIDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Session.TickInterval)
	assert.Equal(t, 10*time.Second, cfg.Bridge.WriteTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ARENA_SESSION_AI_DELAY", "3")
	t.Setenv("ARENA_LOGGING_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.AIDelay)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateSession(t *testing.T) {
	cases := map[string]func(*Config){
		"tick_interval": func(c *Config) { c.Session.TickInterval = 0 },
		"ai_delay":      func(c *Config) { c.Session.AIDelay = 0 },
		"script_limit":  func(c *Config) { c.Session.ScriptInstructionLimit = 0 },
		"inbox_size":    func(c *Config) { c.Session.InboxSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "session.")
		})
	}
}

func TestValidateBridge(t *testing.T) {
	cases := map[string]func(*Config){
		"read_limit":    func(c *Config) { c.Bridge.ReadLimit = 0 },
		"rate":          func(c *Config) { c.Bridge.MessagesPerSecond = 0 },
		"burst":         func(c *Config) { c.Bridge.Burst = 0 },
		"write_timeout": func(c *Config) { c.Bridge.WriteTimeout = 0 },
		"pong_wait":     func(c *Config) { c.Bridge.PongWait = -time.Second },
		"outbox_size":   func(c *Config) { c.Bridge.OutboxSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bridge.")
		})
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Session.AIDelay = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "session.ai_delay")
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		err := cfg.Validate()
		if err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyAIDelayPositiveAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Session.AIDelay = rapid.IntRange(1, 1000).Draw(t, "ai_delay")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("ai_delay %d rejected: %v", cfg.Session.AIDelay, err)
		}
	})
}
