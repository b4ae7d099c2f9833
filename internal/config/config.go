// Package config provides Viper-based configuration loading for the arena server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SessionConfig holds game session settings.
type SessionConfig struct {
	// TickInterval is the time between session updates.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// AIDelay is the number of ticks an AI fighter waits before acting.
	AIDelay int `mapstructure:"ai_delay"`
	// RosterPath is an optional roster YAML file; empty uses the built-in roster.
	RosterPath string `mapstructure:"roster_path"`
	// AIScript is an optional Lua file defining choose_action.
	AIScript string `mapstructure:"ai_script"`
	// ScriptInstructionLimit caps Lua opcodes per hook call.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// InboxSize is the buffer size of the inbound message channel.
	InboxSize int `mapstructure:"inbox_size"`
	// Seed makes turn order and AI choices reproducible; 0 uses crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// BridgeConfig holds websocket client settings.
type BridgeConfig struct {
	// ReadLimit is the maximum inbound message size in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
	// MessagesPerSecond is the sustained inbound message rate per client.
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	// Burst is the inbound message burst allowance per client.
	Burst int `mapstructure:"burst"`
	// WriteTimeout is the per-write deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PongWait is how long to wait for a pong before dropping the client.
	PongWait time.Duration `mapstructure:"pong_wait"`
	// OutboxSize is the buffer size of the outbound message channel.
	OutboxSize int `mapstructure:"outbox_size"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Session SessionConfig `mapstructure:"session"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSession(c.Session); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBridge(c.Bridge); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSession(s SessionConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, "session.tick_interval must be positive")
	}
	if s.AIDelay < 1 {
		errs = append(errs, fmt.Sprintf("session.ai_delay must be >= 1, got %d", s.AIDelay))
	}
	if s.ScriptInstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("session.script_instruction_limit must be >= 1, got %d", s.ScriptInstructionLimit))
	}
	if s.InboxSize < 1 {
		errs = append(errs, fmt.Sprintf("session.inbox_size must be >= 1, got %d", s.InboxSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBridge(b BridgeConfig) error {
	var errs []string
	if b.ReadLimit < 1 {
		errs = append(errs, fmt.Sprintf("bridge.read_limit must be >= 1, got %d", b.ReadLimit))
	}
	if b.MessagesPerSecond <= 0 {
		errs = append(errs, "bridge.messages_per_second must be positive")
	}
	if b.Burst < 1 {
		errs = append(errs, fmt.Sprintf("bridge.burst must be >= 1, got %d", b.Burst))
	}
	if b.WriteTimeout <= 0 {
		errs = append(errs, "bridge.write_timeout must be positive")
	}
	if b.PongWait <= 0 {
		errs = append(errs, "bridge.pong_wait must be positive")
	}
	if b.OutboxSize < 1 {
		errs = append(errs, fmt.Sprintf("bridge.outbox_size must be >= 1, got %d", b.OutboxSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("session.tick_interval", "50ms")
	v.SetDefault("session.ai_delay", 15)
	v.SetDefault("session.roster_path", "")
	v.SetDefault("session.ai_script", "")
	v.SetDefault("session.script_instruction_limit", 100000)
	v.SetDefault("session.inbox_size", 64)
	v.SetDefault("session.seed", 0)

	v.SetDefault("bridge.read_limit", 4096)
	v.SetDefault("bridge.messages_per_second", 30)
	v.SetDefault("bridge.burst", 60)
	v.SetDefault("bridge.write_timeout", "10s")
	v.SetDefault("bridge.pong_wait", "60s")
	v.SetDefault("bridge.outbox_size", 256)
}
