package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	mdwlog "github.com/msto63/cellbot/foundation/core/log"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "CELLBOT_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Run       RunConfig       `toml:"run"`
	History   HistoryConfig   `toml:"history"`
	Server    ServerConfig    `toml:"server"`
	Spectator SpectatorConfig `toml:"spectator"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// RunConfig holds interpreter settings
type RunConfig struct {
	StepDelay     Duration `toml:"step_delay"`
	EntryTask     string   `toml:"entry_task"`
	MaxIterations int      `toml:"max_iterations"`
	MaxCallDepth  int      `toml:"max_call_depth"`
	Timeout       Duration `toml:"timeout"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Limit   int    `toml:"limit"`
}

// ServerConfig holds remote runner settings
type ServerConfig struct {
	Host      string   `toml:"host"`
	Port      int      `toml:"port"`
	CacheSize int      `toml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

// SpectatorConfig holds live spectator settings
type SpectatorConfig struct {
	Addr string `toml:"addr"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		History: HistoryConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("config.load")
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path).
			WithOperation("config.load")
	}

	// Apply defaults
	cfg.applyDefaults()

	// Expand environment variables in paths
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve loads path when given, otherwise the file named by CELLBOT_CONFIG
// or the first default location that exists. Without any file the default
// configuration is returned.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		return Load(env)
	}

	// Try default locations
	home, _ := os.UserHomeDir()
	defaultPaths := []string{
		"./configs/cellbot.toml",
		"./cellbot.toml",
		filepath.Join(home, ".config/cellbot/config.toml"),
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "cellbot"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}

	// Run
	if c.Run.EntryTask == "" {
		c.Run.EntryTask = "FINDEXIT"
	}
	if c.Run.MaxIterations == 0 {
		c.Run.MaxIterations = 1000000
	}
	if c.Run.MaxCallDepth == 0 {
		c.Run.MaxCallDepth = 10000
	}
	if c.Run.Timeout.Duration == 0 {
		c.Run.Timeout.Duration = 5 * time.Minute
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Limit == 0 {
		c.History.Limit = 20
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9310
	}
	if c.Server.CacheSize == 0 {
		c.Server.CacheSize = 256
	}
	if c.Server.CacheTTL.Duration == 0 {
		c.Server.CacheTTL.Duration = 30 * time.Minute
	}

	// Spectator
	if c.Spectator.Addr == "" {
		c.Spectator.Addr = "127.0.0.1:9311"
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}, reason string) error {
		return mdwerror.Newf("invalid %s: %s", field, reason).
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("field", field).
			WithDetail("value", value).
			WithOperation("config.validate")
	}

	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		return invalid("general.log_level", c.General.LogLevel, err.Error())
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		return invalid("general.log_format", c.General.LogFormat, err.Error())
	}
	if c.Run.StepDelay.Duration < 0 {
		return invalid("run.step_delay", c.Run.StepDelay.String(), "must not be negative")
	}
	if c.Run.MaxIterations < 0 {
		return invalid("run.max_iterations", c.Run.MaxIterations, "must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", c.Server.Port, "must be between 1 and 65535")
	}
	return nil
}

// GetServiceAddress returns the address string for a service
func (c *Config) GetServiceAddress(service string) string {
	switch service {
	case "server":
		return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	case "spectator":
		return c.Spectator.Addr
	default:
		return ""
	}
}
