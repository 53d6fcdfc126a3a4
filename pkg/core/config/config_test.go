package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"milliseconds", 250 * time.Millisecond, "250ms"},
		{"seconds", 30 * time.Second, "30s"},
		{"minutes", 5 * time.Minute, "5m0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Duration{tt.duration}
			result, err := d.MarshalText()

			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
				return
			}

			if string(result) != tt.expected {
				t.Errorf("MarshalText() = %v, want %v", string(result), tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.Name != "cellbot" {
		t.Errorf("General.Name = %v, want cellbot", cfg.General.Name)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.Run.EntryTask != "FINDEXIT" {
		t.Errorf("Run.EntryTask = %v, want FINDEXIT", cfg.Run.EntryTask)
	}
	if cfg.Run.MaxCallDepth != 10000 {
		t.Errorf("Run.MaxCallDepth = %v, want 10000", cfg.Run.MaxCallDepth)
	}
	if cfg.Run.StepDelay.Duration != 0 {
		t.Errorf("Run.StepDelay = %v, want 0", cfg.Run.StepDelay.Duration)
	}
	if cfg.History.Path != filepath.Join("./data", "history.db") {
		t.Errorf("History.Path = %v, want data/history.db", cfg.History.Path)
	}
	if cfg.Server.Port != 9310 {
		t.Errorf("Server.Port = %v, want 9310", cfg.Server.Port)
	}
	if cfg.Spectator.Addr != "127.0.0.1:9311" {
		t.Errorf("Spectator.Addr = %v, want 127.0.0.1:9311", cfg.Spectator.Addr)
	}
}

func TestDefault_HistoryEnabled(t *testing.T) {
	if !Default().History.Enabled {
		t.Error("Default().History.Enabled = false, want true")
	}
}

func TestConfig_GetServiceAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "localhost"

	tests := []struct {
		service  string
		expected string
	}{
		{"server", "localhost:9310"},
		{"spectator", "127.0.0.1:9311"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			if got := cfg.GetServiceAddress(tt.service); got != tt.expected {
				t.Errorf("GetServiceAddress(%s) = %v, want %v", tt.service, got, tt.expected)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Load() error = %v, want code %s", err, mdwerror.CodeNotFound)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[general]
log_level = "debug"

[run]
step_delay = "150ms"
entry_task = "SOLVE"

[history]
enabled = false

[server]
port = 9999
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("General.LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Run.StepDelay.Duration != 150*time.Millisecond {
		t.Errorf("Run.StepDelay = %v, want 150ms", cfg.Run.StepDelay.Duration)
	}
	if cfg.Run.EntryTask != "SOLVE" {
		t.Errorf("Run.EntryTask = %v, want SOLVE", cfg.Run.EntryTask)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %v, want 9999", cfg.Server.Port)
	}

	// Check defaults were applied for missing values
	if cfg.Run.MaxIterations != 1000000 {
		t.Errorf("Run.MaxIterations = %v, want 1000000 (default)", cfg.Run.MaxIterations)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    mdwerror.Code
	}{
		{"Bad TOML", "[run\nentry_task = 1", mdwerror.CodeConfigError},
		{"Bad duration", "[run]\nstep_delay = \"soon\"", mdwerror.CodeConfigError},
		{"Bad log level", "[general]\nlog_level = \"loud\"", mdwerror.CodeInvalidConfig},
		{"Negative delay", "[run]\nstep_delay = \"-1s\"", mdwerror.CodeInvalidConfig},
		{"Port out of range", "[server]\nport = 70000", mdwerror.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			_, err := Load(configPath)
			if !mdwerror.HasCode(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	os.Setenv("CELLBOT_TEST_DIR", "/var/lib/cellbot")
	defer os.Unsetenv("CELLBOT_TEST_DIR")

	cfg := &Config{
		History: HistoryConfig{Path: "$CELLBOT_TEST_DIR/runs.db"},
	}

	cfg.expandEnvVars()

	if cfg.History.Path != "/var/lib/cellbot/runs.db" {
		t.Errorf("History.Path = %v, want /var/lib/cellbot/runs.db", cfg.History.Path)
	}
}

func TestResolve_NoConfigFound(t *testing.T) {
	original := os.Getenv(EnvConfigPath)
	os.Unsetenv(EnvConfigPath)
	defer func() {
		if original != "" {
			os.Setenv(EnvConfigPath, original)
		}
	}()

	originalWd, _ := os.Getwd()
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	defer os.Chdir(originalWd)

	t.Setenv("HOME", tmpDir)

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Run.EntryTask != "FINDEXIT" {
		t.Errorf("Run.EntryTask = %v, want FINDEXIT", cfg.Run.EntryTask)
	}
}

func TestResolve_EnvPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cellbot.toml")
	if err := os.WriteFile(configPath, []byte("[run]\nentry_task = \"MAIN\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv(EnvConfigPath, configPath)

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Run.EntryTask != "MAIN" {
		t.Errorf("Run.EntryTask = %v, want MAIN", cfg.Run.EntryTask)
	}
}
