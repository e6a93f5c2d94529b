// Package config loads panectl configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by cmd)
//  2. Environment variables (PANECTL_*, then OTEL_EXPORTER_OTLP_*)
//  3. Config file
//  4. Built-in defaults
//
// Config file search order:
//  1. .panectl.yaml in current directory
//  2. ~/.config/panectl/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config holds all panectl configuration.
type Config struct {
	// External binaries
	TmuxBinary   string `yaml:"tmux_binary"`
	ReptyrBinary string `yaml:"reptyr_binary"`
	PSBinary     string `yaml:"ps_binary"`
	KillBinary   string `yaml:"kill_binary"`

	// tmux server
	SocketName  string `yaml:"socket_name"`  // tmux -L <name>; empty uses the default socket
	InitSession string `yaml:"init_session"` // session created when starting a fresh server

	// Timing
	CommandTimeout string `yaml:"command_timeout"` // Go duration string, e.g. "10s"
	Refresh        string `yaml:"refresh"`         // browse refresh interval, e.g. "5s"

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text or json
	LogCalls  bool   `yaml:"log_calls"`  // log every façade call at debug level

	// Inventory and browse
	ExcludeSessions []string `yaml:"exclude_sessions"` // glob patterns, e.g. "scratch-*"
	Theme           string   `yaml:"theme"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Bearer abc123"

	// Parsed values (not from YAML, set after loading)
	CommandTimeoutDuration time.Duration `yaml:"-"`
	RefreshDuration        time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		TmuxBinary:     "tmux",
		ReptyrBinary:   "reptyr",
		PSBinary:       "ps",
		KillBinary:     "kill",
		InitSession:    "init_session",
		CommandTimeout: "10s",
		Refresh:        "5s",
		LogLevel:       "warn",
		LogFormat:      "text",
		Theme:          "default",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values. An explicit path
// must exist; with an empty path the search order above applies.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.applyFile(path, data); err != nil {
			return nil, err
		}
	} else if found, data, err := findConfigFile(); err == nil {
		if err := cfg.applyFile(found, data); err != nil {
			return nil, err
		}
	}

	// Environment variables override everything
	mergeEnv(cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyFile(path string, data []byte) error {
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.ConfigFile = path
	mergeFile(cfg, &fileCfg)
	return nil
}

// Finalize parses durations and validates values. cmd calls it again after
// applying flag overrides.
func (cfg *Config) Finalize() error {
	var err error
	cfg.CommandTimeoutDuration, err = parseDurationOrDisable(cfg.CommandTimeout, 10*time.Second)
	if err != nil {
		return fmt.Errorf("invalid command timeout %q: %w", cfg.CommandTimeout, err)
	}
	cfg.RefreshDuration, err = parseDurationOrDisable(cfg.Refresh, 5*time.Second)
	if err != nil {
		return fmt.Errorf("invalid refresh interval %q: %w", cfg.Refresh, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (supported: text, json)", cfg.LogFormat)
	}
	if _, err := CompileExcludeList(cfg.ExcludeSessions); err != nil {
		return fmt.Errorf("exclude_sessions: %w", err)
	}
	return nil
}

// RunnerTimeout is the per-command timeout for facade.ExecRunner, whose
// zero value means its own default. A disabled timeout is returned as -1.
func (cfg *Config) RunnerTimeout() time.Duration {
	if cfg.CommandTimeoutDuration <= 0 {
		return -1
	}
	return cfg.CommandTimeoutDuration
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".panectl.yaml"); err == nil {
		return ".panectl.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "panectl", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.TmuxBinary != "" {
		cfg.TmuxBinary = file.TmuxBinary
	}
	if file.ReptyrBinary != "" {
		cfg.ReptyrBinary = file.ReptyrBinary
	}
	if file.PSBinary != "" {
		cfg.PSBinary = file.PSBinary
	}
	if file.KillBinary != "" {
		cfg.KillBinary = file.KillBinary
	}
	if file.SocketName != "" {
		cfg.SocketName = file.SocketName
	}
	if file.InitSession != "" {
		cfg.InitSession = file.InitSession
	}
	if file.CommandTimeout != "" {
		cfg.CommandTimeout = file.CommandTimeout
	}
	if file.Refresh != "" {
		cfg.Refresh = file.Refresh
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFormat != "" {
		cfg.LogFormat = file.LogFormat
	}
	if file.LogCalls {
		cfg.LogCalls = true
	}
	if len(file.ExcludeSessions) > 0 {
		cfg.ExcludeSessions = file.ExcludeSessions
	}
	if file.Theme != "" {
		cfg.Theme = file.Theme
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PANECTL_TMUX_BINARY"); v != "" {
		cfg.TmuxBinary = v
	}
	if v := os.Getenv("PANECTL_REPTYR_BINARY"); v != "" {
		cfg.ReptyrBinary = v
	}
	if v := os.Getenv("PANECTL_PS_BINARY"); v != "" {
		cfg.PSBinary = v
	}
	if v := os.Getenv("PANECTL_KILL_BINARY"); v != "" {
		cfg.KillBinary = v
	}
	if v := os.Getenv("PANECTL_SOCKET_NAME"); v != "" {
		cfg.SocketName = v
	}
	if v := os.Getenv("PANECTL_INIT_SESSION"); v != "" {
		cfg.InitSession = v
	}
	if v := os.Getenv("PANECTL_COMMAND_TIMEOUT"); v != "" {
		cfg.CommandTimeout = v
	}
	if v := os.Getenv("PANECTL_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("PANECTL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PANECTL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PANECTL_LOG_CALLS"); v == "true" || v == "1" {
		cfg.LogCalls = true
	}
	if v := os.Getenv("PANECTL_EXCLUDE_SESSIONS"); v != "" {
		cfg.ExcludeSessions = splitList(v)
	}
	if v := os.Getenv("PANECTL_THEME"); v != "" {
		cfg.Theme = v
	}

	// PANECTL_OTEL_* first, then the standard OTEL variables.
	if v := os.Getenv("PANECTL_OTEL_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("PANECTL_OTEL_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// ExcludeList is a compiled set of session-name glob patterns.
type ExcludeList []glob.Glob

// CompileExcludeList compiles glob patterns such as "scratch-*".
func CompileExcludeList(patterns []string) (ExcludeList, error) {
	list := make(ExcludeList, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		list = append(list, g)
	}
	return list, nil
}

// Match reports whether name matches any pattern in the list.
func (l ExcludeList) Match(name string) bool {
	for _, g := range l {
		if g.Match(name) {
			return true
		}
	}
	return false
}
