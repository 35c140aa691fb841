package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration.
//
// Values are layered: DefaultConfig, then the YAML file, then
// SMARTPRACTICE_* environment variables, then command-line flags.
type Config struct {
	// BaseURL is the root of the practice service. Default: http://localhost:8000.
	BaseURL string `yaml:"base_url"`

	// UserID is sent with every session start. Default: "user_web".
	UserID string `yaml:"user_id"`

	// RequestTimeout bounds every service call. Default: 15s.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// PulseInterval is the duration of one pulse phase. Default: 800ms.
	PulseInterval time.Duration `yaml:"pulse_interval"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	JournalEnabled bool   `yaml:"journal_enabled"`
	JournalPath    string `yaml:"journal_path"` // empty = store.DefaultDBPath

	Layout LayoutConfig `yaml:"layout"`
}

// LayoutConfig tunes the force-directed graph layout.
type LayoutConfig struct {
	Updates   int     `yaml:"updates"`
	Repulsion float64 `yaml:"repulsion"`
	Rate      float64 `yaml:"rate"`
	Theta     float64 `yaml:"theta"`
	Seed      uint64  `yaml:"seed"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8000",
		UserID:         "user_web",
		RequestTimeout: 15 * time.Second,
		PulseInterval:  800 * time.Millisecond,
		LogLevel:       "info",
		JournalEnabled: true,
		Layout: LayoutConfig{
			Updates:   30,
			Repulsion: 1,
			Rate:      0.05,
			Theta:     0.2,
			Seed:      1,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/smartpractice/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "smartpractice", "config.yaml"), nil
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path means DefaultPath, which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	optional := path == ""
	if optional {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if err := LoadFile(path, &cfg); err != nil {
		if !(optional && errors.Is(err, fs.ErrNotExist)) {
			return cfg, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SMARTPRACTICE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("SMARTPRACTICE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SMARTPRACTICE_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("SMARTPRACTICE_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SMARTPRACTICE_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("SMARTPRACTICE_PULSE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SMARTPRACTICE_PULSE_INTERVAL: %w", err)
		}
		cfg.PulseInterval = d
	}
	if v := os.Getenv("SMARTPRACTICE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SMARTPRACTICE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SMARTPRACTICE_JOURNAL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SMARTPRACTICE_JOURNAL: %w", err)
		}
		cfg.JournalEnabled = b
	}
	if v := os.Getenv("SMARTPRACTICE_DB"); v != "" {
		cfg.JournalPath = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.PulseInterval <= 0 {
		return fmt.Errorf("pulse_interval must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}
	if c.Layout.Updates <= 0 {
		return fmt.Errorf("layout.updates must be positive")
	}
	return nil
}
