// Package config loads and validates the kpi client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/kpi/internal/core/theme"
	"github.com/hay-kot/kpi/internal/core/validate"
)

// Identity modes.
const (
	IdentityKerberos = "kerberos"
	IdentityMock     = "mock"
)

// Config holds the application configuration.
type Config struct {
	APIURL        string              `yaml:"api_url"`
	SecurityURL   string              `yaml:"security_url"`
	Theme         string              `yaml:"theme"`
	Identity      IdentityConfig      `yaml:"identity"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      DatabaseConfig      `yaml:"database"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// IdentityConfig selects how the current user is resolved.
type IdentityConfig struct {
	Mode     string        `yaml:"mode"`      // kerberos or mock
	CacheTTL time.Duration `yaml:"cache_ttl"` // 0 disables the identity cache
}

// NotificationsConfig tunes the notification bus and the error router.
type NotificationsConfig struct {
	DefaultDuration time.Duration `yaml:"default_duration"`
	MaxVisible      int           `yaml:"max_visible"`
	ErrorBurst      int           `yaml:"error_burst"`
	ErrorInterval   time.Duration `yaml:"error_interval"`
}

// DatabaseConfig tunes the local SQLite database.
type DatabaseConfig struct {
	MaxOpenConns  int           `yaml:"max_open_conns"`
	MaxIdleConns  int           `yaml:"max_idle_conns"`
	BusyTimeout   time.Duration `yaml:"busy_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:      "http://localhost:8000",
		SecurityURL: "http://localhost:8000",
		Theme:       theme.Default,
		Identity: IdentityConfig{
			Mode:     IdentityKerberos,
			CacheTTL: 15 * time.Minute,
		},
		Notifications: NotificationsConfig{
			DefaultDuration: 5 * time.Second,
			MaxVisible:      5,
			ErrorBurst:      3,
			ErrorInterval:   2 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:  10,
			MaxIdleConns:  5,
			BusyTimeout:   5 * time.Second,
			SweepInterval: 10 * time.Minute,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.SecurityURL == "" {
		c.SecurityURL = c.APIURL
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Identity.Mode == "" {
		c.Identity.Mode = defaults.Identity.Mode
	}
	if c.Notifications.DefaultDuration == 0 {
		c.Notifications.DefaultDuration = defaults.Notifications.DefaultDuration
	}
	if c.Notifications.MaxVisible == 0 {
		c.Notifications.MaxVisible = defaults.Notifications.MaxVisible
	}
	if c.Notifications.ErrorBurst == 0 {
		c.Notifications.ErrorBurst = defaults.Notifications.ErrorBurst
	}
	if c.Notifications.ErrorInterval == 0 {
		c.Notifications.ErrorInterval = defaults.Notifications.ErrorInterval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Database.SweepInterval == 0 {
		c.Database.SweepInterval = defaults.Database.SweepInterval
	}
}

// Validate checks that the configuration is valid. Field problems are
// reported together as criterio.FieldErrors.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		validate.URLField("api_url", c.APIURL),
		validate.URLField("security_url", c.SecurityURL),
		criterio.Run("theme", c.Theme, themeExists),
		criterio.Run("identity.mode", c.Identity.Mode, validate.OneOf(IdentityKerberos, IdentityMock)),
		c.validateNumbers(),
	)
}

func (c *Config) validateNumbers() error {
	var errs criterio.FieldErrorsBuilder

	for field, d := range map[string]time.Duration{
		"identity.cache_ttl":             c.Identity.CacheTTL,
		"notifications.default_duration": c.Notifications.DefaultDuration,
		"notifications.error_interval":   c.Notifications.ErrorInterval,
		"database.busy_timeout":          c.Database.BusyTimeout,
		"database.sweep_interval":        c.Database.SweepInterval,
	} {
		if err := validate.NonNegative(d); err != nil {
			errs = errs.Append(field, err)
		}
	}

	atLeastOne := validate.AtLeast(1)
	for field, n := range map[string]int{
		"notifications.max_visible": c.Notifications.MaxVisible,
		"notifications.error_burst": c.Notifications.ErrorBurst,
		"database.max_open_conns":   c.Database.MaxOpenConns,
		"database.max_idle_conns":   c.Database.MaxIdleConns,
	} {
		if err := atLeastOne(n); err != nil {
			errs = errs.Append(field, err)
		}
	}

	return errs.ToError()
}

func themeExists(name string) error {
	if !theme.Exists(name) {
		return fmt.Errorf("unknown theme %q", name)
	}
	return nil
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "kpi.db")
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Identity.Mode == IdentityMock {
		warnings = append(warnings, ValidationWarning{
			Category: "Identity",
			Item:     "identity.mode",
			Message:  "mock identity is enabled; every request runs as the development user",
		})
	}

	if c.Notifications.MaxVisible > 10 {
		warnings = append(warnings, ValidationWarning{
			Category: "Notifications",
			Item:     "notifications.max_visible",
			Message:  fmt.Sprintf("%d banners may not fit on a small terminal", c.Notifications.MaxVisible),
		})
	}

	return warnings
}
