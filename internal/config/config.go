// Package config handles resolving configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stolasapp/mercato/internal/harness"
	"github.com/stolasapp/mercato/internal/locator"
	"github.com/stolasapp/mercato/internal/testdata"
)

// EnvPrefix prefixes the environment variables that override the file, e.g.
// MERCATO_BASE_URL or MERCATO_ACCOUNTS_ADMIN_PASSWORD.
const EnvPrefix = "MERCATO"

// Config is the resolved configuration of every command.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	DevMode  bool   `mapstructure:"dev_mode" yaml:"dev_mode"`
	// BaseURL is the marketplace under test.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Tier    string `mapstructure:"tier" yaml:"tier"`
	// DSN locates the store shared with the marketplace: a SQLite file path
	// or a postgres:// URL.
	DSN      string   `mapstructure:"dsn" yaml:"dsn"`
	Accounts Accounts `mapstructure:"accounts" yaml:"accounts"`
	VendorID uint64   `mapstructure:"vendor_id" yaml:"vendor_id,omitempty"`
	Browser  Browser  `mapstructure:"browser" yaml:"browser"`
	Run      Run      `mapstructure:"run" yaml:"run"`
	Site     Site     `mapstructure:"site" yaml:"site"`
}

// Accounts are the logins of each role.
type Accounts struct {
	Admin    testdata.Credentials `mapstructure:"admin" yaml:"admin"`
	Vendor   testdata.Credentials `mapstructure:"vendor" yaml:"vendor"`
	Customer testdata.Credentials `mapstructure:"customer" yaml:"customer"`
}

// Browser configures Chrome.
type Browser struct {
	ControlURL   string        `mapstructure:"control_url" yaml:"control_url,omitempty"`
	Bin          string        `mapstructure:"bin" yaml:"bin,omitempty"`
	Headless     bool          `mapstructure:"headless" yaml:"headless"`
	NoSandbox    bool          `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	AuthDir      string        `mapstructure:"auth_dir" yaml:"auth_dir"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryTimeout time.Duration `mapstructure:"retry_timeout" yaml:"retry_timeout"`
}

// Run tunes the scenario runner.
type Run struct {
	Parallel        int           `mapstructure:"parallel" yaml:"parallel"`
	ScenarioTimeout time.Duration `mapstructure:"scenario_timeout" yaml:"scenario_timeout"`
	Filter          string        `mapstructure:"filter" yaml:"filter,omitempty"`
	// RateLimit caps REST fixture calls per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	// Seed fixes generated test data; zero picks one per run.
	Seed uint64 `mapstructure:"seed" yaml:"seed,omitempty"`
}

// Site configures the stand-in marketplace served by `mercato serve`.
type Site struct {
	Address    string        `mapstructure:"address" yaml:"address"`
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the user must set the admin
// password.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		BaseURL:  "http://localhost:8080/",
		Tier:     string(locator.Lite),
		DSN:      filepath.Join(xdg.DataHome, "mercato", "db.sqlite"),
		Accounts: Accounts{
			Admin:    testdata.Credentials{Username: "admin"},
			Vendor:   testdata.Credentials{Username: "vendor"},
			Customer: testdata.Credentials{Username: "customer"},
		},
		Browser: Browser{
			Headless:     true,
			AuthDir:      filepath.Join(xdg.StateHome, "mercato", "auth"),
			Timeout:      harness.DefaultTimeout,
			RetryTimeout: harness.DefaultRetryTimeout,
		},
		Run: Run{
			Parallel:        2, //nolint:mnd // two suites keep the stand-in responsive
			ScenarioTimeout: 3 * time.Minute,
			RateLimit:       20, //nolint:mnd // requests per second
		},
		Site: Site{
			Address:    "localhost:8080",
			SessionTTL: 12 * time.Hour,
		},
	}
}

// Load loads a YAML configuration file from a path, layers MERCATO_*
// environment variables over it, merges it with defaults, and validates it
// for completeness.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	v := newViper()
	if err = v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	cfg := &Config{}
	if err = v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newViper returns a loader seeded with every default, so that each key can
// also be set from the environment.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	defaults := map[string]any{
		"log_level":                  def.LogLevel,
		"dev_mode":                   def.DevMode,
		"base_url":                   def.BaseURL,
		"tier":                       def.Tier,
		"dsn":                        def.DSN,
		"vendor_id":                  def.VendorID,
		"browser.control_url":        def.Browser.ControlURL,
		"browser.bin":                def.Browser.Bin,
		"browser.headless":           def.Browser.Headless,
		"browser.no_sandbox":         def.Browser.NoSandbox,
		"browser.auth_dir":           def.Browser.AuthDir,
		"browser.timeout":            def.Browser.Timeout,
		"browser.retry_timeout":      def.Browser.RetryTimeout,
		"run.parallel":               def.Run.Parallel,
		"run.scenario_timeout":       def.Run.ScenarioTimeout,
		"run.filter":                 def.Run.Filter,
		"run.rate_limit":             def.Run.RateLimit,
		"run.seed":                   def.Run.Seed,
		"site.address":               def.Site.Address,
		"site.session_ttl":           def.Site.SessionTTL,
		"accounts.admin.username":    def.Accounts.Admin.Username,
		"accounts.admin.password":    def.Accounts.Admin.Password,
		"accounts.vendor.username":   def.Accounts.Vendor.Username,
		"accounts.vendor.password":   def.Accounts.Vendor.Password,
		"accounts.customer.username": def.Accounts.Customer.Username,
		"accounts.customer.password": def.Accounts.Customer.Password,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Validate reports every missing or malformed setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if _, err := locator.ParseTier(c.Tier); err != nil {
		errs = append(errs, err)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn is required"))
	}
	if c.Accounts.Admin.Username == "" || c.Accounts.Admin.Password == "" {
		errs = append(errs, errors.New("accounts.admin username and password are required"))
	}
	if c.Run.Parallel < 1 {
		errs = append(errs, fmt.Errorf("run.parallel must be at least 1, got %d", c.Run.Parallel))
	}
	if c.Run.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("run.rate_limit must be positive, got %v", c.Run.RateLimit))
	}
	return errors.Join(errs...)
}

// Level is the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// ParsedTier is the product tier of the marketplace.
func (c *Config) ParsedTier() locator.Tier {
	tier, err := locator.ParseTier(c.Tier)
	if err != nil {
		return locator.Lite
	}
	return tier
}

// BrowserConfig converts the browser settings for the harness.
func (c *Config) BrowserConfig() harness.BrowserConfig {
	return harness.BrowserConfig{
		ControlURL: c.Browser.ControlURL,
		Bin:        c.Browser.Bin,
		Headless:   c.Browser.Headless,
		NoSandbox:  c.Browser.NoSandbox,
		AuthDir:    c.Browser.AuthDir,
		Page: harness.PageOptions{
			Timeout:      c.Browser.Timeout,
			RetryTimeout: c.Browser.RetryTimeout,
		},
	}
}

// Write stores cfg as YAML at path, creating its directory.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd // owner rwx access
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd // owner rw access
		return fmt.Errorf("failed to write config file to %s: %w", path, err)
	}
	return nil
}
