package extension

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by the extension.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config holds the lodging extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.lodging" or "lodging" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableMetrics skips registering the Prometheus metrics plugin.
	DisableMetrics bool `json:"disable_metrics" mapstructure:"disable_metrics" yaml:"disable_metrics"`

	// Driver selects the store backend (memory, postgres, sqlite, mongo).
	// Every driver except memory needs a grove.DB supplied with WithGroveDB.
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// ScanInterval is how often the checkout scanner runs (default: 1m).
	ScanInterval time.Duration `json:"scan_interval" mapstructure:"scan_interval" yaml:"scan_interval"`

	// AlertHorizon is how far ahead of a checkout an alert fires (default: 1h).
	AlertHorizon time.Duration `json:"alert_horizon" mapstructure:"alert_horizon" yaml:"alert_horizon"`

	// AlertBuffer is the capacity of the engine's alert channel (default: 64).
	AlertBuffer int `json:"alert_buffer" mapstructure:"alert_buffer" yaml:"alert_buffer"`

	// TaxRate is the invoice tax rate as a decimal string (default: "0.08").
	TaxRate string `json:"tax_rate" mapstructure:"tax_rate" yaml:"tax_rate"`

	// Currency is the property's operating currency (default: "vnd").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// Timezone is the IANA zone used for day and month boundaries
	// (default: "Asia/Ho_Chi_Minh").
	Timezone string `json:"timezone" mapstructure:"timezone" yaml:"timezone"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:       DriverMemory,
		ScanInterval: time.Minute,
		AlertHorizon: time.Hour,
		AlertBuffer:  64,
		TaxRate:      "0.08",
		Currency:     "vnd",
		Timezone:     "Asia/Ho_Chi_Minh",
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("lodging: unknown store driver %q", c.Driver)
	}
	if c.ScanInterval < time.Second {
		return errors.New("lodging: scan_interval must be at least 1s")
	}
	if c.AlertHorizon <= 0 {
		return errors.New("lodging: alert_horizon must be positive")
	}
	if _, err := c.taxRate(); err != nil {
		return err
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c Config) taxRate() (decimal.Decimal, error) {
	r, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lodging: tax_rate %q: %w", c.TaxRate, err)
	}
	if r.IsNegative() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("lodging: tax_rate %s must be in [0, 1)", r)
	}
	return r, nil
}

func (c Config) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("lodging: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// fileLayout accepts both the namespaced and the top-level key.
type fileLayout struct {
	Extensions struct {
		Lodging *Config `yaml:"lodging"`
	} `yaml:"extensions"`
	Lodging *Config `yaml:"lodging"`
}

// LoadConfigFile reads a YAML file outside of a Forge app. The
// "extensions.lodging" key wins over "lodging"; missing fields take
// their defaults.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("lodging: read config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes YAML bytes the way LoadConfigFile does.
func ParseConfig(raw []byte) (Config, error) {
	var doc fileLayout
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("lodging: parse config: %w", err)
	}
	cfg := doc.Extensions.Lodging
	if cfg == nil {
		cfg = doc.Lodging
	}
	if cfg == nil {
		return Config{}, errors.New("lodging: config has no 'extensions.lodging' or 'lodging' key")
	}
	merged := mergeWithDefaults(*cfg)
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Driver == "" {
		cfg.Driver = defaults.Driver
	}
	if cfg.ScanInterval == 0 {
		cfg.ScanInterval = defaults.ScanInterval
	}
	if cfg.AlertHorizon == 0 {
		cfg.AlertHorizon = defaults.AlertHorizon
	}
	if cfg.AlertBuffer == 0 {
		cfg.AlertBuffer = defaults.AlertBuffer
	}
	if cfg.TaxRate == "" {
		cfg.TaxRate = defaults.TaxRate
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.DisableMetrics {
		yamlConfig.DisableMetrics = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Driver == "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}
	if yamlConfig.TaxRate == "" {
		yamlConfig.TaxRate = programmaticConfig.TaxRate
	}
	if yamlConfig.Currency == "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.Timezone == "" {
		yamlConfig.Timezone = programmaticConfig.Timezone
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.ScanInterval == 0 {
		yamlConfig.ScanInterval = programmaticConfig.ScanInterval
	}
	if yamlConfig.AlertHorizon == 0 {
		yamlConfig.AlertHorizon = programmaticConfig.AlertHorizon
	}
	if yamlConfig.AlertBuffer == 0 {
		yamlConfig.AlertBuffer = programmaticConfig.AlertBuffer
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
