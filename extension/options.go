package extension

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/grove"

	lodging "github.com/xraph/lodging"
	"github.com/xraph/lodging/plugin"
	"github.com/xraph/lodging/store"
)

// Option configures the lodging Forge extension.
type Option func(*Extension)

// WithStore sets the store for the lodging engine. It takes precedence
// over the configured driver.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB supplies the database the postgres, sqlite and mongo
// drivers build their store on.
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) { e.groveDB = db }
}

// WithDriver selects the store backend.
func WithDriver(driver string) Option {
	return func(e *Extension) { e.config.Driver = driver }
}

// WithEngineOption passes a lodging.Option through to the underlying engine.
func WithEngineOption(opt lodging.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a lodging plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, lodging.WithPlugin(p))
	}
}

// WithRegisterer sets where the metrics plugin registers its collectors
// (default: prometheus.DefaultRegisterer).
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Extension) { e.registerer = reg }
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithDisableMetrics skips the Prometheus metrics plugin.
func WithDisableMetrics() Option {
	return func(e *Extension) { e.config.DisableMetrics = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithScanInterval sets how often the checkout scanner runs.
func WithScanInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.ScanInterval = d }
}

// WithAlertHorizon sets how far ahead of checkout alerts fire.
func WithAlertHorizon(d time.Duration) Option {
	return func(e *Extension) { e.config.AlertHorizon = d }
}

// WithTaxRate sets the invoice tax rate, e.g. "0.1".
func WithTaxRate(rate string) Option {
	return func(e *Extension) { e.config.TaxRate = rate }
}

// WithTimezone sets the IANA zone for day and month boundaries.
func WithTimezone(name string) Option {
	return func(e *Extension) { e.config.Timezone = name }
}
