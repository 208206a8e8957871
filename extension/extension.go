// Package extension provides the Forge extension adapter for the lodging
// engine.
//
// It implements the forge.Extension interface to integrate the engine
// into a Forge application with store selection, DI registration, and
// lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.lodging" or "lodging" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	lodging "github.com/xraph/lodging"
	"github.com/xraph/lodging/observability"
	"github.com/xraph/lodging/store"
	"github.com/xraph/lodging/store/memory"
	"github.com/xraph/lodging/store/mongo"
	"github.com/xraph/lodging/store/postgres"
	"github.com/xraph/lodging/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "lodging"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Room lifecycle and billing engine for hotels and boarding houses"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the lodging engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *lodging.Engine
	store      store.Store
	groveDB    *grove.DB
	registerer prometheus.Registerer
	metrics    *observability.MetricsExtension
	engineOpts []lodging.Option
}

// New creates a new lodging Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine.
// This is nil until Register is called.
func (e *Extension) Engine() *lodging.Engine { return e.engine }

// Metrics returns the metrics plugin, or nil when metrics are disabled.
func (e *Extension) Metrics() *observability.MetricsExtension { return e.metrics }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	eng, err := e.build()
	if err != nil {
		return err
	}
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*lodging.Engine, error) {
		return e.engine, nil
	})
}

// build resolves the store and engine options from the loaded config.
func (e *Extension) build() (*lodging.Engine, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	if e.store == nil {
		s, err := openStore(e.config.Driver, e.groveDB)
		if err != nil {
			return nil, err
		}
		e.store = s
	}

	opts, err := e.buildEngineOpts()
	if err != nil {
		return nil, err
	}
	return lodging.New(e.store, opts...), nil
}

// openStore builds the backend named by driver.
func openStore(driver string, db *grove.DB) (store.Store, error) {
	if driver == DriverMemory {
		return memory.New(), nil
	}
	if db == nil {
		return nil, fmt.Errorf("lodging: driver %q needs a grove database (WithGroveDB)", driver)
	}
	switch driver {
	case DriverPostgres:
		return postgres.New(db), nil
	case DriverSQLite:
		return sqlite.New(db), nil
	case DriverMongo:
		return mongo.New(db), nil
	default:
		return nil, fmt.Errorf("lodging: unknown store driver %q", driver)
	}
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("lodging: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("lodging: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs lodging.Option values from the resolved config.
func (e *Extension) buildEngineOpts() ([]lodging.Option, error) {
	rate, err := e.config.taxRate()
	if err != nil {
		return nil, err
	}
	loc, err := e.config.location()
	if err != nil {
		return nil, err
	}

	opts := make([]lodging.Option, 0, len(e.engineOpts)+8)

	// Apply config-derived options.
	opts = append(opts,
		lodging.WithScanInterval(e.config.ScanInterval),
		lodging.WithAlertHorizon(e.config.AlertHorizon),
		lodging.WithAlertBuffer(e.config.AlertBuffer),
		lodging.WithTaxRate(rate),
		lodging.WithCurrency(e.config.Currency),
		lodging.WithLocation(loc),
	)
	if e.config.DisableMigrate {
		opts = append(opts, lodging.WithoutMigrate())
	}
	if !e.config.DisableMetrics {
		e.metrics = observability.NewMetricsExtension(observability.NewPrometheusFactory(e.registerer))
		opts = append(opts, lodging.WithPlugin(e.metrics))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("lodging: configuration is required but not found in config files; " +
				"ensure 'extensions.lodging' or 'lodging' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("lodging: configuration loaded",
		forge.F("driver", e.config.Driver),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("scan_interval", e.config.ScanInterval),
		forge.F("alert_horizon", e.config.AlertHorizon),
		forge.F("tax_rate", e.config.TaxRate),
		forge.F("timezone", e.config.Timezone),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.lodging", "lodging"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("lodging: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("lodging: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}
