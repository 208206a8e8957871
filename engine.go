package lodging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/plugin"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/store"
)

// Defaults used when no option overrides them.
const (
	DefaultScanInterval = time.Minute
	DefaultAlertBuffer  = 64
	DefaultCurrency     = "vnd"
)

// DefaultTaxRate is the VAT applied to invoices.
var DefaultTaxRate = decimal.NewFromFloat(0.08)

// Engine is the room lifecycle and billing engine. All mutations are
// serialized; each one reads a copy of the unit, validates, and writes once.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	validate *validator.Validate

	// mu serializes every mutation.
	mu sync.Mutex

	// Checkout alert worker
	scanner *alert.Scanner
	alerts  chan alert.Notification
	cron    *cron.Cron
	running bool
	runMu   sync.Mutex

	// Configuration
	scanInterval time.Duration
	taxRate      decimal.Decimal
	currency     string
	location     *time.Location
	clock        func() time.Time
	alertBuffer  int
	horizon      time.Duration
	skipMigrate  bool
}

// New creates a new Engine backed by s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:        s,
		plugins:      plugin.NewRegistry(),
		logger:       slog.Default(),
		validate:     newValidator(),
		scanInterval: DefaultScanInterval,
		taxRate:      DefaultTaxRate,
		currency:     DefaultCurrency,
		location:     time.UTC,
		clock:        time.Now,
		alertBuffer:  DefaultAlertBuffer,
		horizon:      alert.DefaultHorizon,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.scanner = alert.NewScanner(e.horizon)
	e.alerts = make(chan alert.Notification, e.alertBuffer)
	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithScanInterval sets how often the checkout scanner runs.
func WithScanInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.scanInterval = d
		}
	}
}

// WithAlertHorizon sets how far ahead of checkout alerts fire.
func WithAlertHorizon(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.horizon = d
		}
	}
}

// WithTaxRate sets the invoice tax rate as a fraction (0.08 for 8%).
func WithTaxRate(r decimal.Decimal) Option {
	return func(e *Engine) {
		if !r.IsNegative() {
			e.taxRate = r
		}
	}
}

// WithCurrency sets the reporting currency.
func WithCurrency(currency string) Option {
	return func(e *Engine) {
		if currency != "" {
			e.currency = currency
		}
	}
}

// WithLocation sets the zone calendar months and days are cut in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithAlertBuffer sets the capacity of the Alerts channel.
func WithAlertBuffer(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.alertBuffer = n
		}
	}
}

// WithoutMigrate makes Start skip store migration, for schemas managed
// outside the engine.
func WithoutMigrate() Option {
	return func(e *Engine) { e.skipMigrate = true }
}

// Start migrates the store, initializes plugins and schedules the
// checkout scanner.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return ErrAlreadyStarted
	}

	if !e.skipMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return err
		}
	}

	e.plugins.EmitInit(ctx, e)

	c := cron.New(cron.WithLocation(e.location))
	spec := fmt.Sprintf("@every %s", e.scanInterval)
	if _, err := c.AddFunc(spec, func() {
		if _, err := e.ScanNow(context.Background()); err != nil {
			e.logger.Error("checkout scan failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("lodging: schedule scanner: %w", err)
	}
	c.Start()
	e.cron = c
	e.running = true

	e.logger.Info("lodging engine started",
		"scan_interval", e.scanInterval,
		"alert_horizon", e.scanner.Horizon(),
		"tax_rate", e.taxRate.String(),
		"currency", e.currency,
	)

	return nil
}

// Stop waits for a running scan to finish, shuts plugins down and closes
// the store.
func (e *Engine) Stop() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return ErrNotStarted
	}

	<-e.cron.Stop().Done()
	e.running = false

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	e.logger.Info("lodging engine stopped")
	return e.store.Close()
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// TaxRate returns the configured invoice tax rate.
func (e *Engine) TaxRate() decimal.Decimal { return e.taxRate }

// Currency returns the reporting currency.
func (e *Engine) Currency() string { return e.currency }

func (e *Engine) now() time.Time { return e.clock() }

// ──────────────────────────────────────────────────
// Checkout alerts
// ──────────────────────────────────────────────────

// Alerts delivers each fresh checkout notification once. Sends never
// block; when the buffer is full the notification is dropped from the
// channel but stays visible through ActiveAlerts.
func (e *Engine) Alerts() <-chan alert.Notification { return e.alerts }

// ActiveAlerts returns every unit currently inside the alert horizon as of
// the last scan, ordered by checkout.
func (e *Engine) ActiveAlerts() []alert.Notification {
	return e.scanner.Active()
}

// ScanNow runs one scanner tick against a fresh read of the store.
func (e *Engine) ScanNow(ctx context.Context) (alert.Result, error) {
	start := time.Now()
	units, err := e.store.ListUnits(ctx, room.ListOpts{
		Statuses: []room.Status{room.StatusOccupied, room.StatusDueOut},
	})
	if err != nil {
		return alert.Result{}, fmt.Errorf("lodging: list units for scan: %w", err)
	}

	res := e.scanner.Scan(e.now(), units)

	for _, sk := range res.Skipped {
		e.logger.Warn("checkout scan skipped unit",
			"unit_id", sk.UnitID.String(),
			"reason", sk.Reason,
		)
	}
	for _, n := range res.Fresh {
		select {
		case e.alerts <- n:
		default:
			e.logger.Warn("checkout alert dropped, channel full",
				"unit_id", n.UnitID.String(),
				"unit_label", n.UnitLabel,
			)
		}
		e.plugins.EmitCheckoutAlert(ctx, n)
	}

	elapsed := time.Since(start)
	e.plugins.EmitScanCompleted(ctx, len(res.Active), len(res.Fresh), elapsed)
	e.logger.Debug("checkout scan completed",
		"active", len(res.Active),
		"fresh", len(res.Fresh),
		"skipped", len(res.Skipped),
		"elapsed", elapsed,
	)
	return res, nil
}

// ──────────────────────────────────────────────────
// Shared helpers
// ──────────────────────────────────────────────────

// mutate loads a copy of the unit, applies fn and writes the result once.
// The caller must hold e.mu. Nothing is written when fn fails.
func (e *Engine) mutate(ctx context.Context, unitID id.UnitID, fn func(u *room.Unit) error) (*room.Unit, room.Status, error) {
	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, "", err
	}
	from := u.Status
	if err := fn(u); err != nil {
		return nil, from, err
	}
	u.Touch(e.now())
	if err := e.store.UpdateUnit(ctx, u); err != nil {
		return nil, from, fmt.Errorf("lodging: update unit %s: %w", unitID, err)
	}
	return u, from, nil
}

// emitStatus fires the status hook when a mutation moved the unit.
func (e *Engine) emitStatus(ctx context.Context, u *room.Unit, from room.Status) {
	if u.Status == from {
		return
	}
	e.plugins.EmitStatusChanged(ctx, u.ID, from, u.Status)
	e.logger.Info("unit status changed",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"from", string(from),
		"to", string(u.Status),
	)
}
