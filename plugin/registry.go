package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so each emit walks only the plugins that
// implement the hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onUnitCreated            []OnUnitCreated
	onUnitDeleted            []OnUnitDeleted
	onStatusChanged          []OnStatusChanged
	onCheckedIn              []OnCheckedIn
	onChargeAdded            []OnChargeAdded
	onChargeRemoved          []OnChargeRemoved
	onFolioSettled           []OnFolioSettled
	onTenancyStarted         []OnTenancyStarted
	onTenancyEnded           []OnTenancyEnded
	onMonthlyPaymentRecorded []OnMonthlyPaymentRecorded
	onMonthBilled            []OnMonthBilled
	onCheckoutAlert          []OnCheckoutAlert
	onScanCompleted          []OnScanCompleted
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnUnitCreated); ok {
		r.onUnitCreated = append(r.onUnitCreated, v)
	}
	if v, ok := p.(OnUnitDeleted); ok {
		r.onUnitDeleted = append(r.onUnitDeleted, v)
	}
	if v, ok := p.(OnStatusChanged); ok {
		r.onStatusChanged = append(r.onStatusChanged, v)
	}
	if v, ok := p.(OnCheckedIn); ok {
		r.onCheckedIn = append(r.onCheckedIn, v)
	}
	if v, ok := p.(OnChargeAdded); ok {
		r.onChargeAdded = append(r.onChargeAdded, v)
	}
	if v, ok := p.(OnChargeRemoved); ok {
		r.onChargeRemoved = append(r.onChargeRemoved, v)
	}
	if v, ok := p.(OnFolioSettled); ok {
		r.onFolioSettled = append(r.onFolioSettled, v)
	}
	if v, ok := p.(OnTenancyStarted); ok {
		r.onTenancyStarted = append(r.onTenancyStarted, v)
	}
	if v, ok := p.(OnTenancyEnded); ok {
		r.onTenancyEnded = append(r.onTenancyEnded, v)
	}
	if v, ok := p.(OnMonthlyPaymentRecorded); ok {
		r.onMonthlyPaymentRecorded = append(r.onMonthlyPaymentRecorded, v)
	}
	if v, ok := p.(OnMonthBilled); ok {
		r.onMonthBilled = append(r.onMonthBilled, v)
	}
	if v, ok := p.(OnCheckoutAlert); ok {
		r.onCheckoutAlert = append(r.onCheckoutAlert, v)
	}
	if v, ok := p.(OnScanCompleted); ok {
		r.onScanCompleted = append(r.onScanCompleted, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", Implements(p),
	)

	return nil
}

// Implements lists the hook interfaces p implements.
func Implements(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnUnitCreated)(nil)).Elem(), "OnUnitCreated")
	checkInterface(reflect.TypeOf((*OnUnitDeleted)(nil)).Elem(), "OnUnitDeleted")
	checkInterface(reflect.TypeOf((*OnStatusChanged)(nil)).Elem(), "OnStatusChanged")
	checkInterface(reflect.TypeOf((*OnCheckedIn)(nil)).Elem(), "OnCheckedIn")
	checkInterface(reflect.TypeOf((*OnChargeAdded)(nil)).Elem(), "OnChargeAdded")
	checkInterface(reflect.TypeOf((*OnChargeRemoved)(nil)).Elem(), "OnChargeRemoved")
	checkInterface(reflect.TypeOf((*OnFolioSettled)(nil)).Elem(), "OnFolioSettled")
	checkInterface(reflect.TypeOf((*OnTenancyStarted)(nil)).Elem(), "OnTenancyStarted")
	checkInterface(reflect.TypeOf((*OnTenancyEnded)(nil)).Elem(), "OnTenancyEnded")
	checkInterface(reflect.TypeOf((*OnMonthlyPaymentRecorded)(nil)).Elem(), "OnMonthlyPaymentRecorded")
	checkInterface(reflect.TypeOf((*OnMonthBilled)(nil)).Elem(), "OnMonthBilled")
	checkInterface(reflect.TypeOf((*OnCheckoutAlert)(nil)).Elem(), "OnCheckoutAlert")
	checkInterface(reflect.TypeOf((*OnScanCompleted)(nil)).Elem(), "OnScanCompleted")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUnitCreated emits a unit created event.
func (r *Registry) EmitUnitCreated(ctx context.Context, u *room.Unit) {
	r.mu.RLock()
	plugins := r.onUnitCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnitCreated(ctx, u)
		}); err != nil {
			r.logger.Warn("plugin OnUnitCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitUnitDeleted emits a unit deleted event.
func (r *Registry) EmitUnitDeleted(ctx context.Context, unitID id.UnitID) {
	r.mu.RLock()
	plugins := r.onUnitDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnitDeleted(ctx, unitID)
		}); err != nil {
			r.logger.Warn("plugin OnUnitDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStatusChanged emits a status transition event.
func (r *Registry) EmitStatusChanged(ctx context.Context, unitID id.UnitID, from, to room.Status) {
	r.mu.RLock()
	plugins := r.onStatusChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStatusChanged(ctx, unitID, from, to)
		}); err != nil {
			r.logger.Warn("plugin OnStatusChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCheckedIn emits a check-in event.
func (r *Registry) EmitCheckedIn(ctx context.Context, u *room.Unit, occ *folio.Occupancy) {
	r.mu.RLock()
	plugins := r.onCheckedIn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCheckedIn(ctx, u, occ)
		}); err != nil {
			r.logger.Warn("plugin OnCheckedIn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitChargeAdded emits a folio charge event.
func (r *Registry) EmitChargeAdded(ctx context.Context, unitID id.UnitID, description string, amount types.Money) {
	r.mu.RLock()
	plugins := r.onChargeAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnChargeAdded(ctx, unitID, description, amount)
		}); err != nil {
			r.logger.Warn("plugin OnChargeAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitChargeRemoved emits a folio line removal event.
func (r *Registry) EmitChargeRemoved(ctx context.Context, unitID id.UnitID, lineID id.ID) {
	r.mu.RLock()
	plugins := r.onChargeRemoved
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnChargeRemoved(ctx, unitID, lineID)
		}); err != nil {
			r.logger.Warn("plugin OnChargeRemoved failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFolioSettled emits a settlement event.
func (r *Registry) EmitFolioSettled(ctx context.Context, pay *payment.Payment) {
	r.mu.RLock()
	plugins := r.onFolioSettled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFolioSettled(ctx, pay)
		}); err != nil {
			r.logger.Warn("plugin OnFolioSettled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTenancyStarted emits a move-in event.
func (r *Registry) EmitTenancyStarted(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) {
	r.mu.RLock()
	plugins := r.onTenancyStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTenancyStarted(ctx, unitID, t)
		}); err != nil {
			r.logger.Warn("plugin OnTenancyStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTenancyEnded emits a move-out event.
func (r *Registry) EmitTenancyEnded(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) {
	r.mu.RLock()
	plugins := r.onTenancyEnded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTenancyEnded(ctx, unitID, t)
		}); err != nil {
			r.logger.Warn("plugin OnTenancyEnded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMonthlyPaymentRecorded emits a monthly payment event.
func (r *Registry) EmitMonthlyPaymentRecorded(ctx context.Context, unitID id.UnitID, rental tenancy.MonthlyRental) {
	r.mu.RLock()
	plugins := r.onMonthlyPaymentRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMonthlyPaymentRecorded(ctx, unitID, rental)
		}); err != nil {
			r.logger.Warn("plugin OnMonthlyPaymentRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitMonthBilled emits an unpaid monthly bill event.
func (r *Registry) EmitMonthBilled(ctx context.Context, unitID id.UnitID, rental tenancy.MonthlyRental) {
	r.mu.RLock()
	plugins := r.onMonthBilled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnMonthBilled(ctx, unitID, rental)
		}); err != nil {
			r.logger.Warn("plugin OnMonthBilled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCheckoutAlert emits a fresh checkout notification.
func (r *Registry) EmitCheckoutAlert(ctx context.Context, n alert.Notification) {
	r.mu.RLock()
	plugins := r.onCheckoutAlert
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCheckoutAlert(ctx, n)
		}); err != nil {
			r.logger.Warn("plugin OnCheckoutAlert failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitScanCompleted emits a scanner tick summary.
func (r *Registry) EmitScanCompleted(ctx context.Context, active, fresh int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onScanCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnScanCompleted(ctx, active, fresh, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnScanCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block engine operations.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
