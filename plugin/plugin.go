// Package plugin provides lifecycle hooks into the lodging engine.
// Plugins implement any subset of the hook interfaces below; the registry
// discovers them once at registration time.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *lodging.Engine.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Unit hooks
// ──────────────────────────────────────────────────

// OnUnitCreated is called after a unit is stored.
type OnUnitCreated interface {
	Plugin
	OnUnitCreated(ctx context.Context, u *room.Unit) error
}

// OnUnitDeleted is called for each unit removed, including units removed
// as part of a floor or building.
type OnUnitDeleted interface {
	Plugin
	OnUnitDeleted(ctx context.Context, unitID id.UnitID) error
}

// OnStatusChanged is called after every committed status transition.
type OnStatusChanged interface {
	Plugin
	OnStatusChanged(ctx context.Context, unitID id.UnitID, from, to room.Status) error
}

// ──────────────────────────────────────────────────
// Stay hooks
// ──────────────────────────────────────────────────

// OnCheckedIn is called after a hotel or guesthouse check-in.
type OnCheckedIn interface {
	Plugin
	OnCheckedIn(ctx context.Context, u *room.Unit, occ *folio.Occupancy) error
}

// OnChargeAdded is called when a service or incidental line is added to a folio.
type OnChargeAdded interface {
	Plugin
	OnChargeAdded(ctx context.Context, unitID id.UnitID, description string, amount types.Money) error
}

// OnChargeRemoved is called when a service or incidental line is removed
// from a folio.
type OnChargeRemoved interface {
	Plugin
	OnChargeRemoved(ctx context.Context, unitID id.UnitID, lineID id.ID) error
}

// OnFolioSettled is called after a folio is settled and its payment stored.
type OnFolioSettled interface {
	Plugin
	OnFolioSettled(ctx context.Context, p *payment.Payment) error
}

// ──────────────────────────────────────────────────
// Tenancy hooks
// ──────────────────────────────────────────────────

// OnTenancyStarted is called after a boarding-house move-in.
type OnTenancyStarted interface {
	Plugin
	OnTenancyStarted(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) error
}

// OnTenancyEnded is called after a tenancy and its ledger are discarded.
type OnTenancyEnded interface {
	Plugin
	OnTenancyEnded(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) error
}

// OnMonthlyPaymentRecorded is called after a month is recorded as paid.
type OnMonthlyPaymentRecorded interface {
	Plugin
	OnMonthlyPaymentRecorded(ctx context.Context, unitID id.UnitID, r tenancy.MonthlyRental) error
}

// OnMonthBilled is called after a month is billed as unpaid.
type OnMonthBilled interface {
	Plugin
	OnMonthBilled(ctx context.Context, unitID id.UnitID, r tenancy.MonthlyRental) error
}

// ──────────────────────────────────────────────────
// Checkout alert hooks
// ──────────────────────────────────────────────────

// OnCheckoutAlert is called once for each fresh checkout notification.
type OnCheckoutAlert interface {
	Plugin
	OnCheckoutAlert(ctx context.Context, n alert.Notification) error
}

// OnScanCompleted is called after every scanner tick.
type OnScanCompleted interface {
	Plugin
	OnScanCompleted(ctx context.Context, active, fresh int, elapsed time.Duration) error
}
