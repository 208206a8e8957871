// Package audithook bridges lodging lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/plugin"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnUnitCreated            = (*Extension)(nil)
	_ plugin.OnUnitDeleted            = (*Extension)(nil)
	_ plugin.OnStatusChanged          = (*Extension)(nil)
	_ plugin.OnCheckedIn              = (*Extension)(nil)
	_ plugin.OnChargeAdded            = (*Extension)(nil)
	_ plugin.OnChargeRemoved          = (*Extension)(nil)
	_ plugin.OnFolioSettled           = (*Extension)(nil)
	_ plugin.OnTenancyStarted         = (*Extension)(nil)
	_ plugin.OnTenancyEnded           = (*Extension)(nil)
	_ plugin.OnMonthlyPaymentRecorded = (*Extension)(nil)
	_ plugin.OnMonthBilled            = (*Extension)(nil)
	_ plugin.OnCheckoutAlert          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It matches chronicle.Emitter; callers inject the concrete backend at
// wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges lodging lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Unit hooks
// ──────────────────────────────────────────────────

// OnUnitCreated implements plugin.OnUnitCreated.
func (e *Extension) OnUnitCreated(ctx context.Context, u *room.Unit) error {
	return e.record(ctx, ActionUnitCreated, SeverityInfo, OutcomeSuccess,
		ResourceUnit, u.ID.String(), CategoryProperty, nil,
		"label", u.Label,
		"mode", string(u.Mode),
		"building_id", u.BuildingID.String(),
	)
}

// OnUnitDeleted implements plugin.OnUnitDeleted.
func (e *Extension) OnUnitDeleted(ctx context.Context, unitID id.UnitID) error {
	return e.record(ctx, ActionUnitDeleted, SeverityWarning, OutcomeSuccess,
		ResourceUnit, unitID.String(), CategoryProperty, nil,
	)
}

// OnStatusChanged implements plugin.OnStatusChanged.
func (e *Extension) OnStatusChanged(ctx context.Context, unitID id.UnitID, from, to room.Status) error {
	return e.record(ctx, ActionStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourceUnit, unitID.String(), CategoryHousekeeping, nil,
		"from", string(from),
		"to", string(to),
	)
}

// ──────────────────────────────────────────────────
// Stay hooks
// ──────────────────────────────────────────────────

// OnCheckedIn implements plugin.OnCheckedIn.
func (e *Extension) OnCheckedIn(ctx context.Context, u *room.Unit, occ *folio.Occupancy) error {
	return e.record(ctx, ActionCheckedIn, SeverityInfo, OutcomeSuccess,
		ResourceFolio, occ.ID.String(), CategoryStay, nil,
		"unit_id", u.ID.String(),
		"guest_name", occ.GuestName,
		"basis", string(occ.Basis),
		"check_out", occ.CheckOut,
	)
}

// OnChargeAdded implements plugin.OnChargeAdded.
func (e *Extension) OnChargeAdded(ctx context.Context, unitID id.UnitID, description string, amount types.Money) error {
	return e.record(ctx, ActionChargeAdded, SeverityInfo, OutcomeSuccess,
		ResourceFolio, unitID.String(), CategoryBilling, nil,
		"description", description,
		"amount", amount.Amount,
		"currency", amount.Currency,
	)
}

// OnChargeRemoved implements plugin.OnChargeRemoved.
func (e *Extension) OnChargeRemoved(ctx context.Context, unitID id.UnitID, lineID id.ID) error {
	return e.record(ctx, ActionChargeRemoved, SeverityWarning, OutcomeSuccess,
		ResourceFolio, unitID.String(), CategoryBilling, nil,
		"line_id", lineID.String(),
	)
}

// OnFolioSettled implements plugin.OnFolioSettled. Invoices are recorded
// under their own action so they can be audited separately.
func (e *Extension) OnFolioSettled(ctx context.Context, p *payment.Payment) error {
	action := ActionFolioSettled
	kv := []any{
		"unit_id", p.UnitID.String(),
		"total", p.Total.Amount,
		"currency", p.Currency,
		"method", string(p.Method),
	}
	if p.Document == payment.DocumentInvoice {
		action = ActionInvoiceIssued
		if p.Company != nil {
			kv = append(kv, "tax_code", p.Company.TaxCode)
		}
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		kv...,
	)
}

// ──────────────────────────────────────────────────
// Tenancy hooks
// ──────────────────────────────────────────────────

// OnTenancyStarted implements plugin.OnTenancyStarted.
func (e *Extension) OnTenancyStarted(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) error {
	return e.record(ctx, ActionTenancyStarted, SeverityInfo, OutcomeSuccess,
		ResourceTenancy, t.ID.String(), CategoryStay, nil,
		"unit_id", unitID.String(),
		"tenant_name", t.TenantName,
		"monthly_rent", t.MonthlyRent.Amount,
	)
}

// OnTenancyEnded implements plugin.OnTenancyEnded.
func (e *Extension) OnTenancyEnded(ctx context.Context, unitID id.UnitID, t *tenancy.Tenancy) error {
	outstanding := t.Outstanding()
	severity, outcome := SeverityInfo, OutcomeSuccess
	if outstanding.IsPositive() {
		severity, outcome = SeverityWarning, OutcomePartial
	}
	return e.record(ctx, ActionTenancyEnded, severity, outcome,
		ResourceTenancy, t.ID.String(), CategoryStay, nil,
		"unit_id", unitID.String(),
		"months_recorded", t.Ledger.Len(),
		"outstanding", outstanding.Amount,
	)
}

// OnMonthlyPaymentRecorded implements plugin.OnMonthlyPaymentRecorded.
func (e *Extension) OnMonthlyPaymentRecorded(ctx context.Context, unitID id.UnitID, r tenancy.MonthlyRental) error {
	return e.record(ctx, ActionMonthPaid, SeverityInfo, OutcomeSuccess,
		ResourceTenancy, unitID.String(), CategoryPayment, nil,
		"month", r.Month.String(),
		"paid_amount", r.PaidAmount.Amount,
		"method", string(r.Method),
	)
}

// OnMonthBilled implements plugin.OnMonthBilled.
func (e *Extension) OnMonthBilled(ctx context.Context, unitID id.UnitID, r tenancy.MonthlyRental) error {
	return e.record(ctx, ActionMonthBilled, SeverityInfo, OutcomeSuccess,
		ResourceTenancy, unitID.String(), CategoryBilling, nil,
		"month", r.Month.String(),
		"total", r.Total.Amount,
	)
}

// ──────────────────────────────────────────────────
// Alert hooks
// ──────────────────────────────────────────────────

// OnCheckoutAlert implements plugin.OnCheckoutAlert.
func (e *Extension) OnCheckoutAlert(ctx context.Context, n alert.Notification) error {
	return e.record(ctx, ActionCheckoutDue, SeverityInfo, OutcomeSuccess,
		ResourceAlert, n.UnitID.String(), CategoryOperations, nil,
		"unit_label", n.UnitLabel,
		"minutes_until_checkout", n.MinutesUntilCheckout,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
