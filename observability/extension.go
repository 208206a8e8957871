// Package observability provides a metrics extension for the lodging engine
// that records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/plugin"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnUnitCreated            = (*MetricsExtension)(nil)
	_ plugin.OnUnitDeleted            = (*MetricsExtension)(nil)
	_ plugin.OnStatusChanged          = (*MetricsExtension)(nil)
	_ plugin.OnCheckedIn              = (*MetricsExtension)(nil)
	_ plugin.OnChargeAdded            = (*MetricsExtension)(nil)
	_ plugin.OnChargeRemoved          = (*MetricsExtension)(nil)
	_ plugin.OnFolioSettled           = (*MetricsExtension)(nil)
	_ plugin.OnTenancyStarted         = (*MetricsExtension)(nil)
	_ plugin.OnTenancyEnded           = (*MetricsExtension)(nil)
	_ plugin.OnMonthlyPaymentRecorded = (*MetricsExtension)(nil)
	_ plugin.OnMonthBilled            = (*MetricsExtension)(nil)
	_ plugin.OnCheckoutAlert          = (*MetricsExtension)(nil)
	_ plugin.OnScanCompleted          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// Gauge interface for metrics that go up and down.
type Gauge interface {
	Set(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
	Gauge(name string) Gauge
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an engine plugin to track occupancy and billing.
type MetricsExtension struct {
	factory MetricFactory

	// Unit metrics
	UnitsCreated  Counter
	UnitsDeleted  Counter
	StatusChanges Counter
	CheckOuts     Counter

	// Stay metrics
	CheckIns       Counter
	ChargesAdded   Counter
	ChargesRemoved Counter
	ChargeAmount   Histogram

	// Settlement metrics
	FoliosSettled  Counter
	InvoicesIssued Counter
	FolioTotal     Histogram

	// Tenancy metrics
	TenanciesStarted  Counter
	TenanciesEnded    Counter
	MonthlyPayments   Counter
	MonthsBilled      Counter
	MonthlyPaidAmount Histogram

	// Scanner metrics
	CheckoutAlerts Counter
	ActiveAlerts   Gauge
	ScanLatency    Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions or NewPrometheusFactory elsewhere.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		UnitsCreated:  factory.Counter("lodging.unit.created"),
		UnitsDeleted:  factory.Counter("lodging.unit.deleted"),
		StatusChanges: factory.Counter("lodging.unit.status_changes"),
		CheckOuts:     factory.Counter("lodging.unit.checkouts"),

		CheckIns:       factory.Counter("lodging.stay.checkins"),
		ChargesAdded:   factory.Counter("lodging.folio.charges"),
		ChargesRemoved: factory.Counter("lodging.folio.charges_removed"),
		ChargeAmount:   factory.Histogram("lodging.folio.charge_amount"),

		FoliosSettled:  factory.Counter("lodging.folio.settled"),
		InvoicesIssued: factory.Counter("lodging.folio.invoices"),
		FolioTotal:     factory.Histogram("lodging.folio.total_amount"),

		TenanciesStarted:  factory.Counter("lodging.tenancy.started"),
		TenanciesEnded:    factory.Counter("lodging.tenancy.ended"),
		MonthlyPayments:   factory.Counter("lodging.tenancy.payments"),
		MonthsBilled:      factory.Counter("lodging.tenancy.bills"),
		MonthlyPaidAmount: factory.Histogram("lodging.tenancy.paid_amount"),

		CheckoutAlerts: factory.Counter("lodging.alert.checkouts"),
		ActiveAlerts:   factory.Gauge("lodging.alert.active"),
		ScanLatency:    factory.Histogram("lodging.alert.scan.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Unit hooks
// ──────────────────────────────────────────────────

// OnUnitCreated implements plugin.OnUnitCreated.
func (m *MetricsExtension) OnUnitCreated(_ context.Context, _ *room.Unit) error {
	m.UnitsCreated.Inc()
	return nil
}

// OnUnitDeleted implements plugin.OnUnitDeleted.
func (m *MetricsExtension) OnUnitDeleted(_ context.Context, _ id.UnitID) error {
	m.UnitsDeleted.Inc()
	return nil
}

// OnStatusChanged implements plugin.OnStatusChanged.
func (m *MetricsExtension) OnStatusChanged(_ context.Context, _ id.UnitID, from, to room.Status) error {
	m.StatusChanges.Inc()
	if from.Occupied() && to == room.StatusVacantDirty {
		m.CheckOuts.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Stay hooks
// ──────────────────────────────────────────────────

// OnCheckedIn implements plugin.OnCheckedIn.
func (m *MetricsExtension) OnCheckedIn(_ context.Context, _ *room.Unit, _ *folio.Occupancy) error {
	m.CheckIns.Inc()
	return nil
}

// OnChargeAdded implements plugin.OnChargeAdded.
func (m *MetricsExtension) OnChargeAdded(_ context.Context, _ id.UnitID, _ string, amount types.Money) error {
	m.ChargesAdded.Inc()
	m.ChargeAmount.Observe(float64(amount.Amount))
	return nil
}

// OnChargeRemoved implements plugin.OnChargeRemoved.
func (m *MetricsExtension) OnChargeRemoved(_ context.Context, _ id.UnitID, _ id.ID) error {
	m.ChargesRemoved.Inc()
	return nil
}

// OnFolioSettled implements plugin.OnFolioSettled.
func (m *MetricsExtension) OnFolioSettled(_ context.Context, p *payment.Payment) error {
	m.FoliosSettled.Inc()
	if p.Document == payment.DocumentInvoice {
		m.InvoicesIssued.Inc()
	}
	m.FolioTotal.Observe(float64(p.Total.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Tenancy hooks
// ──────────────────────────────────────────────────

// OnTenancyStarted implements plugin.OnTenancyStarted.
func (m *MetricsExtension) OnTenancyStarted(_ context.Context, _ id.UnitID, _ *tenancy.Tenancy) error {
	m.TenanciesStarted.Inc()
	return nil
}

// OnTenancyEnded implements plugin.OnTenancyEnded.
func (m *MetricsExtension) OnTenancyEnded(_ context.Context, _ id.UnitID, _ *tenancy.Tenancy) error {
	m.TenanciesEnded.Inc()
	return nil
}

// OnMonthlyPaymentRecorded implements plugin.OnMonthlyPaymentRecorded.
func (m *MetricsExtension) OnMonthlyPaymentRecorded(_ context.Context, _ id.UnitID, r tenancy.MonthlyRental) error {
	m.MonthlyPayments.Inc()
	m.MonthlyPaidAmount.Observe(float64(r.PaidAmount.Amount))
	return nil
}

// OnMonthBilled implements plugin.OnMonthBilled.
func (m *MetricsExtension) OnMonthBilled(_ context.Context, _ id.UnitID, _ tenancy.MonthlyRental) error {
	m.MonthsBilled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Scanner hooks
// ──────────────────────────────────────────────────

// OnCheckoutAlert implements plugin.OnCheckoutAlert.
func (m *MetricsExtension) OnCheckoutAlert(_ context.Context, _ alert.Notification) error {
	m.CheckoutAlerts.Inc()
	return nil
}

// OnScanCompleted implements plugin.OnScanCompleted.
func (m *MetricsExtension) OnScanCompleted(_ context.Context, active, _ int, elapsed time.Duration) error {
	m.ActiveAlerts.Set(float64(active))
	m.ScanLatency.Observe(float64(elapsed.Microseconds()) / 1000)
	return nil
}
