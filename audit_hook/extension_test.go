package audithook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

type captured struct {
	events []*AuditEvent
	err    error
}

func (c *captured) Record(_ context.Context, evt *AuditEvent) error {
	c.events = append(c.events, evt)
	return c.err
}

func TestStatusChangeIsRecorded(t *testing.T) {
	rec := &captured{}
	ext := New(rec)
	unitID := id.NewUnitID()

	if err := ext.OnStatusChanged(context.Background(), unitID, room.StatusOccupied, room.StatusVacantDirty); err != nil {
		t.Fatalf("OnStatusChanged: %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	evt := rec.events[0]
	if evt.Action != ActionStatusChanged || evt.ResourceID != unitID.String() {
		t.Errorf("event = %+v", evt)
	}
	if evt.Metadata["from"] != "occupied" || evt.Metadata["to"] != "vacant-dirty" {
		t.Errorf("metadata = %v", evt.Metadata)
	}
}

func TestInvoiceSettlementUsesInvoiceAction(t *testing.T) {
	tests := []struct {
		name string
		doc  payment.DocumentType
		want string
	}{
		{"receipt", payment.DocumentReceipt, ActionFolioSettled},
		{"invoice", payment.DocumentInvoice, ActionInvoiceIssued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &captured{}
			p := &payment.Payment{
				ID:       id.NewPaymentID(),
				UnitID:   id.NewUnitID(),
				Currency: "vnd",
				Total:    types.VND(993_600),
				Document: tt.doc,
				Method:   payment.MethodCash,
				Company:  &payment.CompanyInfo{Name: "ABC", TaxCode: "0101", Address: "HN"},
			}
			if err := New(rec).OnFolioSettled(context.Background(), p); err != nil {
				t.Fatal(err)
			}
			if rec.events[0].Action != tt.want {
				t.Errorf("action = %s, want %s", rec.events[0].Action, tt.want)
			}
		})
	}
}

func TestTenancyEndedWithArrears(t *testing.T) {
	rec := &captured{}
	ten, err := tenancy.Start(tenancy.StartInput{
		TenantName:  "A",
		TenantPhone: "09",
		MoveIn:      mustTime(t),
		MonthlyRent: types.VND(2_000_000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ten.BillMonth(tenancy.BillInput{Month: types.MonthOf(mustTime(t))}, mustTime(t)); err != nil {
		t.Fatal(err)
	}

	if err := New(rec).OnTenancyEnded(context.Background(), id.NewUnitID(), ten); err != nil {
		t.Fatal(err)
	}
	evt := rec.events[0]
	if evt.Severity != SeverityWarning || evt.Outcome != OutcomePartial {
		t.Errorf("severity %s, outcome %s", evt.Severity, evt.Outcome)
	}
	if evt.Metadata["outstanding"] != int64(2_000_000) {
		t.Errorf("outstanding = %v", evt.Metadata["outstanding"])
	}
}

func TestRemovalsAndBillsAreRecorded(t *testing.T) {
	rec := &captured{}
	ext := New(rec)
	ctx := context.Background()
	unitID := id.NewUnitID()
	lineID := id.NewUnitID()

	if err := ext.OnChargeRemoved(ctx, unitID, lineID); err != nil {
		t.Fatal(err)
	}
	r := tenancy.MonthlyRental{Month: types.MustMonth(2025, time.March), Total: types.VND(3_100_000)}
	if err := ext.OnMonthBilled(ctx, unitID, r); err != nil {
		t.Fatal(err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	removed, billed := rec.events[0], rec.events[1]
	if removed.Action != ActionChargeRemoved || removed.Severity != SeverityWarning || removed.Metadata["line_id"] != lineID.String() {
		t.Errorf("removal event = %+v", removed)
	}
	if billed.Action != ActionMonthBilled || billed.Metadata["month"] != "2025-03" || billed.Metadata["total"] != int64(3_100_000) {
		t.Errorf("bill event = %+v", billed)
	}
}

func TestActionFilters(t *testing.T) {
	n := alert.Notification{UnitID: id.NewUnitID(), UnitLabel: "101", MinutesUntilCheckout: 30}

	t.Run("enabled", func(t *testing.T) {
		rec := &captured{}
		ext := New(rec, WithEnabledActions(ActionUnitDeleted))
		_ = ext.OnCheckoutAlert(context.Background(), n)
		_ = ext.OnUnitDeleted(context.Background(), n.UnitID)
		if len(rec.events) != 1 || rec.events[0].Action != ActionUnitDeleted {
			t.Errorf("events = %+v", rec.events)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		rec := &captured{}
		ext := New(rec, WithDisabledActions(ActionCheckoutDue))
		_ = ext.OnCheckoutAlert(context.Background(), n)
		_ = ext.OnUnitDeleted(context.Background(), n.UnitID)
		if len(rec.events) != 1 || rec.events[0].Action != ActionUnitDeleted {
			t.Errorf("events = %+v", rec.events)
		}
	})
}

func TestRecorderErrorsAreSwallowed(t *testing.T) {
	rec := &captured{err: errors.New("backend down")}
	ext := New(rec, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := ext.OnUnitDeleted(context.Background(), id.NewUnitID()); err != nil {
		t.Errorf("hook returned %v", err)
	}
}

func mustTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
}
