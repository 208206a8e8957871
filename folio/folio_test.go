package folio

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/types"
)

var taxRate = decimal.RequireFromString("0.08")

func hotelStay(t *testing.T) *Occupancy {
	t.Helper()
	o, err := Open(OpenInput{
		GuestName:  "Nguyễn Văn A",
		GuestPhone: "0901234567",
		CheckIn:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		Basis:      rate.BasisNightly,
		UnitRate:   types.VND(300000),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return o
}

func TestOpenValidation(t *testing.T) {
	in := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := OpenInput{
		GuestName:  "Guest",
		GuestPhone: "0900",
		CheckIn:    in,
		CheckOut:   in.Add(24 * time.Hour),
		Basis:      rate.BasisNightly,
		UnitRate:   types.VND(300000),
	}

	tests := []struct {
		name   string
		mutate func(*OpenInput)
		field  string
	}{
		{"blank guest name", func(o *OpenInput) { o.GuestName = "  " }, "guest_name"},
		{"blank phone", func(o *OpenInput) { o.GuestPhone = "" }, "guest_phone"},
		{"checkout equals checkin", func(o *OpenInput) { o.CheckOut = in }, "check_out"},
		{"checkout before checkin", func(o *OpenInput) { o.CheckOut = in.Add(-time.Hour) }, "check_out"},
		{"monthly basis", func(o *OpenInput) { o.Basis = rate.BasisMonthly }, "basis"},
		{"zero rate", func(o *OpenInput) { o.UnitRate = types.VND(0) }, "unit_rate"},
		{"negative deposit", func(o *OpenInput) { o.Deposit = types.VND(-1) }, "deposit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			o, err := Open(input)
			if o != nil {
				t.Error("expected no occupancy on validation failure")
			}
			var verr types.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}

	o, err := Open(valid)
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if o.Guests != 1 {
		t.Errorf("guests default: got %d, want 1", o.Guests)
	}
	if !o.Deposit.Equal(types.VND(0)) {
		t.Errorf("deposit default: got %v", o.Deposit)
	}
}

func TestComputeTotalExample(t *testing.T) {
	o := hotelStay(t)
	at := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	if _, _, err := o.AddIncidentalCharge(ChargeInput{
		Description: "Nước ngọt",
		UnitPrice:   types.VND(10000),
		Quantity:    2,
		RecordedBy:  "reception",
		QuickPick:   true,
	}, at); err != nil {
		t.Fatal(err)
	}

	receipt := o.ComputeTotal(payment.DocumentReceipt, taxRate, at)
	if receipt.DurationUnits != 3 {
		t.Errorf("nights: got %d, want 3", receipt.DurationUnits)
	}
	if !receipt.RoomCharge.Equal(types.VND(900000)) {
		t.Errorf("room charge: got %v", receipt.RoomCharge)
	}
	if !receipt.Subtotal.Equal(types.VND(920000)) {
		t.Errorf("subtotal: got %v", receipt.Subtotal)
	}
	if !receipt.Tax.IsZero() || !receipt.Total.Equal(types.VND(920000)) {
		t.Errorf("receipt: tax %v total %v", receipt.Tax, receipt.Total)
	}

	invoice := o.ComputeTotal(payment.DocumentInvoice, taxRate, at)
	if !invoice.Tax.Equal(types.VND(73600)) {
		t.Errorf("invoice tax: got %v, want 73600", invoice.Tax)
	}
	if !invoice.Total.Equal(types.VND(993600)) {
		t.Errorf("invoice total: got %v, want 993600", invoice.Total)
	}
}

func TestTaxOnlyOnInvoices(t *testing.T) {
	o := hotelStay(t)
	at := o.CheckIn.Add(time.Hour)
	for _, price := range []int64{0, 1, 15000, 123457} {
		if _, err := o.AddService("Giặt ủi", types.VND(price), 1, at); err != nil {
			t.Fatal(err)
		}
		r := o.ComputeTotal(payment.DocumentReceipt, taxRate, at)
		if !r.Tax.IsZero() {
			t.Fatalf("receipt carried tax %v", r.Tax)
		}
		inv := o.ComputeTotal(payment.DocumentInvoice, taxRate, at)
		if want := inv.Subtotal.MulDecimal(taxRate); !inv.Tax.Equal(want) {
			t.Fatalf("invoice tax: got %v, want %v", inv.Tax, want)
		}
		if !inv.Total.Equal(inv.Subtotal.Add(inv.Tax)) {
			t.Fatalf("total != subtotal + tax")
		}
	}
}

func TestQuickPickMerge(t *testing.T) {
	o := hotelStay(t)
	at := o.CheckIn

	first, merged, err := o.AddIncidentalCharge(ChargeInput{Description: "Nước suối", UnitPrice: types.VND(10000), Quantity: 1, QuickPick: true}, at)
	if err != nil || merged {
		t.Fatalf("first add: merged=%v err=%v", merged, err)
	}
	got, merged, err := o.AddIncidentalCharge(ChargeInput{Description: "  nước SUỐI ", UnitPrice: types.VND(12000), Quantity: 2, QuickPick: true}, at)
	if err != nil || !merged {
		t.Fatalf("second add: merged=%v err=%v", merged, err)
	}
	if got.ID.String() != first.ID.String() {
		t.Error("merge should keep the original line id")
	}
	if got.Quantity != 3 || !got.UnitPrice.Equal(types.VND(10000)) {
		t.Errorf("merged line: qty %d price %v", got.Quantity, got.UnitPrice)
	}

	// A manual entry with the same text is its own line.
	if _, merged, _ := o.AddIncidentalCharge(ChargeInput{Description: "Nước suối", UnitPrice: types.VND(10000), Quantity: 1}, at); merged {
		t.Error("manual entries must not merge")
	}
	if len(o.Incidentals) != 2 {
		t.Errorf("incidental lines: got %d, want 2", len(o.Incidentals))
	}
}

func TestLineValidationAndRemoval(t *testing.T) {
	o := hotelStay(t)
	at := o.CheckIn

	if _, err := o.AddService("Breakfast", types.VND(50000), 0, at); !errors.Is(err, types.ErrValidation) {
		t.Errorf("quantity 0: expected validation error, got %v", err)
	}
	if _, err := o.AddService("Breakfast", types.USD(500), 1, at); !errors.Is(err, types.ErrValidation) {
		t.Errorf("currency mismatch: expected validation error, got %v", err)
	}
	if _, err := o.AddService("", types.VND(50000), 1, at); !errors.Is(err, types.ErrValidation) {
		t.Errorf("blank name: expected validation error, got %v", err)
	}

	svc, err := o.AddService("Breakfast", types.VND(50000), 2, at)
	if err != nil {
		t.Fatal(err)
	}
	chg, _, err := o.AddIncidentalCharge(ChargeInput{Description: "Bia", UnitPrice: types.VND(20000), Quantity: 1}, at)
	if err != nil {
		t.Fatal(err)
	}

	if err := o.RemoveCharge(svc.ID); err != nil {
		t.Fatalf("remove service: %v", err)
	}
	if err := o.RemoveCharge(chg.ID); err != nil {
		t.Fatalf("remove incidental: %v", err)
	}
	if len(o.Services)+len(o.Incidentals) != 0 {
		t.Error("lines not removed")
	}
	if err := o.RemoveCharge(id.NewChargeID()); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("unknown line: expected ErrLineNotFound, got %v", err)
	}
}

func TestHourlyDurationMeasuredAtSettlement(t *testing.T) {
	in := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	o, err := Open(OpenInput{
		GuestName:  "Guest",
		GuestPhone: "0900",
		CheckIn:    in,
		CheckOut:   in.Add(10 * time.Hour),
		Basis:      rate.BasisHourly,
		UnitRate:   types.VND(80000),
	})
	if err != nil {
		t.Fatal(err)
	}

	running := o.ComputeTotal(payment.DocumentReceipt, taxRate, in.Add(2*time.Hour+10*time.Minute))
	if running.DurationUnits != 3 || !running.RoomCharge.Equal(types.VND(240000)) {
		t.Errorf("running total: %d units, %v", running.DurationUnits, running.RoomCharge)
	}

	p, err := o.Settle(SettleInput{
		UnitID:    id.NewUnitID(),
		UnitLabel: "201",
		Method:    payment.MethodCash,
		Document:  payment.DocumentReceipt,
		TaxRate:   taxRate,
		At:        in.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.DurationUnits != 2 || !p.Total.Equal(types.VND(160000)) {
		t.Errorf("settled: %d units, total %v", p.DurationUnits, p.Total)
	}
	if !p.CheckOut.Equal(in.Add(90 * time.Minute)) {
		t.Errorf("settled checkout: got %v", p.CheckOut)
	}
}

func TestSettle(t *testing.T) {
	o := hotelStay(t)
	at := time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC)
	if _, err := o.AddService("Airport pickup", types.VND(20000), 1, at); err != nil {
		t.Fatal(err)
	}
	unitID := id.NewUnitID()

	t.Run("invoice requires company", func(t *testing.T) {
		_, err := o.Settle(SettleInput{UnitID: unitID, Method: payment.MethodCash, Document: payment.DocumentInvoice, TaxRate: taxRate, At: at})
		if !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		_, err = o.Settle(SettleInput{
			UnitID: unitID, Method: payment.MethodCash, Document: payment.DocumentInvoice, TaxRate: taxRate, At: at,
			Company: &payment.CompanyInfo{Name: "ACME", Address: "1 Lê Lợi"},
		})
		var verr types.ValidationError
		if !errors.As(err, &verr) || verr.Field != "company.tax_code" {
			t.Fatalf("expected missing tax code, got %v", err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := o.Settle(SettleInput{UnitID: unitID, Method: "crypto", Document: payment.DocumentReceipt, At: at})
		if !errors.Is(err, types.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("invoice snapshot", func(t *testing.T) {
		company := &payment.CompanyInfo{Name: "ACME", TaxCode: "0101234567", Address: "1 Lê Lợi"}
		p, err := o.Settle(SettleInput{
			UnitID: unitID, UnitLabel: "101", Method: payment.MethodQR,
			Document: payment.DocumentInvoice, Company: company, TaxRate: taxRate, At: at,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !p.Total.Equal(types.VND(993600)) {
			t.Errorf("total: got %v", p.Total)
		}
		if len(p.LineItems) != 2 || p.LineItems[0].Type != payment.LineItemRoom {
			t.Errorf("line items: %+v", p.LineItems)
		}
		if !strings.Contains(p.QRReference, p.ID.String()) || !strings.Contains(p.QRReference, "993600") {
			t.Errorf("qr reference: %q", p.QRReference)
		}
		company.Name = "changed"
		if p.Company.Name != "ACME" {
			t.Error("payment must not alias caller's company info")
		}
	})
}

func TestClone(t *testing.T) {
	o := hotelStay(t)
	if _, err := o.AddService("Breakfast", types.VND(50000), 1, o.CheckIn); err != nil {
		t.Fatal(err)
	}
	c := o.Clone()
	c.Services[0].Quantity = 9
	if o.Services[0].Quantity != 1 {
		t.Error("clone shares service slice")
	}
}
