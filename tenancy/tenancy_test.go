package tenancy

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/meter"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTenancy(t *testing.T) *Tenancy {
	t.Helper()
	ten, err := Start(StartInput{
		TenantName:       "Trần Thị B",
		TenantPhone:      "0912345678",
		MoveIn:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Deposit:          types.VND(3000000),
		MonthlyRent:      types.VND(3000000),
		ElectricityPrice: types.VND(3500),
		WaterPrice:       types.VND(15000),
		InternetFee:      types.VND(100000),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return ten
}

func TestRecordPaymentExample(t *testing.T) {
	ten := newTenancy(t)
	now := time.Date(2025, 2, 5, 9, 0, 0, 0, time.UTC)
	feb := types.MustMonth(2025, time.February)

	r, replaced, err := ten.RecordPayment(BillInput{
		Month:       feb,
		Electricity: &meter.Reading{Old: d("100"), New: d("150")},
		Water:       &meter.Reading{Old: d("20"), New: d("25")},
		Method:      payment.MethodCash,
	}, now)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if replaced {
		t.Error("first payment for a month should not replace")
	}

	checks := []struct {
		name string
		got  types.Money
		want types.Money
	}{
		{"rent", r.Rent, types.VND(3000000)},
		{"electricity", r.ElectricityCost, types.VND(175000)},
		{"water", r.WaterCost, types.VND(75000)},
		{"internet", r.Internet, types.VND(100000)},
		{"paid amount", r.PaidAmount, types.VND(3350000)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if !r.Paid || r.PaidDate == nil || !r.PaidDate.Equal(now) {
		t.Errorf("paid flags: paid=%v date=%v", r.Paid, r.PaidDate)
	}
	if !ten.IsMonthPaid(feb) {
		t.Error("February should be paid")
	}
}

func TestRecordPaymentUpserts(t *testing.T) {
	ten := newTenancy(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	jan := types.MustMonth(2025, time.January)

	first, _, err := ten.RecordPayment(BillInput{Month: jan, Method: payment.MethodCash}, now)
	if err != nil {
		t.Fatal(err)
	}
	second, replaced, err := ten.RecordPayment(BillInput{
		Month:  jan,
		Rent:   types.VND(2800000),
		Others: []OtherCharge{{Name: "Parking", Amount: types.VND(50000)}},
		Method: payment.MethodBankTransfer,
	}, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if !replaced {
		t.Error("second payment for the same month should replace")
	}
	if ten.Ledger.Len() != 1 {
		t.Fatalf("ledger length: got %d, want 1", ten.Ledger.Len())
	}
	got, _ := ten.Ledger.Get(jan)
	if got.ID.String() != first.ID.String() {
		t.Error("overwrite should keep the entry id")
	}
	if !got.PaidAmount.Equal(types.VND(2950000)) || got.Method != payment.MethodBankTransfer {
		t.Errorf("entry does not reflect latest call: %+v", got)
	}
	if !second.PaidAmount.Equal(got.PaidAmount) {
		t.Error("returned entry differs from stored entry")
	}

	// More distinct months than calls never happens.
	for i, m := range []time.Month{time.February, time.March, time.February, time.January} {
		if _, _, err := ten.RecordPayment(BillInput{Month: types.MustMonth(2025, m), Method: payment.MethodCash}, now); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if ten.Ledger.Len() != 3 {
		t.Errorf("ledger length: got %d, want 3", ten.Ledger.Len())
	}
	entries := ten.Ledger.Entries()
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].Month.Before(entries[i].Month) {
			t.Fatalf("entries out of order: %v then %v", entries[i-1].Month, entries[i].Month)
		}
	}
}

func TestRecordPaymentRejects(t *testing.T) {
	jan := types.MustMonth(2025, time.January)
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   BillInput
	}{
		{"no month", BillInput{Method: payment.MethodCash}},
		{"unknown method", BillInput{Month: jan, Method: "cheque"}},
		{"meter rolled back", BillInput{Month: jan, Method: payment.MethodCash, Electricity: &meter.Reading{Old: d("150"), New: d("100")}}},
		{"negative rent", BillInput{Month: jan, Method: payment.MethodCash, Rent: types.VND(-1)}},
		{"unnamed other", BillInput{Month: jan, Method: payment.MethodCash, Others: []OtherCharge{{Amount: types.VND(10)}}}},
		{"foreign currency", BillInput{Month: jan, Method: payment.MethodCash, Rent: types.USD(100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ten := newTenancy(t)
			if _, _, err := ten.RecordPayment(tt.in, now); !errors.Is(err, types.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ten.Ledger.Len() != 0 {
				t.Error("rejected payment must not touch the ledger")
			}
		})
	}
}

func TestMonthStatus(t *testing.T) {
	ten := newTenancy(t)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	jan := types.MustMonth(2025, time.January)

	if got := ten.MonthStatus(jan); got != MonthNeverBilled {
		t.Errorf("before billing: got %s", got)
	}
	if _, _, err := ten.BillMonth(BillInput{Month: jan}, now); err != nil {
		t.Fatal(err)
	}
	if got := ten.MonthStatus(jan); got != MonthUnpaid {
		t.Errorf("after billing: got %s", got)
	}
	if ten.IsMonthPaid(jan) {
		t.Error("billed month reported as paid")
	}
	if !ten.Outstanding().Equal(types.VND(3100000)) {
		t.Errorf("outstanding: got %v", ten.Outstanding())
	}
	if _, _, err := ten.RecordPayment(BillInput{Month: jan, Method: payment.MethodQR}, now); err != nil {
		t.Fatal(err)
	}
	if got := ten.MonthStatus(jan); got != MonthPaid {
		t.Errorf("after payment: got %s", got)
	}
	if !ten.Outstanding().IsZero() {
		t.Errorf("outstanding after payment: %v", ten.Outstanding())
	}
}

func TestBillMonthKeepsPaidMonth(t *testing.T) {
	ten := newTenancy(t)
	paidAt := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	jan := types.MustMonth(2025, time.January)

	paid, _, err := ten.RecordPayment(BillInput{Month: jan, Method: payment.MethodCash}, paidAt)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = ten.BillMonth(BillInput{Month: jan}, paidAt.Add(24*time.Hour))
	if !errors.Is(err, types.ErrIllegalTransition) {
		t.Fatalf("err = %v, want illegal transition", err)
	}

	got, ok := ten.Ledger.Get(jan)
	if !ok || !got.Paid || got.PaidDate == nil || !got.PaidDate.Equal(paidAt) {
		t.Fatalf("paid entry changed: %+v", got)
	}
	if !got.PaidAmount.Equal(paid.PaidAmount) || got.Method != payment.MethodCash {
		t.Errorf("paid amount %v method %q", got.PaidAmount, got.Method)
	}

	// A fresh payment still replaces the month.
	if _, replaced, err := ten.RecordPayment(BillInput{Month: jan, Method: payment.MethodQR}, paidAt.Add(48*time.Hour)); err != nil || !replaced {
		t.Errorf("re-record: replaced=%v err=%v", replaced, err)
	}
}

func TestOpeningReadings(t *testing.T) {
	ten := newTenancy(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	feb := types.MustMonth(2025, time.February)

	e, w := ten.OpeningReadings(feb)
	if !e.IsZero() || !w.IsZero() {
		t.Errorf("no history: got %s, %s", e, w)
	}

	if _, _, err := ten.RecordPayment(BillInput{
		Month:       feb,
		Electricity: &meter.Reading{Old: d("100"), New: d("150")},
		Water:       &meter.Reading{Old: d("20"), New: d("25")},
		Method:      payment.MethodCash,
	}, now); err != nil {
		t.Fatal(err)
	}

	e, w = ten.OpeningReadings(feb.Next())
	if !e.Equal(d("150")) || !w.Equal(d("25")) {
		t.Errorf("March opening: got %s, %s", e, w)
	}
	e, _ = ten.OpeningReadings(feb)
	if !e.IsZero() {
		t.Errorf("a month does not open from itself: got %s", e)
	}
}

func TestLedgerJSON(t *testing.T) {
	ten := newTenancy(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, m := range []time.Month{time.February, time.January} {
		if _, _, err := ten.RecordPayment(BillInput{Month: types.MustMonth(2025, m), Method: payment.MethodCash}, now); err != nil {
			t.Fatal(err)
		}
	}

	data, err := json.Marshal(ten)
	if err != nil {
		t.Fatal(err)
	}
	var back Tenancy
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Ledger.Len() != 2 {
		t.Fatalf("ledger length after round trip: %d", back.Ledger.Len())
	}

	dup := []byte(`[{"month":"2025-01"},{"month":"2025-01"}]`)
	var l Ledger
	if err := json.Unmarshal(dup, &l); err == nil {
		t.Error("expected duplicate month to be rejected")
	}
	bad := []byte(`[{"month":"2025-13"}]`)
	if err := json.Unmarshal(bad, &l); err == nil {
		t.Error("expected malformed month to be rejected")
	}
}

func TestCloneIsolatesLedger(t *testing.T) {
	ten := newTenancy(t)
	jan := types.MustMonth(2025, time.January)
	if _, _, err := ten.RecordPayment(BillInput{Month: jan, Method: payment.MethodCash}, time.Now()); err != nil {
		t.Fatal(err)
	}
	c := ten.Clone()
	if _, _, err := c.RecordPayment(BillInput{Month: jan.Next(), Method: payment.MethodCash}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if ten.Ledger.Len() != 1 {
		t.Error("clone shares ledger storage")
	}
}
