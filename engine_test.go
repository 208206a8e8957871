package lodging_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging"
	"github.com/xraph/lodging/alert"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/revenue"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/store/memory"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recorder captures the hooks the engine fires.
type recorder struct {
	mu       sync.Mutex
	statuses []string
	settled  []*payment.Payment
	alerts   []alert.Notification
	deleted  []string
	removed  []string
	billed   []string
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnStatusChanged(_ context.Context, _ id.UnitID, from, to room.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, string(from)+"->"+string(to))
	return nil
}

func (r *recorder) OnFolioSettled(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = append(r.settled, p)
	return nil
}

func (r *recorder) OnCheckoutAlert(_ context.Context, n alert.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, n)
	return nil
}

func (r *recorder) OnUnitDeleted(_ context.Context, unitID id.UnitID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, unitID.String())
	return nil
}

func (r *recorder) OnChargeRemoved(_ context.Context, _ id.UnitID, lineID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, lineID.String())
	return nil
}

func (r *recorder) OnMonthBilled(_ context.Context, _ id.UnitID, rental tenancy.MonthlyRental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.billed = append(r.billed, rental.Month.String())
	return nil
}

type fixture struct {
	eng      *lodging.Engine
	clock    *fakeClock
	rec      *recorder
	building id.BuildingID
	floor    id.FloorID
}

var jan1 = time.Date(2025, time.January, 1, 14, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...lodging.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	clock := &fakeClock{now: jan1}
	rec := &recorder{}
	base := []lodging.Option{
		lodging.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		lodging.WithClock(clock.Now),
		lodging.WithPlugin(rec),
	}
	eng := lodging.New(memory.New(), append(base, opts...)...)

	b, err := eng.CreateBuilding(ctx, lodging.BuildingInput{Name: "Main"})
	if err != nil {
		t.Fatalf("CreateBuilding: %v", err)
	}
	f, err := eng.CreateFloor(ctx, b.ID, lodging.FloorInput{Name: "First", Level: 1})
	if err != nil {
		t.Fatalf("CreateFloor: %v", err)
	}
	return &fixture{eng: eng, clock: clock, rec: rec, building: b.ID, floor: f.ID}
}

func (fx *fixture) unit(t *testing.T, label string, mode room.Mode, profile rate.Profile) *room.Unit {
	t.Helper()
	u, err := fx.eng.CreateUnit(context.Background(), fx.floor, lodging.UnitInput{
		Label:   label,
		Mode:    mode,
		Profile: profile,
	})
	if err != nil {
		t.Fatalf("CreateUnit(%s): %v", label, err)
	}
	return u
}

func (fx *fixture) hotelUnit(t *testing.T, label string) *room.Unit {
	return fx.unit(t, label, room.ModeHotel, rate.Profile{Nightly: types.VND(300_000)})
}

func (fx *fixture) checkIn(t *testing.T, unitID id.UnitID, checkOut time.Time) {
	t.Helper()
	_, err := fx.eng.CheckIn(context.Background(), unitID, lodging.CheckInInput{
		GuestName:  "Tran Thi B",
		GuestPhone: "0901234567",
		CheckOut:   checkOut,
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
}

func TestNightlyStaySettlement(t *testing.T) {
	ctx := context.Background()
	checkOut := time.Date(2025, time.January, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      lodging.SettleInput
		wantTax int64
		wantTot int64
	}{
		{
			name:    "receipt",
			in:      lodging.SettleInput{Method: payment.MethodCash, Document: payment.DocumentReceipt},
			wantTax: 0,
			wantTot: 920_000,
		},
		{
			name: "invoice",
			in: lodging.SettleInput{
				Method:   payment.MethodBankTransfer,
				Document: payment.DocumentInvoice,
				Company:  &payment.CompanyInfo{Name: "Cong ty ABC", TaxCode: "0101234567", Address: "1 Le Loi, Q1"},
			},
			wantTax: 73_600,
			wantTot: 993_600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			u := fx.hotelUnit(t, "101")
			fx.checkIn(t, u.ID, checkOut)

			_, merged, err := fx.eng.AddIncidentalCharge(ctx, u.ID, lodging.ChargeInput{
				Description: "Nước ngọt",
				UnitPrice:   types.VND(10_000),
				Quantity:    2,
			})
			if err != nil {
				t.Fatalf("AddIncidentalCharge: %v", err)
			}
			if merged {
				t.Error("first charge should not merge")
			}

			fx.clock.Set(checkOut)
			p, err := fx.eng.Settle(ctx, u.ID, tt.in)
			if err != nil {
				t.Fatalf("Settle: %v", err)
			}
			if p.DurationUnits != 3 {
				t.Errorf("nights = %d, want 3", p.DurationUnits)
			}
			if p.RoomCharge.Amount != 900_000 {
				t.Errorf("room charge = %d, want 900000", p.RoomCharge.Amount)
			}
			if p.Subtotal.Amount != 920_000 {
				t.Errorf("subtotal = %d, want 920000", p.Subtotal.Amount)
			}
			if p.Tax.Amount != tt.wantTax {
				t.Errorf("tax = %d, want %d", p.Tax.Amount, tt.wantTax)
			}
			if p.Total.Amount != tt.wantTot {
				t.Errorf("total = %d, want %d", p.Total.Amount, tt.wantTot)
			}

			after, err := fx.eng.GetUnit(ctx, u.ID)
			if err != nil {
				t.Fatalf("GetUnit: %v", err)
			}
			if after.Status != room.StatusVacantDirty || after.Occupancy != nil {
				t.Errorf("after settle: status %s, occupancy %v", after.Status, after.Occupancy)
			}

			stored, err := fx.eng.GetPayment(ctx, p.ID)
			if err != nil {
				t.Fatalf("GetPayment: %v", err)
			}
			if stored.Total.Amount != tt.wantTot {
				t.Errorf("stored total = %d", stored.Total.Amount)
			}
			if len(fx.rec.settled) != 1 {
				t.Errorf("settled hooks = %d, want 1", len(fx.rec.settled))
			}
		})
	}
}

func TestCheckInValidation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.hotelUnit(t, "102")
	boarding := fx.unit(t, "B1", room.ModeBoarding, rate.Profile{Monthly: types.VND(3_000_000)})

	tests := []struct {
		name   string
		unitID id.UnitID
		in     lodging.CheckInInput
		want   error
	}{
		{
			name:   "missing guest name",
			unitID: u.ID,
			in:     lodging.CheckInInput{GuestPhone: "090", CheckOut: jan1.Add(24 * time.Hour)},
			want:   lodging.ErrValidation,
		},
		{
			name:   "missing phone",
			unitID: u.ID,
			in:     lodging.CheckInInput{GuestName: "A", CheckOut: jan1.Add(24 * time.Hour)},
			want:   lodging.ErrValidation,
		},
		{
			name:   "checkout before check-in",
			unitID: u.ID,
			in:     lodging.CheckInInput{GuestName: "A", GuestPhone: "090", CheckOut: jan1.Add(-time.Hour)},
			want:   lodging.ErrValidation,
		},
		{
			name:   "back-dated stay already over",
			unitID: u.ID,
			in: lodging.CheckInInput{
				GuestName: "A", GuestPhone: "090",
				CheckIn: jan1.Add(-72 * time.Hour), CheckOut: jan1.Add(-48 * time.Hour),
			},
			want: lodging.ErrValidation,
		},
		{
			name:   "checkout exactly now",
			unitID: u.ID,
			in:     lodging.CheckInInput{GuestName: "A", GuestPhone: "090", CheckIn: jan1.Add(-time.Hour), CheckOut: jan1},
			want:   lodging.ErrValidation,
		},
		{
			name:   "hourly on a hotel unit",
			unitID: u.ID,
			in:     lodging.CheckInInput{GuestName: "A", GuestPhone: "090", CheckOut: jan1.Add(time.Hour), Basis: rate.BasisHourly},
			want:   lodging.ErrValidation,
		},
		{
			name:   "boarding unit",
			unitID: boarding.ID,
			in:     lodging.CheckInInput{GuestName: "A", GuestPhone: "090", CheckOut: jan1.Add(24 * time.Hour)},
			want:   lodging.ErrWrongMode,
		},
		{
			name:   "unknown unit",
			unitID: id.NewUnitID(),
			in:     lodging.CheckInInput{GuestName: "A", GuestPhone: "090", CheckOut: jan1.Add(24 * time.Hour)},
			want:   lodging.ErrUnitNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.eng.CheckIn(ctx, tt.unitID, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	got, err := fx.eng.GetUnit(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if got.Status != room.StatusVacantClean || got.Occupancy != nil {
		t.Errorf("failed check-ins changed the unit: %s", got.Status)
	}
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.hotelUnit(t, "201")

	if _, err := fx.eng.MarkCleaned(ctx, u.ID); !errors.Is(err, lodging.ErrIllegalTransition) {
		t.Errorf("clean a clean room: err = %v", err)
	}
	if _, err := fx.eng.SetOutOfOrder(ctx, u.ID, true); err != nil {
		t.Fatalf("SetOutOfOrder: %v", err)
	}
	if _, err := fx.eng.CheckIn(ctx, u.ID, lodging.CheckInInput{
		GuestName: "A", GuestPhone: "090", CheckOut: jan1.Add(24 * time.Hour),
	}); !errors.Is(err, lodging.ErrIllegalTransition) {
		t.Errorf("check in out-of-order: err = %v", err)
	}
	if _, err := fx.eng.SetOutOfOrder(ctx, u.ID, false); err != nil {
		t.Fatalf("return to service: %v", err)
	}

	fx.checkIn(t, u.ID, jan1.Add(24*time.Hour))
	if _, err := fx.eng.SetOutOfOrder(ctx, u.ID, true); !errors.Is(err, lodging.ErrIllegalTransition) {
		t.Errorf("out of order while occupied: err = %v", err)
	}
	if _, err := fx.eng.MarkDueOut(ctx, u.ID); err != nil {
		t.Fatalf("MarkDueOut: %v", err)
	}
	got, err := fx.eng.ExtendStay(ctx, u.ID, jan1.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("ExtendStay: %v", err)
	}
	if got.Status != room.StatusOccupied {
		t.Errorf("extended due-out unit is %s, want occupied", got.Status)
	}
	if _, err := fx.eng.CheckOut(ctx, u.ID, payment.MethodCard); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if _, err := fx.eng.MarkCleaned(ctx, u.ID); err != nil {
		t.Fatalf("MarkCleaned: %v", err)
	}

	want := []string{
		"vacant-clean->out-of-order",
		"out-of-order->vacant-clean",
		"vacant-clean->occupied",
		"occupied->due-out",
		"due-out->occupied",
		"occupied->vacant-dirty",
		"vacant-dirty->vacant-clean",
	}
	if len(fx.rec.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", fx.rec.statuses, want)
	}
	for i := range want {
		if fx.rec.statuses[i] != want[i] {
			t.Errorf("status[%d] = %s, want %s", i, fx.rec.statuses[i], want[i])
		}
	}
}

func TestGuesthouseHourlyBilledAtSettlement(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.unit(t, "G1", room.ModeGuesthouse, rate.Profile{
		Hourly: types.VND(80_000),
		Daily:  types.VND(400_000),
	})

	_, err := fx.eng.CheckIn(ctx, u.ID, lodging.CheckInInput{
		GuestName:  "Le Van C",
		GuestPhone: "0912",
		CheckOut:   jan1.Add(2 * time.Hour),
		Basis:      rate.BasisHourly,
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	fx.clock.Set(jan1.Add(3*time.Hour + 10*time.Minute))
	totals, err := fx.eng.CurrentFolioTotal(ctx, u.ID, payment.DocumentReceipt)
	if err != nil {
		t.Fatalf("CurrentFolioTotal: %v", err)
	}
	if totals.DurationUnits != 4 || totals.RoomCharge.Amount != 320_000 {
		t.Errorf("running total: %d hours, %d", totals.DurationUnits, totals.RoomCharge.Amount)
	}

	p, err := fx.eng.CheckOut(ctx, u.ID, payment.MethodQR)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if p.DurationUnits != 4 {
		t.Errorf("hours = %d, want 4", p.DurationUnits)
	}
	if p.QRReference == "" {
		t.Error("qr payment has no reference")
	}
}

func TestFolioLines(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.hotelUnit(t, "301")
	fx.checkIn(t, u.ID, jan1.Add(24*time.Hour))

	svc, err := fx.eng.AddService(ctx, u.ID, lodging.ServiceInput{Name: "Laundry", UnitPrice: types.VND(50_000), Quantity: 1})
	if err != nil {
		t.Fatalf("AddService: %v", err)
	}
	pick := lodging.ChargeInput{Description: "Water", UnitPrice: types.VND(10_000), Quantity: 1, QuickPick: true}
	first, _, err := fx.eng.AddIncidentalCharge(ctx, u.ID, pick)
	if err != nil {
		t.Fatalf("AddIncidentalCharge: %v", err)
	}
	pick.Description = "  water "
	pick.UnitPrice = types.VND(12_000)
	second, merged, err := fx.eng.AddIncidentalCharge(ctx, u.ID, pick)
	if err != nil {
		t.Fatalf("AddIncidentalCharge: %v", err)
	}
	if !merged || second.ID.String() != first.ID.String() || second.Quantity != 2 {
		t.Errorf("quick pick did not merge: merged=%t qty=%d", merged, second.Quantity)
	}
	if second.UnitPrice.Amount != 10_000 {
		t.Errorf("merged price = %d, want first price", second.UnitPrice.Amount)
	}

	if _, err := fx.eng.AddService(ctx, u.ID, lodging.ServiceInput{Name: "Spa", UnitPrice: types.VND(1), Quantity: 0}); !errors.Is(err, lodging.ErrValidation) {
		t.Errorf("zero quantity: err = %v", err)
	}

	if err := fx.eng.RemoveCharge(ctx, u.ID, svc.ID); err != nil {
		t.Fatalf("RemoveCharge: %v", err)
	}
	if err := fx.eng.RemoveCharge(ctx, u.ID, svc.ID); !errors.Is(err, lodging.ErrLineNotFound) {
		t.Errorf("remove twice: err = %v", err)
	}
	if len(fx.rec.removed) != 1 || fx.rec.removed[0] != svc.ID.String() {
		t.Errorf("removal hooks = %v, want one for %s", fx.rec.removed, svc.ID)
	}

	totals, err := fx.eng.CurrentFolioTotal(ctx, u.ID, payment.DocumentReceipt)
	if err != nil {
		t.Fatalf("CurrentFolioTotal: %v", err)
	}
	if totals.Services.Amount != 0 || totals.Incidentals.Amount != 20_000 {
		t.Errorf("services %d, incidentals %d", totals.Services.Amount, totals.Incidentals.Amount)
	}
}

func TestBoardingLedger(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.unit(t, "B2", room.ModeBoarding, rate.Profile{Monthly: types.VND(3_000_000)})

	_, err := fx.eng.StartTenancy(ctx, u.ID, lodging.StartTenancyInput{
		TenantName:       "Pham Van D",
		TenantPhone:      "0987",
		ElectricityPrice: types.VND(3_500),
		WaterPrice:       types.VND(15_000),
		InternetFee:      types.VND(100_000),
	})
	if err != nil {
		t.Fatalf("StartTenancy: %v", err)
	}

	jan := types.MustMonth(2025, time.January)
	status, err := fx.eng.MonthStatus(ctx, u.ID, jan)
	if err != nil || status != tenancy.MonthNeverBilled {
		t.Fatalf("status before billing = %s, %v", status, err)
	}

	bill := lodging.MonthlyPaymentInput{
		Month:       jan,
		Electricity: &lodging.ReadingInput{Old: decimal.NewFromInt(100), New: decimal.NewFromInt(150)},
		Water:       &lodging.ReadingInput{Old: decimal.NewFromInt(20), New: decimal.NewFromInt(25)},
	}
	if _, err := fx.eng.BillMonth(ctx, u.ID, bill); err != nil {
		t.Fatalf("BillMonth: %v", err)
	}
	if status, _ := fx.eng.MonthStatus(ctx, u.ID, jan); status != tenancy.MonthUnpaid {
		t.Errorf("status after billing = %s", status)
	}
	if paid, _ := fx.eng.IsCurrentMonthPaid(ctx, u.ID); paid {
		t.Error("billed month reported paid")
	}

	if _, err := fx.eng.RecordMonthlyPayment(ctx, u.ID, bill); !errors.Is(err, lodging.ErrValidation) {
		t.Errorf("payment without method: err = %v", err)
	}
	bill.Method = payment.MethodCash
	r, err := fx.eng.RecordMonthlyPayment(ctx, u.ID, bill)
	if err != nil {
		t.Fatalf("RecordMonthlyPayment: %v", err)
	}
	if r.ElectricityCost.Amount != 175_000 || r.WaterCost.Amount != 75_000 {
		t.Errorf("utilities: electricity %d, water %d", r.ElectricityCost.Amount, r.WaterCost.Amount)
	}
	if r.PaidAmount.Amount != 3_350_000 {
		t.Errorf("paid amount = %d, want 3350000", r.PaidAmount.Amount)
	}
	if paid, _ := fx.eng.IsCurrentMonthPaid(ctx, u.ID); !paid {
		t.Error("current month not paid after payment")
	}

	bill.Method = ""
	if _, err := fx.eng.BillMonth(ctx, u.ID, bill); !errors.Is(err, lodging.ErrIllegalTransition) {
		t.Errorf("billing a paid month: err = %v", err)
	}
	if status, _ := fx.eng.MonthStatus(ctx, u.ID, jan); status != tenancy.MonthPaid {
		t.Errorf("status after refused re-bill = %s, want paid", status)
	}
	if len(fx.rec.billed) != 1 || fx.rec.billed[0] != "2025-01" {
		t.Errorf("bill hooks = %v, want [2025-01]", fx.rec.billed)
	}
	bill.Method = payment.MethodCash

	entries, err := fx.eng.MonthlyLedgerFor(ctx, u.ID)
	if err != nil {
		t.Fatalf("MonthlyLedgerFor: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger has %d entries, want 1 after re-recording", len(entries))
	}

	elec, water, err := fx.eng.OpeningReadings(ctx, u.ID, types.MustMonth(2025, time.February))
	if err != nil {
		t.Fatalf("OpeningReadings: %v", err)
	}
	if !elec.Equal(decimal.NewFromInt(150)) || !water.Equal(decimal.NewFromInt(25)) {
		t.Errorf("opening readings = %s, %s", elec, water)
	}

	bill.Month = types.MustMonth(2025, time.February)
	bill.Electricity = &lodging.ReadingInput{Old: decimal.NewFromInt(150), New: decimal.NewFromInt(140)}
	if _, err := fx.eng.RecordMonthlyPayment(ctx, u.ID, bill); !errors.Is(err, lodging.ErrValidation) {
		t.Errorf("negative consumption: err = %v", err)
	}

	ended, err := fx.eng.EndTenancy(ctx, u.ID)
	if err != nil {
		t.Fatalf("EndTenancy: %v", err)
	}
	if ended.Ledger.Len() != 1 {
		t.Errorf("ended ledger len = %d", ended.Ledger.Len())
	}
	after, _ := fx.eng.GetUnit(ctx, u.ID)
	if after.Status != room.StatusVacantDirty || after.Tenancy != nil {
		t.Errorf("after end: %s, tenancy %v", after.Status, after.Tenancy)
	}
	if _, err := fx.eng.MonthlyLedgerFor(ctx, u.ID); !errors.Is(err, lodging.ErrNoTenancy) {
		t.Errorf("ledger after end: err = %v", err)
	}
}

func TestDeletionGuard(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	a := fx.hotelUnit(t, "401")
	b := fx.hotelUnit(t, "402")
	c := fx.hotelUnit(t, "403")
	fx.checkIn(t, b.ID, jan1.Add(24*time.Hour))

	err := fx.eng.DeleteBuilding(ctx, fx.building)
	if !errors.Is(err, lodging.ErrResourceInUse) {
		t.Fatalf("DeleteBuilding: err = %v", err)
	}
	var inUse lodging.InUseError
	if !errors.As(err, &inUse) || len(inUse.UnitIDs) != 1 || inUse.UnitIDs[0] != b.ID.String() {
		t.Errorf("in-use units = %+v", inUse)
	}
	if err := fx.eng.DeleteFloor(ctx, fx.floor); !errors.Is(err, lodging.ErrResourceInUse) {
		t.Errorf("DeleteFloor: err = %v", err)
	}
	if err := fx.eng.DeleteUnit(ctx, b.ID); !errors.Is(err, lodging.ErrResourceInUse) {
		t.Errorf("DeleteUnit: err = %v", err)
	}

	units, err := fx.eng.ListUnits(ctx, room.ListOpts{BuildingID: fx.building})
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("units after refused delete = %d, want 3", len(units))
	}

	if err := fx.eng.DeleteUnit(ctx, a.ID); err != nil {
		t.Fatalf("DeleteUnit vacant: %v", err)
	}
	if _, err := fx.eng.CheckOut(ctx, b.ID, payment.MethodCash); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if err := fx.eng.DeleteBuilding(ctx, fx.building); err != nil {
		t.Fatalf("DeleteBuilding: %v", err)
	}
	if _, err := fx.eng.GetUnit(ctx, c.ID); !errors.Is(err, lodging.ErrUnitNotFound) {
		t.Errorf("unit survived building delete: err = %v", err)
	}
	if len(fx.rec.deleted) != 3 {
		t.Errorf("deleted hooks = %d, want 3", len(fx.rec.deleted))
	}
}

func TestCheckoutAlerts(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.hotelUnit(t, "501")
	fx.checkIn(t, u.ID, jan1.Add(30*time.Minute))

	res, err := fx.eng.ScanNow(ctx)
	if err != nil {
		t.Fatalf("ScanNow: %v", err)
	}
	if len(res.Fresh) != 1 {
		t.Fatalf("first tick: %d fresh, want 1", len(res.Fresh))
	}
	select {
	case n := <-fx.eng.Alerts():
		if n.UnitLabel != "501" || n.MinutesUntilCheckout != 30 || n.GuestName != "Tran Thi B" {
			t.Errorf("notification = %+v", n)
		}
	default:
		t.Fatal("no notification on the alerts channel")
	}

	res, _ = fx.eng.ScanNow(ctx)
	if len(res.Fresh) != 0 || len(res.Active) != 1 {
		t.Errorf("second tick: fresh %d, active %d", len(res.Fresh), len(res.Active))
	}

	if _, err := fx.eng.ExtendStay(ctx, u.ID, jan1.Add(3*time.Hour)); err != nil {
		t.Fatalf("ExtendStay: %v", err)
	}
	res, _ = fx.eng.ScanNow(ctx)
	if len(res.Fresh) != 0 || len(res.Active) != 0 {
		t.Errorf("outside horizon: fresh %d, active %d", len(res.Fresh), len(res.Active))
	}

	if _, err := fx.eng.ExtendStay(ctx, u.ID, jan1.Add(30*time.Minute)); err != nil {
		t.Fatalf("ExtendStay: %v", err)
	}
	res, _ = fx.eng.ScanNow(ctx)
	if len(res.Fresh) != 1 {
		t.Errorf("re-entry: %d fresh, want 1", len(res.Fresh))
	}
	if got := len(fx.eng.ActiveAlerts()); got != 1 {
		t.Errorf("active alerts = %d", got)
	}
	if len(fx.rec.alerts) != 2 {
		t.Errorf("alert hooks = %d, want 2", len(fx.rec.alerts))
	}
}

func TestExtendWithinHorizonDoesNotRenotify(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u := fx.hotelUnit(t, "502")
	fx.checkIn(t, u.ID, jan1.Add(30*time.Minute))

	if res, _ := fx.eng.ScanNow(ctx); len(res.Fresh) != 1 {
		t.Fatalf("first tick: %d fresh, want 1", len(res.Fresh))
	}
	if _, err := fx.eng.ExtendStay(ctx, u.ID, jan1.Add(45*time.Minute)); err != nil {
		t.Fatalf("ExtendStay: %v", err)
	}
	res, err := fx.eng.ScanNow(ctx)
	if err != nil {
		t.Fatalf("ScanNow: %v", err)
	}
	if len(res.Fresh) != 0 || len(res.Active) != 1 {
		t.Errorf("after edit inside horizon: fresh %d, active %d", len(res.Fresh), len(res.Active))
	}
	if len(fx.rec.alerts) != 1 {
		t.Errorf("alert hooks = %d, want 1", len(fx.rec.alerts))
	}
}

func TestAlertChannelNeverBlocks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, lodging.WithAlertBuffer(1))
	for _, label := range []string{"601", "602", "603"} {
		u := fx.hotelUnit(t, label)
		fx.checkIn(t, u.ID, jan1.Add(time.Hour))
	}

	res, err := fx.eng.ScanNow(ctx)
	if err != nil {
		t.Fatalf("ScanNow: %v", err)
	}
	if len(res.Fresh) != 3 {
		t.Errorf("fresh = %d, want 3", len(res.Fresh))
	}
	if got := len(fx.eng.Alerts()); got != 1 {
		t.Errorf("buffered alerts = %d, want 1", got)
	}
	if got := len(fx.eng.ActiveAlerts()); got != 3 {
		t.Errorf("active alerts = %d, want 3", got)
	}
}

func TestRevenueFor(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	h := fx.hotelUnit(t, "701")
	fx.checkIn(t, h.ID, jan1.Add(24*time.Hour))
	fx.clock.Set(jan1.Add(22 * time.Hour))
	if _, err := fx.eng.CheckOut(ctx, h.ID, payment.MethodCash); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	paid := fx.unit(t, "B3", room.ModeBoarding, rate.Profile{Monthly: types.VND(2_000_000)})
	unpaid := fx.unit(t, "B4", room.ModeBoarding, rate.Profile{Monthly: types.VND(2_500_000)})
	for _, u := range []*room.Unit{paid, unpaid} {
		if _, err := fx.eng.StartTenancy(ctx, u.ID, lodging.StartTenancyInput{
			TenantName: "T", TenantPhone: "09", MoveIn: jan1,
		}); err != nil {
			t.Fatalf("StartTenancy: %v", err)
		}
	}
	if _, err := fx.eng.RecordMonthlyPayment(ctx, paid.ID, lodging.MonthlyPaymentInput{
		Method: payment.MethodCash,
	}); err != nil {
		t.Fatalf("RecordMonthlyPayment: %v", err)
	}

	r, err := fx.eng.RevenueForKey(ctx, revenue.GranularityMonth, "2025-01")
	if err != nil {
		t.Fatalf("RevenueForKey: %v", err)
	}
	if got := r.Amount(revenue.CategoryRoom).Amount; got != 300_000 {
		t.Errorf("room = %d, want 300000", got)
	}
	if got := r.Amount(revenue.CategoryRent).Amount; got != 2_000_000 {
		t.Errorf("rent = %d, want 2000000", got)
	}
	if r.PaidCount() != 2 || r.UnpaidCount() != 1 {
		t.Errorf("paid %d, unpaid %d", r.PaidCount(), r.UnpaidCount())
	}

	year, err := fx.eng.RevenueFor(ctx, revenue.Year(2025, time.UTC))
	if err != nil {
		t.Fatalf("RevenueFor year: %v", err)
	}
	if len(year.Months) != 12 {
		t.Errorf("year months = %d", len(year.Months))
	}
	if year.Total.Amount < r.Total.Amount {
		t.Errorf("year total %d below january %d", year.Total.Amount, r.Total.Amount)
	}
	// February onwards has not started yet, so only B4's January is owed.
	if year.PaidCount() != 2 || year.UnpaidCount() != 1 {
		t.Errorf("year: paid %v, unpaid %v", year.PaidUnits, year.UnpaidUnits)
	}

	if _, err := fx.eng.RevenueForKey(ctx, revenue.GranularityMonth, "2025-13"); !errors.Is(err, lodging.ErrValidation) {
		t.Errorf("bad key: err = %v", err)
	}
}

func TestStartStop(t *testing.T) {
	fx := newFixture(t, lodging.WithScanInterval(time.Hour))
	ctx := context.Background()

	if err := fx.eng.Stop(); !errors.Is(err, lodging.ErrNotStarted) {
		t.Errorf("Stop before Start: err = %v", err)
	}
	if err := fx.eng.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := fx.eng.Start(ctx); !errors.Is(err, lodging.ErrAlreadyStarted) {
		t.Errorf("second Start: err = %v", err)
	}
	if err := fx.eng.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestVerifyUnits(t *testing.T) {
	fx := newFixture(t)
	fx.hotelUnit(t, "801")
	if err := fx.eng.VerifyUnits(context.Background()); err != nil {
		t.Errorf("VerifyUnits: %v", err)
	}
}
