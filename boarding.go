package lodging

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/meter"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// StartTenancyInput describes a boarding-house move-in. A zero MoveIn means
// now; a zero MonthlyRent falls back to the unit's monthly price.
type StartTenancyInput struct {
	TenantName       string      `json:"tenant_name"                validate:"required,max=200"`
	TenantPhone      string      `json:"tenant_phone"               validate:"required,max=32"`
	TenantIDNumber   string      `json:"tenant_id_number,omitempty" validate:"max=64"`
	MoveIn           time.Time   `json:"move_in"`
	Deposit          types.Money `json:"deposit"`
	MonthlyRent      types.Money `json:"monthly_rent"`
	ElectricityPrice types.Money `json:"electricity_price"`
	WaterPrice       types.Money `json:"water_price"`
	InternetFee      types.Money `json:"internet_fee"`
}

// ReadingInput is one utility's meter pair. A zero UnitPrice uses the
// tenancy's price.
type ReadingInput struct {
	Old       decimal.Decimal `json:"old"`
	New       decimal.Decimal `json:"new"`
	UnitPrice types.Money     `json:"unit_price"`
}

// MonthlyPaymentInput is one month's bill. A zero Month means the current
// month; a zero Rent and a nil Internet fall back to the tenancy's terms.
type MonthlyPaymentInput struct {
	Month       types.Month           `json:"month"`
	Rent        types.Money           `json:"rent"`
	Electricity *ReadingInput         `json:"electricity,omitempty"`
	Water       *ReadingInput         `json:"water,omitempty"`
	Internet    *types.Money          `json:"internet,omitempty"`
	Others      []tenancy.OtherCharge `json:"others,omitempty" validate:"max=50"`
	Method      payment.Method        `json:"method"           validate:"omitempty,oneof=cash bank_transfer card qr"`
}

// StartTenancy moves a tenant into a vacant-clean boarding unit.
func (e *Engine) StartTenancy(ctx context.Context, unitID id.UnitID, in StartTenancyInput) (*room.Unit, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	u, from, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		if u.Mode != room.ModeBoarding {
			return fmt.Errorf("%w: unit %s is a %s unit", ErrWrongMode, u.Label, u.Mode)
		}
		if err := u.Require("start tenancy", room.StatusVacantClean); err != nil {
			return err
		}

		rent := in.MonthlyRent
		if rent.IsZero() {
			price, ok := u.Profile.Price(rate.BasisMonthly)
			if !ok {
				return types.Invalid("monthly_rent", fmt.Sprintf("unit %s has no monthly price", u.Label))
			}
			rent = price
		}
		moveIn := in.MoveIn
		if moveIn.IsZero() {
			moveIn = now
		}

		t, err := tenancy.Start(tenancy.StartInput{
			TenantName:       in.TenantName,
			TenantPhone:      in.TenantPhone,
			TenantIDNumber:   in.TenantIDNumber,
			MoveIn:           moveIn,
			Deposit:          in.Deposit,
			MonthlyRent:      withCurrency(rent, e.currency),
			ElectricityPrice: in.ElectricityPrice,
			WaterPrice:       in.WaterPrice,
			InternetFee:      in.InternetFee,
		})
		if err != nil {
			return err
		}
		if err := u.Transition("start tenancy", room.StatusOccupied); err != nil {
			return err
		}
		u.Tenancy = t
		return u.Consistent()
	})
	if err != nil {
		return nil, err
	}

	e.emitStatus(ctx, u, from)
	e.plugins.EmitTenancyStarted(ctx, u.ID, u.Tenancy.Clone())
	e.logger.Info("tenancy started",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"tenancy_id", u.Tenancy.ID.String(),
		"monthly_rent", u.Tenancy.MonthlyRent.String(),
	)
	return u, nil
}

// EndTenancy discards the tenancy and its ledger history and leaves the
// unit vacant-dirty.
func (e *Engine) EndTenancy(ctx context.Context, unitID id.UnitID) (*tenancy.Tenancy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ended *tenancy.Tenancy
	u, from, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		t, err := activeTenancy(u)
		if err != nil {
			return err
		}
		if err := u.Transition("end tenancy", room.StatusVacantDirty); err != nil {
			return err
		}
		ended = t
		u.Tenancy = nil
		return u.Consistent()
	})
	if err != nil {
		return nil, err
	}

	e.emitStatus(ctx, u, from)
	e.plugins.EmitTenancyEnded(ctx, u.ID, ended.Clone())
	e.logger.Info("tenancy ended",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"tenancy_id", ended.ID.String(),
		"months_recorded", ended.Ledger.Len(),
	)
	return ended, nil
}

// RecordMonthlyPayment computes the month's bill, marks it paid now and
// upserts it into the ledger. Recording a month twice overwrites it.
func (e *Engine) RecordMonthlyPayment(ctx context.Context, unitID id.UnitID, in MonthlyPaymentInput) (tenancy.MonthlyRental, error) {
	if in.Method == "" {
		return tenancy.MonthlyRental{}, types.Invalid("method", "is required")
	}
	r, err := e.bill(ctx, unitID, in, true)
	if err != nil {
		return tenancy.MonthlyRental{}, err
	}
	e.plugins.EmitMonthlyPaymentRecorded(ctx, unitID, r)
	return r, nil
}

// BillMonth records the month as billed but unpaid.
// A month already paid cannot be billed again.
func (e *Engine) BillMonth(ctx context.Context, unitID id.UnitID, in MonthlyPaymentInput) (tenancy.MonthlyRental, error) {
	r, err := e.bill(ctx, unitID, in, false)
	if err != nil {
		return tenancy.MonthlyRental{}, err
	}
	e.plugins.EmitMonthBilled(ctx, unitID, r)
	return r, nil
}

func (e *Engine) bill(ctx context.Context, unitID id.UnitID, in MonthlyPaymentInput, paid bool) (tenancy.MonthlyRental, error) {
	if err := e.check(in); err != nil {
		return tenancy.MonthlyRental{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	month := in.Month
	if month.IsZero() {
		month = types.MonthOf(now.In(e.location))
	}
	bi := tenancy.BillInput{
		Month:       month,
		Rent:        in.Rent,
		Electricity: in.Electricity.reading(),
		Water:       in.Water.reading(),
		Internet:    in.Internet,
		Others:      in.Others,
		Method:      in.Method,
	}

	var (
		r        tenancy.MonthlyRental
		replaced bool
	)
	u, _, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		t, err := activeTenancy(u)
		if err != nil {
			return err
		}
		if paid {
			r, replaced, err = t.RecordPayment(bi, now)
		} else {
			r, replaced, err = t.BillMonth(bi, now)
		}
		return err
	})
	if err != nil {
		return tenancy.MonthlyRental{}, err
	}

	e.logger.Info("monthly bill recorded",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"month", r.Month.String(),
		"paid", r.Paid,
		"total", r.Total.String(),
		"replaced", replaced,
	)
	return r, nil
}

// MonthlyLedgerFor returns the tenancy's ledger entries ordered by month.
func (e *Engine) MonthlyLedgerFor(ctx context.Context, unitID id.UnitID) ([]tenancy.MonthlyRental, error) {
	t, err := e.tenancyOf(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return t.Ledger.Entries(), nil
}

// MonthStatus reports whether month was never billed, billed and unpaid,
// or paid.
func (e *Engine) MonthStatus(ctx context.Context, unitID id.UnitID, month types.Month) (tenancy.MonthStatus, error) {
	t, err := e.tenancyOf(ctx, unitID)
	if err != nil {
		return "", err
	}
	return t.MonthStatus(month), nil
}

// IsCurrentMonthPaid reports whether the engine clock's month is paid.
func (e *Engine) IsCurrentMonthPaid(ctx context.Context, unitID id.UnitID) (bool, error) {
	t, err := e.tenancyOf(ctx, unitID)
	if err != nil {
		return false, err
	}
	return t.IsMonthPaid(types.MonthOf(e.now().In(e.location))), nil
}

// OpeningReadings returns the electricity and water readings a bill for
// month starts from.
func (e *Engine) OpeningReadings(ctx context.Context, unitID id.UnitID, month types.Month) (electricity, water decimal.Decimal, err error) {
	t, err := e.tenancyOf(ctx, unitID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	electricity, water = t.OpeningReadings(month)
	return electricity, water, nil
}

func (e *Engine) tenancyOf(ctx context.Context, unitID id.UnitID) (*tenancy.Tenancy, error) {
	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return activeTenancy(u)
}

func activeTenancy(u *room.Unit) (*tenancy.Tenancy, error) {
	if u.Mode != room.ModeBoarding {
		return nil, fmt.Errorf("%w: unit %s is a %s unit", ErrWrongMode, u.Label, u.Mode)
	}
	if u.Tenancy == nil {
		return nil, fmt.Errorf("%w: unit %s", ErrNoTenancy, u.Label)
	}
	return u.Tenancy, nil
}

func (r *ReadingInput) reading() *meter.Reading {
	if r == nil {
		return nil
	}
	return &meter.Reading{Old: r.Old, New: r.New, UnitPrice: r.UnitPrice}
}
