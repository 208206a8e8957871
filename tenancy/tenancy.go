package tenancy

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/meter"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/types"
)

// StartInput describes a move-in.
type StartInput struct {
	TenantName       string
	TenantPhone      string
	TenantIDNumber   string
	MoveIn           time.Time
	Deposit          types.Money
	MonthlyRent      types.Money
	ElectricityPrice types.Money
	WaterPrice       types.Money
	InternetFee      types.Money
}

// Start validates a move-in and returns a tenancy with an empty ledger.
func Start(in StartInput) (*Tenancy, error) {
	cur := in.MonthlyRent.Currency
	switch {
	case strings.TrimSpace(in.TenantName) == "":
		return nil, types.Invalid("tenant_name", "is required")
	case strings.TrimSpace(in.TenantPhone) == "":
		return nil, types.Invalid("tenant_phone", "is required")
	case in.MoveIn.IsZero():
		return nil, types.Invalid("move_in", "is required")
	case !in.MonthlyRent.IsPositive():
		return nil, types.Invalid("monthly_rent", "must be positive")
	}
	for field, m := range map[string]types.Money{
		"deposit":           in.Deposit,
		"electricity_price": in.ElectricityPrice,
		"water_price":       in.WaterPrice,
		"internet_fee":      in.InternetFee,
	} {
		if err := checkAmount(field, m, cur); err != nil {
			return nil, err
		}
	}

	return &Tenancy{
		ID:               id.NewTenancyID(),
		TenantName:       strings.TrimSpace(in.TenantName),
		TenantPhone:      strings.TrimSpace(in.TenantPhone),
		TenantIDNumber:   strings.TrimSpace(in.TenantIDNumber),
		MoveIn:           in.MoveIn.UTC(),
		Deposit:          withCurrency(in.Deposit, cur),
		MonthlyRent:      in.MonthlyRent,
		ElectricityPrice: withCurrency(in.ElectricityPrice, cur),
		WaterPrice:       withCurrency(in.WaterPrice, cur),
		InternetFee:      withCurrency(in.InternetFee, cur),
	}, nil
}

// BillInput is one month's bill. Zero-valued fields fall back to the
// tenancy's terms: Rent to MonthlyRent, Internet (when nil) to InternetFee,
// and a reading's unset UnitPrice to the tenancy's utility price.
type BillInput struct {
	Month       types.Month
	Rent        types.Money
	Electricity *meter.Reading
	Water       *meter.Reading
	Internet    *types.Money
	Others      []OtherCharge
	Method      payment.Method
}

// RecordPayment computes the month's bill, marks it paid at now and upserts
// it. Recording the same month again overwrites the earlier entry.
func (t *Tenancy) RecordPayment(in BillInput, now time.Time) (MonthlyRental, bool, error) {
	if !in.Method.Valid() {
		return MonthlyRental{}, false, types.Invalid("method", fmt.Sprintf("unknown payment method %q", in.Method))
	}
	r, err := t.compute(in, now)
	if err != nil {
		return MonthlyRental{}, false, err
	}
	paid := now.UTC()
	r.Paid = true
	r.PaidDate = &paid
	r.PaidAmount = r.Total
	r.Method = in.Method

	replaced, err := t.Ledger.Upsert(r)
	return r, replaced, err
}

// BillMonth upserts an unpaid entry for the month so it reports as billed
// but unpaid rather than never billed. A paid month cannot be billed again;
// record a new payment to replace it.
func (t *Tenancy) BillMonth(in BillInput, now time.Time) (MonthlyRental, bool, error) {
	if prev, ok := t.Ledger.Get(in.Month); ok && prev.Paid {
		return MonthlyRental{}, false, types.TransitionError{
			Action: "bill " + in.Month.String(),
			From:   string(MonthPaid),
			To:     string(MonthUnpaid),
		}
	}
	r, err := t.compute(in, now)
	if err != nil {
		return MonthlyRental{}, false, err
	}
	r.PaidAmount = types.Zero(r.Total.Currency)
	r.Method = ""
	replaced, err := t.Ledger.Upsert(r)
	return r, replaced, err
}

// MonthStatus reports whether m was never billed, billed and unpaid, or paid.
func (t *Tenancy) MonthStatus(m types.Month) MonthStatus {
	r, ok := t.Ledger.Get(m)
	switch {
	case !ok:
		return MonthNeverBilled
	case r.Paid:
		return MonthPaid
	default:
		return MonthUnpaid
	}
}

// IsMonthPaid collapses never-billed and unpaid into false.
func (t *Tenancy) IsMonthPaid(m types.Month) bool {
	return t.MonthStatus(m) == MonthPaid
}

// OpeningReadings returns the meter values a new bill for m starts from:
// the closing readings of the latest earlier month, or zero.
func (t *Tenancy) OpeningReadings(m types.Month) (electricity, water decimal.Decimal) {
	electricity, water = decimal.Zero, decimal.Zero
	prev, ok := t.Ledger.latestBefore(m)
	if !ok {
		return electricity, water
	}
	if prev.Electricity != nil {
		electricity = prev.Electricity.New
	}
	if prev.Water != nil {
		water = prev.Water.New
	}
	return electricity, water
}

// Outstanding sums the totals of billed but unpaid months.
func (t *Tenancy) Outstanding() types.Money {
	sum := types.Zero(t.MonthlyRent.Currency)
	for _, r := range t.Ledger.Entries() {
		if !r.Paid {
			sum = sum.Add(r.Total)
		}
	}
	return sum
}

func (t *Tenancy) compute(in BillInput, now time.Time) (MonthlyRental, error) {
	cur := t.MonthlyRent.Currency
	if in.Month.IsZero() {
		return MonthlyRental{}, types.Invalid("month", "is required")
	}

	rent := in.Rent
	if rent.IsZero() {
		rent = t.MonthlyRent
	}
	if err := checkAmount("rent", rent, cur); err != nil {
		return MonthlyRental{}, err
	}
	rent = withCurrency(rent, cur)

	internet := t.InternetFee
	if in.Internet != nil {
		internet = withCurrency(*in.Internet, cur)
	}
	if err := checkAmount("internet", internet, cur); err != nil {
		return MonthlyRental{}, err
	}

	elec, elecCost, err := t.utility(meter.Electricity, in.Electricity, t.ElectricityPrice)
	if err != nil {
		return MonthlyRental{}, err
	}
	water, waterCost, err := t.utility(meter.Water, in.Water, t.WaterPrice)
	if err != nil {
		return MonthlyRental{}, err
	}

	others := make([]OtherCharge, 0, len(in.Others))
	for i, o := range in.Others {
		field := fmt.Sprintf("others[%d]", i)
		if strings.TrimSpace(o.Name) == "" {
			return MonthlyRental{}, types.Invalid(field+".name", "is required")
		}
		if err := checkAmount(field+".amount", o.Amount, cur); err != nil {
			return MonthlyRental{}, err
		}
		others = append(others, OtherCharge{Name: strings.TrimSpace(o.Name), Amount: withCurrency(o.Amount, cur)})
	}

	r := MonthlyRental{
		ID:              id.NewRentalID(),
		Month:           in.Month,
		Rent:            rent,
		Electricity:     elec,
		Water:           water,
		ElectricityCost: elecCost,
		WaterCost:       waterCost,
		Internet:        internet,
		Others:          others,
		RecordedAt:      now.UTC(),
	}
	if existing, ok := t.Ledger.Get(in.Month); ok {
		r.ID = existing.ID
	}
	r.Total = types.Sum(cur, r.Rent, r.ElectricityCost, r.WaterCost, r.Internet, r.OtherTotal())
	return r, nil
}

func (t *Tenancy) utility(kind meter.Kind, in *meter.Reading, price types.Money) (*meter.Reading, types.Money, error) {
	cur := t.MonthlyRent.Currency
	if in == nil {
		return nil, types.Zero(cur), nil
	}
	r := *in
	if r.UnitPrice.Currency == "" && r.UnitPrice.IsZero() {
		r.UnitPrice = withCurrency(price, cur)
	}
	r.UnitPrice = withCurrency(r.UnitPrice, cur)
	if r.UnitPrice.Currency != cur {
		return nil, types.Money{}, types.Invalid(string(kind)+".price_per_unit", "currency must be "+cur)
	}
	cost, err := r.Cost()
	if err != nil {
		return nil, types.Money{}, fmt.Errorf("%s: %w", kind, err)
	}
	return &r, cost, nil
}

func checkAmount(field string, m types.Money, cur string) error {
	if m.IsNegative() {
		return types.Invalid(field, "must not be negative")
	}
	if m.Currency != "" && m.Currency != cur {
		return types.Invalid(field, "currency must be "+cur)
	}
	return nil
}

func withCurrency(m types.Money, cur string) types.Money {
	if m.Currency == "" {
		m.Currency = cur
	}
	return m
}
