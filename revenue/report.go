package revenue

import (
	"sort"
	"time"

	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Category is a revenue line a report totals separately.
type Category string

const (
	CategoryRoom        Category = "room"
	CategoryRent        Category = "rent"
	CategoryElectricity Category = "electricity"
	CategoryWater       Category = "water"
	CategoryInternet    Category = "internet"
	CategoryOther       Category = "other"
	CategoryTax         Category = "tax"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryRoom, CategoryRent, CategoryElectricity, CategoryWater,
	CategoryInternet, CategoryOther, CategoryTax,
}

// Report is the revenue for one period, by category, with the units that
// paid and the units still owing.
type Report struct {
	Period      Period                   `json:"period"`
	Currency    string                   `json:"currency"`
	ByCategory  map[Category]types.Money `json:"by_category"`
	Total       types.Money              `json:"total"`
	Payments    int                      `json:"payments"`
	RentalsPaid int                      `json:"rentals_paid"`
	PaidUnits   []string                 `json:"paid_units"`
	UnpaidUnits []string                 `json:"unpaid_units"`
	Months      []*Report                `json:"months,omitempty"`
	Skipped     int                      `json:"skipped,omitempty"`

	paid   map[string]struct{}
	unpaid map[string]struct{}
}

// PaidCount is the number of units with income and nothing outstanding.
func (r *Report) PaidCount() int { return len(r.PaidUnits) }

// UnpaidCount is the number of boarding units with an unpaid month in the period.
func (r *Report) UnpaidCount() int { return len(r.UnpaidUnits) }

// Amount returns the total for one category.
func (r *Report) Amount(c Category) types.Money {
	if m, ok := r.ByCategory[c]; ok {
		return m
	}
	return types.Zero(r.Currency)
}

// Aggregate rolls up settled payments and tenancy ledgers for the period.
// Amounts in a currency other than currency are counted in Skipped and
// left out of the totals.
//
// Payments are attributed by PaidAt. Ledger entries are attributed by their
// month key for month and year periods, and by PaidDate for day periods.
// A year is the sum of its twelve months, each derived independently.
// Months starting after asOf are not yet owed; a zero asOf owes every
// month since move-in.
func Aggregate(p Period, currency string, asOf time.Time, payments []*payment.Payment, units []*room.Unit) *Report {
	if p.Granularity != GranularityYear {
		return aggregate(p, currency, asOf, payments, units)
	}

	r := newReport(p, currency)
	for _, m := range p.Months() {
		mr := aggregate(Month(m, p.Start.Location()), currency, asOf, payments, units)
		r.merge(mr)
		r.Months = append(r.Months, mr)
	}
	r.finish()
	return r
}

func aggregate(p Period, currency string, asOf time.Time, payments []*payment.Payment, units []*room.Unit) *Report {
	r := newReport(p, currency)

	for _, pay := range payments {
		if pay == nil || !p.Contains(pay.PaidAt) {
			continue
		}
		if pay.Currency != currency {
			r.Skipped++
			continue
		}
		r.add(CategoryRoom, pay.RoomCharge)
		r.add(CategoryOther, pay.Other())
		r.add(CategoryTax, pay.Tax)
		r.Payments++
		r.paid[pay.UnitID.String()] = struct{}{}
	}

	for _, u := range units {
		if u == nil || u.Tenancy == nil {
			continue
		}
		r.addTenancy(p, asOf, u, u.Tenancy)
	}

	r.finish()
	return r
}

func (r *Report) addTenancy(p Period, asOf time.Time, u *room.Unit, t *tenancy.Tenancy) {
	unitKey := u.ID.String()
	loc := p.Start.Location()

	for _, m := range p.Months() {
		// Months before move-in or not yet started are not owed.
		if !t.MoveIn.Before(m.End(loc)) {
			continue
		}
		if !asOf.IsZero() && m.Start(loc).After(asOf) {
			continue
		}
		e, ok := t.Ledger.Get(m)
		if !ok || !e.Paid {
			r.unpaid[unitKey] = struct{}{}
			continue
		}
		if p.Granularity == GranularityDay && (e.PaidDate == nil || !p.Contains(*e.PaidDate)) {
			continue
		}
		if e.Total.Currency != r.Currency {
			r.Skipped++
			continue
		}
		r.add(CategoryRent, e.Rent)
		r.add(CategoryElectricity, e.ElectricityCost)
		r.add(CategoryWater, e.WaterCost)
		r.add(CategoryInternet, e.Internet)
		r.add(CategoryOther, e.OtherTotal())
		r.RentalsPaid++
		r.paid[unitKey] = struct{}{}
	}
}

func newReport(p Period, currency string) *Report {
	r := &Report{
		Period:     p,
		Currency:   currency,
		ByCategory: make(map[Category]types.Money, len(Categories)),
		Total:      types.Zero(currency),
		paid:       make(map[string]struct{}),
		unpaid:     make(map[string]struct{}),
	}
	for _, c := range Categories {
		r.ByCategory[c] = types.Zero(currency)
	}
	return r
}

func (r *Report) add(c Category, m types.Money) {
	if m.IsZero() {
		return
	}
	r.ByCategory[c] = r.ByCategory[c].Add(m)
	r.Total = r.Total.Add(m)
}

func (r *Report) merge(o *Report) {
	for _, c := range Categories {
		r.add(c, o.ByCategory[c])
	}
	r.Payments += o.Payments
	r.RentalsPaid += o.RentalsPaid
	r.Skipped += o.Skipped
	for k := range o.paid {
		r.paid[k] = struct{}{}
	}
	for k := range o.unpaid {
		r.unpaid[k] = struct{}{}
	}
}

// finish resolves unit sets: a unit with anything outstanding counts as
// unpaid even if it also had income.
func (r *Report) finish() {
	r.PaidUnits = make([]string, 0, len(r.paid))
	r.UnpaidUnits = make([]string, 0, len(r.unpaid))
	for k := range r.paid {
		if _, owes := r.unpaid[k]; !owes {
			r.PaidUnits = append(r.PaidUnits, k)
		}
	}
	for k := range r.unpaid {
		r.UnpaidUnits = append(r.UnpaidUnits, k)
	}
	sort.Strings(r.PaidUnits)
	sort.Strings(r.UnpaidUnits)
}
