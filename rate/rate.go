// Package rate describes how a unit is priced and how long a stay lasts in
// billable units. One parameterized model covers hotel (nightly),
// guesthouse (hourly or daily) and boarding-house (monthly) billing.
package rate

import (
	"math"
	"time"

	"github.com/xraph/lodging/types"
)

// Basis is the unit of time a stay is billed in.
type Basis string

const (
	BasisNightly Basis = "nightly"
	BasisHourly  Basis = "hourly"
	BasisDaily   Basis = "daily"
	BasisMonthly Basis = "monthly"
)

// Valid reports whether b is a known basis.
func (b Basis) Valid() bool {
	switch b {
	case BasisNightly, BasisHourly, BasisDaily, BasisMonthly:
		return true
	}
	return false
}

// Elapsed reports whether the billed duration is measured from check-in to
// the moment of settlement rather than to the planned checkout.
func (b Basis) Elapsed() bool {
	return b == BasisHourly || b == BasisDaily
}

// Profile is a unit's price list. Zero prices mean the basis is not offered.
type Profile struct {
	Nightly types.Money `json:"nightly" bson:"nightly"`
	Hourly  types.Money `json:"hourly"  bson:"hourly"`
	Daily   types.Money `json:"daily"   bson:"daily"`
	Monthly types.Money `json:"monthly" bson:"monthly"`
}

// Price returns the price for b and whether the unit offers it.
func (p Profile) Price(b Basis) (types.Money, bool) {
	var m types.Money
	switch b {
	case BasisNightly:
		m = p.Nightly
	case BasisHourly:
		m = p.Hourly
	case BasisDaily:
		m = p.Daily
	case BasisMonthly:
		m = p.Monthly
	default:
		return types.Money{}, false
	}
	return m, m.IsPositive()
}

// Offers returns the bases this profile prices.
func (p Profile) Offers() []Basis {
	var out []Basis
	for _, b := range []Basis{BasisNightly, BasisHourly, BasisDaily, BasisMonthly} {
		if _, ok := p.Price(b); ok {
			out = append(out, b)
		}
	}
	return out
}

// Validate rejects negative prices and profiles that offer nothing.
func (p Profile) Validate() error {
	for b, m := range map[Basis]types.Money{
		BasisNightly: p.Nightly,
		BasisHourly:  p.Hourly,
		BasisDaily:   p.Daily,
		BasisMonthly: p.Monthly,
	} {
		if m.IsNegative() {
			return types.Invalid(string(b)+"_price", "must not be negative")
		}
	}
	if len(p.Offers()) == 0 {
		return types.Invalid("billing_profile", "at least one price must be positive")
	}
	return nil
}

// Units returns the number of billable units between start and end for the
// basis, rounding partial units up with a minimum of one.
//
//   - nightly: ceil((end-start) / 24h)
//   - hourly:  ceil((end-start) / 1h)
//   - daily:   ceil((end-start) / 24h)
//   - monthly: calendar months started since start
func Units(b Basis, start, end time.Time) int64 {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 1
	}

	var n int64
	switch b {
	case BasisHourly:
		n = ceilDiv(elapsed, time.Hour)
	case BasisNightly, BasisDaily:
		n = ceilDiv(elapsed, 24*time.Hour)
	case BasisMonthly:
		n = months(start, end)
	default:
		n = 1
	}
	return max(n, 1)
}

// Charge returns price × Units(b, start, end) along with the unit count.
func Charge(price types.Money, b Basis, start, end time.Time) (types.Money, int64) {
	n := Units(b, start, end)
	return price.Multiply(n), n
}

func ceilDiv(d, unit time.Duration) int64 {
	return int64(math.Ceil(float64(d) / float64(unit)))
}

func months(start, end time.Time) int64 {
	n := int64(end.Year()-start.Year())*12 + int64(end.Month()-start.Month())
	if end.Day() > start.Day() || (end.Day() == start.Day() && end.Sub(start.AddDate(0, int(n), 0)) > 0) {
		n++
	}
	return n
}
