// Package meter converts utility meter readings into billable costs.
//
// Electricity and water are metered the same way: consumption is the
// difference between the closing and opening reading, multiplied by the
// price per unit (kWh, m³). A closing reading below the opening reading is
// rejected rather than billed as a negative amount.
package meter

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/types"
)

// Kind distinguishes the metered utilities. The two are never conflated in a ledger entry.
type Kind string

const (
	Electricity Kind = "electricity"
	Water       Kind = "water"
)

// Reading is one billing period's pair of meter values for a single utility.
type Reading struct {
	Old       decimal.Decimal `json:"old"`
	New       decimal.Decimal `json:"new"`
	UnitPrice types.Money     `json:"unit_price"`
}

// Consumption returns max(0, new-old).
func Consumption(oldReading, newReading decimal.Decimal) decimal.Decimal {
	delta := newReading.Sub(oldReading)
	if delta.IsNegative() {
		return decimal.Zero
	}
	return delta
}

// Cost computes (new-old) × pricePerUnit, rounded to the smallest currency unit.
// It returns a ValidationError when newReading < oldReading, when either
// reading is negative, or when the price is negative.
func Cost(oldReading, newReading decimal.Decimal, pricePerUnit types.Money) (types.Money, error) {
	if err := validate(oldReading, newReading, pricePerUnit); err != nil {
		return types.Zero(pricePerUnit.Currency), err
	}
	return pricePerUnit.MulDecimal(Consumption(oldReading, newReading)), nil
}

// Validate checks the reading pair and price without computing a cost.
func (r Reading) Validate() error {
	return validate(r.Old, r.New, r.UnitPrice)
}

// Consumption returns the clamped consumption of the reading pair.
func (r Reading) Consumption() decimal.Decimal {
	return Consumption(r.Old, r.New)
}

// Cost computes the billable amount for the reading pair.
func (r Reading) Cost() (types.Money, error) {
	return Cost(r.Old, r.New, r.UnitPrice)
}

func validate(oldReading, newReading decimal.Decimal, price types.Money) error {
	switch {
	case oldReading.IsNegative():
		return types.Invalid("old_reading", "must not be negative")
	case newReading.LessThan(oldReading):
		return types.Invalid("new_reading", "must be greater than or equal to the old reading "+oldReading.String())
	case price.IsNegative():
		return types.Invalid("price_per_unit", "must not be negative")
	}
	return nil
}
