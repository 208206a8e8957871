package meter

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCost(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		price    types.Money
		want     types.Money
	}{
		{"electricity 100->150 @3500", "100", "150", types.VND(3500), types.VND(175000)},
		{"water 20->25 @15000", "20", "25", types.VND(15000), types.VND(75000)},
		{"no consumption", "42", "42", types.VND(3500), types.VND(0)},
		{"fractional reading", "10.5", "12", types.VND(3500), types.VND(5250)},
		{"free utility", "0", "10", types.VND(0), types.VND(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cost(d(tt.old), d(tt.new), tt.price)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Cost: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCostRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		price    types.Money
		field    string
	}{
		{"meter rolled back", "150", "100", types.VND(3500), "new_reading"},
		{"negative opening", "-1", "10", types.VND(3500), "old_reading"},
		{"negative price", "1", "10", types.VND(-3500), "price_per_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cost(d(tt.old), d(tt.new), tt.price)
			if !errors.Is(err, types.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr types.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, verr)
			}
			if !got.IsZero() {
				t.Errorf("rejected input must not produce a charge, got %v", got)
			}
		})
	}
}

func TestCostMonotonicInNewReading(t *testing.T) {
	price := types.VND(3500)
	prev := types.VND(0)
	for n := 100; n <= 200; n += 7 {
		got, err := Cost(d("100"), decimal.NewFromInt(int64(n)), price)
		if err != nil {
			t.Fatal(err)
		}
		if got.LessThan(prev) {
			t.Fatalf("cost decreased at new=%d: %v < %v", n, got, prev)
		}
		want := price.Multiply(int64(n - 100))
		if !got.Equal(want) {
			t.Fatalf("new=%d: got %v, want %v", n, got, want)
		}
		prev = got
	}
}

func TestConsumptionClamps(t *testing.T) {
	if c := Consumption(d("150"), d("100")); !c.IsZero() {
		t.Errorf("expected clamp to zero, got %s", c)
	}
	r := Reading{Old: d("20"), New: d("25"), UnitPrice: types.VND(15000)}
	if !r.Consumption().Equal(d("5")) {
		t.Errorf("Consumption: got %s", r.Consumption())
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
