package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"VND", VND(300000), 300000, "vnd", "300000₫"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"Zero VND", Zero("VND"), 0, "vnd", "0₫"},
		{"Negative USD", USD(-250), -250, "usd", "$-2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return VND(100).Add(VND(200)) }, VND(300)},
		{"Subtract", func() Money { return VND(500).Subtract(VND(200)) }, VND(300)},
		{"Multiply", func() Money { return VND(300000).Multiply(3) }, VND(900000)},
		{"Negate", func() Money { return VND(100).Negate() }, VND(-100)},
		{"Add to bare zero", func() Money { return Money{}.Add(VND(5)) }, VND(5)},
		{"Tax 8%", func() Money { return VND(920000).MulDecimal(decimal.RequireFromString("0.08")) }, VND(73600)},
		{"Round half up", func() Money { return VND(5).MulDecimal(decimal.RequireFromString("0.5")) }, VND(3)},
		{"Fractional consumption", func() Money { return VND(3500).MulDecimal(decimal.RequireFromString("12.5")) }, VND(43750)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	_ = VND(100).Add(USD(100))
}

func TestSum(t *testing.T) {
	got := Sum("vnd", VND(3000000), VND(175000), VND(75000), VND(100000))
	if !got.Equal(VND(3350000)) {
		t.Errorf("Sum: got %v, want %v", got, VND(3350000))
	}
	if empty := Sum("vnd"); !empty.Equal(Zero("vnd")) {
		t.Errorf("empty Sum: got %v", empty)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(VND(920000))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"amount":920000,"currency":"vnd","display":"920000₫"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(VND(920000)) {
		t.Errorf("decoded %v", back)
	}
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "2025-01" {
		t.Errorf("String: got %s", m.String())
	}
	if m.Prev().String() != "2024-12" {
		t.Errorf("Prev: got %s", m.Prev().String())
	}
	if m.Next().String() != "2025-02" {
		t.Errorf("Next: got %s", m.Next().String())
	}
	if !m.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)) {
		t.Error("expected 2025-01-31 to be inside 2025-01")
	}
	if !m.Before(m.Next()) || m.Next().Before(m) {
		t.Error("Before ordering is wrong")
	}

	for _, bad := range []string{"", "2025-13", "2025-1", "25-01", "2025/01", "2025-01-01"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q): expected error", bad)
		}
	}

	var decoded struct {
		Month Month `json:"month"`
	}
	if err := json.Unmarshal([]byte(`{"month":"2024-02"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Month != MustMonth(2024, time.February) {
		t.Errorf("decoded %s", decoded.Month)
	}
	if err := json.Unmarshal([]byte(`{"month":"2024-00"}`), &decoded); err == nil {
		t.Error("expected malformed month key to be rejected at decode time")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"validation", Invalid("guest_name", "required"), ErrValidation},
		{"transition", TransitionError{Action: "check in", From: "occupied"}, ErrIllegalTransition},
		{"in use", InUseError{Scope: "building", ScopeID: "bld_1", UnitIDs: []string{"unit_1"}}, ErrResourceInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
