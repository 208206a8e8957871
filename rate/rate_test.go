package rate

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/lodging/types"
)

func TestUnits(t *testing.T) {
	base := time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		basis Basis
		end   time.Time
		want  int64
	}{
		{"three nights", BasisNightly, time.Date(2025, 1, 4, 14, 0, 0, 0, time.UTC), 3},
		{"late checkout rounds up", BasisNightly, time.Date(2025, 1, 4, 15, 0, 0, 0, time.UTC), 4},
		{"same-day stay is one night", BasisNightly, base.Add(3 * time.Hour), 1},
		{"end before start", BasisNightly, base.Add(-time.Hour), 1},
		{"two and a half hours", BasisHourly, base.Add(150 * time.Minute), 3},
		{"exactly two hours", BasisHourly, base.Add(2 * time.Hour), 2},
		{"one minute", BasisHourly, base.Add(time.Minute), 1},
		{"daily 25h", BasisDaily, base.Add(25 * time.Hour), 2},
		{"one calendar month", BasisMonthly, time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC), 1},
		{"month and a day", BasisMonthly, time.Date(2025, 2, 2, 14, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Units(tt.basis, base, tt.end); got != tt.want {
				t.Errorf("Units(%s): got %d, want %d", tt.basis, got, tt.want)
			}
		})
	}
}

func TestCharge(t *testing.T) {
	in := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)

	got, n := Charge(types.VND(300000), BasisNightly, in, out)
	if n != 3 {
		t.Errorf("nights: got %d, want 3", n)
	}
	if !got.Equal(types.VND(900000)) {
		t.Errorf("room charge: got %v, want 900000", got)
	}
}

func TestProfile(t *testing.T) {
	guesthouse := Profile{Hourly: types.VND(80000), Daily: types.VND(350000)}

	if _, ok := guesthouse.Price(BasisNightly); ok {
		t.Error("guesthouse profile should not offer nightly")
	}
	if p, ok := guesthouse.Price(BasisHourly); !ok || !p.Equal(types.VND(80000)) {
		t.Errorf("hourly: got %v, %v", p, ok)
	}
	if got := guesthouse.Offers(); len(got) != 2 || got[0] != BasisHourly || got[1] != BasisDaily {
		t.Errorf("Offers: got %v", got)
	}
	if err := guesthouse.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if err := (Profile{}).Validate(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("empty profile: expected validation error, got %v", err)
	}
	if err := (Profile{Nightly: types.VND(-1), Monthly: types.VND(10)}).Validate(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("negative price: expected validation error, got %v", err)
	}
}

func TestBasis(t *testing.T) {
	if Basis("weekly").Valid() {
		t.Error("weekly should not be a valid basis")
	}
	if !BasisHourly.Elapsed() || !BasisDaily.Elapsed() {
		t.Error("hourly and daily bill elapsed time")
	}
	if BasisNightly.Elapsed() || BasisMonthly.Elapsed() {
		t.Error("nightly and monthly bill the planned stay")
	}
}
