package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Month is a validated calendar month used as the ledger key ("YYYY-MM").
// The zero value is not a valid month; construct with NewMonth, MonthOf or ParseMonth.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type Month struct {
	year  int
	month time.Month
}

// NewMonth returns the month for a year and month number, rejecting values
// outside 1..12 and years outside 1..9999.
func NewMonth(year int, month time.Month) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("types: invalid month %d", month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("types: invalid year %d", year)
	}
	return Month{year: year, month: month}, nil
}

// MustMonth is like NewMonth but panics on error. Use for hardcoded values.
func MustMonth(year int, month time.Month) Month {
	m, err := NewMonth(year, month)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil || len(s) != 7 {
		return Month{}, fmt.Errorf("types: parse month %q: expected YYYY-MM", s)
	}
	return NewMonth(t.Year(), t.Month())
}

// Year returns the calendar year.
func (m Month) Year() int { return m.year }

// Month returns the calendar month number.
func (m Month) Month() time.Month { return m.month }

// IsZero reports whether m is the zero (invalid) month.
func (m Month) IsZero() bool { return m.month == 0 }

// String returns the "YYYY-MM" key.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Start returns the first instant of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, loc)
}

// End returns the first instant of the following month in loc (exclusive bound).
func (m Month) End(loc *time.Location) time.Time {
	return m.Start(loc).AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month, evaluated in t's location.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.year && t.Month() == m.month
}

// Prev returns the preceding month.
func (m Month) Prev() Month { return m.add(-1) }

// Next returns the following month.
func (m Month) Next() Month { return m.add(1) }

func (m Month) add(n int) Month {
	t := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{year: t.Year(), month: t.Month()}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.year != other.year {
		return m.year < other.year
	}
	return m.month < other.month
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer.
func (m Month) Value() (driver.Value, error) {
	if m.IsZero() {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Month) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Month{}
		return nil
	case string:
		return m.UnmarshalText([]byte(v))
	case []byte:
		return m.UnmarshalText(v)
	default:
		return fmt.Errorf("types: cannot scan %T into Month", src)
	}
}
