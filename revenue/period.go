// Package revenue is a read-only projection over settled payments and
// tenancy ledgers. It never writes and keeps no cache: every report is
// derived from the records passed in.
package revenue

import (
	"fmt"
	"time"

	"github.com/xraph/lodging/types"
)

// Granularity is the size of a report period.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Period is a half-open time range [Start, End) at one granularity.
type Period struct {
	Granularity Granularity `json:"granularity"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
}

// Day returns the calendar day containing t, in t's location.
func Day(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Period{Granularity: GranularityDay, Start: start, End: start.AddDate(0, 0, 1)}
}

// Month returns the period covering m in loc.
func Month(m types.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	return Period{Granularity: GranularityMonth, Start: m.Start(loc), End: m.End(loc)}
}

// Year returns the period covering the calendar year in loc.
func Year(year int, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Period{Granularity: GranularityYear, Start: start, End: start.AddDate(1, 0, 0)}
}

// Parse builds a period from a granularity and a key: "2025-01-31" for a
// day, "2025-01" for a month, "2025" for a year.
func Parse(g Granularity, key string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch g {
	case GranularityDay:
		t, err := time.ParseInLocation(time.DateOnly, key, loc)
		if err != nil {
			return Period{}, types.Invalid("period", fmt.Sprintf("bad day %q", key))
		}
		return Day(t), nil
	case GranularityMonth:
		m, err := types.ParseMonth(key)
		if err != nil {
			return Period{}, types.Invalid("period", err.Error())
		}
		return Month(m, loc), nil
	case GranularityYear:
		t, err := time.ParseInLocation("2006", key, loc)
		if err != nil {
			return Period{}, types.Invalid("period", fmt.Sprintf("bad year %q", key))
		}
		return Year(t.Year(), loc), nil
	}
	return Period{}, types.Invalid("granularity", fmt.Sprintf("unknown granularity %q", g))
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Months lists the calendar months overlapping the period.
func (p Period) Months() []types.Month {
	var out []types.Month
	for m := types.MonthOf(p.Start); m.Start(p.Start.Location()).Before(p.End); m = m.Next() {
		out = append(out, m)
	}
	return out
}

func (p Period) String() string {
	switch p.Granularity {
	case GranularityDay:
		return p.Start.Format(time.DateOnly)
	case GranularityMonth:
		return types.MonthOf(p.Start).String()
	case GranularityYear:
		return p.Start.Format("2006")
	}
	return p.Start.Format(time.RFC3339) + "/" + p.End.Format(time.RFC3339)
}
