package tenancy

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xraph/lodging/types"
)

// Ledger is an ordered map from calendar month to MonthlyRental. Keys are
// validated types.Month values, so malformed month keys cannot be stored.
// The zero value is an empty ledger.
type Ledger struct {
	entries map[types.Month]MonthlyRental
}

// Upsert stores r under r.Month, replacing any existing entry. It reports
// whether an entry was replaced.
func (l *Ledger) Upsert(r MonthlyRental) (bool, error) {
	if r.Month.IsZero() {
		return false, types.Invalid("month", "is required")
	}
	if l.entries == nil {
		l.entries = make(map[types.Month]MonthlyRental)
	}
	_, replaced := l.entries[r.Month]
	l.entries[r.Month] = r.clone()
	return replaced, nil
}

// Get returns a copy of the entry for m.
func (l *Ledger) Get(m types.Month) (MonthlyRental, bool) {
	r, ok := l.entries[m]
	if !ok {
		return MonthlyRental{}, false
	}
	return r.clone(), true
}

// Entries returns copies of all entries in ascending month order.
func (l *Ledger) Entries() []MonthlyRental {
	out := make([]MonthlyRental, 0, len(l.entries))
	for _, r := range l.entries {
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// Len is the number of distinct months in the ledger.
func (l *Ledger) Len() int { return len(l.entries) }

// latestBefore returns the newest entry strictly before m.
func (l *Ledger) latestBefore(m types.Month) (MonthlyRental, bool) {
	var (
		best  MonthlyRental
		found bool
	)
	for k, r := range l.entries {
		if k.Before(m) && (!found || best.Month.Before(k)) {
			best, found = r, true
		}
	}
	return best, found
}

func (l Ledger) clone() Ledger {
	if l.entries == nil {
		return Ledger{}
	}
	c := Ledger{entries: make(map[types.Month]MonthlyRental, len(l.entries))}
	for k, r := range l.entries {
		c.entries[k] = r.clone()
	}
	return c
}

// MarshalJSON encodes the ledger as an array ordered by month.
func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

// UnmarshalJSON decodes an array of entries, rejecting duplicate months.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var rows []MonthlyRental
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded := Ledger{}
	for _, r := range rows {
		replaced, err := decoded.Upsert(r)
		if err != nil {
			return err
		}
		if replaced {
			return fmt.Errorf("tenancy: duplicate ledger month %s", r.Month)
		}
	}
	*l = decoded
	return nil
}
