// Package alert detects stays whose planned checkout falls within a rolling
// horizon and emits one notification per unit per continuous interval
// inside it.
//
// The scanner never mutates units. It keeps only the set of units already
// notified; a unit that leaves the horizon (checkout passed, moved further
// out, status changed) is dropped from the set, so re-entering produces a
// fresh notification.
package alert

import (
	"sort"
	"sync"
	"time"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/room"
)

// DefaultHorizon is how far ahead of a checkout the first alert fires.
const DefaultHorizon = 2 * time.Hour

// Notification announces a guest checkout coming up within the horizon.
type Notification struct {
	ID                   id.AlertID `json:"id"`
	UnitID               id.UnitID  `json:"unit_id"`
	UnitLabel            string     `json:"unit_label"`
	GuestName            string     `json:"guest_name"`
	MinutesUntilCheckout int        `json:"minutes_until_checkout"`
	CheckOutAt           time.Time  `json:"check_out_at"`
	DetectedAt           time.Time  `json:"detected_at"`
}

// Skip records a unit excluded from a scan because its record is malformed.
type Skip struct {
	UnitID id.UnitID
	Reason string
}

// Result is the outcome of one scan.
type Result struct {
	// Active holds every unit currently inside the horizon, ordered by checkout.
	Active []Notification
	// Fresh holds the units that entered the horizon on this scan.
	Fresh   []Notification
	Skipped []Skip
	Expired int
}

// Scanner tracks which units have already been notified during their
// current stretch inside the horizon.
type Scanner struct {
	mu       sync.Mutex
	horizon  time.Duration
	notified map[string]Notification
}

// NewScanner returns a scanner with the given horizon; non-positive values
// select DefaultHorizon.
func NewScanner(horizon time.Duration) *Scanner {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Scanner{horizon: horizon, notified: make(map[string]Notification)}
}

// Horizon returns the configured look-ahead.
func (s *Scanner) Horizon() time.Duration { return s.horizon }

// Scan evaluates units at now. Units are read, never written.
func (s *Scanner) Scan(now time.Time, units []*room.Unit) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := now.Add(s.horizon)
	var res Result
	matched := make(map[string]struct{}, len(units))

	for _, u := range units {
		if u == nil || !u.Status.Occupied() || u.Tenancy != nil {
			continue
		}
		if u.Occupancy == nil {
			res.Skipped = append(res.Skipped, Skip{UnitID: u.ID, Reason: "occupied without an occupancy"})
			continue
		}
		checkOut := u.Occupancy.CheckOut
		if checkOut.IsZero() {
			res.Skipped = append(res.Skipped, Skip{UnitID: u.ID, Reason: "missing checkout time"})
			continue
		}
		if !checkOut.After(now) || checkOut.After(limit) {
			continue
		}

		key := u.ID.String()
		matched[key] = struct{}{}
		minutes := int(checkOut.Sub(now) / time.Minute)

		n, seen := s.notified[key]
		if !seen {
			n = Notification{
				ID:         id.NewAlertID(),
				UnitID:     u.ID,
				DetectedAt: now,
			}
		}
		n.UnitLabel = u.Label
		n.GuestName = u.Occupancy.GuestName
		n.CheckOutAt = checkOut
		n.MinutesUntilCheckout = minutes
		s.notified[key] = n

		if !seen {
			res.Fresh = append(res.Fresh, n)
		}
	}

	for key := range s.notified {
		if _, ok := matched[key]; !ok {
			delete(s.notified, key)
			res.Expired++
		}
	}

	res.Active = s.activeLocked()
	sortByCheckout(res.Fresh)
	return res
}

// Active returns the notifications from the most recent scan.
func (s *Scanner) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Forget drops a unit from the notified set, e.g. after it was deleted.
func (s *Scanner) Forget(unitID id.UnitID) {
	s.mu.Lock()
	delete(s.notified, unitID.String())
	s.mu.Unlock()
}

// Reset clears the notified set.
func (s *Scanner) Reset() {
	s.mu.Lock()
	s.notified = make(map[string]Notification)
	s.mu.Unlock()
}

func (s *Scanner) activeLocked() []Notification {
	out := make([]Notification, 0, len(s.notified))
	for _, n := range s.notified {
		out = append(out, n)
	}
	sortByCheckout(out)
	return out
}

func sortByCheckout(ns []Notification) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].CheckOutAt.Equal(ns[j].CheckOutAt) {
			return ns[i].UnitLabel < ns[j].UnitLabel
		}
		return ns[i].CheckOutAt.Before(ns[j].CheckOutAt)
	})
}
