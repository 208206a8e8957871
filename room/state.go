package room

import (
	"fmt"
	"strings"

	"github.com/xraph/lodging/types"
)

// transitions lists, for each status, the statuses it may move to.
var transitions = map[Status][]Status{
	StatusVacantClean: {StatusOccupied, StatusOutOfOrder},
	StatusOccupied:    {StatusDueOut, StatusVacantDirty},
	StatusDueOut:      {StatusOccupied, StatusVacantDirty},
	StatusVacantDirty: {StatusVacantClean},
	StatusOutOfOrder:  {StatusVacantClean},
}

// Next returns the statuses reachable in one step from s.
func Next(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the unit to status to, or returns a TransitionError
// naming action and leaves the unit untouched.
func (u *Unit) Transition(action string, to Status) error {
	if !CanTransition(u.Status, to) {
		return types.TransitionError{Action: action, From: string(u.Status), To: string(to)}
	}
	u.Status = to
	return nil
}

// Require returns a TransitionError unless the unit is in one of the given
// statuses.
func (u *Unit) Require(action string, allowed ...Status) error {
	for _, s := range allowed {
		if u.Status == s {
			return nil
		}
	}
	return types.TransitionError{Action: action, From: string(u.Status)}
}

// Consistent checks that status, mode and the presence of an occupancy or
// tenancy agree.
func (u *Unit) Consistent() error {
	if !u.Status.Valid() {
		return types.Invalid("status", fmt.Sprintf("unknown status %q", u.Status))
	}
	if u.Occupancy != nil && u.Tenancy != nil {
		return types.Invalid("unit", "holds both an occupancy and a tenancy")
	}
	if u.Status.Occupied() != u.InUse() {
		return types.Invalid("status", fmt.Sprintf("%s disagrees with stay presence (in use: %t)", u.Status, u.InUse()))
	}
	if u.Tenancy != nil && u.Mode != ModeBoarding {
		return types.Invalid("tenancy", "only boarding units hold tenancies")
	}
	if u.Occupancy != nil && u.Mode == ModeBoarding {
		return types.Invalid("occupancy", "boarding units hold tenancies, not occupancies")
	}
	return nil
}

// Validate checks the unit's static fields.
func (u *Unit) Validate() error {
	switch {
	case strings.TrimSpace(u.Label) == "":
		return types.Invalid("label", "is required")
	case u.BuildingID.IsNil():
		return types.Invalid("building_id", "is required")
	case u.FloorID.IsNil():
		return types.Invalid("floor_id", "is required")
	case !u.Mode.Valid():
		return types.Invalid("mode", fmt.Sprintf("unknown mode %q", u.Mode))
	}
	if err := u.Profile.Validate(); err != nil {
		return err
	}
	for _, b := range u.Mode.Bases() {
		if _, ok := u.Profile.Price(b); ok {
			return u.Consistent()
		}
	}
	return types.Invalid("billing_profile", fmt.Sprintf("no price for %s mode", u.Mode))
}
