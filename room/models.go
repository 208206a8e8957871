// Package room defines rentable units and the state machine governing their
// occupancy status.
package room

import (
	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Mode is the billing regime a unit operates under.
type Mode string

const (
	ModeHotel      Mode = "hotel"      // nightly
	ModeGuesthouse Mode = "guesthouse" // hourly or daily
	ModeBoarding   Mode = "boarding"   // monthly tenancy with metered utilities
)

func (m Mode) Valid() bool {
	return m == ModeHotel || m == ModeGuesthouse || m == ModeBoarding
}

// Bases returns the rate bases a unit in this mode may be checked in on.
func (m Mode) Bases() []rate.Basis {
	switch m {
	case ModeHotel:
		return []rate.Basis{rate.BasisNightly}
	case ModeGuesthouse:
		return []rate.Basis{rate.BasisHourly, rate.BasisDaily}
	case ModeBoarding:
		return []rate.Basis{rate.BasisMonthly}
	}
	return nil
}

// Allows reports whether b is a legal basis for the mode.
func (m Mode) Allows(b rate.Basis) bool {
	for _, x := range m.Bases() {
		if x == b {
			return true
		}
	}
	return false
}

// Status is a unit's occupancy and housekeeping state.
type Status string

const (
	StatusVacantClean Status = "vacant-clean"
	StatusOccupied    Status = "occupied"
	StatusVacantDirty Status = "vacant-dirty"
	StatusDueOut      Status = "due-out"
	StatusOutOfOrder  Status = "out-of-order"
)

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Occupied reports whether the status implies an active stay.
func (s Status) Occupied() bool {
	return s == StatusOccupied || s == StatusDueOut
}

type Unit struct {
	types.Entity
	ID         id.UnitID         `json:"id"`
	BuildingID id.BuildingID     `json:"building_id"`
	FloorID    id.FloorID        `json:"floor_id"`
	Label      string            `json:"label"`
	Mode       Mode              `json:"mode"`
	Profile    rate.Profile      `json:"profile"`
	Status     Status            `json:"status"`
	Occupancy  *folio.Occupancy  `json:"occupancy,omitempty"`
	Tenancy    *tenancy.Tenancy  `json:"tenancy,omitempty"`
	Note       string            `json:"note,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// InUse reports whether the unit holds an occupancy or tenancy.
func (u *Unit) InUse() bool {
	return u.Occupancy != nil || u.Tenancy != nil
}

// GuestName is the name of the current guest or tenant, if any.
func (u *Unit) GuestName() string {
	switch {
	case u.Occupancy != nil:
		return u.Occupancy.GuestName
	case u.Tenancy != nil:
		return u.Tenancy.TenantName
	}
	return ""
}

// Clone returns a deep copy of the unit including its stay.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	c := *u
	c.Occupancy = u.Occupancy.Clone()
	c.Tenancy = u.Tenancy.Clone()
	if u.Metadata != nil {
		c.Metadata = make(map[string]string, len(u.Metadata))
		for k, v := range u.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
