package room

import (
	"context"

	"github.com/xraph/lodging/id"
)

type Store interface {
	CreateUnit(ctx context.Context, u *Unit) error
	GetUnit(ctx context.Context, unitID id.UnitID) (*Unit, error)
	ListUnits(ctx context.Context, opts ListOpts) ([]*Unit, error)
	UpdateUnit(ctx context.Context, u *Unit) error
	// DeleteUnits removes every listed unit or none of them.
	DeleteUnits(ctx context.Context, unitIDs []id.UnitID) error
}

// ListOpts filters units. Zero values disable a filter.
type ListOpts struct {
	BuildingID id.BuildingID
	FloorID    id.FloorID
	Mode       Mode
	Statuses   []Status
	Limit      int
	Offset     int
}

// Matches reports whether u passes the filters.
func (o ListOpts) Matches(u *Unit) bool {
	if !o.BuildingID.IsNil() && u.BuildingID.String() != o.BuildingID.String() {
		return false
	}
	if !o.FloorID.IsNil() && u.FloorID.String() != o.FloorID.String() {
		return false
	}
	if o.Mode != "" && u.Mode != o.Mode {
		return false
	}
	if len(o.Statuses) == 0 {
		return true
	}
	for _, s := range o.Statuses {
		if u.Status == s {
			return true
		}
	}
	return false
}
