package property

import (
	"context"

	"github.com/xraph/lodging/id"
)

type Store interface {
	CreateBuilding(ctx context.Context, b *Building) error
	GetBuilding(ctx context.Context, buildingID id.BuildingID) (*Building, error)
	ListBuildings(ctx context.Context) ([]*Building, error)
	UpdateBuilding(ctx context.Context, b *Building) error
	// DeleteBuilding removes the building with its floors and units.
	DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error

	CreateFloor(ctx context.Context, f *Floor) error
	GetFloor(ctx context.Context, floorID id.FloorID) (*Floor, error)
	ListFloors(ctx context.Context, buildingID id.BuildingID) ([]*Floor, error)
	UpdateFloor(ctx context.Context, f *Floor) error
	// DeleteFloor removes the floor with its units.
	DeleteFloor(ctx context.Context, floorID id.FloorID) error
}
