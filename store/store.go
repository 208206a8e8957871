package store

import (
	"context"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/room"
)

// Store is the unified storage interface for all lodging entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Getters and listers return copies; callers mutate their copy and write it
// back with the matching Update method.
type Store interface {
	// Building methods
	CreateBuilding(ctx context.Context, b *property.Building) error
	GetBuilding(ctx context.Context, buildingID id.BuildingID) (*property.Building, error)
	ListBuildings(ctx context.Context) ([]*property.Building, error)
	UpdateBuilding(ctx context.Context, b *property.Building) error
	DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error

	// Floor methods
	CreateFloor(ctx context.Context, f *property.Floor) error
	GetFloor(ctx context.Context, floorID id.FloorID) (*property.Floor, error)
	ListFloors(ctx context.Context, buildingID id.BuildingID) ([]*property.Floor, error)
	UpdateFloor(ctx context.Context, f *property.Floor) error
	DeleteFloor(ctx context.Context, floorID id.FloorID) error

	// Unit methods
	CreateUnit(ctx context.Context, u *room.Unit) error
	GetUnit(ctx context.Context, unitID id.UnitID) (*room.Unit, error)
	ListUnits(ctx context.Context, opts room.ListOpts) ([]*room.Unit, error)
	UpdateUnit(ctx context.Context, u *room.Unit) error
	DeleteUnits(ctx context.Context, unitIDs []id.UnitID) error

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error)
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Compile-time checks that Store covers each domain store.
var (
	_ property.Store = Store(nil)
	_ room.Store     = Store(nil)
	_ payment.Store  = Store(nil)
)
