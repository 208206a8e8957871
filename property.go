package lodging

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/types"
)

// BuildingInput names a building.
type BuildingInput struct {
	Name     string            `json:"name"               validate:"required,max=200"`
	Address  string            `json:"address,omitempty"  validate:"max=500"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FloorInput names a floor within a building.
type FloorInput struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Level int    `json:"level" validate:"gte=-10,lte=300"`
}

// UnitInput describes a new unit. The building is taken from the floor.
type UnitInput struct {
	Label    string            `json:"label"              validate:"required,max=50"`
	Mode     room.Mode         `json:"mode"               validate:"required,oneof=hotel guesthouse boarding"`
	Profile  rate.Profile      `json:"profile"`
	Note     string            `json:"note,omitempty"     validate:"max=1000"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UnitUpdate changes a unit's static fields. Nil fields are left alone.
// The mode and price list can only change while the unit is vacant.
type UnitUpdate struct {
	Label   *string       `json:"label,omitempty" validate:"omitempty,min=1,max=50"`
	Mode    *room.Mode    `json:"mode,omitempty"  validate:"omitempty,oneof=hotel guesthouse boarding"`
	Profile *rate.Profile `json:"profile,omitempty"`
	Note    *string       `json:"note,omitempty"  validate:"omitempty,max=1000"`
}

// ──────────────────────────────────────────────────
// Buildings
// ──────────────────────────────────────────────────

func (e *Engine) CreateBuilding(ctx context.Context, in BuildingInput) (*property.Building, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	b := &property.Building{
		Entity:   types.NewEntityAt(e.now()),
		ID:       id.NewBuildingID(),
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		Metadata: in.Metadata,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.CreateBuilding(ctx, b); err != nil {
		return nil, fmt.Errorf("lodging: create building: %w", err)
	}
	e.logger.Info("building created", "building_id", b.ID.String(), "name", b.Name)
	return b, nil
}

func (e *Engine) GetBuilding(ctx context.Context, buildingID id.BuildingID) (*property.Building, error) {
	return e.store.GetBuilding(ctx, buildingID)
}

func (e *Engine) ListBuildings(ctx context.Context) ([]*property.Building, error) {
	return e.store.ListBuildings(ctx)
}

// RenameBuilding replaces a building's name and address.
func (e *Engine) RenameBuilding(ctx context.Context, buildingID id.BuildingID, in BuildingInput) (*property.Building, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := e.store.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	b.Name = strings.TrimSpace(in.Name)
	b.Address = strings.TrimSpace(in.Address)
	if in.Metadata != nil {
		b.Metadata = in.Metadata
	}
	b.Touch(e.now())
	if err := e.store.UpdateBuilding(ctx, b); err != nil {
		return nil, fmt.Errorf("lodging: update building %s: %w", buildingID, err)
	}
	return b, nil
}

// DeleteBuilding removes a building with its floors and units. It fails
// with an InUseError, deleting nothing, while any unit in it is occupied.
func (e *Engine) DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.GetBuilding(ctx, buildingID); err != nil {
		return err
	}
	units, err := e.guard(ctx, "building", buildingID.String(), room.ListOpts{BuildingID: buildingID})
	if err != nil {
		return err
	}
	if err := e.store.DeleteBuilding(ctx, buildingID); err != nil {
		return fmt.Errorf("lodging: delete building %s: %w", buildingID, err)
	}
	e.unitsDeleted(ctx, units)
	e.logger.Info("building deleted", "building_id", buildingID.String(), "units", len(units))
	return nil
}

// ──────────────────────────────────────────────────
// Floors
// ──────────────────────────────────────────────────

func (e *Engine) CreateFloor(ctx context.Context, buildingID id.BuildingID, in FloorInput) (*property.Floor, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}
	f := &property.Floor{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewFloorID(),
		BuildingID: buildingID,
		Name:       strings.TrimSpace(in.Name),
		Level:      in.Level,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.store.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	if err := e.store.CreateFloor(ctx, f); err != nil {
		return nil, fmt.Errorf("lodging: create floor: %w", err)
	}
	return f, nil
}

func (e *Engine) GetFloor(ctx context.Context, floorID id.FloorID) (*property.Floor, error) {
	return e.store.GetFloor(ctx, floorID)
}

// ListFloors lists a building's floors by level.
func (e *Engine) ListFloors(ctx context.Context, buildingID id.BuildingID) ([]*property.Floor, error) {
	return e.store.ListFloors(ctx, buildingID)
}

// DeleteFloor removes a floor with its units, or fails with an InUseError
// while any of them is occupied.
func (e *Engine) DeleteFloor(ctx context.Context, floorID id.FloorID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.GetFloor(ctx, floorID); err != nil {
		return err
	}
	units, err := e.guard(ctx, "floor", floorID.String(), room.ListOpts{FloorID: floorID})
	if err != nil {
		return err
	}
	if err := e.store.DeleteFloor(ctx, floorID); err != nil {
		return fmt.Errorf("lodging: delete floor %s: %w", floorID, err)
	}
	e.unitsDeleted(ctx, units)
	e.logger.Info("floor deleted", "floor_id", floorID.String(), "units", len(units))
	return nil
}

// ──────────────────────────────────────────────────
// Units
// ──────────────────────────────────────────────────

// CreateUnit adds a vacant-clean unit to a floor.
func (e *Engine) CreateUnit(ctx context.Context, floorID id.FloorID, in UnitInput) (*room.Unit, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.store.GetFloor(ctx, floorID)
	if err != nil {
		return nil, err
	}
	u := &room.Unit{
		Entity:     types.NewEntityAt(e.now()),
		ID:         id.NewUnitID(),
		BuildingID: f.BuildingID,
		FloorID:    f.ID,
		Label:      strings.TrimSpace(in.Label),
		Mode:       in.Mode,
		Profile:    profileCurrency(in.Profile, e.currency),
		Status:     room.StatusVacantClean,
		Note:       in.Note,
		Metadata:   in.Metadata,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("lodging: create unit: %w", err)
	}

	e.plugins.EmitUnitCreated(ctx, u.Clone())
	e.logger.Info("unit created",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"mode", string(u.Mode),
	)
	return u, nil
}

func (e *Engine) GetUnit(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	return e.store.GetUnit(ctx, unitID)
}

// ListUnits lists units ordered by label.
func (e *Engine) ListUnits(ctx context.Context, opts room.ListOpts) ([]*room.Unit, error) {
	return e.store.ListUnits(ctx, opts)
}

// UpdateUnit applies a partial update to a unit's static fields.
func (e *Engine) UpdateUnit(ctx context.Context, unitID id.UnitID, in UnitUpdate) (*room.Unit, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	u, _, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		if (in.Mode != nil || in.Profile != nil) && u.InUse() {
			return types.TransitionError{Action: "change billing", From: string(u.Status)}
		}
		if in.Label != nil {
			u.Label = strings.TrimSpace(*in.Label)
		}
		if in.Mode != nil {
			u.Mode = *in.Mode
		}
		if in.Profile != nil {
			u.Profile = profileCurrency(*in.Profile, e.currency)
		}
		if in.Note != nil {
			u.Note = *in.Note
		}
		return u.Validate()
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUnit removes a unit, or fails with an InUseError while it holds an
// occupancy or tenancy.
func (e *Engine) DeleteUnit(ctx context.Context, unitID id.UnitID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	if u.InUse() {
		return InUseError{Scope: "unit", ScopeID: u.ID.String(), UnitIDs: []string{u.ID.String()}}
	}
	if err := e.store.DeleteUnits(ctx, []id.UnitID{unitID}); err != nil {
		return fmt.Errorf("lodging: delete unit %s: %w", unitID, err)
	}
	e.unitsDeleted(ctx, []*room.Unit{u})
	return nil
}

// VerifyUnits checks every stored unit and returns a MultiError naming each
// one whose record is inconsistent.
func (e *Engine) VerifyUnits(ctx context.Context) error {
	units, err := e.store.ListUnits(ctx, room.ListOpts{})
	if err != nil {
		return err
	}
	var errs MultiError
	for _, u := range units {
		if err := u.Validate(); err != nil {
			errs.Add(fmt.Errorf("unit %s (%s): %w", u.Label, u.ID, err))
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ──────────────────────────────────────────────────
// Payments
// ──────────────────────────────────────────────────

func (e *Engine) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	return e.store.GetPayment(ctx, paymentID)
}

// ListPayments returns settled payments ordered by PaidAt.
func (e *Engine) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	return e.store.ListPayments(ctx, opts)
}

// guard lists the units in scope and refuses when any holds a stay. Every
// unit is checked before anything is deleted.
func (e *Engine) guard(ctx context.Context, scope, scopeID string, opts room.ListOpts) ([]*room.Unit, error) {
	units, err := e.store.ListUnits(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("lodging: list units in %s %s: %w", scope, scopeID, err)
	}
	var busy []string
	for _, u := range units {
		if u.InUse() {
			busy = append(busy, u.ID.String())
		}
	}
	if len(busy) > 0 {
		return nil, InUseError{Scope: scope, ScopeID: scopeID, UnitIDs: busy}
	}
	return units, nil
}

func (e *Engine) unitsDeleted(ctx context.Context, units []*room.Unit) {
	for _, u := range units {
		e.scanner.Forget(u.ID)
		e.plugins.EmitUnitDeleted(ctx, u.ID)
	}
}

func profileCurrency(p rate.Profile, currency string) rate.Profile {
	p.Nightly = withCurrency(p.Nightly, currency)
	p.Hourly = withCurrency(p.Hourly, currency)
	p.Daily = withCurrency(p.Daily, currency)
	p.Monthly = withCurrency(p.Monthly, currency)
	return p
}
