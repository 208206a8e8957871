// Package memory provides an in-memory store.Store for tests and
// single-process deployments. Every read returns a copy.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/lodging"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	buildings map[string]*property.Building
	floors    map[string]*property.Floor
	units     map[string]*room.Unit
	payments  map[string]*payment.Payment

	closed bool
}

func New() *Store {
	return &Store{
		buildings: make(map[string]*property.Building),
		floors:    make(map[string]*property.Floor),
		units:     make(map[string]*room.Unit),
		payments:  make(map[string]*payment.Payment),
	}
}

// Building Store implementation
func (s *Store) CreateBuilding(_ context.Context, b *property.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.buildings[b.ID.String()]; exists {
		return lodging.ErrAlreadyExists
	}
	s.buildings[b.ID.String()] = b.Clone()
	return nil
}

func (s *Store) GetBuilding(_ context.Context, buildingID id.BuildingID) (*property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.buildings[buildingID.String()]; ok {
		return b.Clone(), nil
	}
	return nil, lodging.ErrBuildingNotFound
}

func (s *Store) ListBuildings(_ context.Context) ([]*property.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*property.Building, 0, len(s.buildings))
	for _, b := range s.buildings {
		result = append(result, b.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) UpdateBuilding(_ context.Context, b *property.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[b.ID.String()]; !ok {
		return lodging.ErrBuildingNotFound
	}
	s.buildings[b.ID.String()] = b.Clone()
	return nil
}

func (s *Store) DeleteBuilding(_ context.Context, buildingID id.BuildingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := buildingID.String()
	if _, ok := s.buildings[key]; !ok {
		return lodging.ErrBuildingNotFound
	}
	for k, u := range s.units {
		if u.BuildingID.String() == key {
			delete(s.units, k)
		}
	}
	for k, f := range s.floors {
		if f.BuildingID.String() == key {
			delete(s.floors, k)
		}
	}
	delete(s.buildings, key)
	return nil
}

// Floor Store implementation
func (s *Store) CreateFloor(_ context.Context, f *property.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.floors[f.ID.String()]; exists {
		return lodging.ErrAlreadyExists
	}
	if _, ok := s.buildings[f.BuildingID.String()]; !ok {
		return lodging.ErrBuildingNotFound
	}
	c := *f
	s.floors[f.ID.String()] = &c
	return nil
}

func (s *Store) GetFloor(_ context.Context, floorID id.FloorID) (*property.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.floors[floorID.String()]; ok {
		c := *f
		return &c, nil
	}
	return nil, lodging.ErrFloorNotFound
}

func (s *Store) ListFloors(_ context.Context, buildingID id.BuildingID) ([]*property.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*property.Floor
	for _, f := range s.floors {
		if !buildingID.IsNil() && f.BuildingID.String() != buildingID.String() {
			continue
		}
		c := *f
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Level != result[j].Level {
			return result[i].Level < result[j].Level
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) UpdateFloor(_ context.Context, f *property.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floors[f.ID.String()]; !ok {
		return lodging.ErrFloorNotFound
	}
	c := *f
	s.floors[f.ID.String()] = &c
	return nil
}

func (s *Store) DeleteFloor(_ context.Context, floorID id.FloorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := floorID.String()
	if _, ok := s.floors[key]; !ok {
		return lodging.ErrFloorNotFound
	}
	for k, u := range s.units {
		if u.FloorID.String() == key {
			delete(s.units, k)
		}
	}
	delete(s.floors, key)
	return nil
}

// Unit Store implementation
func (s *Store) CreateUnit(_ context.Context, u *room.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[u.ID.String()]; exists {
		return lodging.ErrAlreadyExists
	}
	if _, ok := s.floors[u.FloorID.String()]; !ok {
		return lodging.ErrFloorNotFound
	}
	s.units[u.ID.String()] = u.Clone()
	return nil
}

func (s *Store) GetUnit(_ context.Context, unitID id.UnitID) (*room.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.units[unitID.String()]; ok {
		return u.Clone(), nil
	}
	return nil, lodging.ErrUnitNotFound
}

func (s *Store) ListUnits(_ context.Context, opts room.ListOpts) ([]*room.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*room.Unit
	for _, u := range s.units {
		if opts.Matches(u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Label != result[j].Label {
			return result[i].Label < result[j].Label
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	result = page(result, opts.Offset, opts.Limit)
	for i, u := range result {
		result[i] = u.Clone()
	}
	return result, nil
}

func (s *Store) UpdateUnit(_ context.Context, u *room.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[u.ID.String()]; !ok {
		return lodging.ErrUnitNotFound
	}
	s.units[u.ID.String()] = u.Clone()
	return nil
}

func (s *Store) DeleteUnits(_ context.Context, unitIDs []id.UnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, uid := range unitIDs {
		if _, ok := s.units[uid.String()]; !ok {
			return lodging.ErrUnitNotFound
		}
	}
	for _, uid := range unitIDs {
		delete(s.units, uid.String())
	}
	return nil
}

// Payment Store implementation
func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID.String()]; exists {
		return lodging.ErrAlreadyExists
	}
	s.payments[p.ID.String()] = p.Clone()
	return nil
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments[paymentID.String()]; ok {
		return p.Clone(), nil
	}
	return nil, lodging.ErrPaymentNotFound
}

func (s *Store) ListPayments(_ context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*payment.Payment
	for _, p := range s.payments {
		if opts.Matches(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PaidAt.Before(result[j].PaidAt)
	})

	result = page(result, opts.Offset, opts.Limit)
	for i, p := range result {
		result[i] = p.Clone()
	}
	return result, nil
}

// Core methods
func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return lodging.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
