package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/lodging"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/room"
	lodgingstore "github.com/xraph/lodging/store"
)

// Collection name constants.
const (
	colBuildings = "lodging_buildings"
	colFloors    = "lodging_floors"
	colUnits     = "lodging_units"
	colPayments  = "lodging_payments"
)

// compile-time interface check
var _ lodgingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all lodging collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("%w: mongo: %s indexes: %w", lodging.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Building Store ====================

func (s *Store) CreateBuilding(ctx context.Context, b *property.Building) error {
	_, err := s.mdb.NewInsert(toBuildingModel(b)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: create building: %w", err)
	}
	return nil
}

func (s *Store) GetBuilding(ctx context.Context, buildingID id.BuildingID) (*property.Building, error) {
	var m buildingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": buildingID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, lodging.ErrBuildingNotFound
		}
		return nil, fmt.Errorf("lodging/mongo: get building: %w", err)
	}
	return fromBuildingModel(&m)
}

func (s *Store) ListBuildings(ctx context.Context) ([]*property.Building, error) {
	var models []buildingModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("lodging/mongo: list buildings: %w", err)
	}

	result := make([]*property.Building, len(models))
	for i := range models {
		b, err := fromBuildingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) UpdateBuilding(ctx context.Context, b *property.Building) error {
	m := toBuildingModel(b)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: update building: %w", err)
	}
	if res.MatchedCount() == 0 {
		return lodging.ErrBuildingNotFound
	}
	return nil
}

func (s *Store) DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error {
	key := buildingID.String()
	res, err := s.mdb.NewDelete((*buildingModel)(nil)).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: delete building: %w", err)
	}
	if res.DeletedCount() == 0 {
		return lodging.ErrBuildingNotFound
	}

	filter := bson.M{"building_id": key}
	if _, err := s.mdb.Collection(colUnits).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("lodging/mongo: delete building units: %w", err)
	}
	if _, err := s.mdb.Collection(colFloors).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("lodging/mongo: delete building floors: %w", err)
	}
	return nil
}

// ==================== Floor Store ====================

func (s *Store) CreateFloor(ctx context.Context, f *property.Floor) error {
	_, err := s.mdb.NewInsert(toFloorModel(f)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: create floor: %w", err)
	}
	return nil
}

func (s *Store) GetFloor(ctx context.Context, floorID id.FloorID) (*property.Floor, error) {
	var m floorModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": floorID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, lodging.ErrFloorNotFound
		}
		return nil, fmt.Errorf("lodging/mongo: get floor: %w", err)
	}
	return fromFloorModel(&m)
}

func (s *Store) ListFloors(ctx context.Context, buildingID id.BuildingID) ([]*property.Floor, error) {
	var models []floorModel

	filter := bson.M{}
	if !buildingID.IsNil() {
		filter["building_id"] = buildingID.String()
	}
	err := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "level", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("lodging/mongo: list floors: %w", err)
	}

	result := make([]*property.Floor, len(models))
	for i := range models {
		f, err := fromFloorModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = f
	}
	return result, nil
}

func (s *Store) UpdateFloor(ctx context.Context, f *property.Floor) error {
	m := toFloorModel(f)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: update floor: %w", err)
	}
	if res.MatchedCount() == 0 {
		return lodging.ErrFloorNotFound
	}
	return nil
}

func (s *Store) DeleteFloor(ctx context.Context, floorID id.FloorID) error {
	key := floorID.String()
	res, err := s.mdb.NewDelete((*floorModel)(nil)).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: delete floor: %w", err)
	}
	if res.DeletedCount() == 0 {
		return lodging.ErrFloorNotFound
	}

	if _, err := s.mdb.Collection(colUnits).DeleteMany(ctx, bson.M{"floor_id": key}); err != nil {
		return fmt.Errorf("lodging/mongo: delete floor units: %w", err)
	}
	return nil
}

// ==================== Unit Store ====================

func (s *Store) CreateUnit(ctx context.Context, u *room.Unit) error {
	_, err := s.mdb.NewInsert(toUnitModel(u)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: create unit: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	var m unitModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": unitID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, lodging.ErrUnitNotFound
		}
		return nil, fmt.Errorf("lodging/mongo: get unit: %w", err)
	}
	return fromUnitModel(&m)
}

func (s *Store) ListUnits(ctx context.Context, opts room.ListOpts) ([]*room.Unit, error) {
	var models []unitModel

	filter := bson.M{}
	if !opts.BuildingID.IsNil() {
		filter["building_id"] = opts.BuildingID.String()
	}
	if !opts.FloorID.IsNil() {
		filter["floor_id"] = opts.FloorID.String()
	}
	if opts.Mode != "" {
		filter["mode"] = string(opts.Mode)
	}
	if len(opts.Statuses) > 0 {
		statuses := make([]string, len(opts.Statuses))
		for i, st := range opts.Statuses {
			statuses[i] = string(st)
		}
		filter["status"] = bson.M{"$in": statuses}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "label", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("lodging/mongo: list units: %w", err)
	}

	result := make([]*room.Unit, len(models))
	for i := range models {
		u, err := fromUnitModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = u
	}
	return result, nil
}

func (s *Store) UpdateUnit(ctx context.Context, u *room.Unit) error {
	m := toUnitModel(u)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: update unit: %w", err)
	}
	if res.MatchedCount() == 0 {
		return lodging.ErrUnitNotFound
	}
	return nil
}

// DeleteUnits checks every id exists before deleting any of them.
func (s *Store) DeleteUnits(ctx context.Context, unitIDs []id.UnitID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	keys := make([]string, len(unitIDs))
	for i, uid := range unitIDs {
		keys[i] = uid.String()
	}
	filter := bson.M{"_id": bson.M{"$in": keys}}

	n, err := s.mdb.Collection(colUnits).CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("lodging/mongo: count units: %w", err)
	}
	if n != int64(len(keys)) {
		return lodging.ErrUnitNotFound
	}

	if _, err := s.mdb.Collection(colUnits).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("lodging/mongo: delete units: %w", err)
	}
	return nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	_, err := s.mdb.NewInsert(toPaymentModel(p)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("lodging/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	var m paymentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": paymentID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, lodging.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("lodging/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel

	filter := bson.M{}
	if !opts.UnitID.IsNil() {
		filter["unit_id"] = opts.UnitID.String()
	}
	window := bson.M{}
	if !opts.Start.IsZero() {
		window["$gte"] = opts.Start
	}
	if !opts.End.IsZero() {
		window["$lt"] = opts.End
	}
	if len(window) > 0 {
		filter["paid_at"] = window
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "paid_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("lodging/mongo: list payments: %w", err)
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all lodging collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBuildings: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colFloors: {
			{Keys: bson.D{{Key: "building_id", Value: 1}, {Key: "level", Value: 1}}},
		},
		colUnits: {
			{Keys: bson.D{{Key: "building_id", Value: 1}}},
			{Keys: bson.D{{Key: "floor_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "label", Value: 1}, {Key: "_id", Value: 1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "paid_at", Value: 1}}},
			{
				Keys:    bson.D{{Key: "occupancy_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "paid_at", Value: 1}}},
		},
	}
}
