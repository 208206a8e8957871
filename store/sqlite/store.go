package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/lodging"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/room"
	lodgingstore "github.com/xraph/lodging/store"
)

// compile-time interface check
var _ lodgingstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("lodging/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: sqlite: %w", lodging.ErrMigrationFailed, err)
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
	m, err := toBuildingModel(b)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetBuilding(ctx context.Context, buildingID id.BuildingID) (*property.Building, error) {
	m := new(buildingModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", buildingID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, lodging.ErrBuildingNotFound
		}
		return nil, err
	}
	return fromBuildingModel(m)
}

func (s *Store) ListBuildings(ctx context.Context) ([]*property.Building, error) {
	var models []buildingModel
	if err := s.sdb.NewSelect(&models).OrderExpr("name ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
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
	m, err := toBuildingModel(b)
	if err != nil {
		return err
	}
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrBuildingNotFound)
}

// DeleteBuilding removes units and floors first; SQLite foreign keys are
// not enforced unless the connection enables them.
func (s *Store) DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error {
	if _, err := s.GetBuilding(ctx, buildingID); err != nil {
		return err
	}
	key := buildingID.String()
	if _, err := s.sdb.NewDelete((*unitModel)(nil)).Where("building_id = ?", key).Exec(ctx); err != nil {
		return err
	}
	if _, err := s.sdb.NewDelete((*floorModel)(nil)).Where("building_id = ?", key).Exec(ctx); err != nil {
		return err
	}
	res, err := s.sdb.NewDelete((*buildingModel)(nil)).Where("id = ?", key).Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrBuildingNotFound)
}

// ==================== Floor Store ====================

func (s *Store) CreateFloor(ctx context.Context, f *property.Floor) error {
	_, err := s.sdb.NewInsert(toFloorModel(f)).Exec(ctx)
	return err
}

func (s *Store) GetFloor(ctx context.Context, floorID id.FloorID) (*property.Floor, error) {
	m := new(floorModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", floorID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, lodging.ErrFloorNotFound
		}
		return nil, err
	}
	return fromFloorModel(m)
}

func (s *Store) ListFloors(ctx context.Context, buildingID id.BuildingID) ([]*property.Floor, error) {
	var models []floorModel
	q := s.sdb.NewSelect(&models)
	if !buildingID.IsNil() {
		q = q.Where("building_id = ?", buildingID.String())
	}
	if err := q.OrderExpr("level ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrFloorNotFound)
}

func (s *Store) DeleteFloor(ctx context.Context, floorID id.FloorID) error {
	if _, err := s.GetFloor(ctx, floorID); err != nil {
		return err
	}
	key := floorID.String()
	if _, err := s.sdb.NewDelete((*unitModel)(nil)).Where("floor_id = ?", key).Exec(ctx); err != nil {
		return err
	}
	res, err := s.sdb.NewDelete((*floorModel)(nil)).Where("id = ?", key).Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrFloorNotFound)
}

// ==================== Unit Store ====================

func (s *Store) CreateUnit(ctx context.Context, u *room.Unit) error {
	m, err := toUnitModel(u)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetUnit(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	m := new(unitModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", unitID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, lodging.ErrUnitNotFound
		}
		return nil, err
	}
	return fromUnitModel(m)
}

func (s *Store) ListUnits(ctx context.Context, opts room.ListOpts) ([]*room.Unit, error) {
	var models []unitModel
	q := s.sdb.NewSelect(&models)

	if !opts.BuildingID.IsNil() {
		q = q.Where("building_id = ?", opts.BuildingID.String())
	}
	if !opts.FloorID.IsNil() {
		q = q.Where("floor_id = ?", opts.FloorID.String())
	}
	if opts.Mode != "" {
		q = q.Where("mode = ?", string(opts.Mode))
	}
	if len(opts.Statuses) > 0 {
		args := make([]any, len(opts.Statuses))
		for i, st := range opts.Statuses {
			args[i] = string(st)
		}
		q = q.Where("status IN ("+placeholders(len(args))+")", args...)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("label ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	m, err := toUnitModel(u)
	if err != nil {
		return err
	}
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrUnitNotFound)
}

// DeleteUnits checks every id exists before deleting any of them.
func (s *Store) DeleteUnits(ctx context.Context, unitIDs []id.UnitID) error {
	if len(unitIDs) == 0 {
		return nil
	}
	args := make([]any, len(unitIDs))
	for i, uid := range unitIDs {
		args[i] = uid.String()
	}
	in := "id IN (" + placeholders(len(args)) + ")"

	var existing []unitModel
	if err := s.sdb.NewSelect(&existing).Where(in, args...).Scan(ctx); err != nil {
		return err
	}
	if len(existing) != len(unitIDs) {
		return lodging.ErrUnitNotFound
	}

	_, err := s.sdb.NewDelete((*unitModel)(nil)).Where(in, args...).Exec(ctx)
	return err
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m, err := toPaymentModel(p)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", paymentID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, lodging.ErrPaymentNotFound
		}
		return nil, err
	}
	return fromPaymentModel(m)
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.sdb.NewSelect(&models)

	if !opts.UnitID.IsNil() {
		q = q.Where("unit_id = ?", opts.UnitID.String())
	}
	if !opts.Start.IsZero() {
		q = q.Where("paid_at >= ?", opts.Start.UTC())
	}
	if !opts.End.IsZero() {
		q = q.Where("paid_at < ?", opts.End.UTC())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("paid_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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

func now() time.Time {
	return time.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func affected(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
