package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
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

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("lodging/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: postgres: %w", lodging.ErrMigrationFailed, err)
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
	_, err := s.pg.NewInsert(toBuildingModel(b)).Exec(ctx)
	return err
}

func (s *Store) GetBuilding(ctx context.Context, buildingID id.BuildingID) (*property.Building, error) {
	m := new(buildingModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", buildingID.String()).
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
	if err := s.pg.NewSelect(&models).OrderExpr("name ASC, id ASC").Scan(ctx); err != nil {
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
	m := toBuildingModel(b)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrBuildingNotFound)
}

// DeleteBuilding relies on ON DELETE CASCADE to remove floors and units.
func (s *Store) DeleteBuilding(ctx context.Context, buildingID id.BuildingID) error {
	res, err := s.pg.NewDelete((*buildingModel)(nil)).
		Where("id = $1", buildingID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrBuildingNotFound)
}

// ==================== Floor Store ====================

func (s *Store) CreateFloor(ctx context.Context, f *property.Floor) error {
	_, err := s.pg.NewInsert(toFloorModel(f)).Exec(ctx)
	return err
}

func (s *Store) GetFloor(ctx context.Context, floorID id.FloorID) (*property.Floor, error) {
	m := new(floorModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", floorID.String()).
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
	q := s.pg.NewSelect(&models)
	if !buildingID.IsNil() {
		q = q.Where("building_id = $1", buildingID.String())
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrFloorNotFound)
}

func (s *Store) DeleteFloor(ctx context.Context, floorID id.FloorID) error {
	res, err := s.pg.NewDelete((*floorModel)(nil)).
		Where("id = $1", floorID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res, lodging.ErrFloorNotFound)
}

// ==================== Unit Store ====================

func (s *Store) CreateUnit(ctx context.Context, u *room.Unit) error {
	m, err := toUnitModel(u)
	if err != nil {
		return fmt.Errorf("lodging/postgres: %w", err)
	}
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetUnit(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	m := new(unitModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", unitID.String()).
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
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if !opts.BuildingID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("building_id = $%d", argIdx), opts.BuildingID.String())
	}
	if !opts.FloorID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("floor_id = $%d", argIdx), opts.FloorID.String())
	}
	if opts.Mode != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("mode = $%d", argIdx), string(opts.Mode))
	}
	if len(opts.Statuses) > 0 {
		args := make([]any, len(opts.Statuses))
		for i, st := range opts.Statuses {
			args[i] = string(st)
		}
		q = q.Where("status IN ("+placeholders(argIdx+1, len(args))+")", args...)
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
		return fmt.Errorf("lodging/postgres: %w", err)
	}
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
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
	in := "id IN (" + placeholders(1, len(args)) + ")"

	var existing []unitModel
	if err := s.pg.NewSelect(&existing).Where(in, args...).Scan(ctx); err != nil {
		return err
	}
	if len(existing) != len(unitIDs) {
		return lodging.ErrUnitNotFound
	}

	_, err := s.pg.NewDelete((*unitModel)(nil)).Where(in, args...).Exec(ctx)
	return err
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m, err := toPaymentModel(p)
	if err != nil {
		return fmt.Errorf("lodging/postgres: %w", err)
	}
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	m := new(paymentModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", paymentID.String()).
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
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if !opts.UnitID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("unit_id = $%d", argIdx), opts.UnitID.String())
	}
	if !opts.Start.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("paid_at >= $%d", argIdx), opts.Start)
	}
	if !opts.End.IsZero() {
		argIdx++
		q = q.Where(fmt.Sprintf("paid_at < $%d", argIdx), opts.End)
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

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

// affected maps a zero-row write to notFound.
func affected(res rowsAffecter, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ps, ", ")
}
