package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the lodging store.
var Migrations = migrate.NewGroup("lodging")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_lodging_buildings",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS lodging_buildings (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    metadata   JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS lodging_buildings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_lodging_floors",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS lodging_floors (
    id          TEXT PRIMARY KEY,
    building_id TEXT NOT NULL REFERENCES lodging_buildings (id) ON DELETE CASCADE,
    name        TEXT NOT NULL DEFAULT '',
    level       INT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lodging_floors_building ON lodging_floors (building_id, level);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS lodging_floors`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_lodging_units",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS lodging_units (
    id          TEXT PRIMARY KEY,
    building_id TEXT NOT NULL REFERENCES lodging_buildings (id) ON DELETE CASCADE,
    floor_id    TEXT NOT NULL REFERENCES lodging_floors (id) ON DELETE CASCADE,
    label       TEXT NOT NULL DEFAULT '',
    mode        TEXT NOT NULL DEFAULT 'hotel',
    status      TEXT NOT NULL DEFAULT 'vacant-clean',
    profile     JSONB NOT NULL DEFAULT '{}',
    occupancy   JSONB,
    tenancy     JSONB,
    note        TEXT NOT NULL DEFAULT '',
    metadata    JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lodging_units_building ON lodging_units (building_id);
CREATE INDEX IF NOT EXISTS idx_lodging_units_floor ON lodging_units (floor_id);
CREATE INDEX IF NOT EXISTS idx_lodging_units_status ON lodging_units (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS lodging_units`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_lodging_payments",
			Version: "20250101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS lodging_payments (
    id             TEXT PRIMARY KEY,
    unit_id        TEXT NOT NULL DEFAULT '',
    unit_label     TEXT NOT NULL DEFAULT '',
    occupancy_id   TEXT NOT NULL DEFAULT '',
    guest_name     TEXT NOT NULL DEFAULT '',
    guest_phone    TEXT NOT NULL DEFAULT '',
    check_in       TIMESTAMPTZ NOT NULL,
    check_out      TIMESTAMPTZ NOT NULL,
    basis          TEXT NOT NULL DEFAULT 'nightly',
    duration_units BIGINT NOT NULL DEFAULT 1,
    currency       TEXT NOT NULL DEFAULT 'vnd',
    line_items     JSONB NOT NULL DEFAULT '[]',
    room_charge    BIGINT NOT NULL DEFAULT 0,
    services       BIGINT NOT NULL DEFAULT 0,
    incidentals    BIGINT NOT NULL DEFAULT 0,
    subtotal       BIGINT NOT NULL DEFAULT 0,
    tax_rate       TEXT NOT NULL DEFAULT '0',
    tax            BIGINT NOT NULL DEFAULT 0,
    total          BIGINT NOT NULL DEFAULT 0,
    deposit        BIGINT NOT NULL DEFAULT 0,
    document       TEXT NOT NULL DEFAULT 'receipt',
    company        JSONB,
    method         TEXT NOT NULL DEFAULT 'cash',
    qr_reference   TEXT NOT NULL DEFAULT '',
    paid_at        TIMESTAMPTZ NOT NULL,
    metadata       JSONB NOT NULL DEFAULT '{}',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lodging_payments_paid_at ON lodging_payments (paid_at);
CREATE INDEX IF NOT EXISTS idx_lodging_payments_unit ON lodging_payments (unit_id, paid_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS lodging_payments`)
				return err
			},
		},
	)
}
