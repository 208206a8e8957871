// Package id defines TypeID-based identity types for all lodging entities.
//
// Every entity uses a single ID struct with a prefix that identifies the
// entity type. IDs are K-sortable (UUIDv7-based), globally unique and
// URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all lodging entity types.
const (
	PrefixBuilding  Prefix = "bld"   // Building
	PrefixFloor     Prefix = "flr"   // Floor within a building
	PrefixUnit      Prefix = "unit"  // Rentable room
	PrefixOccupancy Prefix = "occ"   // Hotel/guesthouse stay
	PrefixTenancy   Prefix = "ten"   // Boarding-house tenancy
	PrefixRental    Prefix = "rent"  // Monthly ledger entry
	PrefixService   Prefix = "svc"   // Folio service line
	PrefixCharge    Prefix = "chg"   // Folio incidental charge line
	PrefixPayment   Prefix = "pay"   // Settled payment record
	PrefixLineItem  Prefix = "li"    // Payment line item
	PrefixAlert     Prefix = "alert" // Checkout alert
)

// ID is the primary identifier type for all lodging entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "unit_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// BuildingID is a type-safe identifier for buildings (prefix: "bld").
type BuildingID = ID

// FloorID is a type-safe identifier for floors (prefix: "flr").
type FloorID = ID

// UnitID is a type-safe identifier for units (prefix: "unit").
type UnitID = ID

// OccupancyID is a type-safe identifier for occupancies (prefix: "occ").
type OccupancyID = ID

// TenancyID is a type-safe identifier for tenancies (prefix: "ten").
type TenancyID = ID

// RentalID is a type-safe identifier for monthly ledger entries (prefix: "rent").
type RentalID = ID

// ServiceID is a type-safe identifier for folio services (prefix: "svc").
type ServiceID = ID

// ChargeID is a type-safe identifier for folio incidental charges (prefix: "chg").
type ChargeID = ID

// PaymentID is a type-safe identifier for payments (prefix: "pay").
type PaymentID = ID

// LineItemID is a type-safe identifier for payment line items (prefix: "li").
type LineItemID = ID

// AlertID is a type-safe identifier for checkout alerts (prefix: "alert").
type AlertID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewBuildingID generates a new unique building ID.
func NewBuildingID() ID { return New(PrefixBuilding) }

// NewFloorID generates a new unique floor ID.
func NewFloorID() ID { return New(PrefixFloor) }

// NewUnitID generates a new unique unit ID.
func NewUnitID() ID { return New(PrefixUnit) }

// NewOccupancyID generates a new unique occupancy ID.
func NewOccupancyID() ID { return New(PrefixOccupancy) }

// NewTenancyID generates a new unique tenancy ID.
func NewTenancyID() ID { return New(PrefixTenancy) }

// NewRentalID generates a new unique monthly rental ID.
func NewRentalID() ID { return New(PrefixRental) }

// NewServiceID generates a new unique service line ID.
func NewServiceID() ID { return New(PrefixService) }

// NewChargeID generates a new unique incidental charge ID.
func NewChargeID() ID { return New(PrefixCharge) }

// NewPaymentID generates a new unique payment ID.
func NewPaymentID() ID { return New(PrefixPayment) }

// NewLineItemID generates a new unique line item ID.
func NewLineItemID() ID { return New(PrefixLineItem) }

// NewAlertID generates a new unique alert ID.
func NewAlertID() ID { return New(PrefixAlert) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseBuildingID parses a string and validates the "bld" prefix.
func ParseBuildingID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBuilding) }

// ParseFloorID parses a string and validates the "flr" prefix.
func ParseFloorID(s string) (ID, error) { return ParseWithPrefix(s, PrefixFloor) }

// ParseUnitID parses a string and validates the "unit" prefix.
func ParseUnitID(s string) (ID, error) { return ParseWithPrefix(s, PrefixUnit) }

// ParsePaymentID parses a string and validates the "pay" prefix.
func ParsePaymentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPayment) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
