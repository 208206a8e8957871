package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// SQLite has no JSON column type; documents are stored as TEXT.

type buildingModel struct {
	grove.BaseModel `grove:"table:lodging_buildings"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	Address   string    `grove:"address"`
	Metadata  string    `grove:"metadata"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

type floorModel struct {
	grove.BaseModel `grove:"table:lodging_floors"`

	ID         string    `grove:"id,pk"`
	BuildingID string    `grove:"building_id"`
	Name       string    `grove:"name"`
	Level      int       `grove:"level"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

type unitModel struct {
	grove.BaseModel `grove:"table:lodging_units"`

	ID         string    `grove:"id,pk"`
	BuildingID string    `grove:"building_id"`
	FloorID    string    `grove:"floor_id"`
	Label      string    `grove:"label"`
	Mode       string    `grove:"mode"`
	Status     string    `grove:"status"`
	Profile    string    `grove:"profile"`
	Occupancy  string    `grove:"occupancy"`
	Tenancy    string    `grove:"tenancy"`
	Note       string    `grove:"note"`
	Metadata   string    `grove:"metadata"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

type paymentModel struct {
	grove.BaseModel `grove:"table:lodging_payments"`

	ID            string    `grove:"id,pk"`
	UnitID        string    `grove:"unit_id"`
	UnitLabel     string    `grove:"unit_label"`
	OccupancyID   string    `grove:"occupancy_id"`
	GuestName     string    `grove:"guest_name"`
	GuestPhone    string    `grove:"guest_phone"`
	CheckIn       time.Time `grove:"check_in"`
	CheckOut      time.Time `grove:"check_out"`
	Basis         string    `grove:"basis"`
	DurationUnits int64     `grove:"duration_units"`
	Currency      string    `grove:"currency"`
	LineItems     string    `grove:"line_items"`
	RoomCharge    int64     `grove:"room_charge"`
	Services      int64     `grove:"services"`
	Incidentals   int64     `grove:"incidentals"`
	Subtotal      int64     `grove:"subtotal"`
	TaxRate       string    `grove:"tax_rate"`
	Tax           int64     `grove:"tax"`
	Total         int64     `grove:"total"`
	Deposit       int64     `grove:"deposit"`
	Document      string    `grove:"document"`
	Company       string    `grove:"company"`
	Method        string    `grove:"method"`
	QRReference   string    `grove:"qr_reference"`
	PaidAt        time.Time `grove:"paid_at"`
	Metadata      string    `grove:"metadata"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

// ==================== Conversions ====================

func toBuildingModel(b *property.Building) (*buildingModel, error) {
	meta, err := encode(b.Metadata)
	if err != nil {
		return nil, err
	}
	return &buildingModel{
		ID:        b.ID.String(),
		Name:      b.Name,
		Address:   b.Address,
		Metadata:  meta,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func fromBuildingModel(m *buildingModel) (*property.Building, error) {
	buildingID, err := id.ParseBuildingID(m.ID)
	if err != nil {
		return nil, err
	}
	b := &property.Building{
		Entity:  types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:      buildingID,
		Name:    m.Name,
		Address: m.Address,
	}
	if err := decode(m.Metadata, &b.Metadata); err != nil {
		return nil, err
	}
	return b, nil
}

func toFloorModel(f *property.Floor) *floorModel {
	return &floorModel{
		ID:         f.ID.String(),
		BuildingID: f.BuildingID.String(),
		Name:       f.Name,
		Level:      f.Level,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func fromFloorModel(m *floorModel) (*property.Floor, error) {
	floorID, err := id.ParseFloorID(m.ID)
	if err != nil {
		return nil, err
	}
	buildingID, err := id.ParseBuildingID(m.BuildingID)
	if err != nil {
		return nil, err
	}
	return &property.Floor{
		Entity:     types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:         floorID,
		BuildingID: buildingID,
		Name:       m.Name,
		Level:      m.Level,
	}, nil
}

func toUnitModel(u *room.Unit) (*unitModel, error) {
	m := &unitModel{
		ID:         u.ID.String(),
		BuildingID: u.BuildingID.String(),
		FloorID:    u.FloorID.String(),
		Label:      u.Label,
		Mode:       string(u.Mode),
		Status:     string(u.Status),
		Note:       u.Note,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	var err error
	if m.Profile, err = encode(u.Profile); err != nil {
		return nil, err
	}
	if m.Occupancy, err = encode(u.Occupancy); err != nil {
		return nil, err
	}
	if m.Tenancy, err = encode(u.Tenancy); err != nil {
		return nil, err
	}
	if m.Metadata, err = encode(u.Metadata); err != nil {
		return nil, err
	}
	return m, nil
}

func fromUnitModel(m *unitModel) (*room.Unit, error) {
	unitID, err := id.ParseUnitID(m.ID)
	if err != nil {
		return nil, err
	}
	buildingID, err := id.ParseBuildingID(m.BuildingID)
	if err != nil {
		return nil, err
	}
	floorID, err := id.ParseFloorID(m.FloorID)
	if err != nil {
		return nil, err
	}

	u := &room.Unit{
		Entity:     types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:         unitID,
		BuildingID: buildingID,
		FloorID:    floorID,
		Label:      m.Label,
		Mode:       room.Mode(m.Mode),
		Status:     room.Status(m.Status),
		Note:       m.Note,
	}
	if err := decode(m.Profile, &u.Profile); err != nil {
		return nil, err
	}
	if err := decode(m.Metadata, &u.Metadata); err != nil {
		return nil, err
	}
	if present(m.Occupancy) {
		u.Occupancy = new(folio.Occupancy)
		if err := decode(m.Occupancy, u.Occupancy); err != nil {
			return nil, err
		}
	}
	if present(m.Tenancy) {
		u.Tenancy = new(tenancy.Tenancy)
		if err := decode(m.Tenancy, u.Tenancy); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func toPaymentModel(p *payment.Payment) (*paymentModel, error) {
	m := &paymentModel{
		ID:            p.ID.String(),
		UnitID:        p.UnitID.String(),
		UnitLabel:     p.UnitLabel,
		OccupancyID:   p.OccupancyID.String(),
		GuestName:     p.GuestName,
		GuestPhone:    p.GuestPhone,
		CheckIn:       p.CheckIn,
		CheckOut:      p.CheckOut,
		Basis:         string(p.Basis),
		DurationUnits: p.DurationUnits,
		Currency:      p.Currency,
		RoomCharge:    p.RoomCharge.Amount,
		Services:      p.Services.Amount,
		Incidentals:   p.Incidentals.Amount,
		Subtotal:      p.Subtotal.Amount,
		TaxRate:       p.TaxRate.String(),
		Tax:           p.Tax.Amount,
		Total:         p.Total.Amount,
		Deposit:       p.Deposit.Amount,
		Document:      string(p.Document),
		Method:        string(p.Method),
		QRReference:   p.QRReference,
		PaidAt:        p.PaidAt.UTC(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	var err error
	if m.LineItems, err = encode(p.LineItems); err != nil {
		return nil, err
	}
	if m.Company, err = encode(p.Company); err != nil {
		return nil, err
	}
	if m.Metadata, err = encode(p.Metadata); err != nil {
		return nil, err
	}
	return m, nil
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	unitID, err := id.ParseUnitID(m.UnitID)
	if err != nil {
		return nil, err
	}
	var occID id.OccupancyID
	if m.OccupancyID != "" {
		if occID, err = id.ParseAny(m.OccupancyID); err != nil {
			return nil, err
		}
	}
	taxRate, err := decimal.NewFromString(m.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("decode tax rate: %w", err)
	}

	cur := m.Currency
	p := &payment.Payment{
		Entity:        types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:            paymentID,
		UnitID:        unitID,
		UnitLabel:     m.UnitLabel,
		OccupancyID:   occID,
		GuestName:     m.GuestName,
		GuestPhone:    m.GuestPhone,
		CheckIn:       m.CheckIn,
		CheckOut:      m.CheckOut,
		Basis:         rate.Basis(m.Basis),
		DurationUnits: m.DurationUnits,
		Currency:      cur,
		RoomCharge:    types.Money{Amount: m.RoomCharge, Currency: cur},
		Services:      types.Money{Amount: m.Services, Currency: cur},
		Incidentals:   types.Money{Amount: m.Incidentals, Currency: cur},
		Subtotal:      types.Money{Amount: m.Subtotal, Currency: cur},
		TaxRate:       taxRate,
		Tax:           types.Money{Amount: m.Tax, Currency: cur},
		Total:         types.Money{Amount: m.Total, Currency: cur},
		Deposit:       types.Money{Amount: m.Deposit, Currency: cur},
		Document:      payment.DocumentType(m.Document),
		Method:        payment.Method(m.Method),
		QRReference:   m.QRReference,
		PaidAt:        m.PaidAt,
	}
	if err := decode(m.LineItems, &p.LineItems); err != nil {
		return nil, err
	}
	if err := decode(m.Metadata, &p.Metadata); err != nil {
		return nil, err
	}
	if present(m.Company) {
		p.Company = new(payment.CompanyInfo)
		if err := decode(m.Company, p.Company); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("lodging/sqlite: encode: %w", err)
	}
	return string(b), nil
}

// decode leaves v untouched for empty or null documents.
func decode(s string, v any) error {
	if !present(s) {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("lodging/sqlite: decode: %w", err)
	}
	return nil
}

func present(s string) bool {
	return s != "" && s != "null"
}
