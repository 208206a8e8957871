package postgres

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

// ==================== Building models ====================

type buildingModel struct {
	grove.BaseModel `grove:"table:lodging_buildings"`

	ID        string            `grove:"id,pk"`
	Name      string            `grove:"name"`
	Address   string            `grove:"address"`
	Metadata  map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt time.Time         `grove:"created_at"`
	UpdatedAt time.Time         `grove:"updated_at"`
}

func toBuildingModel(b *property.Building) *buildingModel {
	return &buildingModel{
		ID:        b.ID.String(),
		Name:      b.Name,
		Address:   b.Address,
		Metadata:  b.Metadata,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func fromBuildingModel(m *buildingModel) (*property.Building, error) {
	buildingID, err := id.ParseBuildingID(m.ID)
	if err != nil {
		return nil, err
	}
	return &property.Building{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       buildingID,
		Name:     m.Name,
		Address:  m.Address,
		Metadata: m.Metadata,
	}, nil
}

// ==================== Floor models ====================

type floorModel struct {
	grove.BaseModel `grove:"table:lodging_floors"`

	ID         string    `grove:"id,pk"`
	BuildingID string    `grove:"building_id"`
	Name       string    `grove:"name"`
	Level      int       `grove:"level"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
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
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         floorID,
		BuildingID: buildingID,
		Name:       m.Name,
		Level:      m.Level,
	}, nil
}

// ==================== Unit models ====================

// unitModel keeps the active stay as a JSON document. A unit has at most
// one of occupancy and tenancy; the other column holds JSON null.
type unitModel struct {
	grove.BaseModel `grove:"table:lodging_units"`

	ID         string            `grove:"id,pk"`
	BuildingID string            `grove:"building_id"`
	FloorID    string            `grove:"floor_id"`
	Label      string            `grove:"label"`
	Mode       string            `grove:"mode"`
	Status     string            `grove:"status"`
	Profile    json.RawMessage   `grove:"profile,type:jsonb"`
	Occupancy  json.RawMessage   `grove:"occupancy,type:jsonb"`
	Tenancy    json.RawMessage   `grove:"tenancy,type:jsonb"`
	Note       string            `grove:"note"`
	Metadata   map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt  time.Time         `grove:"created_at"`
	UpdatedAt  time.Time         `grove:"updated_at"`
}

func toUnitModel(u *room.Unit) (*unitModel, error) {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	occ, err := json.Marshal(u.Occupancy)
	if err != nil {
		return nil, fmt.Errorf("encode occupancy: %w", err)
	}
	ten, err := json.Marshal(u.Tenancy)
	if err != nil {
		return nil, fmt.Errorf("encode tenancy: %w", err)
	}

	return &unitModel{
		ID:         u.ID.String(),
		BuildingID: u.BuildingID.String(),
		FloorID:    u.FloorID.String(),
		Label:      u.Label,
		Mode:       string(u.Mode),
		Status:     string(u.Status),
		Profile:    profile,
		Occupancy:  occ,
		Tenancy:    ten,
		Note:       u.Note,
		Metadata:   u.Metadata,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}, nil
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
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         unitID,
		BuildingID: buildingID,
		FloorID:    floorID,
		Label:      m.Label,
		Mode:       room.Mode(m.Mode),
		Status:     room.Status(m.Status),
		Note:       m.Note,
		Metadata:   m.Metadata,
	}

	if present(m.Profile) {
		if err := json.Unmarshal(m.Profile, &u.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	if present(m.Occupancy) {
		u.Occupancy = new(folio.Occupancy)
		if err := json.Unmarshal(m.Occupancy, u.Occupancy); err != nil {
			return nil, fmt.Errorf("decode occupancy: %w", err)
		}
	}
	if present(m.Tenancy) {
		u.Tenancy = new(tenancy.Tenancy)
		if err := json.Unmarshal(m.Tenancy, u.Tenancy); err != nil {
			return nil, fmt.Errorf("decode tenancy: %w", err)
		}
	}
	return u, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:lodging_payments"`

	ID            string            `grove:"id,pk"`
	UnitID        string            `grove:"unit_id"`
	UnitLabel     string            `grove:"unit_label"`
	OccupancyID   string            `grove:"occupancy_id"`
	GuestName     string            `grove:"guest_name"`
	GuestPhone    string            `grove:"guest_phone"`
	CheckIn       time.Time         `grove:"check_in"`
	CheckOut      time.Time         `grove:"check_out"`
	Basis         string            `grove:"basis"`
	DurationUnits int64             `grove:"duration_units"`
	Currency      string            `grove:"currency"`
	LineItems     json.RawMessage   `grove:"line_items,type:jsonb"`
	RoomCharge    int64             `grove:"room_charge"`
	Services      int64             `grove:"services"`
	Incidentals   int64             `grove:"incidentals"`
	Subtotal      int64             `grove:"subtotal"`
	TaxRate       string            `grove:"tax_rate"`
	Tax           int64             `grove:"tax"`
	Total         int64             `grove:"total"`
	Deposit       int64             `grove:"deposit"`
	Document      string            `grove:"document"`
	Company       json.RawMessage   `grove:"company,type:jsonb"`
	Method        string            `grove:"method"`
	QRReference   string            `grove:"qr_reference"`
	PaidAt        time.Time         `grove:"paid_at"`
	Metadata      map[string]string `grove:"metadata,type:jsonb"`
	CreatedAt     time.Time         `grove:"created_at"`
	UpdatedAt     time.Time         `grove:"updated_at"`
}

func toPaymentModel(p *payment.Payment) (*paymentModel, error) {
	items, err := json.Marshal(p.LineItems)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	company, err := json.Marshal(p.Company)
	if err != nil {
		return nil, fmt.Errorf("encode company: %w", err)
	}

	return &paymentModel{
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
		LineItems:     items,
		RoomCharge:    p.RoomCharge.Amount,
		Services:      p.Services.Amount,
		Incidentals:   p.Incidentals.Amount,
		Subtotal:      p.Subtotal.Amount,
		TaxRate:       p.TaxRate.String(),
		Tax:           p.Tax.Amount,
		Total:         p.Total.Amount,
		Deposit:       p.Deposit.Amount,
		Document:      string(p.Document),
		Company:       company,
		Method:        string(p.Method),
		QRReference:   p.QRReference,
		PaidAt:        p.PaidAt,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
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

	money := func(amount int64) types.Money {
		return types.Money{Amount: amount, Currency: m.Currency}
	}
	p := &payment.Payment{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
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
		Currency:      m.Currency,
		RoomCharge:    money(m.RoomCharge),
		Services:      money(m.Services),
		Incidentals:   money(m.Incidentals),
		Subtotal:      money(m.Subtotal),
		TaxRate:       taxRate,
		Tax:           money(m.Tax),
		Total:         money(m.Total),
		Deposit:       money(m.Deposit),
		Document:      payment.DocumentType(m.Document),
		Method:        payment.Method(m.Method),
		QRReference:   m.QRReference,
		PaidAt:        m.PaidAt,
		Metadata:      m.Metadata,
	}

	if present(m.LineItems) {
		if err := json.Unmarshal(m.LineItems, &p.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
	}
	if present(m.Company) {
		p.Company = new(payment.CompanyInfo)
		if err := json.Unmarshal(m.Company, p.Company); err != nil {
			return nil, fmt.Errorf("decode company: %w", err)
		}
	}
	return p, nil
}

// present reports whether a JSON column holds a value other than null.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
