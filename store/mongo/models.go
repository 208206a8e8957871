package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/meter"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/property"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/tenancy"
	"github.com/xraph/lodging/types"
)

// Identifiers are stored as their string form and decimals as strings;
// neither has a BSON codec.

// ==================== Building models ====================

type buildingModel struct {
	grove.BaseModel `grove:"table:lodging_buildings"`

	ID        string            `grove:"id,pk"      bson:"_id"`
	Name      string            `grove:"name"       bson:"name"`
	Address   string            `grove:"address"    bson:"address"`
	Metadata  map[string]string `grove:"metadata"   bson:"metadata,omitempty"`
	CreatedAt time.Time         `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `grove:"updated_at" bson:"updated_at"`
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
		Entity:   types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:       buildingID,
		Name:     m.Name,
		Address:  m.Address,
		Metadata: m.Metadata,
	}, nil
}

// ==================== Floor models ====================

type floorModel struct {
	grove.BaseModel `grove:"table:lodging_floors"`

	ID         string    `grove:"id,pk"       bson:"_id"`
	BuildingID string    `grove:"building_id" bson:"building_id"`
	Name       string    `grove:"name"        bson:"name"`
	Level      int       `grove:"level"       bson:"level"`
	CreatedAt  time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"  bson:"updated_at"`
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

// ==================== Unit models ====================

type unitModel struct {
	grove.BaseModel `grove:"table:lodging_units"`

	ID         string            `grove:"id,pk"       bson:"_id"`
	BuildingID string            `grove:"building_id" bson:"building_id"`
	FloorID    string            `grove:"floor_id"    bson:"floor_id"`
	Label      string            `grove:"label"       bson:"label"`
	Mode       string            `grove:"mode"        bson:"mode"`
	Status     string            `grove:"status"      bson:"status"`
	Profile    rate.Profile      `grove:"profile"     bson:"profile"`
	Occupancy  *occupancyModel   `grove:"occupancy"   bson:"occupancy,omitempty"`
	Tenancy    *tenancyModel     `grove:"tenancy"     bson:"tenancy,omitempty"`
	Note       string            `grove:"note"        bson:"note"`
	Metadata   map[string]string `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt  time.Time         `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time         `grove:"updated_at"  bson:"updated_at"`
}

type occupancyModel struct {
	ID            string            `bson:"id"`
	GuestName     string            `bson:"guest_name"`
	GuestPhone    string            `bson:"guest_phone"`
	GuestIDNumber string            `bson:"guest_id_number,omitempty"`
	Guests        int               `bson:"guests"`
	CheckIn       time.Time         `bson:"check_in"`
	CheckOut      time.Time         `bson:"check_out"`
	Basis         string            `bson:"basis"`
	UnitRate      types.Money       `bson:"unit_rate"`
	Deposit       types.Money       `bson:"deposit"`
	Services      []serviceModel    `bson:"services,omitempty"`
	Incidentals   []incidentalModel `bson:"incidentals,omitempty"`
	Notes         string            `bson:"notes,omitempty"`
}

type serviceModel struct {
	ID        string      `bson:"id"`
	Name      string      `bson:"name"`
	UnitPrice types.Money `bson:"unit_price"`
	Quantity  int64       `bson:"quantity"`
	AddedAt   time.Time   `bson:"added_at"`
}

type incidentalModel struct {
	ID          string      `bson:"id"`
	Description string      `bson:"description"`
	UnitPrice   types.Money `bson:"unit_price"`
	Quantity    int64       `bson:"quantity"`
	RecordedAt  time.Time   `bson:"recorded_at"`
	RecordedBy  string      `bson:"recorded_by,omitempty"`
	QuickPick   bool        `bson:"quick_pick,omitempty"`
}

type tenancyModel struct {
	ID               string        `bson:"id"`
	TenantName       string        `bson:"tenant_name"`
	TenantPhone      string        `bson:"tenant_phone"`
	TenantIDNumber   string        `bson:"tenant_id_number,omitempty"`
	MoveIn           time.Time     `bson:"move_in"`
	Deposit          types.Money   `bson:"deposit"`
	MonthlyRent      types.Money   `bson:"monthly_rent"`
	ElectricityPrice types.Money   `bson:"electricity_price"`
	WaterPrice       types.Money   `bson:"water_price"`
	InternetFee      types.Money   `bson:"internet_fee"`
	Ledger           []rentalModel `bson:"ledger"`
}

type rentalModel struct {
	ID              string                `bson:"id"`
	Month           string                `bson:"month"`
	Rent            types.Money           `bson:"rent"`
	Electricity     *readingModel         `bson:"electricity,omitempty"`
	Water           *readingModel         `bson:"water,omitempty"`
	ElectricityCost types.Money           `bson:"electricity_cost"`
	WaterCost       types.Money           `bson:"water_cost"`
	Internet        types.Money           `bson:"internet"`
	Others          []tenancy.OtherCharge `bson:"others,omitempty"`
	Total           types.Money           `bson:"total"`
	Paid            bool                  `bson:"paid"`
	PaidDate        *time.Time            `bson:"paid_date,omitempty"`
	PaidAmount      types.Money           `bson:"paid_amount"`
	Method          string                `bson:"method,omitempty"`
	RecordedAt      time.Time             `bson:"recorded_at"`
}

type readingModel struct {
	Old       string      `bson:"old"`
	New       string      `bson:"new"`
	UnitPrice types.Money `bson:"unit_price"`
}

func toUnitModel(u *room.Unit) *unitModel {
	return &unitModel{
		ID:         u.ID.String(),
		BuildingID: u.BuildingID.String(),
		FloorID:    u.FloorID.String(),
		Label:      u.Label,
		Mode:       string(u.Mode),
		Status:     string(u.Status),
		Profile:    u.Profile,
		Occupancy:  toOccupancyModel(u.Occupancy),
		Tenancy:    toTenancyModel(u.Tenancy),
		Note:       u.Note,
		Metadata:   u.Metadata,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
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
	occ, err := fromOccupancyModel(m.Occupancy)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	ten, err := fromTenancyModel(m.Tenancy)
	if err != nil {
		return nil, fmt.Errorf("tenancy: %w", err)
	}

	return &room.Unit{
		Entity:     types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:         unitID,
		BuildingID: buildingID,
		FloorID:    floorID,
		Label:      m.Label,
		Mode:       room.Mode(m.Mode),
		Profile:    m.Profile,
		Status:     room.Status(m.Status),
		Occupancy:  occ,
		Tenancy:    ten,
		Note:       m.Note,
		Metadata:   m.Metadata,
	}, nil
}

func toOccupancyModel(o *folio.Occupancy) *occupancyModel {
	if o == nil {
		return nil
	}
	m := &occupancyModel{
		ID:            o.ID.String(),
		GuestName:     o.GuestName,
		GuestPhone:    o.GuestPhone,
		GuestIDNumber: o.GuestIDNumber,
		Guests:        o.Guests,
		CheckIn:       o.CheckIn,
		CheckOut:      o.CheckOut,
		Basis:         string(o.Basis),
		UnitRate:      o.UnitRate,
		Deposit:       o.Deposit,
		Notes:         o.Notes,
	}
	for _, s := range o.Services {
		m.Services = append(m.Services, serviceModel{
			ID:        s.ID.String(),
			Name:      s.Name,
			UnitPrice: s.UnitPrice,
			Quantity:  s.Quantity,
			AddedAt:   s.AddedAt,
		})
	}
	for _, c := range o.Incidentals {
		m.Incidentals = append(m.Incidentals, incidentalModel{
			ID:          c.ID.String(),
			Description: c.Description,
			UnitPrice:   c.UnitPrice,
			Quantity:    c.Quantity,
			RecordedAt:  c.RecordedAt,
			RecordedBy:  c.RecordedBy,
			QuickPick:   c.QuickPick,
		})
	}
	return m
}

func fromOccupancyModel(m *occupancyModel) (*folio.Occupancy, error) {
	if m == nil {
		return nil, nil
	}
	occID, err := id.ParseAny(m.ID)
	if err != nil {
		return nil, err
	}
	o := &folio.Occupancy{
		ID:            occID,
		GuestName:     m.GuestName,
		GuestPhone:    m.GuestPhone,
		GuestIDNumber: m.GuestIDNumber,
		Guests:        m.Guests,
		CheckIn:       m.CheckIn,
		CheckOut:      m.CheckOut,
		Basis:         rate.Basis(m.Basis),
		UnitRate:      m.UnitRate,
		Deposit:       m.Deposit,
		Notes:         m.Notes,
	}
	for _, s := range m.Services {
		sid, err := id.ParseAny(s.ID)
		if err != nil {
			return nil, err
		}
		o.Services = append(o.Services, folio.Service{
			ID:        sid,
			Name:      s.Name,
			UnitPrice: s.UnitPrice,
			Quantity:  s.Quantity,
			AddedAt:   s.AddedAt,
		})
	}
	for _, c := range m.Incidentals {
		cid, err := id.ParseAny(c.ID)
		if err != nil {
			return nil, err
		}
		o.Incidentals = append(o.Incidentals, folio.IncidentalCharge{
			ID:          cid,
			Description: c.Description,
			UnitPrice:   c.UnitPrice,
			Quantity:    c.Quantity,
			RecordedAt:  c.RecordedAt,
			RecordedBy:  c.RecordedBy,
			QuickPick:   c.QuickPick,
		})
	}
	return o, nil
}

func toTenancyModel(t *tenancy.Tenancy) *tenancyModel {
	if t == nil {
		return nil
	}
	m := &tenancyModel{
		ID:               t.ID.String(),
		TenantName:       t.TenantName,
		TenantPhone:      t.TenantPhone,
		TenantIDNumber:   t.TenantIDNumber,
		MoveIn:           t.MoveIn,
		Deposit:          t.Deposit,
		MonthlyRent:      t.MonthlyRent,
		ElectricityPrice: t.ElectricityPrice,
		WaterPrice:       t.WaterPrice,
		InternetFee:      t.InternetFee,
		Ledger:           []rentalModel{},
	}
	for _, r := range t.Ledger.Entries() {
		m.Ledger = append(m.Ledger, rentalModel{
			ID:              r.ID.String(),
			Month:           r.Month.String(),
			Rent:            r.Rent,
			Electricity:     toReadingModel(r.Electricity),
			Water:           toReadingModel(r.Water),
			ElectricityCost: r.ElectricityCost,
			WaterCost:       r.WaterCost,
			Internet:        r.Internet,
			Others:          r.Others,
			Total:           r.Total,
			Paid:            r.Paid,
			PaidDate:        r.PaidDate,
			PaidAmount:      r.PaidAmount,
			Method:          string(r.Method),
			RecordedAt:      r.RecordedAt,
		})
	}
	return m
}

func fromTenancyModel(m *tenancyModel) (*tenancy.Tenancy, error) {
	if m == nil {
		return nil, nil
	}
	tenID, err := id.ParseAny(m.ID)
	if err != nil {
		return nil, err
	}
	t := &tenancy.Tenancy{
		ID:               tenID,
		TenantName:       m.TenantName,
		TenantPhone:      m.TenantPhone,
		TenantIDNumber:   m.TenantIDNumber,
		MoveIn:           m.MoveIn,
		Deposit:          m.Deposit,
		MonthlyRent:      m.MonthlyRent,
		ElectricityPrice: m.ElectricityPrice,
		WaterPrice:       m.WaterPrice,
		InternetFee:      m.InternetFee,
	}
	for _, r := range m.Ledger {
		rid, err := id.ParseAny(r.ID)
		if err != nil {
			return nil, err
		}
		month, err := types.ParseMonth(r.Month)
		if err != nil {
			return nil, err
		}
		elec, err := fromReadingModel(r.Electricity)
		if err != nil {
			return nil, err
		}
		water, err := fromReadingModel(r.Water)
		if err != nil {
			return nil, err
		}
		if _, err := t.Ledger.Upsert(tenancy.MonthlyRental{
			ID:              rid,
			Month:           month,
			Rent:            r.Rent,
			Electricity:     elec,
			Water:           water,
			ElectricityCost: r.ElectricityCost,
			WaterCost:       r.WaterCost,
			Internet:        r.Internet,
			Others:          r.Others,
			Total:           r.Total,
			Paid:            r.Paid,
			PaidDate:        r.PaidDate,
			PaidAmount:      r.PaidAmount,
			Method:          payment.Method(r.Method),
			RecordedAt:      r.RecordedAt,
		}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func toReadingModel(r *meter.Reading) *readingModel {
	if r == nil {
		return nil
	}
	return &readingModel{Old: r.Old.String(), New: r.New.String(), UnitPrice: r.UnitPrice}
}

func fromReadingModel(m *readingModel) (*meter.Reading, error) {
	if m == nil {
		return nil, nil
	}
	oldReading, err := decimal.NewFromString(m.Old)
	if err != nil {
		return nil, err
	}
	newReading, err := decimal.NewFromString(m.New)
	if err != nil {
		return nil, err
	}
	return &meter.Reading{Old: oldReading, New: newReading, UnitPrice: m.UnitPrice}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:lodging_payments"`

	ID            string               `grove:"id,pk"          bson:"_id"`
	UnitID        string               `grove:"unit_id"        bson:"unit_id"`
	UnitLabel     string               `grove:"unit_label"     bson:"unit_label"`
	OccupancyID   string               `grove:"occupancy_id"   bson:"occupancy_id"`
	GuestName     string               `grove:"guest_name"     bson:"guest_name"`
	GuestPhone    string               `grove:"guest_phone"    bson:"guest_phone"`
	CheckIn       time.Time            `grove:"check_in"       bson:"check_in"`
	CheckOut      time.Time            `grove:"check_out"      bson:"check_out"`
	Basis         string               `grove:"basis"          bson:"basis"`
	DurationUnits int64                `grove:"duration_units" bson:"duration_units"`
	Currency      string               `grove:"currency"       bson:"currency"`
	LineItems     []lineItemModel      `grove:"line_items"     bson:"line_items"`
	RoomCharge    int64                `grove:"room_charge"    bson:"room_charge"`
	Services      int64                `grove:"services"       bson:"services"`
	Incidentals   int64                `grove:"incidentals"    bson:"incidentals"`
	Subtotal      int64                `grove:"subtotal"       bson:"subtotal"`
	TaxRate       string               `grove:"tax_rate"       bson:"tax_rate"`
	Tax           int64                `grove:"tax"            bson:"tax"`
	Total         int64                `grove:"total"          bson:"total"`
	Deposit       int64                `grove:"deposit"        bson:"deposit"`
	Document      string               `grove:"document"       bson:"document"`
	Company       *payment.CompanyInfo `grove:"company"        bson:"company,omitempty"`
	Method        string               `grove:"method"         bson:"method"`
	QRReference   string               `grove:"qr_reference"   bson:"qr_reference,omitempty"`
	PaidAt        time.Time            `grove:"paid_at"        bson:"paid_at"`
	Metadata      map[string]string    `grove:"metadata"       bson:"metadata,omitempty"`
	CreatedAt     time.Time            `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time            `grove:"updated_at"     bson:"updated_at"`
}

type lineItemModel struct {
	ID          string `bson:"id"`
	Type        string `bson:"type"`
	Description string `bson:"description"`
	Quantity    int64  `bson:"quantity"`
	UnitAmount  int64  `bson:"unit_amount"`
	Amount      int64  `bson:"amount"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	items := make([]lineItemModel, len(p.LineItems))
	for i, li := range p.LineItems {
		items[i] = lineItemModel{
			ID:          li.ID.String(),
			Type:        string(li.Type),
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitAmount.Amount,
			Amount:      li.Amount.Amount,
		}
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
		Company:       p.Company,
		Method:        string(p.Method),
		QRReference:   p.QRReference,
		PaidAt:        p.PaidAt,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
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
		return nil, err
	}

	cur := m.Currency
	money := func(amount int64) types.Money { return types.Money{Amount: amount, Currency: cur} }

	items := make([]payment.LineItem, len(m.LineItems))
	for i, li := range m.LineItems {
		liID, err := id.ParseAny(li.ID)
		if err != nil {
			return nil, err
		}
		items[i] = payment.LineItem{
			ID:          liID,
			Type:        payment.LineItemType(li.Type),
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitAmount:  money(li.UnitAmount),
			Amount:      money(li.Amount),
		}
	}

	return &payment.Payment{
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
		LineItems:     items,
		RoomCharge:    money(m.RoomCharge),
		Services:      money(m.Services),
		Incidentals:   money(m.Incidentals),
		Subtotal:      money(m.Subtotal),
		TaxRate:       taxRate,
		Tax:           money(m.Tax),
		Total:         money(m.Total),
		Deposit:       money(m.Deposit),
		Document:      payment.DocumentType(m.Document),
		Company:       m.Company,
		Method:        payment.Method(m.Method),
		QRReference:   m.QRReference,
		PaidAt:        m.PaidAt,
		Metadata:      m.Metadata,
	}, nil
}
