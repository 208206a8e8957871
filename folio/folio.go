package folio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/types"
)

// ErrLineNotFound is returned by RemoveCharge for an unknown line id.
var ErrLineNotFound = errors.New("lodging: folio line not found")

// OpenInput describes a check-in.
type OpenInput struct {
	GuestName     string
	GuestPhone    string
	GuestIDNumber string
	Guests        int
	CheckIn       time.Time
	CheckOut      time.Time
	Basis         rate.Basis
	UnitRate      types.Money
	Deposit       types.Money
	Notes         string
}

// Open validates a check-in and returns the new occupancy with an empty
// folio. Nothing is created when validation fails.
func Open(in OpenInput) (*Occupancy, error) {
	switch {
	case strings.TrimSpace(in.GuestName) == "":
		return nil, types.Invalid("guest_name", "is required")
	case strings.TrimSpace(in.GuestPhone) == "":
		return nil, types.Invalid("guest_phone", "is required")
	case in.Guests < 0:
		return nil, types.Invalid("guests", "must not be negative")
	case in.CheckIn.IsZero():
		return nil, types.Invalid("check_in", "is required")
	case !in.CheckOut.After(in.CheckIn):
		return nil, types.Invalid("check_out", "must be after check-in")
	case !in.Basis.Valid() || in.Basis == rate.BasisMonthly:
		return nil, types.Invalid("basis", fmt.Sprintf("%q is not a stay basis", in.Basis))
	case !in.UnitRate.IsPositive():
		return nil, types.Invalid("unit_rate", "must be positive")
	case in.Deposit.IsNegative():
		return nil, types.Invalid("deposit", "must not be negative")
	case !in.Deposit.IsZero() && in.Deposit.Currency != in.UnitRate.Currency:
		return nil, types.Invalid("deposit", "currency must be "+in.UnitRate.Currency)
	}

	guests := in.Guests
	if guests == 0 {
		guests = 1
	}
	deposit := in.Deposit
	if deposit.Currency == "" {
		deposit = types.Zero(in.UnitRate.Currency)
	}

	return &Occupancy{
		ID:            id.NewOccupancyID(),
		GuestName:     strings.TrimSpace(in.GuestName),
		GuestPhone:    strings.TrimSpace(in.GuestPhone),
		GuestIDNumber: strings.TrimSpace(in.GuestIDNumber),
		Guests:        guests,
		CheckIn:       in.CheckIn.UTC(),
		CheckOut:      in.CheckOut.UTC(),
		Basis:         in.Basis,
		UnitRate:      in.UnitRate,
		Deposit:       deposit,
		Notes:         in.Notes,
	}, nil
}

// AddService appends a free-form service line.
func (o *Occupancy) AddService(name string, unitPrice types.Money, quantity int64, at time.Time) (Service, error) {
	if strings.TrimSpace(name) == "" {
		return Service{}, types.Invalid("name", "is required")
	}
	if err := o.checkLine(unitPrice, quantity); err != nil {
		return Service{}, err
	}

	s := Service{
		ID:        id.NewServiceID(),
		Name:      strings.TrimSpace(name),
		UnitPrice: unitPrice,
		Quantity:  quantity,
		AddedAt:   at.UTC(),
	}
	o.Services = append(o.Services, s)
	return s, nil
}

// ChargeInput describes an incidental charge.
type ChargeInput struct {
	Description string
	UnitPrice   types.Money
	Quantity    int64
	RecordedBy  string
	QuickPick   bool
}

// AddIncidentalCharge records an incidental item. A quick-pick item whose
// description matches an existing quick-pick line (ignoring case and
// surrounding whitespace) increments that line's quantity and keeps its
// original price. The returned bool reports whether a merge happened.
func (o *Occupancy) AddIncidentalCharge(in ChargeInput, at time.Time) (IncidentalCharge, bool, error) {
	if strings.TrimSpace(in.Description) == "" {
		return IncidentalCharge{}, false, types.Invalid("description", "is required")
	}
	if err := o.checkLine(in.UnitPrice, in.Quantity); err != nil {
		return IncidentalCharge{}, false, err
	}

	if in.QuickPick {
		key := normalize(in.Description)
		for i := range o.Incidentals {
			c := &o.Incidentals[i]
			if c.QuickPick && normalize(c.Description) == key {
				c.Quantity += in.Quantity
				c.RecordedAt = at.UTC()
				if in.RecordedBy != "" {
					c.RecordedBy = in.RecordedBy
				}
				return *c, true, nil
			}
		}
	}

	c := IncidentalCharge{
		ID:          id.NewChargeID(),
		Description: strings.TrimSpace(in.Description),
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		RecordedAt:  at.UTC(),
		RecordedBy:  in.RecordedBy,
		QuickPick:   in.QuickPick,
	}
	o.Incidentals = append(o.Incidentals, c)
	return c, false, nil
}

// RemoveCharge deletes a service or incidental line by id.
func (o *Occupancy) RemoveCharge(lineID id.ID) error {
	key := lineID.String()
	for i, s := range o.Services {
		if s.ID.String() == key {
			o.Services = append(o.Services[:i], o.Services[i+1:]...)
			return nil
		}
	}
	for i, c := range o.Incidentals {
		if c.ID.String() == key {
			o.Incidentals = append(o.Incidentals[:i], o.Incidentals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, key)
}

// Extend moves the planned checkout.
func (o *Occupancy) Extend(checkOut time.Time) error {
	if !checkOut.After(o.CheckIn) {
		return types.Invalid("check_out", "must be after check-in")
	}
	o.CheckOut = checkOut.UTC()
	return nil
}

// BillableEnd is the end of the billed duration: the planned checkout for
// nightly stays, the moment of settlement for hourly and daily stays.
func (o *Occupancy) BillableEnd(now time.Time) time.Time {
	if o.Basis.Elapsed() {
		if now.Before(o.CheckIn) {
			return o.CheckIn
		}
		return now
	}
	return o.CheckOut
}

// ComputeTotal prices the folio as of now. Tax applies to invoices only.
func (o *Occupancy) ComputeTotal(doc payment.DocumentType, taxRate decimal.Decimal, now time.Time) Totals {
	cur := o.Currency()
	room, units := rate.Charge(o.UnitRate, o.Basis, o.CheckIn, o.BillableEnd(now))

	services := types.Zero(cur)
	for _, s := range o.Services {
		services = services.Add(s.Amount())
	}
	incidentals := types.Zero(cur)
	for _, c := range o.Incidentals {
		incidentals = incidentals.Add(c.Amount())
	}

	subtotal := types.Sum(cur, room, services, incidentals)
	tax := types.Zero(cur)
	if doc == payment.DocumentInvoice {
		tax = subtotal.MulDecimal(taxRate)
	}

	return Totals{
		Basis:         o.Basis,
		DurationUnits: units,
		RoomCharge:    room,
		Services:      services,
		Incidentals:   incidentals,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
	}
}

// SettleInput carries what settlement needs beyond the folio itself.
type SettleInput struct {
	UnitID    id.UnitID
	UnitLabel string
	Method    payment.Method
	Document  payment.DocumentType
	Company   *payment.CompanyInfo
	TaxRate   decimal.Decimal
	At        time.Time
}

// Settle snapshots the folio into an immutable payment. Invoices require
// company name, tax code and address.
func (o *Occupancy) Settle(in SettleInput) (*payment.Payment, error) {
	if !in.Method.Valid() {
		return nil, types.Invalid("method", fmt.Sprintf("unknown payment method %q", in.Method))
	}
	if !in.Document.Valid() {
		return nil, types.Invalid("document", fmt.Sprintf("unknown document type %q", in.Document))
	}
	var company *payment.CompanyInfo
	if in.Document == payment.DocumentInvoice {
		if err := in.Company.Validate(); err != nil {
			return nil, err
		}
		c := *in.Company
		company = &c
	}

	totals := o.ComputeTotal(in.Document, in.TaxRate, in.At)
	taxRate := decimal.Zero
	if in.Document == payment.DocumentInvoice {
		taxRate = in.TaxRate
	}

	p := &payment.Payment{
		Entity:        types.NewEntityAt(in.At),
		ID:            id.NewPaymentID(),
		UnitID:        in.UnitID,
		UnitLabel:     in.UnitLabel,
		OccupancyID:   o.ID,
		GuestName:     o.GuestName,
		GuestPhone:    o.GuestPhone,
		CheckIn:       o.CheckIn,
		CheckOut:      o.BillableEnd(in.At),
		Basis:         o.Basis,
		DurationUnits: totals.DurationUnits,
		Currency:      o.Currency(),
		LineItems:     o.lineItems(totals),
		RoomCharge:    totals.RoomCharge,
		Services:      totals.Services,
		Incidentals:   totals.Incidentals,
		Subtotal:      totals.Subtotal,
		TaxRate:       taxRate,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Deposit:       o.Deposit,
		Document:      in.Document,
		Company:       company,
		Method:        in.Method,
		PaidAt:        in.At.UTC(),
	}
	if in.Method == payment.MethodQR {
		p.QRReference = payment.QRPayload(p.ID, p.BalanceDue(), in.UnitLabel)
	}
	return p, nil
}

func (o *Occupancy) lineItems(t Totals) []payment.LineItem {
	items := make([]payment.LineItem, 0, 1+len(o.Services)+len(o.Incidentals))
	items = append(items, payment.LineItem{
		ID:          id.NewLineItemID(),
		Type:        payment.LineItemRoom,
		Description: fmt.Sprintf("Room (%d × %s)", t.DurationUnits, o.Basis),
		Quantity:    t.DurationUnits,
		UnitAmount:  o.UnitRate,
		Amount:      t.RoomCharge,
	})
	for _, s := range o.Services {
		items = append(items, payment.LineItem{
			ID:          id.NewLineItemID(),
			Type:        payment.LineItemService,
			Description: s.Name,
			Quantity:    s.Quantity,
			UnitAmount:  s.UnitPrice,
			Amount:      s.Amount(),
		})
	}
	for _, c := range o.Incidentals {
		items = append(items, payment.LineItem{
			ID:          id.NewLineItemID(),
			Type:        payment.LineItemIncidental,
			Description: c.Description,
			Quantity:    c.Quantity,
			UnitAmount:  c.UnitPrice,
			Amount:      c.Amount(),
		})
	}
	return items
}

func (o *Occupancy) checkLine(unitPrice types.Money, quantity int64) error {
	switch {
	case quantity < 1:
		return types.Invalid("quantity", "must be at least 1")
	case unitPrice.IsNegative():
		return types.Invalid("unit_price", "must not be negative")
	case unitPrice.Currency != o.Currency():
		return types.Invalid("unit_price", "currency must be "+o.Currency())
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
