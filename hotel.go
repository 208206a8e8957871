package lodging

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/lodging/folio"
	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/types"
)

// CheckInInput describes a hotel or guesthouse arrival. A zero CheckIn
// means now; an empty Basis selects the first basis the unit prices.
type CheckInInput struct {
	GuestName     string      `json:"guest_name"                validate:"required,max=200"`
	GuestPhone    string      `json:"guest_phone"               validate:"required,max=32"`
	GuestIDNumber string      `json:"guest_id_number,omitempty" validate:"max=64"`
	Guests        int         `json:"guests"                    validate:"gte=0,lte=50"`
	CheckIn       time.Time   `json:"check_in"`
	CheckOut      time.Time   `json:"check_out"                 validate:"required"`
	Basis         rate.Basis  `json:"basis,omitempty"           validate:"omitempty,oneof=nightly hourly daily"`
	Deposit       types.Money `json:"deposit"`
	Notes         string      `json:"notes,omitempty"           validate:"max=1000"`
}

// ServiceInput is a free-form service line.
type ServiceInput struct {
	Name      string      `json:"name"       validate:"required,max=200"`
	UnitPrice types.Money `json:"unit_price"`
	Quantity  int64       `json:"quantity"   validate:"gte=1"`
}

// ChargeInput is an incidental item. QuickPick items merge by description.
type ChargeInput struct {
	Description string      `json:"description"           validate:"required,max=200"`
	UnitPrice   types.Money `json:"unit_price"`
	Quantity    int64       `json:"quantity"              validate:"gte=1"`
	RecordedBy  string      `json:"recorded_by,omitempty" validate:"max=100"`
	QuickPick   bool        `json:"quick_pick,omitempty"`
}

// SettleInput selects how a folio is paid and which document is issued.
type SettleInput struct {
	Method   payment.Method       `json:"method"            validate:"required,oneof=cash bank_transfer card qr"`
	Document payment.DocumentType `json:"document"          validate:"required,oneof=receipt invoice"`
	Company  *payment.CompanyInfo `json:"company,omitempty"`
}

// CheckIn opens an occupancy on a vacant-clean hotel or guesthouse unit and
// moves it to occupied.
func (e *Engine) CheckIn(ctx context.Context, unitID id.UnitID, in CheckInInput) (*room.Unit, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	u, from, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		if u.Mode == room.ModeBoarding {
			return fmt.Errorf("%w: unit %s takes tenancies", ErrWrongMode, u.Label)
		}
		if err := u.Require("check in", room.StatusVacantClean); err != nil {
			return err
		}

		basis := in.Basis
		if basis == "" {
			basis = defaultBasis(u)
		}
		if !u.Mode.Allows(basis) {
			return types.Invalid("basis", fmt.Sprintf("%s units cannot be let %s", u.Mode, basis))
		}
		price, ok := u.Profile.Price(basis)
		if !ok {
			return types.Invalid("basis", fmt.Sprintf("unit %s has no %s price", u.Label, basis))
		}

		checkIn := in.CheckIn
		if checkIn.IsZero() {
			checkIn = now
		}
		if !in.CheckOut.After(now) {
			return types.Invalid("check_out", "must be in the future")
		}
		deposit := in.Deposit
		if deposit.Currency == "" {
			deposit = types.Money{Amount: deposit.Amount, Currency: price.Currency}
		}

		occ, err := folio.Open(folio.OpenInput{
			GuestName:     in.GuestName,
			GuestPhone:    in.GuestPhone,
			GuestIDNumber: in.GuestIDNumber,
			Guests:        in.Guests,
			CheckIn:       checkIn,
			CheckOut:      in.CheckOut,
			Basis:         basis,
			UnitRate:      price,
			Deposit:       deposit,
			Notes:         in.Notes,
		})
		if err != nil {
			return err
		}
		if err := u.Transition("check in", room.StatusOccupied); err != nil {
			return err
		}
		u.Occupancy = occ
		return u.Consistent()
	})
	if err != nil {
		return nil, err
	}

	e.emitStatus(ctx, u, from)
	e.plugins.EmitCheckedIn(ctx, u.Clone(), u.Occupancy.Clone())
	e.logger.Info("guest checked in",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"occupancy_id", u.Occupancy.ID.String(),
		"basis", string(u.Occupancy.Basis),
		"check_out", u.Occupancy.CheckOut,
	)
	return u, nil
}

// AddService appends a service line to the unit's open folio.
func (e *Engine) AddService(ctx context.Context, unitID id.UnitID, in ServiceInput) (folio.Service, error) {
	if err := e.check(in); err != nil {
		return folio.Service{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var line folio.Service
	u, _, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		occ, err := openFolio(u)
		if err != nil {
			return err
		}
		line, err = occ.AddService(in.Name, withCurrency(in.UnitPrice, occ.Currency()), in.Quantity, e.now())
		return err
	})
	if err != nil {
		return folio.Service{}, err
	}

	e.plugins.EmitChargeAdded(ctx, u.ID, line.Name, line.Amount())
	e.logger.Debug("service added",
		"unit_id", u.ID.String(),
		"service_id", line.ID.String(),
		"amount", line.Amount().String(),
	)
	return line, nil
}

// AddIncidentalCharge records an incidental item on the unit's open folio.
// The returned bool reports whether a quick-pick item merged into an
// existing line.
func (e *Engine) AddIncidentalCharge(ctx context.Context, unitID id.UnitID, in ChargeInput) (folio.IncidentalCharge, bool, error) {
	if err := e.check(in); err != nil {
		return folio.IncidentalCharge{}, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		line   folio.IncidentalCharge
		merged bool
	)
	u, _, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		occ, err := openFolio(u)
		if err != nil {
			return err
		}
		line, merged, err = occ.AddIncidentalCharge(folio.ChargeInput{
			Description: in.Description,
			UnitPrice:   withCurrency(in.UnitPrice, occ.Currency()),
			Quantity:    in.Quantity,
			RecordedBy:  in.RecordedBy,
			QuickPick:   in.QuickPick,
		}, e.now())
		return err
	})
	if err != nil {
		return folio.IncidentalCharge{}, false, err
	}

	added := line.UnitPrice.Multiply(in.Quantity)
	e.plugins.EmitChargeAdded(ctx, u.ID, line.Description, added)
	e.logger.Debug("incidental charge added",
		"unit_id", u.ID.String(),
		"charge_id", line.ID.String(),
		"merged", merged,
		"amount", added.String(),
	)
	return line, merged, nil
}

// RemoveCharge deletes a service or incidental line from the open folio.
func (e *Engine) RemoveCharge(ctx context.Context, unitID id.UnitID, lineID id.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		occ, err := openFolio(u)
		if err != nil {
			return err
		}
		return occ.RemoveCharge(lineID)
	})
	if err != nil {
		return err
	}

	e.plugins.EmitChargeRemoved(ctx, unitID, lineID)
	e.logger.Debug("folio line removed",
		"unit_id", unitID.String(),
		"line_id", lineID.String(),
	)
	return nil
}

// CurrentFolioTotal prices the unit's open folio as of now without
// changing anything.
func (e *Engine) CurrentFolioTotal(ctx context.Context, unitID id.UnitID, doc payment.DocumentType) (folio.Totals, error) {
	if doc == "" {
		doc = payment.DocumentReceipt
	}
	if !doc.Valid() {
		return folio.Totals{}, types.Invalid("document", fmt.Sprintf("unknown document type %q", doc))
	}

	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		return folio.Totals{}, err
	}
	occ, err := openFolio(u)
	if err != nil {
		return folio.Totals{}, err
	}
	return occ.ComputeTotal(doc, e.taxRate, e.now()), nil
}

// Settle closes the unit's folio: the payment snapshot is stored, the
// occupancy discarded and the unit left vacant-dirty.
func (e *Engine) Settle(ctx context.Context, unitID id.UnitID, in SettleInput) (*payment.Payment, error) {
	if err := e.check(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	u, err := e.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	from := u.Status
	occ, err := openFolio(u)
	if err != nil {
		return nil, err
	}

	now := e.now()
	p, err := occ.Settle(folio.SettleInput{
		UnitID:    u.ID,
		UnitLabel: u.Label,
		Method:    in.Method,
		Document:  in.Document,
		Company:   in.Company,
		TaxRate:   e.taxRate,
		At:        now,
	})
	if err != nil {
		return nil, err
	}
	if err := u.Transition("check out", room.StatusVacantDirty); err != nil {
		return nil, err
	}
	u.Occupancy = nil
	if err := u.Consistent(); err != nil {
		return nil, err
	}

	if err := e.store.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("lodging: store payment for unit %s: %w", u.Label, err)
	}
	u.Touch(now)
	if err := e.store.UpdateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("lodging: update unit %s: %w", unitID, err)
	}
	e.scanner.Forget(u.ID)

	e.emitStatus(ctx, u, from)
	e.plugins.EmitFolioSettled(ctx, p.Clone())
	e.logger.Info("folio settled",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"payment_id", p.ID.String(),
		"document", string(p.Document),
		"total", p.Total.String(),
	)
	return p, nil
}

// CheckOut settles the folio with a receipt.
func (e *Engine) CheckOut(ctx context.Context, unitID id.UnitID, method payment.Method) (*payment.Payment, error) {
	return e.Settle(ctx, unitID, SettleInput{Method: method, Document: payment.DocumentReceipt})
}

// MarkDueOut flags an occupied unit as leaving today.
func (e *Engine) MarkDueOut(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	return e.setStatus(ctx, unitID, "mark due out", room.StatusOccupied, room.StatusDueOut)
}

// ExtendStay moves the planned checkout of an open folio. A due-out unit
// whose checkout moves past the end of today returns to occupied.
func (e *Engine) ExtendStay(ctx context.Context, unitID id.UnitID, checkOut time.Time) (*room.Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	u, from, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		occ, err := openFolio(u)
		if err != nil {
			return err
		}
		if err := occ.Extend(checkOut); err != nil {
			return err
		}
		if u.Status == room.StatusDueOut && !checkOut.Before(endOfDay(now, e.location)) {
			return u.Transition("extend stay", room.StatusOccupied)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emitStatus(ctx, u, from)
	e.logger.Info("stay extended",
		"unit_id", u.ID.String(),
		"label", u.Label,
		"check_out", u.Occupancy.CheckOut,
	)
	return u, nil
}

// MarkCleaned returns a vacant-dirty unit to service.
func (e *Engine) MarkCleaned(ctx context.Context, unitID id.UnitID) (*room.Unit, error) {
	return e.setStatus(ctx, unitID, "mark cleaned", room.StatusVacantDirty, room.StatusVacantClean)
}

// SetOutOfOrder toggles a vacant unit in or out of service. Occupied units
// cannot be taken out of order.
func (e *Engine) SetOutOfOrder(ctx context.Context, unitID id.UnitID, outOfOrder bool) (*room.Unit, error) {
	if outOfOrder {
		return e.setStatus(ctx, unitID, "set out of order", room.StatusVacantClean, room.StatusOutOfOrder)
	}
	return e.setStatus(ctx, unitID, "return to service", room.StatusOutOfOrder, room.StatusVacantClean)
}

// setStatus moves a unit from status from to status to.
func (e *Engine) setStatus(ctx context.Context, unitID id.UnitID, action string, from, to room.Status) (*room.Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, prev, err := e.mutate(ctx, unitID, func(u *room.Unit) error {
		if err := u.Require(action, from); err != nil {
			return err
		}
		if err := u.Transition(action, to); err != nil {
			return err
		}
		return u.Consistent()
	})
	if err != nil {
		return nil, err
	}
	e.emitStatus(ctx, u, prev)
	return u, nil
}

// openFolio returns the unit's occupancy or ErrNoOccupancy.
func openFolio(u *room.Unit) (*folio.Occupancy, error) {
	if u.Occupancy == nil {
		return nil, fmt.Errorf("%w: unit %s", ErrNoOccupancy, u.Label)
	}
	return u.Occupancy, nil
}

func defaultBasis(u *room.Unit) rate.Basis {
	for _, b := range u.Mode.Bases() {
		if _, ok := u.Profile.Price(b); ok {
			return b
		}
	}
	return ""
}

func withCurrency(m types.Money, currency string) types.Money {
	if m.Currency == "" {
		m.Currency = currency
	}
	return m
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
}
