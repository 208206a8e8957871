// Package folio implements the guest bill for hotel and guesthouse stays.
//
// An Occupancy is opened at check-in and accumulates a room charge (unit
// rate × duration), free-form service lines and incidental charges. At
// settlement it is snapshotted into an immutable payment.Payment and
// discarded.
package folio

import (
	"time"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/types"
)

type Occupancy struct {
	ID            id.OccupancyID     `json:"id"`
	GuestName     string             `json:"guest_name"`
	GuestPhone    string             `json:"guest_phone"`
	GuestIDNumber string             `json:"guest_id_number,omitempty"`
	Guests        int                `json:"guests"`
	CheckIn       time.Time          `json:"check_in"`
	CheckOut      time.Time          `json:"check_out"`
	Basis         rate.Basis         `json:"basis"`
	UnitRate      types.Money        `json:"unit_rate"`
	Deposit       types.Money        `json:"deposit"`
	Services      []Service          `json:"services,omitempty"`
	Incidentals   []IncidentalCharge `json:"incidentals,omitempty"`
	Notes         string             `json:"notes,omitempty"`
}

type Service struct {
	ID        id.ServiceID `json:"id"`
	Name      string       `json:"name"`
	UnitPrice types.Money  `json:"unit_price"`
	Quantity  int64        `json:"quantity"`
	AddedAt   time.Time    `json:"added_at"`
}

// Amount is unit price × quantity.
func (s Service) Amount() types.Money { return s.UnitPrice.Multiply(s.Quantity) }

// IncidentalCharge is an ad-hoc item billed to the folio (minibar, laundry).
// QuickPick marks items chosen from a preset list; those merge by
// description instead of adding a second row.
type IncidentalCharge struct {
	ID          id.ChargeID `json:"id"`
	Description string      `json:"description"`
	UnitPrice   types.Money `json:"unit_price"`
	Quantity    int64       `json:"quantity"`
	RecordedAt  time.Time   `json:"recorded_at"`
	RecordedBy  string      `json:"recorded_by,omitempty"`
	QuickPick   bool        `json:"quick_pick,omitempty"`
}

func (c IncidentalCharge) Amount() types.Money { return c.UnitPrice.Multiply(c.Quantity) }

// Totals is the computed state of a folio at a point in time.
type Totals struct {
	Basis         rate.Basis  `json:"basis"`
	DurationUnits int64       `json:"duration_units"`
	RoomCharge    types.Money `json:"room_charge"`
	Services      types.Money `json:"services"`
	Incidentals   types.Money `json:"incidentals"`
	Subtotal      types.Money `json:"subtotal"`
	Tax           types.Money `json:"tax"`
	Total         types.Money `json:"total"`
}

// Clone returns a deep copy.
func (o *Occupancy) Clone() *Occupancy {
	if o == nil {
		return nil
	}
	c := *o
	c.Services = append([]Service(nil), o.Services...)
	c.Incidentals = append([]IncidentalCharge(nil), o.Incidentals...)
	return &c
}

// Currency is the currency every amount on the folio must share.
func (o *Occupancy) Currency() string { return o.UnitRate.Currency }
