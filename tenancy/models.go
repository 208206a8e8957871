// Package tenancy implements boarding-house billing: a tenancy with a
// month-keyed ledger holding at most one MonthlyRental per calendar month.
package tenancy

import (
	"time"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/meter"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/types"
)

type Tenancy struct {
	ID               id.TenancyID `json:"id"`
	TenantName       string       `json:"tenant_name"`
	TenantPhone      string       `json:"tenant_phone"`
	TenantIDNumber   string       `json:"tenant_id_number,omitempty"`
	MoveIn           time.Time    `json:"move_in"`
	Deposit          types.Money  `json:"deposit"`
	MonthlyRent      types.Money  `json:"monthly_rent"`
	ElectricityPrice types.Money  `json:"electricity_price"` // per kWh
	WaterPrice       types.Money  `json:"water_price"`       // per m³
	InternetFee      types.Money  `json:"internet_fee"`
	Ledger           Ledger       `json:"ledger"`
}

// OtherCharge is a named ad-hoc amount on a monthly bill (parking, trash).
type OtherCharge struct {
	Name   string      `json:"name"`
	Amount types.Money `json:"amount"`
}

// MonthlyRental is one month's ledger entry. PaidAmount is always derived
// from the components, never entered.
type MonthlyRental struct {
	ID              id.RentalID    `json:"id"`
	Month           types.Month    `json:"month"`
	Rent            types.Money    `json:"rent"`
	Electricity     *meter.Reading `json:"electricity,omitempty"`
	Water           *meter.Reading `json:"water,omitempty"`
	ElectricityCost types.Money    `json:"electricity_cost"`
	WaterCost       types.Money    `json:"water_cost"`
	Internet        types.Money    `json:"internet"`
	Others          []OtherCharge  `json:"others,omitempty"`
	Total           types.Money    `json:"total"`
	Paid            bool           `json:"paid"`
	PaidDate        *time.Time     `json:"paid_date,omitempty"`
	PaidAmount      types.Money    `json:"paid_amount"`
	Method          payment.Method `json:"method,omitempty"`
	RecordedAt      time.Time      `json:"recorded_at"`
}

// OtherTotal sums the named ad-hoc charges.
func (r MonthlyRental) OtherTotal() types.Money {
	sum := types.Zero(r.Rent.Currency)
	for _, o := range r.Others {
		sum = sum.Add(o.Amount)
	}
	return sum
}

// MonthStatus distinguishes a month that was never billed from one that was
// billed but not paid.
type MonthStatus string

const (
	MonthNeverBilled MonthStatus = "never_billed"
	MonthUnpaid      MonthStatus = "unpaid"
	MonthPaid        MonthStatus = "paid"
)

// Clone returns a deep copy, ledger included.
func (t *Tenancy) Clone() *Tenancy {
	if t == nil {
		return nil
	}
	c := *t
	c.Ledger = t.Ledger.clone()
	return &c
}

func (r MonthlyRental) clone() MonthlyRental {
	if r.Electricity != nil {
		e := *r.Electricity
		r.Electricity = &e
	}
	if r.Water != nil {
		w := *r.Water
		r.Water = &w
	}
	if r.PaidDate != nil {
		d := *r.PaidDate
		r.PaidDate = &d
	}
	r.Others = append([]OtherCharge(nil), r.Others...)
	return r
}
