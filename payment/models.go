// Package payment holds the immutable records produced when a folio is
// settled. A Payment is a snapshot: nothing on it changes after creation.
package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging/id"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/types"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
	MethodQR           Method = "qr"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodQR:
		return true
	}
	return false
}

// DocumentType selects the document issued at settlement. Receipts carry no
// tax; invoices carry tax at the configured rate and name a company.
type DocumentType string

const (
	DocumentReceipt DocumentType = "receipt"
	DocumentInvoice DocumentType = "invoice"
)

func (d DocumentType) Valid() bool {
	return d == DocumentReceipt || d == DocumentInvoice
}

// CompanyInfo identifies the company billed on an invoice.
type CompanyInfo struct {
	Name    string `json:"name"            bson:"name"`
	TaxCode string `json:"tax_code"        bson:"tax_code"`
	Address string `json:"address"         bson:"address"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
}

// Validate requires name, tax code and address.
func (c *CompanyInfo) Validate() error {
	if c == nil {
		return types.Invalid("company", "company information is required for an invoice")
	}
	switch {
	case strings.TrimSpace(c.Name) == "":
		return types.Invalid("company.name", "is required")
	case strings.TrimSpace(c.TaxCode) == "":
		return types.Invalid("company.tax_code", "is required")
	case strings.TrimSpace(c.Address) == "":
		return types.Invalid("company.address", "is required")
	}
	return nil
}

type LineItemType string

const (
	LineItemRoom       LineItemType = "room"
	LineItemService    LineItemType = "service"
	LineItemIncidental LineItemType = "incidental"
)

type LineItem struct {
	ID          id.LineItemID `json:"id"`
	Type        LineItemType  `json:"type"`
	Description string        `json:"description"`
	Quantity    int64         `json:"quantity"`
	UnitAmount  types.Money   `json:"unit_amount"`
	Amount      types.Money   `json:"amount"`
}

// Payment is the settled snapshot of a guest folio.
type Payment struct {
	types.Entity
	ID            id.PaymentID      `json:"id"`
	UnitID        id.UnitID         `json:"unit_id"`
	UnitLabel     string            `json:"unit_label"`
	OccupancyID   id.OccupancyID    `json:"occupancy_id"`
	GuestName     string            `json:"guest_name"`
	GuestPhone    string            `json:"guest_phone"`
	CheckIn       time.Time         `json:"check_in"`
	CheckOut      time.Time         `json:"check_out"`
	Basis         rate.Basis        `json:"basis"`
	DurationUnits int64             `json:"duration_units"`
	Currency      string            `json:"currency"`
	LineItems     []LineItem        `json:"line_items"`
	RoomCharge    types.Money       `json:"room_charge"`
	Services      types.Money       `json:"services"`
	Incidentals   types.Money       `json:"incidentals"`
	Subtotal      types.Money       `json:"subtotal"`
	TaxRate       decimal.Decimal   `json:"tax_rate"`
	Tax           types.Money       `json:"tax"`
	Total         types.Money       `json:"total"`
	Deposit       types.Money       `json:"deposit"`
	Document      DocumentType      `json:"document"`
	Company       *CompanyInfo      `json:"company,omitempty"`
	Method        Method            `json:"method"`
	QRReference   string            `json:"qr_reference,omitempty"`
	PaidAt        time.Time         `json:"paid_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// BalanceDue is the total less any deposit taken at check-in.
func (p *Payment) BalanceDue() types.Money {
	return p.Total.Subtract(p.Deposit)
}

// Other is the part of the subtotal that is neither room nor tax.
func (p *Payment) Other() types.Money {
	return p.Services.Add(p.Incidentals)
}

// Clone returns a deep copy of the payment.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.LineItems = append([]LineItem(nil), p.LineItems...)
	if p.Company != nil {
		co := *p.Company
		c.Company = &co
	}
	if p.Metadata != nil {
		c.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// QRPayload builds the informational transfer reference shown next to a QR
// code. It is never treated as proof of payment.
func QRPayload(paymentID id.PaymentID, amount types.Money, unitLabel string) string {
	return fmt.Sprintf("LODGING|%s|%s|%s|%s",
		paymentID.String(), amount.FormatMajor(), strings.ToUpper(amount.Currency), unitLabel)
}
