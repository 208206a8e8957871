package payment

import (
	"context"
	"time"

	"github.com/xraph/lodging/id"
)

type Store interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
	ListPayments(ctx context.Context, opts ListOpts) ([]*Payment, error)
}

// ListOpts filters payment history. Zero values disable a filter; the
// time window is [Start, End) over PaidAt.
type ListOpts struct {
	UnitID id.UnitID
	Start  time.Time
	End    time.Time
	Limit  int
	Offset int
}

// Matches reports whether p passes the unit and time filters.
func (o ListOpts) Matches(p *Payment) bool {
	if !o.UnitID.IsNil() && p.UnitID.String() != o.UnitID.String() {
		return false
	}
	if !o.Start.IsZero() && p.PaidAt.Before(o.Start) {
		return false
	}
	if !o.End.IsZero() && !p.PaidAt.Before(o.End) {
		return false
	}
	return true
}
