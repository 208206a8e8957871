package lodging

import (
	"context"
	"fmt"

	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/revenue"
	"github.com/xraph/lodging/room"
)

// RevenueFor builds the revenue report for a period from a fresh read of
// payment history and boarding-unit ledgers.
func (e *Engine) RevenueFor(ctx context.Context, p revenue.Period) (*revenue.Report, error) {
	if !p.End.After(p.Start) {
		return nil, ValidationError{Field: "period", Message: "end must be after start"}
	}

	payments, err := e.store.ListPayments(ctx, payment.ListOpts{Start: p.Start, End: p.End})
	if err != nil {
		return nil, fmt.Errorf("lodging: list payments for %s: %w", p, err)
	}
	units, err := e.store.ListUnits(ctx, room.ListOpts{Mode: room.ModeBoarding})
	if err != nil {
		return nil, fmt.Errorf("lodging: list units for %s: %w", p, err)
	}

	r := revenue.Aggregate(p, e.currency, e.now(), payments, units)
	if r.Skipped > 0 {
		e.logger.Warn("revenue report skipped foreign-currency records",
			"period", p.String(),
			"currency", e.currency,
			"skipped", r.Skipped,
		)
	}
	return r, nil
}

// RevenueForKey parses a period key ("2025-01-31", "2025-01" or "2025") in
// the engine's location and builds its report.
func (e *Engine) RevenueForKey(ctx context.Context, g revenue.Granularity, key string) (*revenue.Report, error) {
	p, err := revenue.Parse(g, key, e.location)
	if err != nil {
		return nil, err
	}
	return e.RevenueFor(ctx, p)
}
