// Package lodging is a room lifecycle and billing engine for hotels,
// guesthouses and boarding houses.
//
// Lodging is designed as a library, not a service. Import it into the
// application that owns the front desk and give it a store. It provides:
//
//   - A unit status state machine (vacant-clean, occupied, due-out,
//     vacant-dirty, out-of-order) with a deletion guard
//   - Guest folios billed nightly, hourly or daily with services,
//     incidental charges and receipt or invoice settlement
//   - Boarding-house tenancies with a month-keyed ledger of rent and
//     metered electricity and water
//   - A background checkout alert scanner
//   - Day, month and year revenue reports
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/lodging"
//	    "github.com/xraph/lodging/store/memory"
//	)
//
//	eng := lodging.New(memory.New(),
//	    lodging.WithTaxRate(decimal.RequireFromString("0.08")),
//	)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
//	u, err := eng.CheckIn(ctx, unitID, lodging.CheckInInput{
//	    GuestName:  "Nguyen Van A",
//	    GuestPhone: "0901234567",
//	    CheckOut:   time.Now().Add(48 * time.Hour),
//	})
//
// # Units and modes
//
// Every unit bills under one mode. Hotel units are let by the night,
// guesthouse units by the hour or day, boarding units by the month. A unit
// holds at most one stay: an occupancy (hotel, guesthouse) or a tenancy
// (boarding), and its status always agrees with whether it holds one.
//
// # Money
//
// Amounts are integers in the currency's smallest unit (dong for VND,
// cents for USD). Meter readings and the tax rate are decimals; products
// are rounded half away from zero to the smallest unit.
//
// # Concurrency
//
// The engine serializes mutations. Each operation reads a copy of the unit,
// validates everything and writes once, so a failed operation leaves the
// store untouched. The checkout scanner runs on a schedule, reads copies
// and never writes.
//
// # TypeID
//
// All entities use TypeID identifiers:
//
//	unit_01h2xcejqtf2nbrexx3vqjhp41  // Unit ID
//	pay_01h455vb4pex5vsknk084sn02q   // Payment ID
package lodging
