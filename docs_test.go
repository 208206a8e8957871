package lodging_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/lodging"
	"github.com/xraph/lodging/payment"
	"github.com/xraph/lodging/rate"
	"github.com/xraph/lodging/room"
	"github.com/xraph/lodging/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		eng := lodging.New(store,
			lodging.WithLogger(slog.Default()),
			lodging.WithTaxRate(decimal.RequireFromString("0.08")),
			lodging.WithScanInterval(time.Minute),
		)

		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		b, err := eng.CreateBuilding(ctx, lodging.BuildingInput{Name: "Riverside"})
		if err != nil {
			t.Fatal(err)
		}
		f, err := eng.CreateFloor(ctx, b.ID, lodging.FloorInput{Name: "Ground", Level: 0})
		if err != nil {
			t.Fatal(err)
		}
		u, err := eng.CreateUnit(ctx, f.ID, lodging.UnitInput{
			Label:   "101",
			Mode:    room.ModeHotel,
			Profile: rate.Profile{Nightly: lodging.VND(450_000)},
		})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := eng.CheckIn(ctx, u.ID, lodging.CheckInInput{
			GuestName:  "Nguyen Van A",
			GuestPhone: "0901234567",
			CheckOut:   time.Now().Add(48 * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}

		p, err := eng.CheckOut(ctx, u.ID, payment.MethodCash)
		if err != nil {
			t.Fatal(err)
		}
		if p.Total.Amount != 900_000 {
			t.Errorf("total = %s, want 900.000 ₫", p.Total)
		}
	})
}
