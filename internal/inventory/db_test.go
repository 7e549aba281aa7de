package inventory_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/models"
)

func setupTestDB(t *testing.T) *inventory.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.TicketTier)(nil), (*models.TierPrice)(nil)); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	return &inventory.DB{Bun: bunDB}
}

func seedTier(t *testing.T, db *inventory.DB, tierID string, total, sold int) {
	t.Helper()
	tier := models.TicketTier{
		TierID:     tierID,
		Name:       "General Admission",
		TotalUnits: total,
		SoldUnits:  sold,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.CreateTier(context.Background(), tier, nil); err != nil {
		t.Fatalf("Failed to seed tier: %v", err)
	}
}

func TestCreateAndGetTier(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tier := models.TicketTier{
		TierID:     "tier-vip",
		Name:       "VIP Paddock",
		TotalUnits: 200,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	prices := []models.TierPrice{
		{TierID: "tier-vip", Phase: models.PhasePresale, GroupSize: models.GroupSingle, Price: 89.0},
		{TierID: "tier-vip", Phase: models.PhaseOnsale, GroupSize: models.GroupSingle, Price: 109.0},
	}

	if err := db.CreateTier(ctx, tier, prices); err != nil {
		t.Fatalf("Failed to create tier: %v", err)
	}

	got, err := db.GetTierByID(ctx, "tier-vip")
	if err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	if got.Name != "VIP Paddock" {
		t.Errorf("Expected name VIP Paddock, got %s", got.Name)
	}
	if got.SoldUnits != 0 {
		t.Errorf("Expected 0 sold units, got %d", got.SoldUnits)
	}
}

func TestPriceFor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tier := models.TicketTier{TierID: "tier-ga", Name: "General", TotalUnits: 100, CreatedAt: time.Now()}
	prices := []models.TierPrice{
		{TierID: "tier-ga", Phase: models.PhasePresale, GroupSize: models.GroupOf4, Price: 120.0},
	}
	if err := db.CreateTier(ctx, tier, prices); err != nil {
		t.Fatalf("Failed to create tier: %v", err)
	}

	price, ok, err := db.PriceFor(ctx, "tier-ga", models.PhasePresale, models.GroupOf4)
	if err != nil {
		t.Fatalf("PriceFor failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected price row to exist")
	}
	if price != 120.0 {
		t.Errorf("Expected price 120.0, got %f", price)
	}

	// The tier is not offered onsale; the lookup reports absence, not an
	// error.
	_, ok, err = db.PriceFor(ctx, "tier-ga", models.PhaseOnsale, models.GroupOf4)
	if err != nil {
		t.Fatalf("PriceFor failed: %v", err)
	}
	if ok {
		t.Error("Expected no price row for onsale phase")
	}
}

func TestPriceForStoreError(t *testing.T) {
	db := setupTestDB(t)
	db.Bun.Close()

	// A failing store must surface as an error, not as "tier not
	// offered".
	_, ok, err := db.PriceFor(context.Background(), "tier-ga", models.PhasePresale, models.GroupOf4)
	if err == nil {
		t.Fatal("Expected an error from a closed store")
	}
	if ok {
		t.Error("Expected ok=false on store error")
	}
}

func TestReserveUnitsWithinCapacity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTier(t, db, "tier-ga", 10, 0)

	if err := db.ReserveUnits(ctx, nil, "tier-ga", 4); err != nil {
		t.Fatalf("Failed to reserve units: %v", err)
	}

	tier, err := db.GetTierByID(ctx, "tier-ga")
	if err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	if tier.SoldUnits != 4 {
		t.Errorf("Expected 4 sold units, got %d", tier.SoldUnits)
	}
}

func TestReserveUnitsAtCapacity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTier(t, db, "tier-ga", 10, 9)

	err := db.ReserveUnits(ctx, nil, "tier-ga", 2)
	if !errors.Is(err, inventory.ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}

	// The refused reservation must leave sold units untouched.
	tier, err := db.GetTierByID(ctx, "tier-ga")
	if err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	if tier.SoldUnits != 9 {
		t.Errorf("Expected 9 sold units after refused reservation, got %d", tier.SoldUnits)
	}

	// The last unit is still takeable.
	if err := db.ReserveUnits(ctx, nil, "tier-ga", 1); err != nil {
		t.Fatalf("Failed to reserve last unit: %v", err)
	}
}

func TestReleaseUnits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTier(t, db, "tier-ga", 10, 5)

	if err := db.ReleaseUnits(ctx, nil, "tier-ga", 2); err != nil {
		t.Fatalf("Failed to release units: %v", err)
	}

	tier, err := db.GetTierByID(ctx, "tier-ga")
	if err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	if tier.SoldUnits != 3 {
		t.Errorf("Expected 3 sold units, got %d", tier.SoldUnits)
	}

	// A release past zero is refused, not clamped: the caller has to
	// know the units never came back.
	if err := db.ReleaseUnits(ctx, nil, "tier-ga", 10); !errors.Is(err, inventory.ErrReleaseRefused) {
		t.Fatalf("Expected ErrReleaseRefused, got %v", err)
	}
	tier, _ = db.GetTierByID(ctx, "tier-ga")
	if tier.SoldUnits != 3 {
		t.Errorf("Expected sold units unchanged at 3, got %d", tier.SoldUnits)
	}
}

func TestUpdateTier(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTier(t, db, "tier-ga", 10, 2)

	tier, err := db.GetTierByID(ctx, "tier-ga")
	if err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	tier.Name = "General Admission (Sat)"
	tier.TotalUnits = 15

	if err := db.UpdateTier(ctx, *tier); err != nil {
		t.Fatalf("Failed to update tier: %v", err)
	}

	got, _ := db.GetTierByID(ctx, "tier-ga")
	if got.Name != "General Admission (Sat)" {
		t.Errorf("Expected updated name, got %s", got.Name)
	}
	if got.TotalUnits != 15 {
		t.Errorf("Expected 15 total units, got %d", got.TotalUnits)
	}
	if got.SoldUnits != 2 {
		t.Errorf("Expected sold units untouched at 2, got %d", got.SoldUnits)
	}
}
