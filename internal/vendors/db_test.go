package vendors_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/vendors"
)

func setupTestDB(t *testing.T) *vendors.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Vendor)(nil), (*models.VendorAccessLog)(nil)); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	return &vendors.DB{Bun: bunDB}
}

func seedVendor(t *testing.T, db *vendors.DB, maxAccess int) models.Vendor {
	t.Helper()
	vendor := models.Vendor{
		VendorID:       "VND-000123",
		BoothName:      "Turbo Tacos",
		Category:       "food",
		ContactName:    "Sam Ortiz",
		ContactEmail:   "sam@turbotacos.example",
		Status:         models.VendorStatusConfirmed,
		MaxAccessCount: maxAccess,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.CreateVendor(context.Background(), vendor); err != nil {
		t.Fatalf("Failed to seed vendor: %v", err)
	}
	return vendor
}

func TestCreateAndGetVendor(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db, 5)

	got, err := db.GetVendorByID(context.Background(), vendor.VendorID)
	if err != nil {
		t.Fatalf("Failed to get vendor: %v", err)
	}
	if got.BoothName != "Turbo Tacos" {
		t.Errorf("Expected booth name Turbo Tacos, got %s", got.BoothName)
	}
	if got.UsedAccessCount != 0 {
		t.Errorf("Expected 0 used access, got %d", got.UsedAccessCount)
	}
}

func TestUpdateVendorStatus(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db, 5)
	ctx := context.Background()

	if err := db.UpdateVendorStatus(ctx, vendor.VendorID, models.VendorStatusSetupComplete); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	got, _ := db.GetVendorByID(ctx, vendor.VendorID)
	if got.Status != models.VendorStatusSetupComplete {
		t.Errorf("Expected SETUP_COMPLETE, got %s", got.Status)
	}
}

func TestConsumeAccessBounded(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db, 2)
	ctx := context.Background()

	first, err := db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate")
	if err != nil {
		t.Fatalf("First access failed: %v", err)
	}
	if first != 1 {
		t.Errorf("Expected access count 1, got %d", first)
	}

	second, err := db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate")
	if err != nil {
		t.Fatalf("Second access failed: %v", err)
	}
	if second != 2 {
		t.Errorf("Expected access count 2, got %d", second)
	}

	// The allotment is spent; the guarded increment refuses.
	_, err = db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate")
	if !errors.Is(err, vendors.ErrAccessExhausted) {
		t.Fatalf("Expected ErrAccessExhausted, got %v", err)
	}

	got, _ := db.GetVendorByID(ctx, vendor.VendorID)
	if got.UsedAccessCount != 2 {
		t.Errorf("Expected used count to stay at 2, got %d", got.UsedAccessCount)
	}
}

func TestConsumeAccessWritesNumberedLog(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db, 5)
	ctx := context.Background()

	if _, err := db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate"); err != nil {
		t.Fatalf("First access failed: %v", err)
	}
	if _, err := db.ConsumeAccess(ctx, vendor.VendorID, "service-entrance"); err != nil {
		t.Fatalf("Second access failed: %v", err)
	}

	logs, err := db.ListAccessLogs(ctx, vendor.VendorID)
	if err != nil {
		t.Fatalf("Failed to list access logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("Expected 2 access logs, got %d", len(logs))
	}
	if logs[0].AccessNumber != 1 || logs[1].AccessNumber != 2 {
		t.Errorf("Expected access numbers 1 and 2, got %d and %d", logs[0].AccessNumber, logs[1].AccessNumber)
	}
	if logs[1].Location != "service-entrance" {
		t.Errorf("Expected location service-entrance, got %s", logs[1].Location)
	}
}

func TestExhaustedAccessLeavesNoExtraLog(t *testing.T) {
	db := setupTestDB(t)
	vendor := seedVendor(t, db, 1)
	ctx := context.Background()

	if _, err := db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate"); err != nil {
		t.Fatalf("First access failed: %v", err)
	}
	if _, err := db.ConsumeAccess(ctx, vendor.VendorID, "vendor-gate"); err == nil {
		t.Fatal("Expected exhausted access to fail")
	}

	logs, _ := db.ListAccessLogs(ctx, vendor.VendorID)
	if len(logs) != 1 {
		t.Errorf("Expected 1 access log after refused entry, got %d", len(logs))
	}
}
