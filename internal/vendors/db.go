package vendors

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"carfest-ticketing/internal/models"
)

// ErrAccessExhausted is returned when the bounded increment finds no
// allotment left at write time.
var ErrAccessExhausted = errors.New("vendor access allotment exhausted")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateVendor(ctx context.Context, vendor models.Vendor) error {
	_, err := d.Bun.NewInsert().Model(&vendor).Exec(ctx)
	return err
}

func (d *DB) GetVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := d.Bun.NewSelect().
		Model(&vendor).
		Where("vendor_id = ?", vendorID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (d *DB) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	err := d.Bun.NewSelect().
		Model(&out).
		Order("booth_name").
		Scan(ctx)
	return out, err
}

func (d *DB) UpdateVendorStatus(ctx context.Context, vendorID, status string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Vendor)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("vendor_id = ?", vendorID).
		Exec(ctx)
	return err
}

// ConsumeAccess takes one entry of the vendor's allotment. The increment
// is guarded against the cap at write time, so concurrent scans cannot
// push used past max; the access-log row is numbered with the new count
// and committed with the increment.
func (d *DB) ConsumeAccess(ctx context.Context, vendorID, location string) (int, error) {
	var newCount int
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Vendor)(nil)).
			Set("used_access_count = used_access_count + 1").
			Set("updated_at = ?", time.Now()).
			Where("vendor_id = ?", vendorID).
			Where("used_access_count < max_access_count").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAccessExhausted
		}

		var vendor models.Vendor
		if err := tx.NewSelect().
			Model(&vendor).
			Where("vendor_id = ?", vendorID).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		newCount = vendor.UsedAccessCount

		accessLog := models.VendorAccessLog{
			VendorID:     vendorID,
			AccessNumber: newCount,
			Location:     location,
			AccessedAt:   time.Now(),
		}
		_, err = tx.NewInsert().Model(&accessLog).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

func (d *DB) ListAccessLogs(ctx context.Context, vendorID string) ([]models.VendorAccessLog, error) {
	var logs []models.VendorAccessLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Where("vendor_id = ?", vendorID).
		Order("access_number").
		Scan(ctx)
	return logs, err
}
