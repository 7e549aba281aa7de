package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"carfest-ticketing/internal/models"
)

// ErrCapacityExceeded is returned when a reservation would push a tier's
// sold units past its capacity.
var ErrCapacityExceeded = errors.New("tier capacity exceeded")

// ErrReleaseRefused is returned when a release would drop a tier's sold
// units below zero, e.g. after an admin shrank the tier.
var ErrReleaseRefused = errors.New("unit release refused")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTier(ctx context.Context, tier models.TicketTier, prices []models.TierPrice) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&tier).Exec(ctx); err != nil {
			return err
		}
		if len(prices) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&prices).Exec(ctx)
		return err
	})
}

func (d *DB) GetTierByID(ctx context.Context, tierID string) (*models.TicketTier, error) {
	var tier models.TicketTier
	err := d.Bun.NewSelect().
		Model(&tier).
		Where("tier_id = ?", tierID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (d *DB) ListTiers(ctx context.Context) ([]models.TicketTier, error) {
	var tiers []models.TicketTier
	err := d.Bun.NewSelect().
		Model(&tiers).
		Order("name").
		Scan(ctx)
	return tiers, err
}

func (d *DB) UpdateTier(ctx context.Context, tier models.TicketTier) error {
	tier.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(&tier).
		Column("name", "total_units", "updated_at").
		Where("tier_id = ?", tier.TierID).
		Exec(ctx)
	return err
}

// PriceFor resolves the price table cell for a (phase, group size) pair.
// A missing row means the tier is not offered in that combination.
func (d *DB) PriceFor(ctx context.Context, tierID, phase, groupSize string) (float64, bool, error) {
	var price models.TierPrice
	err := d.Bun.NewSelect().
		Model(&price).
		Where("tier_id = ?", tierID).
		Where("phase = ?", phase).
		Where("group_size = ?", groupSize).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price.Price, true, nil
}

// ReserveUnits moves sold_units up by qty in one guarded update. The
// capacity check happens at write time, so two concurrent completions
// cannot both take the last units.
func (d *DB) ReserveUnits(ctx context.Context, idb bun.IDB, tierID string, qty int) error {
	if idb == nil {
		idb = d.Bun
	}
	res, err := idb.NewUpdate().
		Model((*models.TicketTier)(nil)).
		Set("sold_units = sold_units + ?", qty).
		Set("updated_at = ?", time.Now()).
		Where("tier_id = ?", tierID).
		Where("sold_units + ? <= total_units", qty).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

// ReleaseUnits gives qty units back on refund or cancellation, guarded so
// sold_units never goes below zero. A refused release surfaces as
// ErrReleaseRefused so the caller's transaction rolls back instead of
// reporting a refund whose units never came back.
func (d *DB) ReleaseUnits(ctx context.Context, idb bun.IDB, tierID string, qty int) error {
	if idb == nil {
		idb = d.Bun
	}
	res, err := idb.NewUpdate().
		Model((*models.TicketTier)(nil)).
		Set("sold_units = sold_units - ?", qty).
		Set("updated_at = ?", time.Now()).
		Where("tier_id = ?", tierID).
		Where("sold_units - ? >= 0", qty).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReleaseRefused
	}
	return nil
}
