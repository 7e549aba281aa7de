package merch

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"carfest-ticketing/internal/models"
)

// ErrOutOfStock is returned when a sale would take stock below zero.
var ErrOutOfStock = errors.New("merchandise item out of stock")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateItem(ctx context.Context, item models.MerchItem) error {
	_, err := d.Bun.NewInsert().Model(&item).Exec(ctx)
	return err
}

func (d *DB) GetItemByID(ctx context.Context, itemID string) (*models.MerchItem, error) {
	var item models.MerchItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("item_id = ?", itemID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) ListItems(ctx context.Context) ([]models.MerchItem, error) {
	var items []models.MerchItem
	err := d.Bun.NewSelect().
		Model(&items).
		Order("name").
		Scan(ctx)
	return items, err
}

func (d *DB) UpdateItem(ctx context.Context, item models.MerchItem) error {
	item.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(&item).
		Column("name", "price", "stock", "updated_at").
		Where("item_id = ?", item.ItemID).
		Exec(ctx)
	return err
}

// RecordSale decrements stock with a guard at write time and writes the
// sale row in the same transaction, so stock can never oversell under
// concurrent booth sales.
func (d *DB) RecordSale(ctx context.Context, itemID string, qty int, totalPrice float64) (*models.MerchSale, error) {
	sale := models.MerchSale{
		ItemID:     itemID,
		Quantity:   qty,
		TotalPrice: totalPrice,
		SoldAt:     time.Now(),
	}

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.MerchItem)(nil)).
			Set("stock = stock - ?", qty).
			Set("updated_at = ?", time.Now()).
			Where("item_id = ?", itemID).
			Where("stock - ? >= 0", qty).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOutOfStock
		}

		_, err = tx.NewInsert().Model(&sale).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (d *DB) ListSales(ctx context.Context) ([]models.MerchSale, error) {
	var sales []models.MerchSale
	err := d.Bun.NewSelect().
		Model(&sales).
		Order("sold_at DESC").
		Scan(ctx)
	return sales, err
}
