package orders

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"carfest-ticketing/internal/models"
)

// ErrNotPending is returned when a completion races another and loses:
// the order was no longer PENDING at write time.
var ErrNotPending = errors.New("order is not pending")

// ErrNotCompleted is returned when a refund targets an order that never
// completed.
var ErrNotCompleted = errors.New("order is not completed")

// InventoryLedger is the slice of the inventory repo the issuer needs.
type InventoryLedger interface {
	ReserveUnits(ctx context.Context, idb bun.IDB, tierID string, qty int) error
	ReleaseUnits(ctx context.Context, idb bun.IDB, tierID string, qty int) error
}

type DB struct {
	Bun       *bun.DB
	Inventory InventoryLedger
}

func (d *DB) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := d.Bun.NewInsert().Model(&order).Exec(ctx)
	return err
}

func (d *DB) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_number = ?", orderNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := d.Bun.NewSelect().
		Model(&out).
		Order("created_at DESC").
		Scan(ctx)
	return out, err
}

func (d *DB) GetTicketsByOrder(ctx context.Context, orderNumber string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_number = ?", orderNumber).
		Order("issued_at").
		Scan(ctx)
	return tickets, err
}

// CompleteOrder flips the order to COMPLETED, reserves tier units and
// writes the ticket rows, all inside one transaction. The status flip is
// a conditional update checked by affected-row count, so the order can
// complete at most once even under concurrent completions; the capacity
// re-check in ReserveUnits runs in the same transaction, so tickets and
// sold units can never diverge.
func (d *DB) CompleteOrder(ctx context.Context, order models.Order, paymentRef string, tickets []models.Ticket) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderStatusCompleted).
			Set("payment_ref = ?", paymentRef).
			Set("completed_at = ?", time.Now()).
			Where("order_number = ?", order.OrderNumber).
			Where("status = ?", models.OrderStatusPending).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotPending
		}

		if err := d.Inventory.ReserveUnits(ctx, tx, order.TierID, order.Quantity); err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(&tickets).Exec(ctx)
		return err
	})
}

// RefundOrder flips a COMPLETED order to REFUNDED and gives its units
// back in the same transaction.
func (d *DB) RefundOrder(ctx context.Context, order models.Order) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderStatusRefunded).
			Where("order_number = ?", order.OrderNumber).
			Where("status = ?", models.OrderStatusCompleted).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotCompleted
		}

		return d.Inventory.ReleaseUnits(ctx, tx, order.TierID, order.Quantity)
	})
}

// CancelOrder flips a PENDING order to CANCELLED. Pending orders own no
// units, so nothing is released.
func (d *DB) CancelOrder(ctx context.Context, orderNumber string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.OrderStatusCancelled).
		Where("order_number = ?", orderNumber).
		Where("status = ?", models.OrderStatusPending).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotPending
	}
	return nil
}
