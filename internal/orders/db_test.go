package orders_test

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
	"carfest-ticketing/internal/orders"
)

func setupTestDB(t *testing.T) *orders.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	err = bunDB.ResetModel(ctx, (*models.TicketTier)(nil), (*models.Order)(nil), (*models.Ticket)(nil))
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })

	return &orders.DB{Bun: bunDB, Inventory: &inventory.DB{Bun: bunDB}}
}

func seedTierAndOrder(t *testing.T, db *orders.DB, totalUnits, qty int) models.Order {
	t.Helper()
	ctx := context.Background()

	tier := models.TicketTier{
		TierID:     "tier-ga",
		Name:       "General Admission",
		TotalUnits: totalUnits,
		CreatedAt:  time.Now(),
	}
	if _, err := db.Bun.NewInsert().Model(&tier).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed tier: %v", err)
	}

	order := models.Order{
		OrderNumber:   "CF-1700000000-0001",
		TierID:        "tier-ga",
		GroupSize:     models.GroupOf2,
		Quantity:      qty,
		TotalPrice:    90.0,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.OrderStatusPending,
		CustomerName:  "Dana Reeves",
		CustomerEmail: "dana@example.com",
		CreatedAt:     time.Now(),
	}
	if err := db.CreateOrder(ctx, order); err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func ticketsFor(order models.Order) []models.Ticket {
	tickets := make([]models.Ticket, 0, order.Quantity)
	for i := 0; i < order.Quantity; i++ {
		tickets = append(tickets, models.Ticket{
			TicketCode:  order.OrderNumber + "-T" + string(rune('A'+i)),
			OrderNumber: order.OrderNumber,
			TierID:      order.TierID,
			QRPayload:   "payload-" + string(rune('A'+i)),
			ScanStatus:  models.ScanStatusPending,
			IssuedAt:    time.Now(),
		})
	}
	return tickets
}

func TestCompleteOrderIssuesTickets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	order := seedTierAndOrder(t, db, 10, 2)

	err := db.CompleteOrder(ctx, order, "pi_test_123", ticketsFor(order))
	if err != nil {
		t.Fatalf("Failed to complete order: %v", err)
	}

	got, err := db.GetOrderByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("Failed to get order: %v", err)
	}
	if got.Status != models.OrderStatusCompleted {
		t.Errorf("Expected status COMPLETED, got %s", got.Status)
	}
	if got.PaymentRef != "pi_test_123" {
		t.Errorf("Expected payment ref pi_test_123, got %s", got.PaymentRef)
	}
	if got.CompletedAt.IsZero() {
		t.Error("Expected completed_at to be set")
	}

	tickets, err := db.GetTicketsByOrder(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("Failed to get tickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Errorf("Expected 2 tickets, got %d", len(tickets))
	}
	for _, ticket := range tickets {
		if ticket.ScanStatus != models.ScanStatusPending {
			t.Errorf("Expected ticket %s to be PENDING, got %s", ticket.TicketCode, ticket.ScanStatus)
		}
	}

	var tier models.TicketTier
	if err := db.Bun.NewSelect().Model(&tier).Where("tier_id = ?", order.TierID).Scan(ctx); err != nil {
		t.Fatalf("Failed to get tier: %v", err)
	}
	if tier.SoldUnits != 2 {
		t.Errorf("Expected 2 sold units, got %d", tier.SoldUnits)
	}
}

func TestCompleteOrderTwice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	order := seedTierAndOrder(t, db, 10, 2)

	if err := db.CompleteOrder(ctx, order, "pi_test_123", ticketsFor(order)); err != nil {
		t.Fatalf("First completion failed: %v", err)
	}

	// The second completion must lose the conditional status flip and
	// leave no extra tickets or sold units behind.
	err := db.CompleteOrder(ctx, order, "pi_test_456", ticketsFor(order))
	if !errors.Is(err, orders.ErrNotPending) {
		t.Fatalf("Expected ErrNotPending, got %v", err)
	}

	tickets, _ := db.GetTicketsByOrder(ctx, order.OrderNumber)
	if len(tickets) != 2 {
		t.Errorf("Expected 2 tickets after duplicate completion, got %d", len(tickets))
	}

	var tier models.TicketTier
	_ = db.Bun.NewSelect().Model(&tier).Where("tier_id = ?", order.TierID).Scan(ctx)
	if tier.SoldUnits != 2 {
		t.Errorf("Expected 2 sold units after duplicate completion, got %d", tier.SoldUnits)
	}
}

func TestCompleteOrderRollsBackWhenCapacityExceeded(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	order := seedTierAndOrder(t, db, 1, 2)

	err := db.CompleteOrder(ctx, order, "pi_test_123", ticketsFor(order))
	if !errors.Is(err, inventory.ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}

	// The whole transaction rolls back: order stays PENDING, no tickets,
	// no sold units.
	got, _ := db.GetOrderByNumber(ctx, order.OrderNumber)
	if got.Status != models.OrderStatusPending {
		t.Errorf("Expected order to stay PENDING, got %s", got.Status)
	}
	tickets, _ := db.GetTicketsByOrder(ctx, order.OrderNumber)
	if len(tickets) != 0 {
		t.Errorf("Expected no tickets after rollback, got %d", len(tickets))
	}
	var tier models.TicketTier
	_ = db.Bun.NewSelect().Model(&tier).Where("tier_id = ?", order.TierID).Scan(ctx)
	if tier.SoldUnits != 0 {
		t.Errorf("Expected 0 sold units after rollback, got %d", tier.SoldUnits)
	}
}

func TestRefundOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	order := seedTierAndOrder(t, db, 10, 2)

	// A pending order cannot be refunded.
	err := db.RefundOrder(ctx, order)
	if !errors.Is(err, orders.ErrNotCompleted) {
		t.Fatalf("Expected ErrNotCompleted for pending order, got %v", err)
	}

	if err := db.CompleteOrder(ctx, order, "pi_test_123", ticketsFor(order)); err != nil {
		t.Fatalf("Failed to complete order: %v", err)
	}
	if err := db.RefundOrder(ctx, order); err != nil {
		t.Fatalf("Failed to refund order: %v", err)
	}

	got, _ := db.GetOrderByNumber(ctx, order.OrderNumber)
	if got.Status != models.OrderStatusRefunded {
		t.Errorf("Expected status REFUNDED, got %s", got.Status)
	}
	var tier models.TicketTier
	_ = db.Bun.NewSelect().Model(&tier).Where("tier_id = ?", order.TierID).Scan(ctx)
	if tier.SoldUnits != 0 {
		t.Errorf("Expected units released back to 0, got %d", tier.SoldUnits)
	}
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	order := seedTierAndOrder(t, db, 10, 2)

	if err := db.CancelOrder(ctx, order.OrderNumber); err != nil {
		t.Fatalf("Failed to cancel order: %v", err)
	}
	got, _ := db.GetOrderByNumber(ctx, order.OrderNumber)
	if got.Status != models.OrderStatusCancelled {
		t.Errorf("Expected status CANCELLED, got %s", got.Status)
	}

	// Cancelling again finds nothing pending.
	err := db.CancelOrder(ctx, order.OrderNumber)
	if !errors.Is(err, orders.ErrNotPending) {
		t.Fatalf("Expected ErrNotPending, got %v", err)
	}
}
