package orders

import (
	"context"
	"fmt"
	"time"

	"carfest-ticketing/internal/codegen"
	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
)

type OrderDBLayer interface {
	CreateOrder(ctx context.Context, order models.Order) error
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetTicketsByOrder(ctx context.Context, orderNumber string) ([]models.Ticket, error)
	CompleteOrder(ctx context.Context, order models.Order, paymentRef string, tickets []models.Ticket) error
	RefundOrder(ctx context.Context, order models.Order) error
	CancelOrder(ctx context.Context, orderNumber string) error
}

type TierCatalog interface {
	GetTierByID(ctx context.Context, tierID string) (*models.TicketTier, error)
	PriceFor(ctx context.Context, tierID, phase, groupSize string) (float64, bool, error)
}

type Publisher interface {
	PublishOrderCompleted(order models.Order) error
}

// OrderNumberFunc produces a human-readable order number.
type OrderNumberFunc func() string

type Service struct {
	DB          OrderDBLayer
	Tiers       TierCatalog
	Payments    PaymentVerifier
	Kafka       Publisher
	Codes       *codegen.Generator
	Logger      *logger.Logger
	Phase       string
	OrderNumber OrderNumberFunc
}

func (s *Service) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	tier, err := s.Tiers.GetTierByID(ctx, req.TierID)
	if err != nil {
		return nil, fmt.Errorf("tier %s not found: %w", req.TierID, err)
	}

	price, ok, err := s.Tiers.PriceFor(ctx, req.TierID, s.Phase, req.GroupSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve price: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("tier %s is not offered for %s in %s phase", tier.Name, req.GroupSize, s.Phase)
	}

	// Advisory only; the binding capacity check runs inside the
	// completion transaction.
	if tier.TotalUnits-tier.SoldUnits < req.Quantity {
		return nil, fmt.Errorf("%w: %d units requested, %d remaining", inventory.ErrCapacityExceeded, req.Quantity, tier.TotalUnits-tier.SoldUnits)
	}

	order := models.Order{
		OrderNumber:   s.OrderNumber(),
		TierID:        req.TierID,
		GroupSize:     req.GroupSize,
		Quantity:      req.Quantity,
		TotalPrice:    price * float64(req.Quantity),
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.Logger.LogOrder("PLACED", order.OrderNumber, fmt.Sprintf("%d x %s (%s) for %s", order.Quantity, tier.Name, order.GroupSize, order.CustomerName))

	return &models.PlaceOrderResponse{
		OrderNumber: order.OrderNumber,
		TierID:      order.TierID,
		GroupSize:   order.GroupSize,
		Quantity:    order.Quantity,
		TotalPrice:  order.TotalPrice,
		Status:      order.Status,
	}, nil
}

// CompleteOrder verifies the payment with the gateway, then issues the
// order's tickets. Issuance is atomic: the status flip, the sold-unit
// increment and the ticket rows all commit together or not at all.
func (s *Service) CompleteOrder(ctx context.Context, orderNumber, paymentRef string) ([]models.Ticket, error) {
	order, err := s.DB.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderNumber, err)
	}

	if order.PaymentMethod == models.PaymentMethodOnline {
		if err := s.Payments.VerifyPayment(ctx, orderNumber, paymentRef); err != nil {
			s.Logger.LogOrder("PAYMENT_REJECTED", orderNumber, err.Error())
			return nil, err
		}
	}

	return s.issue(ctx, *order, paymentRef)
}

// CompleteCashOrder issues tickets for a cash sale recorded by an
// authenticated admin at the booth. No gateway check applies.
func (s *Service) CompleteCashOrder(ctx context.Context, orderNumber string) ([]models.Ticket, error) {
	order, err := s.DB.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderNumber, err)
	}
	if order.PaymentMethod != models.PaymentMethodCash {
		return nil, fmt.Errorf("order %s is not a cash order", orderNumber)
	}
	return s.issue(ctx, *order, "cash")
}

func (s *Service) issue(ctx context.Context, order models.Order, paymentRef string) ([]models.Ticket, error) {
	tier, err := s.Tiers.GetTierByID(ctx, order.TierID)
	if err != nil {
		return nil, fmt.Errorf("tier %s not found: %w", order.TierID, err)
	}

	now := time.Now()
	tickets := make([]models.Ticket, 0, order.Quantity)
	for i := 0; i < order.Quantity; i++ {
		code := codegen.TicketCode(tier.Name, i+1)
		tickets = append(tickets, models.Ticket{
			TicketCode:  code,
			OrderNumber: order.OrderNumber,
			TierID:      order.TierID,
			QRPayload:   s.Codes.QRPayload(code),
			ScanStatus:  models.ScanStatusPending,
			IssuedAt:    now,
		})
	}

	if err := s.DB.CompleteOrder(ctx, order, paymentRef, tickets); err != nil {
		s.Logger.LogOrder("ISSUE_FAILED", order.OrderNumber, err.Error())
		return nil, err
	}

	s.Logger.LogOrder("COMPLETED", order.OrderNumber, fmt.Sprintf("Issued %d tickets", len(tickets)))

	order.Status = models.OrderStatusCompleted
	order.PaymentRef = paymentRef
	order.CompletedAt = now
	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCompleted(order); err != nil {
			s.Logger.LogKafka("PUBLISH_FAILED", "orders.completed", err.Error())
		}
	}

	return tickets, nil
}

func (s *Service) RefundOrder(ctx context.Context, orderNumber string) error {
	order, err := s.DB.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderNumber, err)
	}
	if err := s.DB.RefundOrder(ctx, *order); err != nil {
		return err
	}
	s.Logger.LogOrder("REFUNDED", orderNumber, fmt.Sprintf("Released %d units of tier %s", order.Quantity, order.TierID))
	return nil
}

func (s *Service) CancelOrder(ctx context.Context, orderNumber string) error {
	if err := s.DB.CancelOrder(ctx, orderNumber); err != nil {
		return err
	}
	s.Logger.LogOrder("CANCELLED", orderNumber, "Order cancelled")
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.DB.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderNumber, err)
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.DB.ListOrders(ctx)
}

func (s *Service) GetTicketsByOrder(ctx context.Context, orderNumber string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByOrder(ctx, orderNumber)
}
