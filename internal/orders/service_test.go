package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carfest-ticketing/internal/codegen"
	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/orders"
)

// Mock implementations

type MockOrderDB struct {
	mock.Mock
}

func (m *MockOrderDB) CreateOrder(ctx context.Context, order models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderDB) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderDB) ListOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderDB) GetTicketsByOrder(ctx context.Context, orderNumber string) ([]models.Ticket, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockOrderDB) CompleteOrder(ctx context.Context, order models.Order, paymentRef string, tickets []models.Ticket) error {
	args := m.Called(ctx, order, paymentRef, tickets)
	return args.Error(0)
}

func (m *MockOrderDB) RefundOrder(ctx context.Context, order models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderDB) CancelOrder(ctx context.Context, orderNumber string) error {
	args := m.Called(ctx, orderNumber)
	return args.Error(0)
}

type MockTierCatalog struct {
	mock.Mock
}

func (m *MockTierCatalog) GetTierByID(ctx context.Context, tierID string) (*models.TicketTier, error) {
	args := m.Called(ctx, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketTier), args.Error(1)
}

func (m *MockTierCatalog) PriceFor(ctx context.Context, tierID, phase, groupSize string) (float64, bool, error) {
	args := m.Called(ctx, tierID, phase, groupSize)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) VerifyPayment(ctx context.Context, orderNumber, paymentRef string) error {
	args := m.Called(ctx, orderNumber, paymentRef)
	return args.Error(0)
}

func newTestService(db *MockOrderDB, tiers *MockTierCatalog, payments *MockPaymentVerifier) *orders.Service {
	return &orders.Service{
		DB:          db,
		Tiers:       tiers,
		Payments:    payments,
		Codes:       codegen.NewGenerator("test-secret"),
		Logger:      logger.NewLogger(),
		Phase:       models.PhasePresale,
		OrderNumber: func() string { return "CF-1700000000-0001" },
	}
}

// Tests start here

func TestPlaceOrder(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	svc := newTestService(mockDB, mockTiers, new(MockPaymentVerifier))

	tier := &models.TicketTier{TierID: "tier-ga", Name: "General", TotalUnits: 100, SoldUnits: 10}
	mockTiers.On("GetTierByID", mock.Anything, "tier-ga").Return(tier, nil)
	mockTiers.On("PriceFor", mock.Anything, "tier-ga", models.PhasePresale, models.GroupOf2).Return(45.0, true, nil)
	mockDB.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o models.Order) bool {
		return o.Status == models.OrderStatusPending && o.TotalPrice == 90.0
	})).Return(nil)

	resp, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		TierID:        "tier-ga",
		GroupSize:     models.GroupOf2,
		Quantity:      2,
		PaymentMethod: models.PaymentMethodOnline,
		CustomerName:  "Dana Reeves",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CF-1700000000-0001", resp.OrderNumber)
	assert.Equal(t, 90.0, resp.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	mockDB.AssertExpectations(t)
	mockTiers.AssertExpectations(t)
}

func TestPlaceOrderNoPriceOffered(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	svc := newTestService(mockDB, mockTiers, new(MockPaymentVerifier))

	tier := &models.TicketTier{TierID: "tier-vip", Name: "VIP", TotalUnits: 50}
	mockTiers.On("GetTierByID", mock.Anything, "tier-vip").Return(tier, nil)
	mockTiers.On("PriceFor", mock.Anything, "tier-vip", models.PhasePresale, models.GroupOf4).Return(0.0, false, nil)

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		TierID:    "tier-vip",
		GroupSize: models.GroupOf4,
		Quantity:  1,
	})

	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPlaceOrderSoldOut(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	svc := newTestService(mockDB, mockTiers, new(MockPaymentVerifier))

	tier := &models.TicketTier{TierID: "tier-ga", Name: "General", TotalUnits: 100, SoldUnits: 99}
	mockTiers.On("GetTierByID", mock.Anything, "tier-ga").Return(tier, nil)
	mockTiers.On("PriceFor", mock.Anything, "tier-ga", models.PhasePresale, models.GroupSingle).Return(45.0, true, nil)

	_, err := svc.PlaceOrder(context.Background(), models.PlaceOrderRequest{
		TierID:    "tier-ga",
		GroupSize: models.GroupSingle,
		Quantity:  2,
	})

	assert.ErrorIs(t, err, inventory.ErrCapacityExceeded)
	mockDB.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCompleteOrderVerifiesOnlinePayment(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	mockPayments := new(MockPaymentVerifier)
	svc := newTestService(mockDB, mockTiers, mockPayments)

	order := &models.Order{
		OrderNumber:   "CF-1700000000-0001",
		TierID:        "tier-ga",
		Quantity:      2,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.OrderStatusPending,
	}
	tier := &models.TicketTier{TierID: "tier-ga", Name: "General", TotalUnits: 100}

	mockDB.On("GetOrderByNumber", mock.Anything, order.OrderNumber).Return(order, nil)
	mockPayments.On("VerifyPayment", mock.Anything, order.OrderNumber, "pi_test_123").Return(nil)
	mockTiers.On("GetTierByID", mock.Anything, "tier-ga").Return(tier, nil)
	mockDB.On("CompleteOrder", mock.Anything, mock.Anything, "pi_test_123", mock.MatchedBy(func(tickets []models.Ticket) bool {
		return len(tickets) == 2
	})).Return(nil)

	tickets, err := svc.CompleteOrder(context.Background(), order.OrderNumber, "pi_test_123")

	assert.NoError(t, err)
	assert.Len(t, tickets, 2)
	for _, ticket := range tickets {
		assert.Equal(t, models.ScanStatusPending, ticket.ScanStatus)
		assert.True(t, svc.Codes.VerifyQRPayload(ticket.TicketCode, ticket.QRPayload))
	}
	mockPayments.AssertExpectations(t)
	mockDB.AssertExpectations(t)
}

func TestCompleteOrderRejectedPayment(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	mockPayments := new(MockPaymentVerifier)
	svc := newTestService(mockDB, mockTiers, mockPayments)

	order := &models.Order{
		OrderNumber:   "CF-1700000000-0001",
		TierID:        "tier-ga",
		Quantity:      1,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.OrderStatusPending,
	}
	mockDB.On("GetOrderByNumber", mock.Anything, order.OrderNumber).Return(order, nil)
	mockPayments.On("VerifyPayment", mock.Anything, order.OrderNumber, "pi_bogus").Return(orders.ErrPaymentNotVerified)

	_, err := svc.CompleteOrder(context.Background(), order.OrderNumber, "pi_bogus")

	assert.ErrorIs(t, err, orders.ErrPaymentNotVerified)
	mockDB.AssertNotCalled(t, "CompleteOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteCashOrderRequiresCashMethod(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	mockPayments := new(MockPaymentVerifier)
	svc := newTestService(mockDB, mockTiers, mockPayments)

	order := &models.Order{
		OrderNumber:   "CF-1700000000-0001",
		TierID:        "tier-ga",
		Quantity:      1,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.OrderStatusPending,
	}
	mockDB.On("GetOrderByNumber", mock.Anything, order.OrderNumber).Return(order, nil)

	_, err := svc.CompleteCashOrder(context.Background(), order.OrderNumber)

	assert.Error(t, err)
	// No gateway call for a cash completion path, even a refused one.
	mockPayments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteCashOrder(t *testing.T) {
	mockDB := new(MockOrderDB)
	mockTiers := new(MockTierCatalog)
	mockPayments := new(MockPaymentVerifier)
	svc := newTestService(mockDB, mockTiers, mockPayments)

	order := &models.Order{
		OrderNumber:   "CF-1700000000-0002",
		TierID:        "tier-ga",
		Quantity:      3,
		PaymentMethod: models.PaymentMethodCash,
		Status:        models.OrderStatusPending,
	}
	tier := &models.TicketTier{TierID: "tier-ga", Name: "General", TotalUnits: 100}

	mockDB.On("GetOrderByNumber", mock.Anything, order.OrderNumber).Return(order, nil)
	mockTiers.On("GetTierByID", mock.Anything, "tier-ga").Return(tier, nil)
	mockDB.On("CompleteOrder", mock.Anything, mock.Anything, "cash", mock.Anything).Return(nil)

	tickets, err := svc.CompleteCashOrder(context.Background(), order.OrderNumber)

	assert.NoError(t, err)
	assert.Len(t, tickets, 3)
	mockPayments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrderNotFound(t *testing.T) {
	mockDB := new(MockOrderDB)
	svc := newTestService(mockDB, new(MockTierCatalog), new(MockPaymentVerifier))

	mockDB.On("GetOrderByNumber", mock.Anything, "missing").Return(nil, errors.New("not found"))

	order, err := svc.GetOrder(context.Background(), "missing")

	assert.Error(t, err)
	assert.Nil(t, order)
}
