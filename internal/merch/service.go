package merch

import (
	"context"
	"fmt"
	"time"

	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/utils"
)

type MerchDBLayer interface {
	CreateItem(ctx context.Context, item models.MerchItem) error
	GetItemByID(ctx context.Context, itemID string) (*models.MerchItem, error)
	ListItems(ctx context.Context) ([]models.MerchItem, error)
	UpdateItem(ctx context.Context, item models.MerchItem) error
	RecordSale(ctx context.Context, itemID string, qty int, totalPrice float64) (*models.MerchSale, error)
	ListSales(ctx context.Context) ([]models.MerchSale, error)
}

type Service struct {
	DB     MerchDBLayer
	Logger *logger.Logger
}

func NewService(db MerchDBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

func (s *Service) CreateItem(ctx context.Context, name string, price float64, stock int) (*models.MerchItem, error) {
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if price < 0 || stock < 0 {
		return nil, fmt.Errorf("price and stock must be non-negative")
	}

	item := models.MerchItem{
		ItemID:    utils.GenerateItemID(name),
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.DB.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create merch item: %w", err)
	}

	s.Logger.LogDatabase("INSERT", "merch_items", fmt.Sprintf("Created item %s (%s)", item.Name, item.ItemID))
	return &item, nil
}

func (s *Service) ListItems(ctx context.Context) ([]models.MerchItem, error) {
	return s.DB.ListItems(ctx)
}

func (s *Service) UpdateItem(ctx context.Context, itemID, name string, price float64, stock int) error {
	item, err := s.DB.GetItemByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("item %s not found: %w", itemID, err)
	}

	item.Name = name
	item.Price = price
	item.Stock = stock
	if err := s.DB.UpdateItem(ctx, *item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Sell records a booth sale of qty units at the item's current price.
func (s *Service) Sell(ctx context.Context, itemID string, qty int) (*models.MerchSale, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	item, err := s.DB.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item %s not found: %w", itemID, err)
	}

	sale, err := s.DB.RecordSale(ctx, itemID, qty, item.Price*float64(qty))
	if err != nil {
		return nil, err
	}

	s.Logger.LogDatabase("INSERT", "merch_sales", fmt.Sprintf("Sold %d x %s", qty, item.Name))
	return sale, nil
}

func (s *Service) ListSales(ctx context.Context) ([]models.MerchSale, error) {
	return s.DB.ListSales(ctx)
}
