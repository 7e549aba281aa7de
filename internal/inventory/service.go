package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
)

type TierDBLayer interface {
	CreateTier(ctx context.Context, tier models.TicketTier, prices []models.TierPrice) error
	GetTierByID(ctx context.Context, tierID string) (*models.TicketTier, error)
	ListTiers(ctx context.Context) ([]models.TicketTier, error)
	UpdateTier(ctx context.Context, tier models.TicketTier) error
	PriceFor(ctx context.Context, tierID, phase, groupSize string) (float64, bool, error)
}

type Service struct {
	DB     TierDBLayer
	Logger *logger.Logger
}

func NewService(db TierDBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

type CreateTierRequest struct {
	Name       string             `json:"name"`
	TotalUnits int                `json:"total_units"`
	Prices     []TierPriceRequest `json:"prices"`
}

type TierPriceRequest struct {
	Phase     string  `json:"phase"`
	GroupSize string  `json:"group_size"`
	Price     float64 `json:"price"`
}

func (s *Service) CreateTier(ctx context.Context, req CreateTierRequest) (*models.TicketTier, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("tier name is required")
	}
	if req.TotalUnits <= 0 {
		return nil, fmt.Errorf("total units must be positive")
	}

	tier := models.TicketTier{
		TierID:     uuid.NewString(),
		Name:       req.Name,
		TotalUnits: req.TotalUnits,
		SoldUnits:  0,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	prices := make([]models.TierPrice, 0, len(req.Prices))
	for _, p := range req.Prices {
		prices = append(prices, models.TierPrice{
			TierID:    tier.TierID,
			Phase:     p.Phase,
			GroupSize: p.GroupSize,
			Price:     p.Price,
		})
	}

	if err := s.DB.CreateTier(ctx, tier, prices); err != nil {
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}

	s.Logger.LogDatabase("INSERT", "ticket_tiers", fmt.Sprintf("Created tier %s (%s)", tier.Name, tier.TierID))
	return &tier, nil
}

func (s *Service) GetTier(ctx context.Context, tierID string) (*models.TicketTier, error) {
	tier, err := s.DB.GetTierByID(ctx, tierID)
	if err != nil {
		return nil, fmt.Errorf("tier %s not found: %w", tierID, err)
	}
	return tier, nil
}

func (s *Service) ListTiers(ctx context.Context) ([]models.TicketTier, error) {
	return s.DB.ListTiers(ctx)
}

func (s *Service) UpdateTier(ctx context.Context, tierID string, name string, totalUnits int) error {
	tier, err := s.DB.GetTierByID(ctx, tierID)
	if err != nil {
		return fmt.Errorf("tier %s not found: %w", tierID, err)
	}

	// Capacity can never be cut below units already sold.
	if totalUnits < tier.SoldUnits {
		return fmt.Errorf("total units %d below sold units %d", totalUnits, tier.SoldUnits)
	}

	tier.Name = name
	tier.TotalUnits = totalUnits
	if err := s.DB.UpdateTier(ctx, *tier); err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	return nil
}

// Remaining returns the units still purchasable for a tier.
func (s *Service) Remaining(ctx context.Context, tierID string) (int, error) {
	tier, err := s.DB.GetTierByID(ctx, tierID)
	if err != nil {
		return 0, fmt.Errorf("tier %s not found: %w", tierID, err)
	}
	return tier.TotalUnits - tier.SoldUnits, nil
}
