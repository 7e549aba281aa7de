package vendors

import (
	"context"
	"fmt"
	"time"

	"carfest-ticketing/internal/codegen"
	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/utils"
)

type VendorDBLayer interface {
	CreateVendor(ctx context.Context, vendor models.Vendor) error
	GetVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	UpdateVendorStatus(ctx context.Context, vendorID, status string) error
	ListAccessLogs(ctx context.Context, vendorID string) ([]models.VendorAccessLog, error)
}

type Publisher interface {
	PublishVendorRegistered(vendor models.Vendor) error
}

type Service struct {
	DB     VendorDBLayer
	Codes  *codegen.Generator
	Kafka  Publisher
	Logger *logger.Logger
}

type RegisterVendorRequest struct {
	BoothName    string `json:"booth_name"`
	Category     string `json:"category"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (s *Service) RegisterVendor(ctx context.Context, req RegisterVendorRequest) (*models.Vendor, error) {
	if req.BoothName == "" {
		return nil, fmt.Errorf("booth name is required")
	}

	vendorID := utils.GenerateVendorID()
	vendor := models.Vendor{
		VendorID:        vendorID,
		BoothName:       req.BoothName,
		Category:        req.Category,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Status:          models.VendorStatusPending,
		UsedAccessCount: 0,
		MaxAccessCount:  models.DefaultVendorMaxAccess,
		QRPayload:       s.Codes.QRPayload(vendorID),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.DB.CreateVendor(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to register vendor: %w", err)
	}

	s.Logger.LogDatabase("INSERT", "vendors", fmt.Sprintf("Registered vendor %s (%s)", vendor.BoothName, vendor.VendorID))

	if s.Kafka != nil {
		if err := s.Kafka.PublishVendorRegistered(vendor); err != nil {
			s.Logger.LogKafka("PUBLISH_FAILED", "vendors.registered", err.Error())
		}
	}

	return &vendor, nil
}

func (s *Service) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	vendor, err := s.DB.GetVendorByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor %s not found: %w", vendorID, err)
	}
	return vendor, nil
}

func (s *Service) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.DB.ListVendors(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, vendorID, status string) error {
	switch status {
	case models.VendorStatusPending, models.VendorStatusConfirmed,
		models.VendorStatusSetupComplete, models.VendorStatusCancelled:
	default:
		return fmt.Errorf("unknown vendor status %q", status)
	}

	if _, err := s.DB.GetVendorByID(ctx, vendorID); err != nil {
		return fmt.Errorf("vendor %s not found: %w", vendorID, err)
	}

	if err := s.DB.UpdateVendorStatus(ctx, vendorID, status); err != nil {
		return fmt.Errorf("failed to update vendor status: %w", err)
	}

	s.Logger.LogDatabase("UPDATE", "vendors", fmt.Sprintf("Vendor %s status -> %s", vendorID, status))
	return nil
}

func (s *Service) AccessHistory(ctx context.Context, vendorID string) ([]models.VendorAccessLog, error) {
	if _, err := s.DB.GetVendorByID(ctx, vendorID); err != nil {
		return nil, fmt.Errorf("vendor %s not found: %w", vendorID, err)
	}
	return s.DB.ListAccessLogs(ctx, vendorID)
}
