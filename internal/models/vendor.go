package models

import (
	"time"

	"github.com/uptrace/bun"
)

// VendorCodePrefix distinguishes a vendor booth credential from an
// attendee ticket code at the gate.
const VendorCodePrefix = "VND-"

// Vendor statuses. Only CONFIRMED and SETUP_COMPLETE vendors may enter.
const (
	VendorStatusPending       = "PENDING"
	VendorStatusConfirmed     = "CONFIRMED"
	VendorStatusSetupComplete = "SETUP_COMPLETE"
	VendorStatusCancelled     = "CANCELLED"
)

// DefaultVendorMaxAccess is the entry allotment a new vendor receives.
const DefaultVendorMaxAccess = 5

// Vendor is one booth credential with a capped entry allotment,
// independent of the attendee Ticket entity.
type Vendor struct {
	bun.BaseModel `bun:"table:vendors"`

	VendorID        string    `bun:"vendor_id,pk" json:"vendor_id"`
	BoothName       string    `bun:"booth_name" json:"booth_name"`
	Category        string    `bun:"category" json:"category"`
	ContactName     string    `bun:"contact_name" json:"contact_name"`
	ContactEmail    string    `bun:"contact_email" json:"contact_email"`
	ContactPhone    string    `bun:"contact_phone" json:"contact_phone"`
	Status          string    `bun:"status" json:"status"`
	UsedAccessCount int       `bun:"used_access_count" json:"used_access_count"`
	MaxAccessCount  int       `bun:"max_access_count" json:"max_access_count"`
	QRPayload       string    `bun:"qr_payload" json:"qr_payload"`
	CreatedAt       time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at" json:"updated_at"`
}

// VendorAccessLog records one consumed entry of a vendor's allotment,
// numbered with the access count at the time of entry.
type VendorAccessLog struct {
	bun.BaseModel `bun:"table:vendor_access_logs"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	VendorID     string    `bun:"vendor_id" json:"vendor_id"`
	AccessNumber int       `bun:"access_number" json:"access_number"`
	Location     string    `bun:"location" json:"location"`
	AccessedAt   time.Time `bun:"accessed_at" json:"accessed_at"`
}
