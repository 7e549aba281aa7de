package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/vendors"
)

// Verification statuses surfaced to the scanner.
const (
	StatusValid              = "VALID"
	StatusAlreadyUsed        = "ALREADY_USED"
	StatusInvalid            = "INVALID"
	StatusAccessLimitReached = "ACCESS_LIMIT_REACHED"
)

// VerificationResult is the tagged outcome of one gate scan. Data carries
// only the fields relevant to the outcome's case.
type VerificationResult struct {
	Success    bool        `json:"success"`
	AccessType string      `json:"accessType"`
	Status     string      `json:"status"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// AttendeeEntry is the Data payload for a successful attendee scan.
type AttendeeEntry struct {
	TicketCode    string `json:"ticket_code"`
	CustomerName  string `json:"customer_name"`
	TierName      string `json:"tier_name"`
	GroupSize     string `json:"group_size"`
	ParkingPasses int    `json:"parking_passes"`
	Instruction   string `json:"instruction"`
}

// VendorEntry is the Data payload for vendor scans, including the
// limit-reached case.
type VendorEntry struct {
	VendorID    string `json:"vendor_id"`
	BoothName   string `json:"booth_name"`
	UsedAccess  int    `json:"used_access"`
	MaxAccess   int    `json:"max_access"`
	Remaining   int    `json:"remaining"`
	Instruction string `json:"instruction,omitempty"`
}

type TicketStore interface {
	GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	MarkScanned(ctx context.Context, ticketCode, location string, at time.Time) (bool, error)
}

type OrderStore interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

type TierStore interface {
	GetTierByID(ctx context.Context, tierID string) (*models.TicketTier, error)
}

type VendorStore interface {
	GetVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error)
	ConsumeAccess(ctx context.Context, vendorID, location string) (int, error)
}

type EntryLogStore interface {
	AppendEntryLog(ctx context.Context, log models.EntryLog) error
}

type Publisher interface {
	PublishEntryVerified(log models.EntryLog) error
}

// Verifier decides gate entry for attendee tickets and vendor
// credentials. Every call writes exactly one entry log row; log write
// failures never change the decision already made.
type Verifier struct {
	Tickets TicketStore
	Orders  OrderStore
	Tiers   TierStore
	Vendors VendorStore
	Log     EntryLogStore
	Kafka   Publisher
	Logger  *logger.Logger
}

// Verify dispatches on the vendor code prefix.
func (v *Verifier) Verify(ctx context.Context, code, location string) VerificationResult {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, models.VendorCodePrefix) {
		return v.VerifyVendor(ctx, code, location)
	}
	return v.VerifyAttendee(ctx, code, location)
}

// VerifyAttendee walks the attendee path: unknown code, incomplete
// payment, already scanned, or a winning conditional scan.
func (v *Verifier) VerifyAttendee(ctx context.Context, code, location string) VerificationResult {
	ticket, err := v.Tickets.GetTicketByCode(ctx, code)
	if err != nil {
		// Only a confirmed missing row means the code never existed. A
		// store failure must not masquerade as a forged ticket.
		if !errors.Is(err, sql.ErrNoRows) {
			return v.storeFailure(ctx, code, models.AccessTypeAttendee, "store error during ticket lookup", location)
		}
		v.appendLog(ctx, code, models.AccessTypeAttendee, models.EntryStatusInvalid, "ticket code not found", location)
		return VerificationResult{
			AccessType: models.AccessTypeAttendee,
			Status:     StatusInvalid,
			Error:      "ticket not found",
		}
	}

	order, err := v.Orders.GetOrderByNumber(ctx, ticket.OrderNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return v.storeFailure(ctx, code, models.AccessTypeAttendee, "store error during order lookup", location)
	}
	if err != nil || order.Status != models.OrderStatusCompleted {
		// A real ticket whose order never completed is blocked, not
		// forged; the reason text keeps the two apart in the audit
		// trail.
		v.appendLog(ctx, code, models.AccessTypeAttendee, models.EntryStatusBlocked, "payment not completed", location)
		return VerificationResult{
			AccessType: models.AccessTypeAttendee,
			Status:     StatusInvalid,
			Error:      "payment not completed for this ticket",
		}
	}

	if ticket.ScanStatus != models.ScanStatusPending {
		v.appendLog(ctx, code, models.AccessTypeAttendee, models.EntryStatusAlreadyUsed, "", location)
		return VerificationResult{
			AccessType: models.AccessTypeAttendee,
			Status:     StatusAlreadyUsed,
			Error:      fmt.Sprintf("ticket already used at %s", ticket.ScannedAt.Format(time.RFC3339)),
		}
	}

	now := time.Now()
	won, err := v.Tickets.MarkScanned(ctx, ticket.TicketCode, location, now)
	if err != nil {
		return v.storeFailure(ctx, code, models.AccessTypeAttendee, "store error during scan", location)
	}
	if !won {
		// Lost the race to a concurrent scan of the same code.
		scanned, _ := v.Tickets.GetTicketByCode(ctx, ticket.TicketCode)
		msg := "ticket already used"
		if scanned != nil && !scanned.ScannedAt.IsZero() {
			msg = fmt.Sprintf("ticket already used at %s", scanned.ScannedAt.Format(time.RFC3339))
		}
		v.appendLog(ctx, code, models.AccessTypeAttendee, models.EntryStatusAlreadyUsed, "", location)
		return VerificationResult{
			AccessType: models.AccessTypeAttendee,
			Status:     StatusAlreadyUsed,
			Error:      msg,
		}
	}

	tierName := ticket.TierID
	if tier, err := v.Tiers.GetTierByID(ctx, ticket.TierID); err == nil {
		tierName = tier.Name
	}

	v.appendLog(ctx, code, models.AccessTypeAttendee, models.EntryStatusSuccess, "", location)
	v.Logger.LogEntry("SUCCESS", ticket.TicketCode, fmt.Sprintf("Attendee admitted at %s", location))

	return VerificationResult{
		Success:    true,
		AccessType: models.AccessTypeAttendee,
		Status:     StatusValid,
		Data: AttendeeEntry{
			TicketCode:    ticket.TicketCode,
			CustomerName:  order.CustomerName,
			TierName:      tierName,
			GroupSize:     order.GroupSize,
			ParkingPasses: models.ParkingPassesFor(order.GroupSize),
			Instruction:   "Proceed to the main gate and keep this ticket visible.",
		},
	}
}

// VerifyVendor walks the vendor path: unknown id, unapproved status,
// exhausted allotment, or a bounded access-count increment.
func (v *Verifier) VerifyVendor(ctx context.Context, vendorID, location string) VerificationResult {
	vendor, err := v.Vendors.GetVendorByID(ctx, vendorID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return v.storeFailure(ctx, vendorID, models.AccessTypeVendor, "store error during vendor lookup", location)
		}
		v.appendLog(ctx, vendorID, models.AccessTypeVendor, models.EntryStatusInvalid, "vendor id not found", location)
		return VerificationResult{
			AccessType: models.AccessTypeVendor,
			Status:     StatusInvalid,
			Error:      "vendor not found",
		}
	}

	if vendor.Status != models.VendorStatusConfirmed && vendor.Status != models.VendorStatusSetupComplete {
		v.appendLog(ctx, vendorID, models.AccessTypeVendor, models.EntryStatusBlocked, "vendor not approved", location)
		return VerificationResult{
			AccessType: models.AccessTypeVendor,
			Status:     StatusInvalid,
			Error:      fmt.Sprintf("vendor not approved (status %s)", vendor.Status),
		}
	}

	if vendor.UsedAccessCount >= vendor.MaxAccessCount {
		v.appendLog(ctx, vendorID, models.AccessTypeVendor, models.EntryStatusBlocked, "access limit reached", location)
		return VerificationResult{
			AccessType: models.AccessTypeVendor,
			Status:     StatusAccessLimitReached,
			Error:      fmt.Sprintf("access limit reached (%d/%d used)", vendor.UsedAccessCount, vendor.MaxAccessCount),
			Data: VendorEntry{
				VendorID:   vendor.VendorID,
				BoothName:  vendor.BoothName,
				UsedAccess: vendor.UsedAccessCount,
				MaxAccess:  vendor.MaxAccessCount,
				Remaining:  0,
			},
		}
	}

	newCount, err := v.Vendors.ConsumeAccess(ctx, vendorID, location)
	if err != nil {
		if !errors.Is(err, vendors.ErrAccessExhausted) {
			return v.storeFailure(ctx, vendorID, models.AccessTypeVendor, "store error during access grant", location)
		}
		// The bounded increment refused: a concurrent scan took the
		// last access between the read above and the write.
		v.appendLog(ctx, vendorID, models.AccessTypeVendor, models.EntryStatusBlocked, "access limit reached", location)
		return VerificationResult{
			AccessType: models.AccessTypeVendor,
			Status:     StatusAccessLimitReached,
			Error:      fmt.Sprintf("access limit reached (%d/%d used)", vendor.MaxAccessCount, vendor.MaxAccessCount),
			Data: VendorEntry{
				VendorID:   vendor.VendorID,
				BoothName:  vendor.BoothName,
				UsedAccess: vendor.MaxAccessCount,
				MaxAccess:  vendor.MaxAccessCount,
				Remaining:  0,
			},
		}
	}

	v.appendLog(ctx, vendorID, models.AccessTypeVendor, models.EntryStatusSuccess, "", location)
	v.Logger.LogEntry("SUCCESS", vendorID, fmt.Sprintf("Vendor access %d/%d at %s", newCount, vendor.MaxAccessCount, location))

	return VerificationResult{
		Success:    true,
		AccessType: models.AccessTypeVendor,
		Status:     StatusValid,
		Data: VendorEntry{
			VendorID:    vendor.VendorID,
			BoothName:   vendor.BoothName,
			UsedAccess:  newCount,
			MaxAccess:   vendor.MaxAccessCount,
			Remaining:   vendor.MaxAccessCount - newCount,
			Instruction: "Proceed to the vendor gate. Booth crew wristbands required.",
		},
	}
}

// storeFailure aborts a verification whose store call failed for a
// reason other than a missing row. The scanner gets a retryable generic
// failure, never a fabricated business outcome, and the audit row keeps
// the real reason.
func (v *Verifier) storeFailure(ctx context.Context, code, accessType, reason, location string) VerificationResult {
	v.Logger.Warn("ENTRY", fmt.Sprintf("Verification aborted for %s: %s", code, reason))
	v.appendLog(ctx, code, accessType, models.EntryStatusBlocked, reason, location)
	return VerificationResult{
		AccessType: accessType,
		Status:     StatusInvalid,
		Error:      "verification temporarily unavailable",
	}
}

// appendLog writes the audit row for an attempt. Failures are swallowed
// after logging: observability never blocks or reverses the decision.
func (v *Verifier) appendLog(ctx context.Context, code, accessType, status, reason, location string) {
	entryLog := models.EntryLog{
		Code:       code,
		AccessType: accessType,
		Status:     status,
		Reason:     reason,
		Location:   location,
		CreatedAt:  time.Now(),
	}

	if err := v.Log.AppendEntryLog(ctx, entryLog); err != nil {
		v.Logger.Warn("ENTRY", fmt.Sprintf("Failed to append entry log for %s: %v", code, err))
	}

	if v.Kafka != nil {
		if err := v.Kafka.PublishEntryVerified(entryLog); err != nil {
			v.Logger.LogKafka("PUBLISH_FAILED", "entry.verified", err.Error())
		}
	}
}
