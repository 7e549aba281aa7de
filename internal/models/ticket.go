package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Scan statuses for an attendee ticket. SCANNED is terminal; there is no
// un-scan.
const (
	ScanStatusPending = "PENDING"
	ScanStatusScanned = "SCANNED"
)

// Ticket is one admit-one credential owned by a completed order. The QR
// payload is a keyed hash of the ticket code so a forged code without the
// server secret cannot produce a matching payload.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketCode    string    `bun:"ticket_code,pk" json:"ticket_code"`
	OrderNumber   string    `bun:"order_number" json:"order_number"`
	TierID        string    `bun:"tier_id" json:"tier_id"`
	QRPayload     string    `bun:"qr_payload" json:"qr_payload"`
	ScanStatus    string    `bun:"scan_status" json:"scan_status"`
	ScannedAt     time.Time `bun:"scanned_at,nullzero" json:"scanned_at,omitempty"`
	EntryLocation string    `bun:"entry_location" json:"entry_location,omitempty"`
	IssuedAt      time.Time `bun:"issued_at" json:"issued_at"`
}
