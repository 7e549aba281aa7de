package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Access types recorded for a gate verification attempt.
const (
	AccessTypeAttendee = "ATTENDEE"
	AccessTypeVendor   = "VENDOR"
)

// Entry log statuses.
const (
	EntryStatusSuccess     = "SUCCESS"
	EntryStatusBlocked     = "BLOCKED"
	EntryStatusAlreadyUsed = "ALREADY_USED"
	EntryStatusInvalid     = "INVALID"
)

// EntryLog is the append-only audit record of one verification attempt at
// the gate. Exactly one row is written per attempt, whatever the outcome.
type EntryLog struct {
	bun.BaseModel `bun:"table:entry_logs"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Code       string    `bun:"code" json:"code"`
	AccessType string    `bun:"access_type" json:"access_type"`
	Status     string    `bun:"status" json:"status"`
	Reason     string    `bun:"reason" json:"reason,omitempty"`
	Location   string    `bun:"location" json:"location"`
	CreatedAt  time.Time `bun:"created_at" json:"created_at"`
}
