package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Sale phases a tier price can be keyed by.
const (
	PhasePresale = "presale"
	PhaseOnsale  = "onsale"
)

// Group sizes a ticket can be purchased for.
const (
	GroupSingle = "SINGLE"
	GroupOf2    = "GROUP_2"
	GroupOf4    = "GROUP_4"
)

// TicketTier is a purchasable ticket category with its own capacity.
// SoldUnits is only ever moved by guarded updates so it can never exceed
// TotalUnits.
type TicketTier struct {
	bun.BaseModel `bun:"table:ticket_tiers"`

	TierID     string    `bun:"tier_id,pk" json:"tier_id"`
	Name       string    `bun:"name" json:"name"`
	TotalUnits int       `bun:"total_units" json:"total_units"`
	SoldUnits  int       `bun:"sold_units" json:"sold_units"`
	CreatedAt  time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at" json:"updated_at"`
}

// TierPrice is one cell of a tier's price table. A missing row means the
// tier is not offered for that (phase, group size) combination.
type TierPrice struct {
	bun.BaseModel `bun:"table:tier_prices"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	TierID    string  `bun:"tier_id" json:"tier_id"`
	Phase     string  `bun:"phase" json:"phase"`
	GroupSize string  `bun:"group_size" json:"group_size"`
	Price     float64 `bun:"price" json:"price"`
}

// ParkingPassesFor returns the parking-pass allotment for a group size.
func ParkingPassesFor(groupSize string) int {
	switch groupSize {
	case GroupOf4:
		return 2
	case GroupOf2, GroupSingle:
		return 1
	default:
		return 0
	}
}
