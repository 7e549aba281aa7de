package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MerchItem is one merchandise product sold at the festival. Stock moves
// only through guarded updates so it never goes negative.
type MerchItem struct {
	bun.BaseModel `bun:"table:merch_items"`

	ItemID    string    `bun:"item_id,pk" json:"item_id"`
	Name      string    `bun:"name" json:"name"`
	Price     float64   `bun:"price" json:"price"`
	Stock     int       `bun:"stock" json:"stock"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at" json:"updated_at"`
}

// MerchSale records one merchandise sale.
type MerchSale struct {
	bun.BaseModel `bun:"table:merch_sales"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	ItemID     string    `bun:"item_id" json:"item_id"`
	Quantity   int       `bun:"quantity" json:"quantity"`
	TotalPrice float64   `bun:"total_price" json:"total_price"`
	SoldAt     time.Time `bun:"sold_at" json:"sold_at"`
}
