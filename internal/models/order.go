package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order statuses. An order flips to COMPLETED at most once; only a
// COMPLETED order may own tickets.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

// Payment methods.
const (
	PaymentMethodOnline = "ONLINE"
	PaymentMethodCash   = "CASH"
)

// Order is one purchase transaction for a ticket tier.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderNumber   string    `bun:"order_number,pk" json:"order_number"`
	TierID        string    `bun:"tier_id" json:"tier_id"`
	GroupSize     string    `bun:"group_size" json:"group_size"`
	Quantity      int       `bun:"quantity" json:"quantity"`
	TotalPrice    float64   `bun:"total_price" json:"total_price"`
	PaymentMethod string    `bun:"payment_method" json:"payment_method"`
	PaymentRef    string    `bun:"payment_ref" json:"payment_ref,omitempty"`
	Status        string    `bun:"status" json:"status"`
	CustomerName  string    `bun:"customer_name" json:"customer_name"`
	CustomerEmail string    `bun:"customer_email" json:"customer_email"`
	CustomerPhone string    `bun:"customer_phone" json:"customer_phone"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
	CompletedAt   time.Time `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
}

type PlaceOrderRequest struct {
	TierID        string `json:"tier_id"`
	GroupSize     string `json:"group_size"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type PlaceOrderResponse struct {
	OrderNumber string  `json:"order_number"`
	TierID      string  `json:"tier_id"`
	GroupSize   string  `json:"group_size"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
	Status      string  `json:"status"`
}
