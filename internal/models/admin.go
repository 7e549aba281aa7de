package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Admin roles. Scanners may only call the verification endpoint; admins
// may also use the CRUD surface.
const (
	RoleAdmin   = "ADMIN"
	RoleScanner = "SCANNER"
)

// Admin is a staff account for the dashboard and the gate scanner.
type Admin struct {
	bun.BaseModel `bun:"table:admins"`

	AdminID      string    `bun:"admin_id,pk" json:"admin_id"`
	Email        string    `bun:"email,unique" json:"email"`
	PasswordHash string    `bun:"password_hash" json:"-"`
	Role         string    `bun:"role" json:"role"`
	CreatedAt    time.Time `bun:"created_at" json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
