package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateOrderNumber produces a human-readable order number. The
// timestamp component keeps numbers chronologically ordered.
func GenerateOrderNumber() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(9999))
	return fmt.Sprintf("CF-%d-%04d", timestamp, randomNum.Int64())
}

// GenerateVendorID produces a vendor credential id carrying the fixed
// vendor prefix checked at the gate.
func GenerateVendorID() string {
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("VND-%06d", randomNum.Int64())
}

// GenerateItemID produces a merchandise item id.
func GenerateItemID(name string) string {
	slug := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if len(slug) > 12 {
		slug = slug[:12]
	}
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(9999))
	return fmt.Sprintf("MCH-%s-%04d", slug, randomNum.Int64())
}
