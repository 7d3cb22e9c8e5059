package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// MerchantClaims is the JWT payload for authenticated merchants and
// admins.
type MerchantClaims struct {
	MerchantID uint   `json:"merchant_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *MerchantClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
