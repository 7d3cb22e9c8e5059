package models

import (
	"time"
)

// Merchant roles
const (
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// Merchant is a shop that redeems vouchers. Admins use the same model
// with Role set to admin.
type Merchant struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"not null"`
	Phone        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'merchant'"`
	Location     string
	Status       string `gorm:"default:'active'"`
	Metadata     JSON   `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
