package models

import (
	"time"
)

// Voucher statuses
const (
	VoucherStatusPending   = "pending"
	VoucherStatusRedeemed  = "redeemed"
	VoucherStatusExpired   = "expired"
	VoucherStatusCancelled = "cancelled"
)

// AnonymousSender is shown on vouchers when the sender opted out of
// revealing their identity.
const AnonymousSender = "Anonymous"

// Voucher is a redeemable credit identified by a globally unique code.
// It moves pending -> redeemed exactly once, or pending -> expired
// after ExpiresAt.
type Voucher struct {
	ID             uint    `gorm:"primarykey"`
	Code           string  `gorm:"uniqueIndex;not null"`
	Amount         float64 `gorm:"not null"`
	Currency       string  `gorm:"default:'USD'"`
	RecipientPhone string  `gorm:"not null;index"`
	RecipientName  string
	SenderName     string
	Message        string
	Status         string `gorm:"not null;default:'pending';index"`
	OrderID        string `gorm:"not null;index"`
	MerchantID     *uint
	MerchantName   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time `gorm:"not null;index"`
	RedeemedAt     *time.Time
}

// Redemption is the immutable receipt of a merchant consuming a
// voucher. Amount and currency are copied from the voucher at
// redemption time.
type Redemption struct {
	ID            uint `gorm:"primarykey"`
	VoucherID     uint `gorm:"not null;index"`
	MerchantID    uint `gorm:"not null;index"`
	MerchantName  string
	MerchantPhone string
	Location      string
	Amount        float64 `gorm:"not null"`
	Currency      string
	Notes         string
	CreatedAt     time.Time
}
