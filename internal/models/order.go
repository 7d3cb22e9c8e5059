package models

import (
	"time"
)

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCompleted      = "completed"
	OrderStatusFailed         = "failed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusRejected       = "rejected"
)

// Payment methods
const (
	PaymentMethodFlexPayMobile = "flexpay_mobile"
	PaymentMethodFlexPayCard   = "flexpay_card"
	PaymentMethodCard          = "card"
	PaymentMethodCash          = "cash"
	PaymentMethodBank          = "bank"
)

// Order is a voucher purchase. Once paid it spawns Quantity vouchers,
// one per recipient.
type Order struct {
	ID                 string  `gorm:"primarykey"`
	SenderName         string  `gorm:"not null"`
	SenderPhone        string  `gorm:"not null;index"`
	Anonymous          bool    `gorm:"default:false"`
	Amount             float64 `gorm:"not null"`
	Currency           string  `gorm:"default:'USD'"`
	Quantity           int     `gorm:"not null"`
	ServiceFee         float64 `gorm:"default:0"`
	Total              float64 `gorm:"not null"`
	CoverFees          bool    `gorm:"default:false"`
	PaymentMethod      string  `gorm:"not null"`
	Message            string
	Status             string `gorm:"not null;default:'pending';index"`
	PaymentReference   string `gorm:"uniqueIndex"`
	ProviderReference  string
	Recipients         []OrderRecipient `gorm:"foreignKey:OrderID"`
	Metadata           JSON             `gorm:"type:jsonb"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	PaymentInitiatedAt *time.Time
	PaidAt             *time.Time
	FailedAt           *time.Time
}

// OrderRecipient is one phone number a voucher will be issued to.
// RequestID links back to a waiting-list request when the recipient
// originated from one.
type OrderRecipient struct {
	ID        uint   `gorm:"primarykey"`
	OrderID   string `gorm:"not null;index"`
	Phone     string `gorm:"not null"`
	Name      string
	RequestID *uint
	CreatedAt time.Time
}

// OrderStats aggregates order counts and volumes by status.
type OrderStats struct {
	Status string
	Count  int64
	Volume float64
}
