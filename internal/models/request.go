package models

import (
	"time"
)

// Request types and statuses
const (
	RequestTypeWaitingList = "waiting_list"
	RequestTypeKnownSender = "known_sender"

	RequestStatusPending   = "pending"
	RequestStatusFulfilled = "fulfilled"
)

// Request is an unsolicited ask for a voucher. It is fulfilled when a
// sender's order lists the requester as a recipient, otherwise it
// expires unused.
type Request struct {
	ID             uint   `gorm:"primarykey"`
	RequesterName  string `gorm:"not null"`
	RequesterPhone string `gorm:"not null;index"`
	Type           string `gorm:"not null;default:'waiting_list'"`
	TargetName     string
	TargetPhone    string `gorm:"index"`
	Message        string
	Status         string `gorm:"not null;default:'pending';index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time `gorm:"not null"`
}
