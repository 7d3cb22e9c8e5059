package order

import (
	"context"

	"nimwema/internal/models"
)

// Recipient is one phone number a voucher should be issued to.
type Recipient struct {
	Phone     string `json:"phone" validate:"required"`
	Name      string `json:"name"`
	RequestID *uint  `json:"request_id,omitempty"`
}

// CreateOrderRequest carries everything needed to open an order.
type CreateOrderRequest struct {
	SenderName    string      `json:"sender_name" validate:"required"`
	SenderPhone   string      `json:"sender_phone" validate:"required"`
	Anonymous     bool        `json:"anonymous"`
	Amount        float64     `json:"amount" validate:"required,gt=0"`
	Currency      string      `json:"currency"`
	Quantity      int         `json:"quantity" validate:"required,gt=0"`
	CoverFees     bool        `json:"cover_fees"`
	PaymentMethod string      `json:"payment_method" validate:"required"`
	Message       string      `json:"message"`
	Recipients    []Recipient `json:"recipients"`
}

// Config holds order ledger configuration.
type Config struct {
	FeeRate         float64
	MaxQuantity     int
	DefaultCurrency string
}

// Service is the order ledger: it owns order creation, the status
// transition table and read access.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByPaymentReference(ctx context.Context, ref string) (*models.Order, error)
	ListBySender(ctx context.Context, phone string, limit, offset int) ([]*models.Order, error)

	// Transition moves the order to the target status, enforcing the
	// transition table. It reports whether this caller performed the
	// move: false with a nil error means another caller already moved
	// the order to the same status (idempotent replay).
	Transition(ctx context.Context, id, to string) (bool, error)

	// RecordPaymentInitiated stores the provider's reference and the
	// initiation timestamp after a provider flow was opened.
	RecordPaymentInitiated(ctx context.Context, id, providerRef string) error

	Stats(ctx context.Context) ([]models.OrderStats, error)
}

// Cache is the subset of caching operations the ledger needs.
type Cache interface {
	CacheOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	InvalidateOrder(ctx context.Context, orderID string) error
}
