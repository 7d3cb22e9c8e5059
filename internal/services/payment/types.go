package payment

import (
	"context"

	"nimwema/internal/models"
)

// Status is the normalized provider payment status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// InitiationResult is what the client needs to continue a payment:
// either a redirect URL (card flows) or human instructions (mobile
// push, manual channels).
type InitiationResult struct {
	Reference         string `json:"reference"`
	ProviderReference string `json:"provider_reference,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
	Instructions      string `json:"instructions,omitempty"`
}

// CallbackPayload is the asynchronous provider notification. Code "0"
// means the provider confirmed the payment.
type CallbackPayload struct {
	Code              string `json:"code"`
	Reference         string `json:"reference"`
	ProviderReference string `json:"orderNumber"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
}

// Gateway is a payment provider integration. Implementations classify
// failures as transient or permanent and never mutate order state.
type Gateway interface {
	Initiate(ctx context.Context, order *models.Order) (*InitiationResult, error)
	CheckStatus(ctx context.Context, providerRef string) (Status, error)
}

// Service is the payment adapter: it initiates provider flows and
// reconciles their outcomes into order transitions, idempotently.
type Service interface {
	Initiate(ctx context.Context, orderID string) (*InitiationResult, error)
	HandleCallback(ctx context.Context, payload CallbackPayload) error
	CheckStatus(ctx context.Context, reference string) (Status, error)

	// ConfirmManual approves a cash/bank order, issuing its vouchers.
	ConfirmManual(ctx context.Context, orderID string) error
	// Reject declines a manual order.
	Reject(ctx context.Context, orderID string) error
}

// Notifier is the slice of the notification dispatcher the adapter
// uses. Failures there are telemetry, never payment failures.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, o *models.Order)
}
