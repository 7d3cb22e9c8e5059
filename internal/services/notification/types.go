package notification

import "context"

// TemplateType selects one of the fixed outbound message templates.
type TemplateType string

const (
	TemplateVoucherIssued       TemplateType = "voucher_issued"
	TemplateRequest             TemplateType = "request"
	TemplateRedemption          TemplateType = "redemption"
	TemplatePaymentConfirmation TemplateType = "payment_confirmation"
)

// Result reports a dispatch outcome. Provider failure is carried in
// Err; it is never raised to the caller as an operation failure.
type Result struct {
	Success   bool
	MessageID string
	Err       error
}

// SMSClient delivers a message to the external SMS provider.
type SMSClient interface {
	Send(ctx context.Context, to, message string) (string, error)
}

// Config holds dispatcher configuration.
type Config struct {
	Sender        string
	CountryPrefix string
}
