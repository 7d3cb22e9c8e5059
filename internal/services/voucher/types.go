package voucher

import (
	"context"
	"time"

	"nimwema/internal/models"
)

const (
	DefaultBatchSize      = 50
	DefaultBatchPause     = 10 * time.Second
	DefaultTTLDays        = 90
	DefaultTTL            = DefaultTTLDays * 24 * time.Hour
	DefaultMaxCodeRetries = 5
)

// IssuerConfig holds batch issuance configuration. A zero BatchPause
// disables throttling.
type IssuerConfig struct {
	BatchSize      int
	BatchPause     time.Duration
	TTL            time.Duration
	CodeLength     int
	MaxCodeRetries int
}

// IssueResult reports the outcome of a batch issuance. Individual
// persistence failures are counted, not raised.
type IssueResult struct {
	Issued   int
	Failed   int
	Vouchers []*models.Voucher
}

// CodeGenerator produces candidate voucher codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// Notifier delivers the voucher-issued message. Implementations must
// not fail the issuance path; errors are telemetry only.
type Notifier interface {
	VoucherIssued(ctx context.Context, v *models.Voucher)
}

// OrderLedger is the slice of the order service the issuer needs.
type OrderLedger interface {
	Transition(ctx context.Context, id, to string) (bool, error)
}

// Issuer converts a paid order's recipients into voucher records.
type Issuer interface {
	Issue(ctx context.Context, order *models.Order) (*IssueResult, error)
}
