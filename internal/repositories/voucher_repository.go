package repositories

import (
	"context"
	"time"

	"nimwema/internal/models"
)

// RedeemParams carries the merchant fields recorded on the voucher row
// when it is consumed.
type RedeemParams struct {
	MerchantID   uint
	MerchantName string
	Now          time.Time
}

// VoucherRepository is the persistence contract for vouchers and their
// redemption receipts. MarkRedeemed is a conditional single-row update:
// under concurrent redemption attempts at most one caller sees a
// positive row count.
type VoucherRepository interface {
	Create(v *models.Voucher) error
	GetByCode(code string) (*models.Voucher, error)
	ListByOrder(orderID string) ([]*models.Voucher, error)

	// MarkRedeemed flips the voucher to redeemed iff it is still
	// pending and unexpired, returning the number of rows matched.
	MarkRedeemed(ctx context.Context, code string, p RedeemParams) (int64, error)

	CreateRedemption(r *models.Redemption) error

	// ExpireOld flips every pending voucher past its expiry to
	// expired and returns how many rows changed.
	ExpireOld(ctx context.Context, now time.Time) (int64, error)

	ExecuteInTransaction(fn func(VoucherRepository) error) error
}
