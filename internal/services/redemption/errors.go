package redemption

import "errors"

// Service errors. The three failure causes are distinct so merchants
// can tell a double redemption from a bad or expired code.
var (
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrAlreadyRedeemed      = errors.New("voucher already redeemed")
	ErrVoucherExpired       = errors.New("voucher expired")
	ErrVoucherNotRedeemable = errors.New("voucher cannot be redeemed")
	ErrInvalidMerchant      = errors.New("invalid merchant")
)
