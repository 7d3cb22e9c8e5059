package repositories

import "errors"

// Repository errors
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrDuplicateCode    = errors.New("voucher code already exists")
)
