package voucher

import "errors"

// Service errors
var (
	ErrOrderNotIssuable    = errors.New("order is not in an issuable state")
	ErrNoRecipients        = errors.New("order has no recipients")
	ErrCodeSpaceExhausted  = errors.New("could not generate a unique voucher code")
	ErrIssuanceInterrupted = errors.New("voucher issuance interrupted")
)
