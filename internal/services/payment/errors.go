package payment

import "errors"

// Service errors
var (
	// ErrProviderTransient marks network or timeout failures that are
	// eligible for retry or status polling.
	ErrProviderTransient = errors.New("payment provider temporarily unavailable")
	// ErrProviderPermanent marks an explicit provider rejection.
	ErrProviderPermanent = errors.New("payment rejected by provider")

	ErrUnknownReference   = errors.New("callback references an unknown order")
	ErrOrderNotPayable    = errors.New("order is not awaiting payment")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrMissingProviderRef = errors.New("order has no provider reference")
)
