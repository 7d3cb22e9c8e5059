package order

import "errors"

// Service errors
var (
	ErrValidation        = errors.New("invalid order input")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOrderNotFound     = errors.New("order not found")
)
