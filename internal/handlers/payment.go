package handlers

import (
	"errors"
	"log"

	"nimwema/internal/services/payment"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService payment.Service
}

func NewPaymentHandler(paymentSvc payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentSvc}
}

// Callback consumes the asynchronous provider notification. The
// underlying confirmation is idempotent, so a provider retrying the
// same callback gets 200 every time.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var payload payment.CallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Invalid callback format")
	}

	if err := h.paymentService.HandleCallback(c.Context(), payload); err != nil {
		if errors.Is(err, payment.ErrUnknownReference) {
			log.Printf("callback for unknown reference %q", payload.Reference)
			return response.NotFound(c, "Unknown payment reference")
		}
		return response.ServerError(c, err.Error())
	}

	return response.Success(c, "Callback processed", nil)
}

// CheckStatus polls the provider when a callback is delayed or lost.
func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	status, err := h.paymentService.CheckStatus(c.Context(), c.Params("reference"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownReference):
			return response.NotFound(c, "Unknown payment reference")
		case errors.Is(err, payment.ErrProviderTransient):
			return response.Error(c, fiber.StatusServiceUnavailable, "Payment provider unavailable, try again")
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Payment status", fiber.Map{"status": status})
}
